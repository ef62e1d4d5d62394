package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-shop-admin/internal/aws"
	"github.com/imrishuroy/go-shop-admin/internal/catalog"
	"github.com/imrishuroy/go-shop-admin/internal/idempotency"
)

// Repository is the order persistence. *Store implements it.
type Repository interface {
	Create(ctx context.Context, order Order) error
	CreateWithIdempotencyTransaction(ctx context.Context, idempotencyTable string, idempotencyItem interface{}, order Order, ttlWindow time.Duration) error
	Get(ctx context.Context, orderID string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	ApplyTransition(ctx context.Context, orderID string, tr Transition) (*Order, error)
}

// ProductSource resolves products for order line snapshots.
type ProductSource interface {
	GetPublished(ctx context.Context, id string) (catalog.Product, error)
}

// IdempotencyStore remembers Idempotency-Key headers on order creation.
type IdempotencyStore interface {
	NewRecord(key, resourceID string) idempotency.Record
	TableName() string
	TTL() time.Duration
	Get(ctx context.Context, key string) (*idempotency.Record, error)
	MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error
}

// Publisher sends paid-order messages to the stock queue.
type Publisher interface {
	Enabled() bool
	SendOrderMessage(ctx context.Context, body string, attrs map[string]string) error
}

// StockSync applies the inventory decrement of a paid order in-process.
type StockSync interface {
	ApplyPaidOrder(ctx context.Context, o Order) error
}

// Service implements the order lifecycle.
type Service struct {
	repo      Repository
	products  ProductSource
	idem      IdempotencyStore
	publisher Publisher
	stock     StockSync
	metrics   aws.MetricsRecorder
	newID     func() string
	nowFunc   func() time.Time
}

// ServiceDeps groups the collaborators of Service. Only Repo is required.
type ServiceDeps struct {
	Repo        Repository
	Products    ProductSource
	Idempotency IdempotencyStore
	Publisher   Publisher
	Stock       StockSync
	Metrics     aws.MetricsRecorder
}

func NewService(deps ServiceDeps) *Service {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = aws.NopMetrics{}
	}
	return &Service{
		repo:      deps.Repo,
		products:  deps.Products,
		idem:      deps.Idempotency,
		publisher: deps.Publisher,
		stock:     deps.Stock,
		metrics:   metrics,
		newID:     uuid.NewString,
		nowFunc:   time.Now,
	}
}

// Get returns the order or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o == nil {
		return Order{}, ErrNotFound
	}
	return *o, nil
}

// List returns orders matching f, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(all))
	for _, o := range all {
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			continue
		}
		if f.OrderStatus != "" && o.OrderStatus != f.OrderStatus {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Stats computes the dashboard counters.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{TotalOrders: len(all)}
	for _, o := range all {
		if o.OrderStatus == StatusNew {
			st.NewOrders++
		}
		if o.OrderStatus == StatusCanceled {
			continue
		}
		if o.PaymentStatus == PaymentPending {
			st.PendingPayment++
		}
		if CanShip(o) {
			st.PendingShipment++
		}
	}
	return st, nil
}

// Create places a storefront order. Lines are snapshotted from the catalog; every
// product must be published and have enough stock. With a non-empty idempotencyKey a
// retried request returns the order created the first time and replayed=true.
func (s *Service) Create(ctx context.Context, in CreateInput, idempotencyKey string) (order Order, replayed bool, err error) {
	if len(idempotencyKey) > MaxIdempotencyKeyLength {
		return Order{}, false, ErrInvalidIdempotencyKey
	}
	if idempotencyKey != "" {
		idempotencyKey = ClientIdempotencyKey(idempotencyKey)
	}
	if idempotencyKey != "" && s.idem != nil {
		if prior, ok, err := s.replay(ctx, idempotencyKey); err != nil || ok {
			return prior, ok, err
		}
	}

	items, err := s.snapshotLines(ctx, in.Items)
	if err != nil {
		return Order{}, false, err
	}

	now := s.nowFunc().UTC()
	id := s.newID()
	order = Order{
		OrderID:         id,
		OrderNumber:     OrderNumber(id),
		Customer:        trimCustomer(in.Customer),
		Items:           items,
		TotalAmount:     Total(items),
		PaymentStatus:   PaymentPending,
		OrderStatus:     StatusNew,
		Notes:           strings.TrimSpace(in.Notes),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Events: []OrderEvent{{
			Type:        EventCreated,
			Description: "order placed",
			CreatedBy:   "storefront",
			CreatedAt:   now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if idempotencyKey == "" || s.idem == nil {
		if err := s.repo.Create(ctx, order); err != nil {
			return Order{}, false, err
		}
	} else {
		rec := s.idem.NewRecord(idempotencyKey, id)
		err := s.repo.CreateWithIdempotencyTransaction(ctx, s.idem.TableName(), rec, order, s.idem.TTL())
		if errors.Is(err, ErrIdempotencyConflict) {
			// lost a race with a concurrent request carrying the same key
			prior, ok, rerr := s.replay(ctx, idempotencyKey)
			if rerr != nil {
				return Order{}, false, rerr
			}
			if ok {
				return prior, true, nil
			}
			return Order{}, false, ErrRequestInProgress
		}
		if err != nil {
			return Order{}, false, err
		}
		body, _ := json.Marshal(map[string]string{"order_id": id})
		if err := s.idem.MarkDone(ctx, idempotencyKey, string(body), http.StatusCreated); err != nil {
			log.Printf("[orders] mark idempotency done key=%s: %v", idempotencyKey, err)
		}
	}

	log.Printf("[orders] created order=%s number=%s total=%s lines=%d", order.OrderID, order.OrderNumber, order.TotalAmount.String(), len(items))
	s.metrics.Count(ctx, "OrderCreated", nil)
	return order, false, nil
}

// ClientIdempotencyKey namespaces a storefront Idempotency-Key so it can never
// collide with the keys the stock reconciler writes to the same table.
func ClientIdempotencyKey(key string) string {
	return clientKeyPrefix + key
}

// replay looks up a previous request with the same idempotency key.
func (s *Service) replay(ctx context.Context, key string) (Order, bool, error) {
	rec, err := s.idem.Get(ctx, key)
	if err != nil {
		return Order{}, false, fmt.Errorf("idempotency check: %w", err)
	}
	if rec == nil {
		return Order{}, false, nil
	}
	switch rec.Status {
	case idempotency.StatusDone:
		o, err := s.Get(ctx, rec.ResourceID)
		if err != nil {
			return Order{}, false, err
		}
		return o, true, nil
	case idempotency.StatusInProgress:
		return Order{}, false, ErrRequestInProgress
	default:
		return Order{}, false, ErrPreviousAttempt
	}
}

func (s *Service) snapshotLines(ctx context.Context, lines []LineInput) ([]OrderItem, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	// merge repeated products so the stock check sees the full quantity
	qty := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if _, seen := qty[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		qty[l.ProductID] += l.Quantity
	}

	items := make([]OrderItem, 0, len(order))
	for _, productID := range order {
		p, err := s.products.GetPublished(ctx, productID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
		}
		if err != nil {
			return nil, err
		}
		n := qty[productID]
		if p.Stock < n {
			return nil, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, p.Name, p.Stock, n)
		}
		items = append(items, OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    n,
			Subtotal:    p.Price.Times(n),
		})
	}
	return items, nil
}

func trimCustomer(c Customer) Customer {
	return Customer{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}

// MarkPaid confirms payment and triggers the stock decrement of every line.
func (s *Service) MarkPaid(ctx context.Context, id, actor string) (Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	next, err := CheckMarkPaid(o)
	if err != nil {
		return Order{}, err
	}
	updated, err := s.repo.ApplyTransition(ctx, id, Transition{
		ExpectedPayment: o.PaymentStatus,
		ExpectedOrder:   o.OrderStatus,
		NewPayment:      PaymentPaid,
		NewOrder:        next,
		Event: OrderEvent{
			Type:        EventPaid,
			Description: "payment confirmed",
			CreatedBy:   actor,
		},
	})
	if err != nil {
		return Order{}, err
	}
	s.metrics.Count(ctx, "OrderMarkedPaid", nil)
	s.syncStock(ctx, *updated)
	return *updated, nil
}

// syncStock hands the paid order to the stock worker, or applies the decrement
// in-process when no queue is configured or the publish fails.
func (s *Service) syncStock(ctx context.Context, o Order) {
	if s.publisher != nil && s.publisher.Enabled() {
		correlationID := s.newID()
		body, _ := json.Marshal(PaidMessage{OrderID: o.OrderID, CorrelationID: correlationID})
		attrs := map[string]string{
			"order_id":       o.OrderID,
			"event_type":     EventPaid,
			"correlation_id": correlationID,
		}
		err := s.publisher.SendOrderMessage(ctx, string(body), attrs)
		if err == nil {
			log.Printf("[orders] enqueued stock sync order=%s correlation_id=%s", o.OrderID, correlationID)
			return
		}
		log.Printf("[orders] enqueue stock sync order=%s correlation_id=%s failed, applying in-process: %v", o.OrderID, correlationID, err)
	}
	if s.stock == nil {
		log.Printf("[orders] no stock sync configured; order=%s stock unchanged", o.OrderID)
		return
	}
	if err := s.stock.ApplyPaidOrder(ctx, o); err != nil {
		log.Printf("[orders] stock sync order=%s: %v", o.OrderID, err)
		s.metrics.Count(ctx, "StockSyncFailed", nil)
	}
}

// MarkShipped moves a paid order to shipped.
func (s *Service) MarkShipped(ctx context.Context, id, actor string) (Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := CheckMarkShipped(o); err != nil {
		return Order{}, err
	}
	return s.transition(ctx, o, StatusShipped, EventShipped, "order shipped", actor)
}

// UpdateStatus applies a free-form admin status change. Moving to the current
// status is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, id, to, actor string) (Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.OrderStatus == to {
		return o, nil
	}
	if err := CheckStatusChange(o, to); err != nil {
		return Order{}, err
	}
	eventType := EventStatusChanged
	if to == StatusShipped {
		eventType = EventShipped
	}
	return s.transition(ctx, o, to, eventType, fmt.Sprintf("status changed from %s to %s", o.OrderStatus, to), actor)
}

func (s *Service) transition(ctx context.Context, o Order, to, eventType, description, actor string) (Order, error) {
	updated, err := s.repo.ApplyTransition(ctx, o.OrderID, Transition{
		ExpectedPayment: o.PaymentStatus,
		ExpectedOrder:   o.OrderStatus,
		NewPayment:      o.PaymentStatus,
		NewOrder:        to,
		Event: OrderEvent{
			Type:        eventType,
			Description: description,
			CreatedBy:   actor,
		},
	})
	if err != nil {
		return Order{}, err
	}
	s.metrics.Count(ctx, "OrderStatusChanged", map[string]string{"status": to})
	return *updated, nil
}

// WhatsAppLink builds the contact link for an order. An empty message uses the
// default greeting.
func (s *Service) WhatsAppLink(ctx context.Context, id, message string) (string, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(message) == "" {
		message = DefaultWhatsAppMessage(o)
	}
	return WhatsAppLink(o.Customer.Phone, message)
}
