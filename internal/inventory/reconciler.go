// Package inventory applies the stock decrement of paid orders exactly once per line.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/imrishuroy/go-shop-admin/internal/aws"
	"github.com/imrishuroy/go-shop-admin/internal/catalog"
	"github.com/imrishuroy/go-shop-admin/internal/idempotency"
	"github.com/imrishuroy/go-shop-admin/internal/orders"
)

// ErrLineInProgress means another worker holds a live claim on an order line. The
// message should be retried; the claim is reclaimable once its lease runs out.
var ErrLineInProgress = errors.New("order line is being applied by another worker")

// StockWriter consumes product stock. *catalog.Service implements it.
type StockWriter interface {
	ConsumeStock(ctx context.Context, productID string, qty int, orderID string) (catalog.StockChange, int, error)
}

// Ledger records which order lines were already applied. *idempotency.Store implements it.
type Ledger interface {
	Acquire(ctx context.Context, key, resourceID string) (bool, error)
	Get(ctx context.Context, key string) (*idempotency.Record, error)
	MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
}

// OrderSource loads orders by id for queued messages.
type OrderSource interface {
	Get(ctx context.Context, id string) (orders.Order, error)
}

// Reconciler decrements product stock for paid orders.
type Reconciler struct {
	stock   StockWriter
	ledger  Ledger
	metrics aws.MetricsRecorder
}

func NewReconciler(stock StockWriter, ledger Ledger, metrics aws.MetricsRecorder) *Reconciler {
	if metrics == nil {
		metrics = aws.NopMetrics{}
	}
	return &Reconciler{stock: stock, ledger: ledger, metrics: metrics}
}

// LineKey is the ledger key of one order line.
func LineKey(orderID, productID string) string {
	return fmt.Sprintf("order-paid:%s:%s", orderID, productID)
}

// ApplyPaidOrder decrements stock for every line of o. Lines already applied are
// skipped; lines claimed by another live worker report ErrLineInProgress so the
// message is redelivered. Stock is clamped at zero and the shortfall is logged. The
// first failing line is returned after all lines were attempted.
func (r *Reconciler) ApplyPaidOrder(ctx context.Context, o orders.Order) error {
	if o.PaymentStatus != orders.PaymentPaid {
		return fmt.Errorf("order %s is %s, not paid", o.OrderID, o.PaymentStatus)
	}

	var firstErr error
	for _, line := range o.Items {
		if err := r.applyLine(ctx, o.OrderID, line); err != nil {
			log.Printf("[inventory] order=%s product=%s: %v", o.OrderID, line.ProductID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (r *Reconciler) applyLine(ctx context.Context, orderID string, line orders.OrderItem) error {
	key := LineKey(orderID, line.ProductID)
	acquired, err := r.ledger.Acquire(ctx, key, orderID)
	if err != nil {
		return fmt.Errorf("acquire %s: %w", key, err)
	}
	if !acquired {
		rec, err := r.ledger.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		if rec != nil && rec.Status == idempotency.StatusInProgress {
			return fmt.Errorf("%s: %w", key, ErrLineInProgress)
		}
		log.Printf("[inventory] skipping %s: already applied", key)
		return nil
	}

	change, shortfall, err := r.stock.ConsumeStock(ctx, line.ProductID, line.Quantity, orderID)
	if errors.Is(err, catalog.ErrNotFound) {
		log.Printf("[inventory] product %s no longer exists; nothing to decrement", line.ProductID)
		if err := r.ledger.MarkDone(ctx, key, "product_missing", http.StatusNotFound); err != nil {
			return fmt.Errorf("mark done %s: %w", key, err)
		}
		return nil
	}
	if err != nil {
		if mErr := r.ledger.MarkFailed(ctx, key, err.Error()); mErr != nil {
			log.Printf("[inventory] mark failed %s: %v", key, mErr)
		}
		r.metrics.Count(ctx, "StockSyncFailed", nil)
		return err
	}

	if shortfall > 0 {
		log.Printf("[inventory] order=%s product=%s short by %d units (stock %d->%d)",
			orderID, line.ProductID, shortfall, change.Previous, change.Current)
		r.metrics.Count(ctx, "StockShortfall", nil)
	}
	body := fmt.Sprintf(`{"previous_stock":%d,"stock":%d}`, change.Previous, change.Current)
	if err := r.ledger.MarkDone(ctx, key, body, http.StatusOK); err != nil {
		return fmt.Errorf("mark done %s: %w", key, err)
	}
	r.metrics.Count(ctx, "StockDecremented", nil)
	return nil
}

// HandlePaidMessage loads the order named by msg and applies it. Used by the worker.
func (r *Reconciler) HandlePaidMessage(ctx context.Context, source OrderSource, msg orders.PaidMessage) error {
	if msg.OrderID == "" {
		return errors.New("paid message without order_id")
	}
	o, err := source.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", msg.OrderID, err)
	}
	return r.ApplyPaidOrder(ctx, o)
}
