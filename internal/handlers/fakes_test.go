package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/imrishuroy/go-shop-admin/internal/auth"
	"github.com/imrishuroy/go-shop-admin/internal/catalog"
	"github.com/imrishuroy/go-shop-admin/internal/orders"
)

type productRepo struct {
	mu       sync.Mutex
	products map[string]catalog.Product
}

func newProductRepo() *productRepo {
	return &productRepo{products: map[string]catalog.Product{}}
}

func (r *productRepo) Create(ctx context.Context, p catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *productRepo) Get(ctx context.Context, id string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	p.Images = append([]catalog.ProductImage{}, p.Images...)
	return &p, nil
}

func (r *productRepo) List(ctx context.Context) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *productRepo) Save(ctx context.Context, p catalog.Product, expectedVersion int64) (catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.products[p.ID]
	if !ok || cur.Version != expectedVersion {
		return catalog.Product{}, catalog.ErrVersionConflict
	}
	p.Version = expectedVersion + 1
	r.products[p.ID] = p
	return p, nil
}

func (r *productRepo) Delete(ctx context.Context, id string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	delete(r.products, id)
	return &p, nil
}

func (r *productRepo) SetStock(ctx context.Context, id string, expected, next int, mv catalog.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Stock != expected {
		return catalog.ErrStockMismatch
	}
	p.Stock = next
	p.Movements = append(append([]catalog.Movement{}, p.Movements...), mv)
	p.Version++
	r.products[id] = p
	return nil
}

func (r *productRepo) SetFeatured(ctx context.Context, id string, featured bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return catalog.ErrNotFound
	}
	p.IsFeatured = featured
	p.FeaturedAt = nil
	if featured {
		p.FeaturedAt = &at
	}
	p.Version++
	r.products[id] = p
	return nil
}

func (r *productRepo) CountFeatured(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.products {
		if p.IsFeatured {
			n++
		}
	}
	return n, nil
}

type orderRepo struct {
	mu     sync.Mutex
	orders map[string]orders.Order
}

func newOrderRepo() *orderRepo {
	return &orderRepo{orders: map[string]orders.Order{}}
}

func (r *orderRepo) Create(ctx context.Context, o orders.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.OrderID] = o
	return nil
}

func (r *orderRepo) CreateWithIdempotencyTransaction(ctx context.Context, idempotencyTable string, idempotencyItem interface{}, o orders.Order, ttlWindow time.Duration) error {
	return r.Create(ctx, o)
}

func (r *orderRepo) Get(ctx context.Context, id string) (*orders.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context) ([]orders.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]orders.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

func (r *orderRepo) ApplyTransition(ctx context.Context, id string, tr orders.Transition) (*orders.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.PaymentStatus != tr.ExpectedPayment || o.OrderStatus != tr.ExpectedOrder {
		return nil, orders.ErrStatusMismatch
	}
	now := time.Now().UTC()
	if tr.NewPayment == orders.PaymentPaid && o.PaymentStatus != orders.PaymentPaid {
		o.PaidAt = &now
	}
	if tr.NewOrder == orders.StatusShipped && o.OrderStatus != orders.StatusShipped {
		o.ShippedAt = &now
	}
	o.PaymentStatus = tr.NewPayment
	o.OrderStatus = tr.NewOrder
	tr.Event.CreatedAt = now
	o.Events = append(o.Events, tr.Event)
	o.UpdatedAt = now
	r.orders[id] = o
	return &o, nil
}

// inlineStock consumes catalog stock synchronously, like the reconciler without a ledger.
type inlineStock struct {
	catalog *catalog.Service
}

func (s inlineStock) ApplyPaidOrder(ctx context.Context, o orders.Order) error {
	for _, it := range o.Items {
		if _, _, err := s.catalog.ConsumeStock(ctx, it.ProductID, it.Quantity, o.OrderID); err != nil {
			return err
		}
	}
	return nil
}

type userRepo struct {
	mu       sync.Mutex
	users    map[string]auth.User
	sessions map[string]auth.Session
}

func newUserRepo() *userRepo {
	return &userRepo{users: map[string]auth.User{}, sessions: map[string]auth.Session{}}
}

func (r *userRepo) CreateUser(ctx context.Context, u auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return auth.ErrUserExists
	}
	r.users[u.Email] = u
	return nil
}

func (r *userRepo) GetUser(ctx context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) SetActive(ctx context.Context, email string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.IsActive = active
	r.users[email] = u
	return nil
}

func (r *userRepo) PutSession(ctx context.Context, sess auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.Token] = sess
	return nil
}

func (r *userRepo) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[token]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (r *userRepo) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Key)
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}
