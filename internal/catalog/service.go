package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-shop-admin/internal/aws"
)

// maxWriteAttempts bounds the re-read/re-apply loop on conditional write conflicts.
const maxWriteAttempts = 3

// Repository is the persistence the catalog service needs. *Store implements it.
type Repository interface {
	Create(ctx context.Context, p Product) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, p Product, expectedVersion int64) (Product, error)
	Delete(ctx context.Context, id string) (*Product, error)
	SetStock(ctx context.Context, id string, expected, next int, mv Movement) error
	SetFeatured(ctx context.Context, id string, featured bool, at time.Time) error
	CountFeatured(ctx context.Context) (int, error)
}

// Service applies the catalog rules (stock arithmetic, featured cap, primary image)
// on top of a Repository.
type Service struct {
	repo          Repository
	featuredLimit int
	metrics       aws.MetricsRecorder
	newID         func() string
	nowFunc       func() time.Time
}

// NewService returns a Service. A limit <= 0 falls back to DefaultFeaturedLimit.
func NewService(repo Repository, featuredLimit int, metrics aws.MetricsRecorder) *Service {
	if featuredLimit <= 0 {
		featuredLimit = DefaultFeaturedLimit
	}
	if metrics == nil {
		metrics = aws.NopMetrics{}
	}
	return &Service{
		repo:          repo,
		featuredLimit: featuredLimit,
		metrics:       metrics,
		newID:         uuid.NewString,
		nowFunc:       time.Now,
	}
}

// FeaturedLimit is the configured cap on featured products.
func (s *Service) FeaturedLimit() int { return s.featuredLimit }

// List returns every product, newest first.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

// ListPublished returns the storefront view: published products, featured first.
func (s *Service) ListPublished(ctx context.Context) ([]Product, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	published := make([]Product, 0, len(all))
	for _, p := range all {
		if p.IsPublished {
			published = append(published, p)
		}
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].IsFeatured && !published[j].IsFeatured
	})
	return published, nil
}

// Get returns the product or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if p == nil {
		return Product{}, ErrNotFound
	}
	return *p, nil
}

// GetPublished hides unpublished products behind ErrNotFound.
func (s *Service) GetPublished(ctx context.Context, id string) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.IsPublished {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// Create stores a new product with a fresh id.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if in.Price.IsNegative() {
		return Product{}, fmt.Errorf("%w: price cannot be negative", ErrInvalidProduct)
	}
	if in.Stock < 0 {
		return Product{}, ErrNegativeStock
	}
	if in.Stock > MaxStock {
		return Product{}, ErrStockTooLarge
	}

	now := s.nowFunc().UTC()
	p := Product{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
		IsPublished: in.IsPublished,
		Images:      []ProductImage{},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Stock > 0 {
		p.Movements = []Movement{s.newMovement(Movement{
			Type:      MovementInitial,
			Reason:    "initial stock",
			CreatedBy: in.Actor,
		}, 0, p.Stock)}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}
	s.metrics.Count(ctx, "ProductCreated", nil)
	return p, nil
}

// Update applies the non-nil fields of in.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Product, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if in.Price != nil && in.Price.IsNegative() {
		return Product{}, fmt.Errorf("%w: price cannot be negative", ErrInvalidProduct)
	}
	if in.Stock != nil && *in.Stock < 0 {
		return Product{}, ErrNegativeStock
	}
	if in.Stock != nil && *in.Stock > MaxStock {
		return Product{}, ErrStockTooLarge
	}
	return s.mutate(ctx, id, func(p *Product) error {
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = strings.TrimSpace(*in.Description)
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.Stock != nil && *in.Stock != p.Stock {
			p.Movements = append(p.Movements, s.newMovement(Movement{
				Type:      MovementEdit,
				Reason:    "product edit",
				CreatedBy: in.Actor,
			}, p.Stock, *in.Stock))
			p.Stock = *in.Stock
		}
		if in.IsPublished != nil {
			p.IsPublished = *in.IsPublished
		}
		return nil
	})
}

// Delete removes the product and returns what was deleted so callers can clean up media.
func (s *Service) Delete(ctx context.Context, id string) (Product, error) {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return Product{}, err
	}
	s.metrics.Count(ctx, "ProductDeleted", nil)
	return *p, nil
}

// FeaturedCount returns how many products are currently featured.
func (s *Service) FeaturedCount(ctx context.Context) (int, error) {
	return s.repo.CountFeatured(ctx)
}

// SetFeatured toggles the featured flag. Turning it on fails with ErrFeaturedLimit once
// the cap is reached; turning it off always succeeds.
func (s *Service) SetFeatured(ctx context.Context, id string, featured bool) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if p.IsFeatured == featured {
		return p, nil
	}

	if featured {
		count, err := s.repo.CountFeatured(ctx)
		if err != nil {
			return Product{}, err
		}
		if err := CheckFeaturedToggle(count, s.featuredLimit, p.IsFeatured, featured); err != nil {
			s.metrics.Count(ctx, "FeaturedLimitRejected", nil)
			return Product{}, err
		}
	}

	now := s.nowFunc().UTC()
	if err := s.repo.SetFeatured(ctx, id, featured, now); err != nil {
		return Product{}, err
	}
	s.metrics.Count(ctx, "FeaturedToggled", map[string]string{"featured": fmt.Sprintf("%t", featured)})

	p.IsFeatured = featured
	p.FeaturedAt = nil
	if featured {
		p.FeaturedAt = &now
	}
	p.Version++
	p.UpdatedAt = now
	return p, nil
}

// AdjustStock applies an add/remove/set adjustment. A rejected adjustment leaves the
// stored stock untouched.
func (s *Service) AdjustStock(ctx context.Context, id string, adj Adjustment) (StockChange, error) {
	change, err := s.writeStock(ctx, id, func(current int) (int, Movement, error) {
		next, err := AdjustStock(current, adj)
		return next, Movement{
			Type:      adj.Type,
			Reason:    adj.Reason,
			Notes:     adj.Notes,
			CreatedBy: adj.Actor,
		}, err
	})
	if err != nil {
		return change, err
	}
	log.Printf("[catalog] stock adjusted product=%s type=%s qty=%d %d->%d reason=%q notes=%q actor=%s",
		id, adj.Type, adj.Quantity, change.Previous, change.Current, adj.Reason, adj.Notes, adj.Actor)
	s.metrics.Count(ctx, "StockAdjusted", map[string]string{"type": string(adj.Type)})
	return change, nil
}

// ConsumeStock takes qty units for the paid order orderID, clamping at zero. The
// uncovered quantity is returned as shortfall.
func (s *Service) ConsumeStock(ctx context.Context, id string, qty int, orderID string) (StockChange, int, error) {
	shortfall := 0
	change, err := s.writeStock(ctx, id, func(current int) (int, Movement, error) {
		var next int
		next, shortfall = ConsumeStock(current, qty)
		mv := Movement{
			Type:      MovementOrderPaid,
			Reason:    "order paid",
			Reference: orderID,
			CreatedBy: "stock-sync",
		}
		if shortfall > 0 {
			mv.Notes = fmt.Sprintf("short by %d units", shortfall)
		}
		return next, mv, nil
	})
	return change, shortfall, err
}

// writeStock reads the current stock, computes the next value and writes it
// together with its movement, retrying when another writer got there first.
func (s *Service) writeStock(ctx context.Context, id string, compute func(current int) (int, Movement, error)) (StockChange, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		p, err := s.Get(ctx, id)
		if err != nil {
			return StockChange{}, err
		}
		next, mv, err := compute(p.Stock)
		if err != nil {
			return StockChange{ProductID: id, Previous: p.Stock, Current: p.Stock}, err
		}
		err = s.repo.SetStock(ctx, id, p.Stock, next, s.newMovement(mv, p.Stock, next))
		if errors.Is(err, ErrStockMismatch) {
			continue
		}
		if err != nil {
			return StockChange{}, err
		}
		if len(p.Movements)+1 > MovementHistoryLimit {
			s.compactMovements(ctx, id)
		}
		return StockChange{ProductID: id, Previous: p.Stock, Current: next}, nil
	}
	return StockChange{}, ErrConcurrentUpdate
}

// compactMovements rewrites the product so that only the newest movements remain.
// The stock write already succeeded, so a failure here is only logged.
func (s *Service) compactMovements(ctx context.Context, id string) {
	if _, err := s.mutate(ctx, id, func(p *Product) error { return nil }); err != nil {
		log.Printf("[catalog] compact movements product=%s: %v", id, err)
	}
}

// mutate runs fn on a fresh copy of the product and saves it with a version check.
func (s *Service) mutate(ctx context.Context, id string, fn func(p *Product) error) (Product, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		p, err := s.Get(ctx, id)
		if err != nil {
			return Product{}, err
		}
		if err := fn(&p); err != nil {
			return Product{}, err
		}
		p.Movements = recentMovements(p.Movements)
		saved, err := s.repo.Save(ctx, p, p.Version)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return Product{}, err
		}
		return saved, nil
	}
	return Product{}, ErrConcurrentUpdate
}

// ListImages returns the product's images.
func (s *Service) ListImages(ctx context.Context, id string) ([]ProductImage, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Images, nil
}

// AddImage links a new image to the product. storageKey is empty for external URLs.
func (s *Service) AddImage(ctx context.Context, id, imageURL, storageKey string, primary bool) (ProductImage, error) {
	img := ProductImage{
		ID:         s.newID(),
		ProductID:  id,
		ImageURL:   imageURL,
		StorageKey: storageKey,
		IsPrimary:  primary,
		CreatedAt:  s.nowFunc().UTC(),
	}
	saved, err := s.mutate(ctx, id, func(p *Product) error {
		p.Images = AddImage(p.Images, img)
		return nil
	})
	if err != nil {
		return ProductImage{}, err
	}
	for _, stored := range saved.Images {
		if stored.ID == img.ID {
			return stored, nil
		}
	}
	return img, nil
}

// SetPrimaryImage makes imageID the product's only primary image.
func (s *Service) SetPrimaryImage(ctx context.Context, id, imageID string) ([]ProductImage, error) {
	saved, err := s.mutate(ctx, id, func(p *Product) error {
		images, err := SetPrimaryImage(p.Images, imageID)
		if err != nil {
			return err
		}
		p.Images = images
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved.Images, nil
}

// UpdateImage applies a primary flag change to one image.
func (s *Service) UpdateImage(ctx context.Context, id, imageID string, primary bool) (ProductImage, error) {
	saved, err := s.mutate(ctx, id, func(p *Product) error {
		var (
			images []ProductImage
			err    error
		)
		if primary {
			images, err = SetPrimaryImage(p.Images, imageID)
		} else {
			images, err = DemoteImage(p.Images, imageID)
		}
		if err != nil {
			return err
		}
		p.Images = images
		return nil
	})
	if err != nil {
		return ProductImage{}, err
	}
	for _, img := range saved.Images {
		if img.ID == imageID {
			return img, nil
		}
	}
	return ProductImage{}, ErrImageNotFound
}

// RemoveImage unlinks imageID and returns it so uploaded files can be deleted.
func (s *Service) RemoveImage(ctx context.Context, id, imageID string) (ProductImage, error) {
	var removed ProductImage
	_, err := s.mutate(ctx, id, func(p *Product) error {
		images, r, err := RemoveImage(p.Images, imageID)
		if err != nil {
			return err
		}
		p.Images = images
		removed = r
		return nil
	})
	if err != nil {
		return ProductImage{}, err
	}
	return removed, nil
}
