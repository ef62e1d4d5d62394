package catalog

import (
	"context"
	"sort"
	"strings"
)

const (
	// MovementHistoryLimit is how many movements a product keeps; older ones are dropped.
	MovementHistoryLimit = 100

	// LowStockThreshold is the highest stock still reported as low (zero is out of stock).
	LowStockThreshold = 5
)

// StockLevel buckets a product's stock for the inventory view.
type StockLevel string

const (
	LevelInStock    StockLevel = "in_stock"
	LevelLowStock   StockLevel = "low_stock"
	LevelOutOfStock StockLevel = "out_of_stock"
)

// ParseStockLevel accepts "" (no filter) or one of the StockLevel values.
func ParseStockLevel(s string) (StockLevel, bool) {
	switch l := StockLevel(s); l {
	case "", LevelInStock, LevelLowStock, LevelOutOfStock:
		return l, true
	}
	return "", false
}

// LevelOf classifies a stock count.
func LevelOf(stock int) StockLevel {
	switch {
	case stock <= 0:
		return LevelOutOfStock
	case stock <= LowStockThreshold:
		return LevelLowStock
	default:
		return LevelInStock
	}
}

// InventoryItem is one row of the inventory view.
type InventoryItem struct {
	ProductID   string     `json:"product_id"`
	Name        string     `json:"name"`
	Stock       int        `json:"stock"`
	Level       StockLevel `json:"level"`
	IsPublished bool       `json:"is_published"`
}

// InventoryReport holds the stock counters and the (filtered) product rows.
// The counters always cover the whole catalog.
type InventoryReport struct {
	TotalProducts     int             `json:"total_products"`
	LowStock          int             `json:"low_stock"`
	OutOfStock        int             `json:"out_of_stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Items             []InventoryItem `json:"items"`
}

// InventoryQuery narrows the rows of an InventoryReport.
type InventoryQuery struct {
	Level  StockLevel
	Search string // case-insensitive match on name or description
}

// BuildInventoryReport counts low and out-of-stock products and returns the rows
// matching q, lowest stock first.
func BuildInventoryReport(products []Product, q InventoryQuery) InventoryReport {
	report := InventoryReport{
		TotalProducts:     len(products),
		LowStockThreshold: LowStockThreshold,
		Items:             []InventoryItem{},
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, p := range products {
		level := LevelOf(p.Stock)
		switch level {
		case LevelLowStock:
			report.LowStock++
		case LevelOutOfStock:
			report.OutOfStock++
		}
		if q.Level != "" && level != q.Level {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		report.Items = append(report.Items, InventoryItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Stock:       p.Stock,
			Level:       level,
			IsPublished: p.IsPublished,
		})
	}
	sort.SliceStable(report.Items, func(i, j int) bool {
		if report.Items[i].Stock != report.Items[j].Stock {
			return report.Items[i].Stock < report.Items[j].Stock
		}
		return report.Items[i].Name < report.Items[j].Name
	})
	return report
}

// Inventory reports stock levels across the catalog.
func (s *Service) Inventory(ctx context.Context, q InventoryQuery) (InventoryReport, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return InventoryReport{}, err
	}
	return BuildInventoryReport(products, q), nil
}

// Movements returns the stock history of a product, newest first.
func (s *Service) Movements(ctx context.Context, id string) ([]Movement, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]Movement, 0, len(p.Movements))
	for i := len(p.Movements) - 1; i >= 0; i-- {
		out = append(out, p.Movements[i])
	}
	return out, nil
}

// newMovement fills in the bookkeeping fields of mv for a prev -> next change.
func (s *Service) newMovement(mv Movement, prev, next int) Movement {
	mv.ID = s.newID()
	mv.PreviousStock = prev
	mv.NewStock = next
	mv.QuantityChange = next - prev
	mv.CreatedAt = s.nowFunc().UTC()
	return mv
}

// recentMovements keeps the newest MovementHistoryLimit entries.
func recentMovements(mvs []Movement) []Movement {
	if len(mvs) <= MovementHistoryLimit {
		return mvs
	}
	return append([]Movement(nil), mvs[len(mvs)-MovementHistoryLimit:]...)
}
