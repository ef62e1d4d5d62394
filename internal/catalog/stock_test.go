package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdjustStock(t *testing.T) {
	cases := []struct {
		name    string
		current int
		adj     Adjustment
		want    int
		wantErr error
	}{
		{"add", 5, Adjustment{Type: AdjustAdd, Quantity: 3}, 8, nil},
		{"remove", 5, Adjustment{Type: AdjustRemove, Quantity: 2}, 3, nil},
		{"remove to zero", 5, Adjustment{Type: AdjustRemove, Quantity: 5}, 0, nil},
		{"remove below zero", 5, Adjustment{Type: AdjustRemove, Quantity: 8}, 5, ErrNegativeStock},
		{"set", 5, Adjustment{Type: AdjustSet, Quantity: 20}, 20, nil},
		{"set zero", 5, Adjustment{Type: AdjustSet, Quantity: 0}, 0, nil},
		{"set negative", 5, Adjustment{Type: AdjustSet, Quantity: -1}, 5, ErrNegativeStock},
		{"add zero", 5, Adjustment{Type: AdjustAdd, Quantity: 0}, 5, ErrInvalidQuantity},
		{"remove negative", 5, Adjustment{Type: AdjustRemove, Quantity: -2}, 5, ErrInvalidQuantity},
		{"unknown type", 5, Adjustment{Type: "swap", Quantity: 1}, 5, ErrInvalidAdjustment},
		{"add up to max", 5, Adjustment{Type: AdjustAdd, Quantity: MaxStock - 5}, MaxStock, nil},
		{"add past max", 5, Adjustment{Type: AdjustAdd, Quantity: MaxStock - 4}, 5, ErrStockTooLarge},
		{"add overflowing int", 5, Adjustment{Type: AdjustAdd, Quantity: math.MaxInt}, 5, ErrStockTooLarge},
		{"set past max", 5, Adjustment{Type: AdjustSet, Quantity: MaxStock + 1}, 5, ErrStockTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AdjustStock(tc.current, tc.adj)
			assert.ErrorIs(t, err, tc.wantErr)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestConsumeStock(t *testing.T) {
	next, short := ConsumeStock(5, 2)
	assert.Equal(t, 3, next)
	assert.Equal(t, 0, short)

	next, short = ConsumeStock(2, 5)
	assert.Equal(t, 0, next)
	assert.Equal(t, 3, short)

	next, short = ConsumeStock(4, 0)
	assert.Equal(t, 4, next)
	assert.Equal(t, 0, short)
}

func TestCheckFeaturedToggle(t *testing.T) {
	assert.NoError(t, CheckFeaturedToggle(3, 10, false, true))
	assert.ErrorIs(t, CheckFeaturedToggle(10, 10, false, true), ErrFeaturedLimit)
	// already featured or turning off never hits the cap
	assert.NoError(t, CheckFeaturedToggle(10, 10, true, true))
	assert.NoError(t, CheckFeaturedToggle(10, 10, true, false))
}
