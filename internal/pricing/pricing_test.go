package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name        string
		minutes     int
		ingredients int
		want        int64
	}{
		{"reference recipe", 30, 10, 150},
		{"both absent", 0, 0, 150},
		{"negative treated as absent", -5, -1, 150},
		{"long cook", 45, 12, 270},
		{"short cook", 20, 7, 70},
		{"rounds to nearest ten", 25, 9, 110},
		{"half ten rounds up", 0, 5, 80},
		{"only time", 60, 0, 300},
		{"only ingredients", 0, 20, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnitPrice(tt.minutes, tt.ingredients))
		})
	}
}

func TestUnitPriceIsDeterministic(t *testing.T) {
	first := UnitPrice(37, 11)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, UnitPrice(37, 11))
	}
	assert.Zero(t, first%10)
}

func TestTaxAmount(t *testing.T) {
	assert.Equal(t, int64(25), TaxAmount(500))
	assert.Equal(t, int64(0), TaxAmount(0))
	// 5% of 130 is 6.5
	assert.Equal(t, int64(7), TaxAmount(130))
	// 5% of 129 is 6.45
	assert.Equal(t, int64(6), TaxAmount(129))
}

func TestTotals(t *testing.T) {
	b := Totals([]Line{{UnitPrice: 100, Quantity: 2}, {UnitPrice: 150, Quantity: 2}})

	assert.Equal(t, Breakdown{Subtotal: 500, TaxAmount: 25, DeliveryFee: 50, TotalAmount: 575}, b)
	assert.Equal(t, b.Subtotal+b.TaxAmount+b.DeliveryFee, b.TotalAmount)
}

func TestMismatches(t *testing.T) {
	b := Breakdown{Subtotal: 500, TaxAmount: 25, DeliveryFee: 50, TotalAmount: 575}
	i := func(v int64) *int64 { return &v }

	assert.Empty(t, b.Mismatches(Submitted{TotalAmount: i(575)}, Tolerance))
	assert.Empty(t, b.Mismatches(Submitted{TaxAmount: i(26), TotalAmount: i(576)}, Tolerance))
	assert.Empty(t, b.Mismatches(Submitted{}, Tolerance))
	assert.Equal(t, []string{"subtotal", "totalAmount"},
		b.Mismatches(Submitted{Subtotal: i(400), TaxAmount: i(25), TotalAmount: i(475)}, Tolerance))
}
