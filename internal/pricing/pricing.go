// Package pricing holds recipe unit prices and order totals. Recipe views,
// the checkout flow and order creation all price through it.
package pricing

import "github.com/shopspring/decimal"

const (
	BasePrice            int64 = 150
	ReferenceMinutes     int64 = 30
	ReferenceIngredients int64 = 10

	// TaxPercent is applied to the subtotal and rounded half-up.
	TaxPercent int64 = 5
	// DeliveryFee is flat per order.
	DeliveryFee int64 = 50
	// Tolerance is the allowed difference between a client-submitted
	// amount and the recomputed one.
	Tolerance int64 = 1
)

var (
	hundred = decimal.NewFromInt(100)
)

// UnitPrice prices a recipe from its cooking time and ingredient count.
// A value <= 0 counts as absent and contributes a multiplier of 1. The
// result is rounded to the nearest 10.
func UnitPrice(cookingMinutes, ingredientCount int) int64 {
	price := decimal.NewFromInt(BasePrice)
	if cookingMinutes > 0 {
		price = price.Mul(decimal.NewFromInt(int64(cookingMinutes))).
			Div(decimal.NewFromInt(ReferenceMinutes))
	}
	if ingredientCount > 0 {
		price = price.Mul(decimal.NewFromInt(int64(ingredientCount))).
			Div(decimal.NewFromInt(ReferenceIngredients))
	}
	return price.Round(-1).IntPart()
}

// TaxAmount returns TaxPercent of subtotal rounded to a whole unit.
func TaxAmount(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromInt(TaxPercent)).
		Div(hundred).
		Round(0).
		IntPart()
}

// Line is one priced quantity.
type Line struct {
	UnitPrice int64
	Quantity  int
}

func Subtotal(lines []Line) int64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromInt(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.IntPart()
}

type Breakdown struct {
	Subtotal    int64 `json:"subtotal"`
	TaxAmount   int64 `json:"taxAmount"`
	DeliveryFee int64 `json:"deliveryFee"`
	TotalAmount int64 `json:"totalAmount"`
}

func Totals(lines []Line) Breakdown {
	sub := Subtotal(lines)
	tax := TaxAmount(sub)
	return Breakdown{
		Subtotal:    sub,
		TaxAmount:   tax,
		DeliveryFee: DeliveryFee,
		TotalAmount: sub + tax + DeliveryFee,
	}
}

// Submitted are client-supplied amounts; nil means not sent.
type Submitted struct {
	Subtotal    *int64
	TaxAmount   *int64
	DeliveryFee *int64
	TotalAmount *int64
}

// Mismatches lists the submitted fields that differ from b by more than
// tolerance. Unsent fields are not compared.
func (b Breakdown) Mismatches(s Submitted, tolerance int64) []string {
	var out []string
	check := func(name string, got *int64, want int64) {
		if got == nil {
			return
		}
		d := *got - want
		if d < 0 {
			d = -d
		}
		if d > tolerance {
			out = append(out, name)
		}
	}
	check("subtotal", s.Subtotal, b.Subtotal)
	check("taxAmount", s.TaxAmount, b.TaxAmount)
	check("deliveryFee", s.DeliveryFee, b.DeliveryFee)
	check("totalAmount", s.TotalAmount, b.TotalAmount)
	return out
}
