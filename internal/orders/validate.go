package orders

import (
	"fmt"
	"strings"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
)

func validateCreate(in CreateInput) error {
	const op = "orders.Create"

	var missing []string
	if in.User == nil {
		missing = append(missing, "user")
	}
	if len(in.Items) == 0 {
		missing = append(missing, "items")
	}
	if in.ShippingAddress == nil {
		missing = append(missing, "shippingAddress")
	}
	if in.PaymentMethod == "" {
		missing = append(missing, "paymentMethod")
	}
	if in.TotalAmount == nil {
		missing = append(missing, "totalAmount")
	}
	if len(missing) > 0 {
		return apperr.Validation(op, "Please provide all required fields: "+strings.Join(missing, ", "))
	}

	if in.User.UserID == "" || in.User.Name == "" || in.User.Email == "" {
		return apperr.Validation(op, "user.userId, user.name and user.email are required")
	}
	if !in.PaymentMethod.Valid() {
		return apperr.Validation(op, fmt.Sprintf("paymentMethod %q is not one of cash, card, upi", in.PaymentMethod))
	}
	a := in.ShippingAddress
	if a.Street == "" || a.City == "" || a.State == "" || a.PostalCode == "" {
		return apperr.Validation(op, "shippingAddress requires street, city, state and postalCode")
	}
	seen := make(map[string]bool, len(in.Items))
	for i, it := range in.Items {
		switch {
		case it.ID == "" || it.Name == "":
			return apperr.Validation(op, fmt.Sprintf("item %d requires id and name", i))
		case it.Price < 0:
			return apperr.Validation(op, fmt.Sprintf("item %d has invalid price", i))
		case it.Quantity < 1:
			return apperr.Validation(op, fmt.Sprintf("item %d has invalid quantity", i))
		case seen[it.ID]:
			return apperr.Validation(op, fmt.Sprintf("item %d duplicates id %q", i, it.ID))
		}
		seen[it.ID] = true
	}
	return nil
}
