package mongodb

import (
	"time"

	"github.com/ariefcatur/go-khana-orders/internal/carts"
	"github.com/ariefcatur/go-khana-orders/internal/orders"
	"github.com/ariefcatur/go-khana-orders/internal/recipes"
)

type CartDocument struct {
	UserID      string             `bson:"_id"`
	Items       []CartItemDocument `bson:"items"`
	Subtotal    int64              `bson:"subtotal"`
	Version     int64              `bson:"version"`
	LastUpdated time.Time          `bson:"lastUpdated"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

type CartItemDocument struct {
	ID          string `bson:"id"`
	Name        string `bson:"name"`
	Price       int64  `bson:"price"`
	Quantity    int    `bson:"quantity"`
	Image       string `bson:"image,omitempty"`
	Description string `bson:"description,omitempty"`
}

type OrderDocument struct {
	ID              string                 `bson:"_id"`
	ExternalID      string                 `bson:"externalId,omitempty"`
	User            UserDocument           `bson:"user"`
	Items           []OrderItemDocument    `bson:"items"`
	ShippingAddress AddressDocument        `bson:"shippingAddress"`
	PaymentMethod   string                 `bson:"paymentMethod"`
	PaymentResult   *PaymentResultDocument `bson:"paymentResult,omitempty"`
	Subtotal        int64                  `bson:"subtotal"`
	TaxAmount       int64                  `bson:"taxAmount"`
	DeliveryFee     int64                  `bson:"deliveryFee"`
	TotalAmount     int64                  `bson:"totalAmount"`
	Status          string                 `bson:"status"`
	PaidAt          *time.Time             `bson:"paidAt,omitempty"`
	DeliveredAt     *time.Time             `bson:"deliveredAt,omitempty"`
	CreatedAt       time.Time              `bson:"createdAt"`
	UpdatedAt       time.Time              `bson:"updatedAt"`
}

type UserDocument struct {
	UserID string `bson:"userId"`
	Name   string `bson:"name"`
	Email  string `bson:"email"`
}

type OrderItemDocument struct {
	ID       string `bson:"id"`
	Name     string `bson:"name"`
	Price    int64  `bson:"price"`
	Quantity int    `bson:"quantity"`
	Image    string `bson:"image,omitempty"`
}

type AddressDocument struct {
	Street     string `bson:"street"`
	City       string `bson:"city"`
	State      string `bson:"state"`
	PostalCode string `bson:"postalCode"`
	Country    string `bson:"country"`
}

type PaymentResultDocument struct {
	ID           string `bson:"id"`
	Status       string `bson:"status"`
	UpdateTime   string `bson:"updateTime"`
	EmailAddress string `bson:"emailAddress"`
}

type RecipeDocument struct {
	ID                 string    `bson:"_id"`
	Name               string    `bson:"translatedRecipeName"`
	Ingredients        string    `bson:"translatedIngredients"`
	TotalTimeInMins    int       `bson:"totalTimeInMins"`
	Cuisine            string    `bson:"cuisine"`
	Instructions       string    `bson:"translatedInstructions"`
	URL                string    `bson:"url,omitempty"`
	CleanedIngredients string    `bson:"cleanedIngredients,omitempty"`
	ImageURL           string    `bson:"imageUrl,omitempty"`
	IngredientCount    int       `bson:"ingredientCount"`
	CreatedAt          time.Time `bson:"createdAt"`
}

func toCartDocument(c *carts.Cart) *CartDocument {
	doc := &CartDocument{
		UserID:      c.UserID,
		Items:       make([]CartItemDocument, len(c.Items)),
		Subtotal:    c.Subtotal,
		Version:     c.Version,
		LastUpdated: c.LastUpdated,
		CreatedAt:   c.CreatedAt,
	}
	for i, it := range c.Items {
		doc.Items[i] = CartItemDocument(it)
	}
	return doc
}

func toCartEntity(doc *CartDocument) *carts.Cart {
	items := make([]carts.Item, len(doc.Items))
	for i, it := range doc.Items {
		items[i] = carts.Item(it)
	}
	return &carts.Cart{
		UserID:      doc.UserID,
		Items:       items,
		Subtotal:    doc.Subtotal,
		Version:     doc.Version,
		LastUpdated: doc.LastUpdated,
		CreatedAt:   doc.CreatedAt,
	}
}

func toOrderDocument(o *orders.Order) *OrderDocument {
	doc := &OrderDocument{
		ID:              o.ID,
		ExternalID:      o.ExternalID,
		User:            UserDocument(o.User),
		Items:           make([]OrderItemDocument, len(o.Items)),
		ShippingAddress: AddressDocument(o.ShippingAddress),
		PaymentMethod:   string(o.PaymentMethod),
		Subtotal:        o.Subtotal,
		TaxAmount:       o.TaxAmount,
		DeliveryFee:     o.DeliveryFee,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		PaidAt:          o.PaidAt,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for i, it := range o.Items {
		doc.Items[i] = OrderItemDocument(it)
	}
	if o.PaymentResult != nil {
		pr := PaymentResultDocument(*o.PaymentResult)
		doc.PaymentResult = &pr
	}
	return doc
}

func toOrderEntity(doc *OrderDocument) *orders.Order {
	o := &orders.Order{
		ID:              doc.ID,
		ExternalID:      doc.ExternalID,
		User:            orders.UserRef(doc.User),
		Items:           make([]orders.Item, len(doc.Items)),
		ShippingAddress: orders.ShippingAddress(doc.ShippingAddress),
		PaymentMethod:   orders.PaymentMethod(doc.PaymentMethod),
		Subtotal:        doc.Subtotal,
		TaxAmount:       doc.TaxAmount,
		DeliveryFee:     doc.DeliveryFee,
		TotalAmount:     doc.TotalAmount,
		Status:          orders.Status(doc.Status),
		PaidAt:          doc.PaidAt,
		DeliveredAt:     doc.DeliveredAt,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	for i, it := range doc.Items {
		o.Items[i] = orders.Item(it)
	}
	if doc.PaymentResult != nil {
		pr := orders.PaymentResult(*doc.PaymentResult)
		o.PaymentResult = &pr
	}
	return o
}

func toRecipeDocument(r *recipes.Recipe) *RecipeDocument {
	return &RecipeDocument{
		ID:                 r.ID,
		Name:               r.Name,
		Ingredients:        r.Ingredients,
		TotalTimeInMins:    r.TotalTimeInMins,
		Cuisine:            r.Cuisine,
		Instructions:       r.Instructions,
		URL:                r.URL,
		CleanedIngredients: r.CleanedIngredients,
		ImageURL:           r.ImageURL,
		IngredientCount:    r.IngredientCount,
		CreatedAt:          r.CreatedAt,
	}
}

func toRecipeEntity(doc *RecipeDocument) *recipes.Recipe {
	return &recipes.Recipe{
		ID:                 doc.ID,
		Name:               doc.Name,
		Ingredients:        doc.Ingredients,
		TotalTimeInMins:    doc.TotalTimeInMins,
		Cuisine:            doc.Cuisine,
		Instructions:       doc.Instructions,
		URL:                doc.URL,
		CleanedIngredients: doc.CleanedIngredients,
		ImageURL:           doc.ImageURL,
		IngredientCount:    doc.IngredientCount,
		CreatedAt:          doc.CreatedAt,
	}
}
