package recipes

import (
	"encoding/json"
	"time"

	"github.com/ariefcatur/go-khana-orders/internal/pricing"
)

// Recipe is a catalog entry. Its price is never stored; it is derived from
// the cooking time and ingredient count whenever the recipe is served.
type Recipe struct {
	ID                 string    `json:"id"`
	Name               string    `json:"translatedRecipeName"`
	Ingredients        string    `json:"translatedIngredients"`
	TotalTimeInMins    int       `json:"totalTimeInMins"`
	Cuisine            string    `json:"cuisine"`
	Instructions       string    `json:"translatedInstructions"`
	URL                string    `json:"url,omitempty"`
	CleanedIngredients string    `json:"cleanedIngredients,omitempty"`
	ImageURL           string    `json:"imageUrl,omitempty"`
	IngredientCount    int       `json:"ingredientCount"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (r *Recipe) Price() int64 {
	return pricing.UnitPrice(r.TotalTimeInMins, r.IngredientCount)
}

func (r Recipe) MarshalJSON() ([]byte, error) {
	type alias Recipe
	return json.Marshal(struct {
		alias
		Price int64 `json:"price"`
	}{alias(r), r.Price()})
}

func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
