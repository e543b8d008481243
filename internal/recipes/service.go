package recipes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
)

// Store persists recipes. Get, Update and Delete return apperr.ErrNotFound
// for an unknown id. Search matches name or cuisine, case-insensitively.
type Store interface {
	List(ctx context.Context) ([]*Recipe, error)
	Get(ctx context.Context, id string) (*Recipe, error)
	Insert(ctx context.Context, r *Recipe) error
	Update(ctx context.Context, r *Recipe) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]*Recipe, error)
}

type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *Service) List(ctx context.Context) ([]*Recipe, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Persistence("recipes.List", err)
	}
	return nonNil(list), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Recipe, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("recipes.Get", err)
	}
	return r, nil
}

func (s *Service) Create(ctx context.Context, in Recipe) (*Recipe, error) {
	const op = "recipes.Create"
	if err := validate(op, in); err != nil {
		return nil, err
	}
	r := in
	r.ID = s.newID()
	r.CreatedAt = s.now()
	if err := s.store.Insert(ctx, &r); err != nil {
		return nil, apperr.Persistence(op, err)
	}
	return &r, nil
}

// Update replaces every editable field of the recipe; id and createdAt are kept.
func (s *Service) Update(ctx context.Context, id string, in Recipe) (*Recipe, error) {
	const op = "recipes.Update"
	if err := validate(op, in); err != nil {
		return nil, err
	}
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	r := in
	r.ID = cur.ID
	r.CreatedAt = cur.CreatedAt
	if err := s.store.Update(ctx, &r); err != nil {
		return nil, apperr.Persistence(op, err)
	}
	return &r, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return apperr.Persistence("recipes.Delete", s.store.Delete(ctx, id))
}

func (s *Service) Search(ctx context.Context, query string) ([]*Recipe, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return s.List(ctx)
	}
	list, err := s.store.Search(ctx, q)
	if err != nil {
		return nil, apperr.Persistence("recipes.Search", err)
	}
	return nonNil(list), nil
}

func validate(op string, r Recipe) error {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "translatedRecipeName")
	}
	if r.Ingredients == "" {
		missing = append(missing, "translatedIngredients")
	}
	if r.Cuisine == "" {
		missing = append(missing, "cuisine")
	}
	if r.Instructions == "" {
		missing = append(missing, "translatedInstructions")
	}
	if len(missing) > 0 {
		return apperr.Validation(op, "Please provide all required fields: "+strings.Join(missing, ", "))
	}
	if r.TotalTimeInMins < 0 || r.IngredientCount < 0 {
		return apperr.Validation(op, "totalTimeInMins and ingredientCount must not be negative")
	}
	return nil
}

// Matches is the search predicate shared by stores that filter in process.
func Matches(r *Recipe, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.Cuisine), q)
}

func nonNil(list []*Recipe) []*Recipe {
	if list == nil {
		return []*Recipe{}
	}
	return list
}
