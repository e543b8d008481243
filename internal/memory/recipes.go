package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/recipes"
)

type RecipeStore struct {
	mu      sync.RWMutex
	recipes map[string]*recipes.Recipe
}

func NewRecipeStore() *RecipeStore {
	return &RecipeStore{recipes: make(map[string]*recipes.Recipe)}
}

func (s *RecipeStore) List(_ context.Context) ([]*recipes.Recipe, error) {
	return s.filter(func(*recipes.Recipe) bool { return true }), nil
}

func (s *RecipeStore) Search(_ context.Context, query string) ([]*recipes.Recipe, error) {
	return s.filter(func(r *recipes.Recipe) bool { return recipes.Matches(r, query) }), nil
}

// filter returns matching copies ordered by creation time.
func (s *RecipeStore) filter(keep func(*recipes.Recipe) bool) []*recipes.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*recipes.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *RecipeStore) Get(_ context.Context, id string) (*recipes.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		return nil, apperr.NotFound("memory.RecipeStore.Get", "Recipe not found")
	}
	return r.Clone(), nil
}

func (s *RecipeStore) Insert(_ context.Context, r *recipes.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.recipes[r.ID]; exists {
		return apperr.Conflict("memory.RecipeStore.Insert")
	}
	s.recipes[r.ID] = r.Clone()
	return nil
}

func (s *RecipeStore) Update(_ context.Context, r *recipes.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[r.ID]; !ok {
		return apperr.NotFound("memory.RecipeStore.Update", "Recipe not found")
	}
	s.recipes[r.ID] = r.Clone()
	return nil
}

func (s *RecipeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return apperr.NotFound("memory.RecipeStore.Delete", "Recipe not found")
	}
	delete(s.recipes, id)
	return nil
}
