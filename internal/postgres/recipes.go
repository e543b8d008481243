package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/recipes"
)

const recipeNotFound = "Recipe not found"

const recipeColumns = `id, name, ingredients, total_time_in_mins, cuisine, instructions,
	url, cleaned_ingredients, image_url, ingredient_count, created_at`

type RecipeStore struct{ DB *pgxpool.Pool }

func scanRecipe(row pgx.Row) (*recipes.Recipe, error) {
	var r recipes.Recipe
	err := row.Scan(&r.ID, &r.Name, &r.Ingredients, &r.TotalTimeInMins, &r.Cuisine, &r.Instructions,
		&r.URL, &r.CleanedIngredients, &r.ImageURL, &r.IngredientCount, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RecipeStore) query(ctx context.Context, sql string, args ...any) ([]*recipes.Recipe, error) {
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	out := make([]*recipes.Recipe, 0)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *RecipeStore) List(ctx context.Context) ([]*recipes.Recipe, error) {
	return s.query(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY created_at, id`)
}

// Search uses ILIKE with the wildcard characters of the query escaped.
func (s *RecipeStore) Search(ctx context.Context, query string) ([]*recipes.Recipe, error) {
	return s.query(ctx,
		`SELECT `+recipeColumns+` FROM recipes
		 WHERE name ILIKE '%' || $1 || '%' ESCAPE '\' OR cuisine ILIKE '%' || $1 || '%' ESCAPE '\'
		 ORDER BY created_at, id`,
		escapeLike(query))
}

func (s *RecipeStore) Get(ctx context.Context, id string) (*recipes.Recipe, error) {
	r, err := scanRecipe(s.DB.QueryRow(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id=$1`, id))
	if err != nil {
		return nil, classify("postgres.RecipeStore.Get", recipeNotFound, err)
	}
	return r, nil
}

func (s *RecipeStore) Insert(ctx context.Context, r *recipes.Recipe) error {
	_, err := s.DB.Exec(ctx,
		`INSERT INTO recipes (`+recipeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, r.Name, r.Ingredients, r.TotalTimeInMins, r.Cuisine, r.Instructions,
		r.URL, r.CleanedIngredients, r.ImageURL, r.IngredientCount, r.CreatedAt)
	return classify("postgres.RecipeStore.Insert", recipeNotFound, err)
}

func (s *RecipeStore) Update(ctx context.Context, r *recipes.Recipe) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE recipes SET name=$2, ingredients=$3, total_time_in_mins=$4, cuisine=$5, instructions=$6,
		 url=$7, cleaned_ingredients=$8, image_url=$9, ingredient_count=$10 WHERE id=$1`,
		r.ID, r.Name, r.Ingredients, r.TotalTimeInMins, r.Cuisine, r.Instructions,
		r.URL, r.CleanedIngredients, r.ImageURL, r.IngredientCount)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("postgres.RecipeStore.Update", recipeNotFound)
	}
	return nil
}

func (s *RecipeStore) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM recipes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("postgres.RecipeStore.Delete", recipeNotFound)
	}
	return nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
