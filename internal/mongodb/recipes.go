package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ariefcatur/go-khana-orders/internal/apperr"
	"github.com/ariefcatur/go-khana-orders/internal/recipes"
)

const recipeNotFound = "Recipe not found"

type RecipeStore struct {
	collection *mongo.Collection
}

func NewRecipeStore(db *mongo.Database) *RecipeStore {
	return &RecipeStore{collection: db.Collection(collRecipes)}
}

func (s *RecipeStore) find(ctx context.Context, filter any) ([]*recipes.Recipe, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find recipes: %w", err)
	}
	var docs []RecipeDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}
	out := make([]*recipes.Recipe, 0, len(docs))
	for i := range docs {
		out = append(out, toRecipeEntity(&docs[i]))
	}
	return out, nil
}

func (s *RecipeStore) List(ctx context.Context) ([]*recipes.Recipe, error) {
	return s.find(ctx, bson.M{})
}

// Search treats the query as a literal substring.
func (s *RecipeStore) Search(ctx context.Context, query string) ([]*recipes.Recipe, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return s.find(ctx, bson.M{"$or": bson.A{
		bson.M{"translatedRecipeName": re},
		bson.M{"cuisine": re},
	}})
}

func (s *RecipeStore) Get(ctx context.Context, id string) (*recipes.Recipe, error) {
	var doc RecipeDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("mongodb.RecipeStore.Get", recipeNotFound)
		}
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return toRecipeEntity(&doc), nil
}

func (s *RecipeStore) Insert(ctx context.Context, r *recipes.Recipe) error {
	if _, err := s.collection.InsertOne(ctx, toRecipeDocument(r)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("mongodb.RecipeStore.Insert")
		}
		return fmt.Errorf("failed to insert recipe: %w", err)
	}
	return nil
}

func (s *RecipeStore) Update(ctx context.Context, r *recipes.Recipe) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": r.ID}, toRecipeDocument(r))
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("mongodb.RecipeStore.Update", recipeNotFound)
	}
	return nil
}

func (s *RecipeStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("mongodb.RecipeStore.Delete", recipeNotFound)
	}
	return nil
}
