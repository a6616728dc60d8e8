// Package repository holds the MongoDB-backed stores for users, categories
// and posts. Services depend on the interfaces; repotest provides in-memory
// implementations of the same contracts.
package repository

import (
	"context"
	"errors"
	"fmt"

	"blogapi/common"
	"blogapi/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// FindByEmail is the only read that returns the password hash.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error)
}

// PostFilter selects posts for listing and search.
type PostFilter struct {
	PublishedOnly bool
	CategoryID    *primitive.ObjectID
	// Search matches title or content case-insensitively as a literal substring.
	Search string
	// SearchTags extends Search to any tag.
	SearchTags bool
}

type Page struct {
	Skip  int64
	Limit int64
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// IncrementViews resolves idOrSlug, bumps viewCount by one in a single
	// atomic update and returns the post as it is after the increment.
	IncrementViews(ctx context.Context, idOrSlug string) (*models.Post, error)
	Find(ctx context.Context, filter PostFilter, page Page) ([]models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	// Update writes the editable fields of post and leaves viewCount and
	// comments to their own atomic operations.
	Update(ctx context.Context, post *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddComment(ctx context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, exclude primitive.ObjectID) (bool, error)
}

func mapError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return common.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, common.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
