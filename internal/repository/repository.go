package repository

import (
	"context"
	"time"

	"github.com/dastanaron/bookmarks/internal/models"
)

// CategoryRepository defines operations for categories
type CategoryRepository interface {
	// List returns all categories ordered by rank
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	// GetByName returns nil without error when no category has that name
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id string) error
	SetOrder(ctx context.Context, id string, order int) error
	Count(ctx context.Context) (int, error)
}

// BookmarkRepository defines operations for bookmarks
type BookmarkRepository interface {
	// List returns all bookmarks ordered by category then rank
	List(ctx context.Context) ([]models.Bookmark, error)
	ListByCategory(ctx context.Context, categoryID string) ([]models.Bookmark, error)
	GetByID(ctx context.Context, id string) (*models.Bookmark, error)
	Create(ctx context.Context, b *models.Bookmark) error
	Update(ctx context.Context, b *models.Bookmark) error
	Delete(ctx context.Context, id string) error
	DeleteByCategory(ctx context.Context, categoryID string) error
	// SetPosition moves a bookmark to categoryID at rank order
	SetPosition(ctx context.Context, id, categoryID string, order int, updatedAt time.Time) error
	CountInCategory(ctx context.Context, categoryID string) (int, error)
}

// Repository combines all repositories
type Repository interface {
	Categories() CategoryRepository
	Bookmarks() BookmarkRepository
	// WithTx runs fn against a repository bound to one transaction.
	// The transaction is committed when fn returns nil.
	WithTx(ctx context.Context, fn func(Repository) error) error
	Close() error
}
