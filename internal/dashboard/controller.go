// Package dashboard wires the dataset store, the visibility resolver and the
// reorder engine together and implements the add/edit/delete operations the
// UI triggers. Mutations are not optimistic: on success the whole dataset is
// reloaded through the resolver.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dastanaron/bookmarks/internal/client"
	"github.com/dastanaron/bookmarks/internal/dataset"
	"github.com/dastanaron/bookmarks/internal/models"
	"github.com/dastanaron/bookmarks/internal/reorder"
	"github.com/dastanaron/bookmarks/internal/session"
	"github.com/dastanaron/bookmarks/internal/visibility"
)

// GenericErrorMessage is shown when a failure carries no message of its own
const GenericErrorMessage = "Something went wrong. Please try again."

// Mutator performs create/update/delete requests against the backend
type Mutator interface {
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CreateBookmark(ctx context.Context, in models.BookmarkInput) (*models.Bookmark, error)
	UpdateBookmark(ctx context.Context, id string, in models.BookmarkInput) (*models.Bookmark, error)
	DeleteBookmark(ctx context.Context, id string) error
}

// Controller is the single entry point of the UI into the dashboard state
type Controller struct {
	store    *dataset.Store
	resolver *visibility.Resolver
	engine   *reorder.Engine
	mutator  Mutator
	log      zerolog.Logger
}

// New creates a controller
func New(store *dataset.Store, resolver *visibility.Resolver, engine *reorder.Engine, mutator Mutator, log zerolog.Logger) *Controller {
	return &Controller{
		store:    store,
		resolver: resolver,
		engine:   engine,
		mutator:  mutator,
		log:      log.With().Str("component", "dashboard").Logger(),
	}
}

// NewFromClient builds the whole client-side stack on top of one backend client
func NewFromClient(ctx context.Context, c *client.Client, log zerolog.Logger) *Controller {
	store := dataset.NewStore()
	resolver := visibility.NewResolver(c, c.Session(), store, log)
	engine := reorder.NewEngine(ctx, store, c, log)
	return New(store, resolver, engine, c, log)
}

// Store returns the dataset store the UI renders from
func (c *Controller) Store() *dataset.Store {
	return c.store
}

// Capability returns the session capability
func (c *Controller) Capability() session.Capability {
	return c.resolver.Session().Capability()
}

// Effective returns the capability the displayed dataset was loaded with
func (c *Controller) Effective() session.Capability {
	return c.resolver.Effective()
}

// Start probes the capability and loads the matching projection
func (c *Controller) Start(ctx context.Context) error {
	capability, err := c.resolver.Start(ctx)
	if err != nil {
		return err
	}
	c.log.Info().Stringer("capability", capability).Msg("dashboard loaded")
	return nil
}

// Reload refetches the dataset with the last known capability
func (c *Controller) Reload(ctx context.Context) error {
	_, err := c.resolver.Reload(ctx)
	return err
}

// Login enters admin mode
func (c *Controller) Login(ctx context.Context, password string) error {
	return c.resolver.Login(ctx, password)
}

// Logout leaves admin mode
func (c *Controller) Logout(ctx context.Context) error {
	return c.resolver.Logout(ctx)
}

// BeginDrag starts moving a bookmark card
func (c *Controller) BeginDrag(id string) {
	c.engine.BeginDrag(id)
}

// Dragging reports the card being moved
func (c *Controller) Dragging() (string, bool) {
	return c.engine.Dragging()
}

// Drop ends the gesture on destID
func (c *Controller) Drop(destID string) (bool, error) {
	return c.engine.Drop(destID)
}

// CancelDrag aborts the gesture
func (c *Controller) CancelDrag() {
	c.engine.Cancel()
}

// Close waits for outstanding order persistence
func (c *Controller) Close() {
	c.engine.Wait()
}

// AddCategory creates a category
func (c *Controller) AddCategory(ctx context.Context, in models.CategoryInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return c.mutate(ctx, "add category", func() error {
		_, err := c.mutator.CreateCategory(ctx, in)
		return err
	})
}

// EditCategory updates a category
func (c *Controller) EditCategory(ctx context.Context, id string, in models.CategoryInput) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	return c.mutate(ctx, "edit category", func() error {
		_, err := c.mutator.UpdateCategory(ctx, id, in)
		return err
	})
}

// DeleteCategory deletes a category with its bookmarks
func (c *Controller) DeleteCategory(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return c.mutate(ctx, "delete category", func() error {
		return c.mutator.DeleteCategory(ctx, id)
	})
}

// AddBookmark creates a bookmark
func (c *Controller) AddBookmark(ctx context.Context, in models.BookmarkInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return c.mutate(ctx, "add bookmark", func() error {
		_, err := c.mutator.CreateBookmark(ctx, in)
		return err
	})
}

// EditBookmark updates a bookmark
func (c *Controller) EditBookmark(ctx context.Context, id string, in models.BookmarkInput) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	return c.mutate(ctx, "edit bookmark", func() error {
		_, err := c.mutator.UpdateBookmark(ctx, id, in)
		return err
	})
}

// DeleteBookmark deletes a bookmark
func (c *Controller) DeleteBookmark(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return c.mutate(ctx, "delete bookmark", func() error {
		return c.mutator.DeleteBookmark(ctx, id)
	})
}

func (c *Controller) mutate(ctx context.Context, op string, fn func() error) error {
	if err := fn(); err != nil {
		c.log.Debug().Err(err).Str("op", op).Msg("mutation rejected")
		return err
	}
	if _, err := c.resolver.Reload(ctx); err != nil {
		return &ReloadError{Op: op, Err: err}
	}
	return nil
}

// ReloadError means the mutation was accepted but the dataset could not be
// reloaded afterwards. Retrying the mutation would apply it twice.
type ReloadError struct {
	Op  string
	Err error
}

func (e *ReloadError) Error() string {
	return fmt.Sprintf("reload after %s: %v", e.Op, e.Err)
}

func (e *ReloadError) Unwrap() error {
	return e.Err
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &models.ValidationError{Field: "id", Message: "must not be empty"}
	}
	return nil
}

// UserMessage is the text shown to the user for err: the validation message,
// the backend's own message, or a generic fallback.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericErrorMessage
}
