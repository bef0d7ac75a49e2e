package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dastanaron/bookmarks/internal/client"
	"github.com/dastanaron/bookmarks/internal/dataset"
	"github.com/dastanaron/bookmarks/internal/models"
	"github.com/dastanaron/bookmarks/internal/reorder"
	"github.com/dastanaron/bookmarks/internal/session"
	"github.com/dastanaron/bookmarks/internal/visibility"
)

// memBackend is an in-memory backend used for every collaborator of the controller
type memBackend struct {
	data      models.Dataset
	reads     int
	mutations []string
	failWith  error
	readErr   error
	sorted    []models.SortPayload
}

func (m *memBackend) FetchDataset(_ context.Context, full bool) (models.Dataset, error) {
	m.reads++
	if m.readErr != nil {
		return models.Dataset{}, m.readErr
	}
	if full {
		return models.Dataset{}, session.ErrUnauthorized
	}
	return m.data.Public(), nil
}

func (m *memBackend) Login(context.Context, string) (string, error) { return "t", nil }
func (m *memBackend) Logout(context.Context) error                   { return nil }

func (m *memBackend) SaveOrder(_ context.Context, p models.SortPayload) error {
	m.sorted = append(m.sorted, p)
	return nil
}

func (m *memBackend) record(op string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.mutations = append(m.mutations, op)
	return nil
}

func (m *memBackend) CreateCategory(_ context.Context, in models.CategoryInput) (*models.Category, error) {
	if err := m.record("create-category"); err != nil {
		return nil, err
	}
	c := models.Category{ID: fmt.Sprintf("c%d", len(m.data.Categories)), Name: in.Name, Order: len(m.data.Categories)}
	m.data.Categories = append(m.data.Categories, c)
	return &c, nil
}

func (m *memBackend) UpdateCategory(_ context.Context, id string, in models.CategoryInput) (*models.Category, error) {
	return &models.Category{ID: id, Name: in.Name}, m.record("update-category")
}

func (m *memBackend) DeleteCategory(context.Context, string) error {
	return m.record("delete-category")
}

func (m *memBackend) CreateBookmark(_ context.Context, in models.BookmarkInput) (*models.Bookmark, error) {
	return &models.Bookmark{Title: in.Title}, m.record("create-bookmark")
}

func (m *memBackend) UpdateBookmark(_ context.Context, id string, in models.BookmarkInput) (*models.Bookmark, error) {
	return &models.Bookmark{ID: id, Title: in.Title}, m.record("update-bookmark")
}

func (m *memBackend) DeleteBookmark(context.Context, string) error {
	return m.record("delete-bookmark")
}

func newController(backend *memBackend) *Controller {
	store := dataset.NewStore()
	sess := session.New("")
	log := zerolog.Nop()
	resolver := visibility.NewResolver(backend, sess, store, log)
	engine := reorder.NewEngine(context.Background(), store, backend, log)
	return New(store, resolver, engine, backend, log)
}

func TestAddCategoryReloads(t *testing.T) {
	backend := &memBackend{}
	c := newController(backend)
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	reads := backend.reads

	require.NoError(t, c.AddCategory(ctx, models.CategoryInput{Name: "Work"}))
	assert.Equal(t, []string{"create-category"}, backend.mutations)
	assert.Greater(t, backend.reads, reads)
	require.Len(t, c.Store().CategoriesSorted(), 1)
	assert.Equal(t, "Work", c.Store().CategoriesSorted()[0].Name)
}

func TestValidationRejectsBeforeRequest(t *testing.T) {
	backend := &memBackend{}
	c := newController(backend)
	ctx := context.Background()

	assert.ErrorIs(t, c.AddCategory(ctx, models.CategoryInput{}), models.ErrValidation)
	assert.ErrorIs(t, c.AddBookmark(ctx, models.BookmarkInput{CategoryID: "c0", Title: "x"}), models.ErrValidation)
	assert.ErrorIs(t, c.EditBookmark(ctx, "", models.BookmarkInput{CategoryID: "c0", Title: "x", URL: "u"}), models.ErrValidation)
	assert.ErrorIs(t, c.DeleteCategory(ctx, " "), models.ErrValidation)
	assert.Empty(t, backend.mutations)
	assert.Zero(t, backend.reads)
}

func TestBackendFailureDoesNotReload(t *testing.T) {
	backend := &memBackend{failWith: &client.APIError{StatusCode: http.StatusNotFound, Message: "Bookmark not found"}}
	c := newController(backend)

	err := c.DeleteBookmark(context.Background(), "b1")
	require.Error(t, err)
	assert.Zero(t, backend.reads)
	assert.Equal(t, "Bookmark not found", UserMessage(err))
}

func TestReloadFailureAfterMutation(t *testing.T) {
	backend := &memBackend{readErr: errors.New("connection reset")}
	c := newController(backend)

	err := c.AddCategory(context.Background(), models.CategoryInput{Name: "Work"})
	require.Error(t, err)
	assert.Equal(t, []string{"create-category"}, backend.mutations, "the mutation went through")

	var reloadErr *ReloadError
	require.True(t, errors.As(err, &reloadErr))
	assert.Equal(t, "add category", reloadErr.Op)
	assert.ErrorIs(t, err, backend.readErr)
	assert.Equal(t, GenericErrorMessage, UserMessage(err))

	backend.readErr = nil
	err = c.DeleteBookmark(context.Background(), "b1")
	assert.False(t, errors.As(err, &reloadErr))
}

func TestEditAndDeleteOperations(t *testing.T) {
	backend := &memBackend{}
	c := newController(backend)
	ctx := context.Background()
	in := models.BookmarkInput{CategoryID: "c0", Title: "Docs", URL: "https://docs"}

	require.NoError(t, c.AddBookmark(ctx, in))
	require.NoError(t, c.EditBookmark(ctx, "b1", in))
	require.NoError(t, c.DeleteBookmark(ctx, "b1"))
	require.NoError(t, c.EditCategory(ctx, "c0", models.CategoryInput{Name: "Renamed"}))
	require.NoError(t, c.DeleteCategory(ctx, "c0"))

	assert.Equal(t, []string{
		"create-bookmark", "update-bookmark", "delete-bookmark", "update-category", "delete-category",
	}, backend.mutations)
	assert.Equal(t, 5, backend.reads)
}

func TestDragThroughController(t *testing.T) {
	backend := &memBackend{data: models.Dataset{
		Categories: []models.Category{{ID: "c"}},
		Bookmarks: []models.Bookmark{
			{ID: "a", CategoryID: "c", Order: 0},
			{ID: "b", CategoryID: "c", Order: 1},
		},
	}}
	c := newController(backend)
	require.NoError(t, c.Start(context.Background()))

	c.BeginDrag("b")
	id, ok := c.Dragging()
	require.True(t, ok)
	assert.Equal(t, "b", id)

	changed, err := c.Drop("a")
	require.NoError(t, err)
	assert.True(t, changed)
	c.Close()

	require.Len(t, backend.sorted, 1)
	assert.Equal(t, []string{"b", "a"}, backend.sorted[0].BookmarksOrder["c"])

	c.BeginDrag("a")
	c.CancelDrag()
	_, ok = c.Dragging()
	assert.False(t, ok)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "title: must not be empty",
		UserMessage(&models.ValidationError{Field: "title", Message: "must not be empty"}))
	assert.Equal(t, "Category not found",
		UserMessage(fmt.Errorf("wrapped: %w", &client.APIError{StatusCode: 404, Message: "Category not found"})))
	assert.Equal(t, GenericErrorMessage, UserMessage(&client.APIError{StatusCode: 500}))
	assert.Equal(t, GenericErrorMessage, UserMessage(errors.New("dial tcp: connection refused")))
}
