package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dastanaron/bookmarks/internal/models"
	"github.com/dastanaron/bookmarks/internal/repository"
)

type fixture struct {
	svc  *DashboardService
	repo *repository.SQLiteRepository
	now  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := repository.NewSQLiteRepository(filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	f := &fixture{repo: repo, now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	seq := 0
	f.svc = NewDashboardService(repo,
		WithClock(func() time.Time {
			f.now = f.now.Add(time.Second)
			return f.now
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id%d", seq)
		}),
	)
	return f
}

func (f *fixture) category(t *testing.T, name string) string {
	t.Helper()
	c, err := f.svc.CreateCategory(context.Background(), models.CategoryInput{Name: name})
	require.NoError(t, err)
	return c.ID
}

func (f *fixture) bookmark(t *testing.T, categoryID, title string) string {
	t.Helper()
	b, err := f.svc.CreateBookmark(context.Background(), models.BookmarkInput{
		CategoryID: categoryID, Title: title, URL: "https://" + title,
	})
	require.NoError(t, err)
	return b.ID
}

// titles returns the bookmark titles of a category in rank order and checks density
func (f *fixture) titles(t *testing.T, categoryID string) []string {
	t.Helper()
	list, err := f.repo.Bookmarks().ListByCategory(context.Background(), categoryID)
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for i, b := range list {
		require.Equal(t, i, b.Order, "rank of %s", b.Title)
		require.Equal(t, categoryID, b.CategoryID)
		out = append(out, b.Title)
	}
	return out
}

func (f *fixture) categoryNames(t *testing.T) []string {
	t.Helper()
	list, err := f.repo.Categories().List(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for i, c := range list {
		require.Equal(t, i, c.Order)
		out = append(out, c.Name)
	}
	return out
}

func TestCategoriesAppendAndDensify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.category(t, "A")
	b := f.category(t, "B")
	c := f.category(t, "C")
	f.bookmark(t, b, "inB")
	f.bookmark(t, c, "inC")

	assert.Equal(t, []string{"A", "B", "C"}, f.categoryNames(t))

	require.NoError(t, f.svc.DeleteCategory(ctx, b))
	assert.Equal(t, []string{"A", "C"}, f.categoryNames(t))

	ds, err := f.svc.Dataset(ctx, true)
	require.NoError(t, err)
	require.Len(t, ds.Bookmarks, 1, "bookmarks of a deleted category go with it")
	assert.Equal(t, "inC", ds.Bookmarks[0].Title)

	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, b), models.ErrNotFound)
}

func TestUpdateCategoryKeepsRank(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.category(t, "A")
	b := f.category(t, "B")

	c, err := f.svc.UpdateCategory(ctx, b, models.CategoryInput{Name: "  Bee ", Visibility: models.VisibilityPrivate})
	require.NoError(t, err)
	assert.Equal(t, "Bee", c.Name)
	assert.Equal(t, 1, c.Order)
	assert.True(t, c.IsPrivate())

	_, err = f.svc.UpdateCategory(ctx, "missing", models.CategoryInput{Name: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.svc.UpdateCategory(ctx, b, models.CategoryInput{Name: ""})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestBookmarksAppendAndDeleteDensifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t, "C")
	f.bookmark(t, c, "a")
	b := f.bookmark(t, c, "b")
	f.bookmark(t, c, "c")

	assert.Equal(t, []string{"a", "b", "c"}, f.titles(t, c))

	require.NoError(t, f.svc.DeleteBookmark(ctx, b))
	assert.Equal(t, []string{"a", "c"}, f.titles(t, c))

	assert.ErrorIs(t, f.svc.DeleteBookmark(ctx, b), models.ErrNotFound)
}

func TestCreateBookmarkUnknownCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateBookmark(context.Background(), models.BookmarkInput{CategoryID: "nope", Title: "t", URL: "u"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateBookmarkMovesToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.category(t, "X")
	y := f.category(t, "Y")
	f.bookmark(t, x, "x0")
	moved := f.bookmark(t, x, "x1")
	f.bookmark(t, x, "x2")
	f.bookmark(t, y, "y0")

	b, err := f.svc.UpdateBookmark(ctx, moved, models.BookmarkInput{CategoryID: y, Title: "x1", URL: "https://x1"})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Order)
	assert.Equal(t, []string{"x0", "x2"}, f.titles(t, x))
	assert.Equal(t, []string{"y0", "x1"}, f.titles(t, y))

	b, err = f.svc.UpdateBookmark(ctx, moved, models.BookmarkInput{CategoryID: y, Title: "renamed", URL: "https://x1"})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Order, "an edit in place keeps the rank")
	assert.True(t, b.UpdatedAt.After(b.CreatedAt))

	_, err = f.svc.UpdateBookmark(ctx, "missing", models.BookmarkInput{CategoryID: y, Title: "t", URL: "u"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestApplySortCrossCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.category(t, "X")
	y := f.category(t, "Y")
	x0 := f.bookmark(t, x, "X0")
	b := f.bookmark(t, x, "B")
	x2 := f.bookmark(t, x, "X2")
	y0 := f.bookmark(t, y, "Y0")
	y1 := f.bookmark(t, y, "Y1")

	require.NoError(t, f.svc.ApplySort(ctx, models.SortPayload{BookmarksOrder: map[string][]string{
		x: {x0, x2},
		y: {y0, b, y1},
	}}))
	assert.Equal(t, []string{"X0", "X2"}, f.titles(t, x))
	assert.Equal(t, []string{"Y0", "B", "Y1"}, f.titles(t, y))
}

func TestApplySortPartialPayload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.category(t, "X")
	y := f.category(t, "Y")
	z := f.category(t, "Z")
	f.bookmark(t, x, "x0")
	b := f.bookmark(t, x, "x1")
	f.bookmark(t, x, "x2")
	y0 := f.bookmark(t, y, "y0")
	f.bookmark(t, y, "y1")
	f.bookmark(t, z, "z0")

	// only the destination is listed, and y1 is missing from its list
	require.NoError(t, f.svc.ApplySort(ctx, models.SortPayload{BookmarksOrder: map[string][]string{
		y: {b, y0, "ghost"},
	}}))
	assert.Equal(t, []string{"x1", "y0", "y1"}, f.titles(t, y))
	assert.Equal(t, []string{"x0", "x2"}, f.titles(t, x), "source is renumbered")
	assert.Equal(t, []string{"z0"}, f.titles(t, z))
}

func TestApplySortRejectsUnknownCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.category(t, "X")
	a := f.bookmark(t, x, "a")
	f.bookmark(t, x, "b")

	err := f.svc.ApplySort(ctx, models.SortPayload{BookmarksOrder: map[string][]string{
		"nope": {a},
	}})
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, []string{"a", "b"}, f.titles(t, x), "nothing is written")
}

func TestDatasetProjection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pub := f.category(t, "Public")
	priv, err := f.svc.CreateCategory(ctx, models.CategoryInput{Name: "Private", Visibility: models.VisibilityPrivate})
	require.NoError(t, err)

	f.bookmark(t, pub, "open")
	_, err = f.svc.CreateBookmark(ctx, models.BookmarkInput{CategoryID: pub, Title: "secret", URL: "u", IsPrivate: true})
	require.NoError(t, err)
	last, err := f.svc.CreateBookmark(ctx, models.BookmarkInput{CategoryID: priv.ID, Title: "hidden", URL: "u2"})
	require.NoError(t, err)

	full, err := f.svc.Dataset(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, models.SchemaVersion, full.Version)
	assert.Len(t, full.Categories, 2)
	assert.Len(t, full.Bookmarks, 3)
	assert.True(t, full.UpdatedAt.Equal(last.UpdatedAt))

	public, err := f.svc.Dataset(ctx, false)
	require.NoError(t, err)
	require.Len(t, public.Categories, 1)
	require.Len(t, public.Bookmarks, 1)
	assert.Equal(t, "open", public.Bookmarks[0].Title)
}

func TestEnsureCategoryReusesByName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first, err := f.svc.EnsureCategory(ctx, "Tools", "")
	require.NoError(t, err)
	again, err := f.svc.EnsureCategory(ctx, "Tools", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, []string{"Tools"}, f.categoryNames(t))
}

func TestRemoveDuplicateURLs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	x := f.category(t, "X")
	y := f.category(t, "Y")
	f.bookmark(t, x, "a")
	f.bookmark(t, x, "b")
	f.bookmark(t, y, "a")
	f.bookmark(t, y, "c")
	f.bookmark(t, y, "b")

	removed, err := f.svc.RemoveDuplicateURLs(ctx)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Equal(t, []string{"a", "b"}, f.titles(t, x))
	assert.Equal(t, []string{"c"}, f.titles(t, y))
}
