package reorder

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dastanaron/bookmarks/internal/dataset"
	"github.com/dastanaron/bookmarks/internal/models"
)

func bm(id, category string, order int) models.Bookmark {
	return models.Bookmark{ID: id, CategoryID: category, Title: id, URL: "https://" + id, Order: order}
}

func twoCategories() models.Dataset {
	return models.Dataset{
		Version: 1,
		Categories: []models.Category{
			{ID: "X", Name: "X", Order: 0},
			{ID: "Y", Name: "Y", Order: 1},
		},
		Bookmarks: []models.Bookmark{
			bm("Y1", "Y", 1),
			bm("X0", "X", 0),
			bm("B", "X", 1),
			bm("Y0", "Y", 0),
			bm("X2", "X", 2),
		},
	}
}

func fourInOne() models.Dataset {
	return models.Dataset{
		Version:    1,
		Categories: []models.Category{{ID: "c", Name: "c"}},
		Bookmarks: []models.Bookmark{
			bm("A", "c", 0), bm("B", "c", 1), bm("C", "c", 2), bm("D", "c", 3),
		},
	}
}

func order(ds models.Dataset, category string) []string {
	var out []string
	for _, b := range dataset.GroupBookmarks(ds.Bookmarks)[category] {
		out = append(out, b.ID)
	}
	return out
}

func requireDense(t *testing.T, ds models.Dataset) {
	t.Helper()
	for category, list := range dataset.GroupBookmarks(ds.Bookmarks) {
		ranks := make([]int, 0, len(list))
		for _, b := range list {
			ranks = append(ranks, b.Order)
		}
		sort.Ints(ranks)
		for i, r := range ranks {
			require.Equal(t, i, r, "category %s ranks %v", category, ranks)
		}
	}
}

func TestMoveSameCategoryForward(t *testing.T) {
	next, payload, changed, err := Move(fourInOne(), "A", "C")
	require.NoError(t, err)
	require.True(t, changed)

	assert.Equal(t, []string{"B", "C", "A", "D"}, order(next, "c"))
	assert.Equal(t, map[string][]string{"c": {"B", "C", "A", "D"}}, payload.BookmarksOrder)
	requireDense(t, next)
}

func TestMoveSameCategoryBackward(t *testing.T) {
	next, _, changed, err := Move(fourInOne(), "D", "B")
	require.NoError(t, err)
	require.True(t, changed)

	assert.Equal(t, []string{"A", "D", "B", "C"}, order(next, "c"))
	requireDense(t, next)
}

func TestMoveCrossCategory(t *testing.T) {
	next, payload, changed, err := Move(twoCategories(), "B", "Y0")
	require.NoError(t, err)
	require.True(t, changed)

	assert.Equal(t, []string{"X0", "X2"}, order(next, "X"))
	assert.Equal(t, []string{"B", "Y0", "Y1"}, order(next, "Y"))

	for _, b := range next.Bookmarks {
		if b.ID == "B" {
			assert.Equal(t, "Y", b.CategoryID)
			assert.Equal(t, 0, b.Order)
		}
	}
	assert.Equal(t, map[string][]string{
		"X": {"X0", "X2"},
		"Y": {"B", "Y0", "Y1"},
	}, payload.BookmarksOrder)
	requireDense(t, next)
}

func TestMoveCrossCategoryEmptiesSource(t *testing.T) {
	ds := models.Dataset{
		Categories: []models.Category{{ID: "X"}, {ID: "Y"}},
		Bookmarks:  []models.Bookmark{bm("only", "X", 0), bm("y", "Y", 0)},
	}
	next, payload, _, err := Move(ds, "only", "y")
	require.NoError(t, err)

	assert.Empty(t, order(next, "X"))
	assert.Equal(t, []string{"only", "y"}, order(next, "Y"))
	assert.Equal(t, []string{}, payload.BookmarksOrder["X"])
	assert.Len(t, next.Bookmarks, 2)
}

func TestMoveOntoSelfIsNoop(t *testing.T) {
	ds := twoCategories()
	before, err := json.Marshal(ds)
	require.NoError(t, err)

	next, payload, changed, err := Move(ds, "B", "B")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Nil(t, payload.BookmarksOrder)

	after, err := json.Marshal(next)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestMoveUnknownBookmark(t *testing.T) {
	_, _, _, err := Move(twoCategories(), "B", "missing")
	assert.ErrorIs(t, err, ErrUnknownBookmark)

	_, _, _, err = Move(twoCategories(), "missing", "B")
	assert.ErrorIs(t, err, ErrUnknownBookmark)
}

func TestMoveDoesNotMutateInput(t *testing.T) {
	ds := fourInOne()
	_, _, _, err := Move(ds, "A", "D")
	require.NoError(t, err)
	assert.Equal(t, fourInOne(), ds)
}

func TestMoveKeepsDensityAcrossSequences(t *testing.T) {
	ds := twoCategories()
	moves := [][2]string{{"X0", "Y1"}, {"Y1", "X2"}, {"B", "X0"}, {"X2", "Y0"}, {"Y0", "Y1"}}
	for _, m := range moves {
		next, _, _, err := Move(ds, m[0], m[1])
		require.NoError(t, err)
		requireDense(t, next)
		require.Len(t, next.Bookmarks, len(ds.Bookmarks))
		ds = next
	}
}
