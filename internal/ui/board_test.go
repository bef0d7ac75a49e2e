package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dastanaron/bookmarks/internal/models"
)

func boardFixture() models.Dataset {
	return models.Dataset{
		Categories: []models.Category{
			{ID: "second", Name: "Second", Order: 1},
			{ID: "first", Name: "First", Order: 0, Visibility: models.VisibilityPrivate},
		},
		Bookmarks: []models.Bookmark{
			{ID: "b", CategoryID: "first", Title: "Go Packages", URL: "https://pkg.go.dev", Order: 1},
			{ID: "a", CategoryID: "first", Title: "Go", URL: "https://go.dev", Order: 0, IsPrivate: true},
			{ID: "c", CategoryID: "second", Title: "News", URL: "https://news", Description: "daily GOSSIP", Order: 0},
		},
	}
}

func TestBuildColumnsOrder(t *testing.T) {
	cols := BuildColumns(boardFixture(), "")
	require.Len(t, cols, 2)
	assert.Equal(t, "first", cols[0].Category.ID)
	require.Len(t, cols[0].Cards, 2)
	assert.Equal(t, "a", cols[0].Cards[0].ID)
	assert.Equal(t, "b", cols[0].Cards[1].ID)
}

func TestBuildColumnsFilterKeepsColumns(t *testing.T) {
	cols := BuildColumns(boardFixture(), "pkg")
	require.Len(t, cols, 2)
	require.Len(t, cols[0].Cards, 1)
	assert.Equal(t, "b", cols[0].Cards[0].ID)
	assert.Empty(t, cols[1].Cards)
	assert.NotNil(t, cols[1].Cards)
}

func TestMatches(t *testing.T) {
	b := boardFixture().Bookmarks[2]
	assert.True(t, Matches(b, ""))
	assert.True(t, Matches(b, "  "))
	assert.True(t, Matches(b, "gossip"))
	assert.True(t, Matches(b, "NEWS"))
	assert.False(t, Matches(b, "go.dev"))
}

func TestTitles(t *testing.T) {
	ds := boardFixture()
	assert.Equal(t, lockGlyph+" First", columnTitle(ds.Categories[1]))
	assert.Equal(t, "Second", columnTitle(ds.Categories[0]))
	assert.Equal(t, lockGlyph+" Go", cardTitle(ds.Bookmarks[1], ""))
	assert.Contains(t, cardTitle(ds.Bookmarks[0], "b"), "» Go Packages")
}
