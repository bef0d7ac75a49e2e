package ui

import (
	"strings"

	"github.com/dastanaron/bookmarks/internal/dataset"
	"github.com/dastanaron/bookmarks/internal/models"
)

const lockGlyph = "🔒"

// Column is one category with the cards shown under it
type Column struct {
	Category models.Category
	Cards    []models.Bookmark
}

// BuildColumns lays the dataset out in category rank order, each column's cards in
// bookmark rank order. With a query only matching cards are kept; every column stays.
func BuildColumns(ds models.Dataset, query string) []Column {
	grouped := dataset.GroupBookmarks(ds.Bookmarks)
	categories := dataset.SortCategories(ds.Categories)

	columns := make([]Column, 0, len(categories))
	for _, c := range categories {
		col := Column{Category: c, Cards: []models.Bookmark{}}
		for _, b := range grouped[c.ID] {
			if Matches(b, query) {
				col.Cards = append(col.Cards, b)
			}
		}
		columns = append(columns, col)
	}
	return columns
}

// Matches reports whether the title, URL or description contains query, ignoring case
func Matches(b models.Bookmark, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	queryLower := strings.ToLower(query)
	return strings.Contains(strings.ToLower(b.Title), queryLower) ||
		strings.Contains(strings.ToLower(b.URL), queryLower) ||
		strings.Contains(strings.ToLower(b.Description), queryLower)
}

func columnTitle(c models.Category) string {
	if c.IsPrivate() {
		return lockGlyph + " " + c.Name
	}
	return c.Name
}

func cardTitle(b models.Bookmark, dragging string) string {
	title := b.Title
	if b.IsPrivate {
		title = lockGlyph + " " + title
	}
	if b.ID == dragging {
		title = "[yellow]» " + title + "[-]"
	}
	return title
}
