package models

import (
	"sort"
	"time"
)

// SchemaVersion is the Dataset.Version value produced by the backend.
const SchemaVersion = 1

// Visibility controls whether a category is shown to anonymous callers
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is empty (public) or one of the known values
func (v Visibility) Valid() bool {
	switch v {
	case "", VisibilityPublic, VisibilityPrivate:
		return true
	}
	return false
}

// Category groups bookmarks. Order is a dense zero-based rank across all categories.
type Category struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Order      int        `json:"order"`
	Visibility Visibility `json:"visibility,omitempty"`
}

// IsPrivate reports whether the category is hidden from anonymous callers
func (c Category) IsPrivate() bool {
	return c.Visibility == VisibilityPrivate
}

// Bookmark represents a bookmark card. Order is a dense zero-based rank within its category.
type Bookmark struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"categoryId"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	IconURL     string    `json:"iconUrl,omitempty"`
	IsPrivate   bool      `json:"isPrivate,omitempty"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Dataset is the whole dashboard as served by the backend.
// The order of the slices carries no meaning; each entity's Order field does.
type Dataset struct {
	Version    int        `json:"version"`
	Categories []Category `json:"categories"`
	Bookmarks  []Bookmark `json:"bookmarks"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy of the dataset
func (d Dataset) Clone() Dataset {
	out := d
	if d.Categories != nil {
		out.Categories = append([]Category(nil), d.Categories...)
	}
	if d.Bookmarks != nil {
		out.Bookmarks = append([]Bookmark(nil), d.Bookmarks...)
	}
	return out
}

// Public returns the projection visible to an anonymous caller: private categories,
// private bookmarks and bookmarks of hidden categories are removed, and the ranks
// of what is left are renumbered densely.
func (d Dataset) Public() Dataset {
	out := Dataset{
		Version:    d.Version,
		Categories: make([]Category, 0, len(d.Categories)),
		Bookmarks:  make([]Bookmark, 0, len(d.Bookmarks)),
		UpdatedAt:  d.UpdatedAt,
	}

	visible := make(map[string]bool, len(d.Categories))
	for _, c := range d.Categories {
		if c.IsPrivate() {
			continue
		}
		visible[c.ID] = true
		out.Categories = append(out.Categories, c)
	}

	for _, b := range d.Bookmarks {
		if b.IsPrivate || !visible[b.CategoryID] {
			continue
		}
		out.Bookmarks = append(out.Bookmarks, b)
	}

	rankCategories(out.Categories)
	rankBookmarks(out.Bookmarks)
	return out
}

// rankOrder returns the indexes of n items stably sorted by order(i)
func rankOrder(n int, order func(int) int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return order(idx[a]) < order(idx[b])
	})
	return idx
}

func rankCategories(categories []Category) {
	for rank, i := range rankOrder(len(categories), func(i int) int { return categories[i].Order }) {
		categories[i].Order = rank
	}
}

// rankBookmarks renumbers every category's bookmarks from zero, keeping their relative order
func rankBookmarks(bookmarks []Bookmark) {
	next := make(map[string]int)
	for _, i := range rankOrder(len(bookmarks), func(i int) int { return bookmarks[i].Order }) {
		b := &bookmarks[i]
		b.Order = next[b.CategoryID]
		next[b.CategoryID]++
	}
}

// SortPayload is the body of an order-persistence request: category id to the
// bookmark ids of that category in their new order.
type SortPayload struct {
	BookmarksOrder map[string][]string `json:"bookmarksOrder"`
}
