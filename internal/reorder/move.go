// Package reorder turns a drag gesture over bookmark cards into new category
// assignments and dense ranks, applies them optimistically to the dataset
// store and sends the new order to the backend.
package reorder

import (
	"errors"

	"github.com/dastanaron/bookmarks/internal/dataset"
	"github.com/dastanaron/bookmarks/internal/models"
)

// ErrUnknownBookmark is returned when a gesture names a bookmark that is not in the dataset
var ErrUnknownBookmark = errors.New("unknown bookmark")

// Move drops bookmark sourceID onto bookmark destID and returns the resulting
// dataset together with the order payload for every touched category.
// Dropping an item onto itself reports changed=false and returns ds untouched.
func Move(ds models.Dataset, sourceID, destID string) (models.Dataset, models.SortPayload, bool, error) {
	if sourceID == destID {
		return ds, models.SortPayload{}, false, nil
	}

	groups := dataset.GroupBookmarks(ds.Bookmarks)

	src, ok := findBookmark(ds.Bookmarks, sourceID)
	if !ok {
		return ds, models.SortPayload{}, false, ErrUnknownBookmark
	}
	dst, ok := findBookmark(ds.Bookmarks, destID)
	if !ok {
		return ds, models.SortPayload{}, false, ErrUnknownBookmark
	}

	srcList := groups[src.CategoryID]
	dstList := groups[dst.CategoryID]
	sIdx := indexOf(srcList, sourceID)
	dIdx := indexOf(dstList, destID)

	touched := []string{src.CategoryID}
	if src.CategoryID == dst.CategoryID {
		groups[src.CategoryID] = renumber(moveWithin(srcList, sIdx, dIdx))
	} else {
		moved := srcList[sIdx]
		moved.CategoryID = dst.CategoryID
		groups[src.CategoryID] = renumber(removeAt(srcList, sIdx))
		groups[dst.CategoryID] = renumber(insertAt(dstList, dIdx, moved))
		touched = append(touched, dst.CategoryID)
	}

	next := ds.Clone()
	next.Bookmarks = flatten(ds.Bookmarks, groups)

	payload := models.SortPayload{BookmarksOrder: make(map[string][]string, len(touched))}
	for _, categoryID := range touched {
		list := groups[categoryID]
		order := make([]string, 0, len(list))
		for _, b := range list {
			order = append(order, b.ID)
		}
		payload.BookmarksOrder[categoryID] = order
	}

	return next, payload, true, nil
}

func findBookmark(bookmarks []models.Bookmark, id string) (models.Bookmark, bool) {
	for _, b := range bookmarks {
		if b.ID == id {
			return b, true
		}
	}
	return models.Bookmark{}, false
}

func indexOf(list []models.Bookmark, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func removeAt(list []models.Bookmark, i int) []models.Bookmark {
	out := make([]models.Bookmark, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

func insertAt(list []models.Bookmark, i int, b models.Bookmark) []models.Bookmark {
	if i < 0 {
		i = 0
	}
	if i > len(list) {
		i = len(list)
	}
	out := make([]models.Bookmark, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, b)
	return append(out, list[i:]...)
}

// moveWithin removes the element at from and reinserts it at to, shifting the
// elements in between by one position.
func moveWithin(list []models.Bookmark, from, to int) []models.Bookmark {
	item := list[from]
	return insertAt(removeAt(list, from), to, item)
}

func renumber(list []models.Bookmark) []models.Bookmark {
	for i := range list {
		list[i].Order = i
	}
	return list
}

// flatten writes the partitions back as one collection, partitions in the order
// their category first appeared in the original collection.
func flatten(original []models.Bookmark, groups map[string][]models.Bookmark) []models.Bookmark {
	out := make([]models.Bookmark, 0, len(original))
	seen := make(map[string]bool, len(groups))
	for _, b := range original {
		if seen[b.CategoryID] {
			continue
		}
		seen[b.CategoryID] = true
		out = append(out, groups[b.CategoryID]...)
	}
	return out
}
