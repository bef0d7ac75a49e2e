// Package dataset holds the client's copy of the dashboard and derives the
// per-category groupings the UI renders.
package dataset

import (
	"sort"
	"sync"

	"github.com/dastanaron/bookmarks/internal/models"
)

// Store holds one Dataset. It performs no validation and no I/O: whatever the
// backend sent is what it reports.
type Store struct {
	mu        sync.RWMutex
	ds        models.Dataset
	observers map[int]func(models.Dataset)
	nextObs   int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{observers: make(map[int]func(models.Dataset))}
}

// SetDataset replaces the state wholesale and notifies observers
func (s *Store) SetDataset(d models.Dataset) {
	s.Update(func(models.Dataset) (models.Dataset, bool) {
		return d, true
	})
}

// Update replaces the dataset with fn's result while holding the store, so no
// SetDataset can land between the read and the write. fn gets a copy and must
// not call back into the store. Observers run only when fn reports a change.
func (s *Store) Update(fn func(models.Dataset) (models.Dataset, bool)) bool {
	s.mu.Lock()
	next, changed := fn(s.ds.Clone())
	if !changed {
		s.mu.Unlock()
		return false
	}
	s.ds = next.Clone()
	snapshot := s.ds.Clone()
	observers := make([]func(models.Dataset), 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.mu.Unlock()

	for _, obs := range observers {
		obs(snapshot.Clone())
	}
	return true
}

// Snapshot returns a copy of the current dataset
func (s *Store) Snapshot() models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds.Clone()
}

// Subscribe registers fn to run after every SetDataset. The returned func removes it.
func (s *Store) Subscribe(fn func(models.Dataset)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Bookmark looks a bookmark up by id
func (s *Store) Bookmark(id string) (models.Bookmark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.ds.Bookmarks {
		if b.ID == id {
			return b, true
		}
	}
	return models.Bookmark{}, false
}

// CategoriesSorted returns the categories by Order ascending, ties kept in
// their original position.
func (s *Store) CategoriesSorted() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SortCategories(s.ds.Categories)
}

// BookmarksByCategory maps every category id to its bookmarks by Order ascending.
// Categories without bookmarks map to an empty list.
func (s *Store) BookmarksByCategory() map[string][]models.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := GroupBookmarks(s.ds.Bookmarks)
	for _, c := range s.ds.Categories {
		if _, ok := groups[c.ID]; !ok {
			groups[c.ID] = []models.Bookmark{}
		}
	}
	return groups
}

// SortCategories returns a stably sorted copy of categories
func SortCategories(categories []models.Category) []models.Category {
	out := append([]models.Category{}, categories...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// GroupBookmarks partitions bookmarks by category id, each partition stably
// sorted by Order.
func GroupBookmarks(bookmarks []models.Bookmark) map[string][]models.Bookmark {
	groups := make(map[string][]models.Bookmark)
	for _, b := range bookmarks {
		groups[b.CategoryID] = append(groups[b.CategoryID], b)
	}
	for id := range groups {
		list := groups[id]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Order < list[j].Order
		})
	}
	return groups
}
