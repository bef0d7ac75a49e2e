package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dastanaron/bookmarks/internal/models"
	"github.com/dastanaron/bookmarks/internal/repository"
)

// DashboardService provides business logic for categories and bookmarks.
// Every write keeps category ranks dense across the dashboard and bookmark
// ranks dense within each category.
type DashboardService struct {
	repo  repository.Repository
	now   func() time.Time
	newID func() string
}

// Option configures a DashboardService
type Option func(*DashboardService)

// WithClock replaces the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) { s.now = now }
}

// WithIDGenerator replaces the id source
func WithIDGenerator(gen func() string) Option {
	return func(s *DashboardService) { s.newID = gen }
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repo repository.Repository, opts ...Option) *DashboardService {
	s := &DashboardService{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dataset returns the full dashboard, or its public projection when full is false
func (s *DashboardService) Dataset(ctx context.Context, full bool) (models.Dataset, error) {
	categories, err := s.repo.Categories().List(ctx)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to list categories: %w", err)
	}
	bookmarks, err := s.repo.Bookmarks().List(ctx)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	ds := models.Dataset{
		Version:    models.SchemaVersion,
		Categories: categories,
		Bookmarks:  bookmarks,
	}
	if !full {
		ds = ds.Public()
	}
	for _, b := range ds.Bookmarks {
		if b.UpdatedAt.After(ds.UpdatedAt) {
			ds.UpdatedAt = b.UpdatedAt
		}
	}
	return ds, nil
}

// CreateCategory appends a category after the existing ones
func (s *DashboardService) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	c := &models.Category{
		ID:         s.newID(),
		Name:       strings.TrimSpace(in.Name),
		Visibility: in.Visibility,
	}
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		n, err := tx.Categories().Count(ctx)
		if err != nil {
			return err
		}
		c.Order = n
		return tx.Categories().Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory renames a category or changes its visibility; its rank is kept
func (s *DashboardService) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var out *models.Category
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		c, err := tx.Categories().GetByID(ctx, id)
		if err != nil {
			return err
		}
		c.Name = strings.TrimSpace(in.Name)
		c.Visibility = in.Visibility
		if err := tx.Categories().Update(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// DeleteCategory deletes a category with its bookmarks and closes the rank gap
func (s *DashboardService) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if _, err := tx.Categories().GetByID(ctx, id); err != nil {
			return err
		}
		if err := tx.Bookmarks().DeleteByCategory(ctx, id); err != nil {
			return err
		}
		if err := tx.Categories().Delete(ctx, id); err != nil {
			return err
		}
		return densifyCategories(ctx, tx)
	})
}

// CreateBookmark appends a bookmark at the end of its category
func (s *DashboardService) CreateBookmark(ctx context.Context, in models.BookmarkInput) (*models.Bookmark, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	b := &models.Bookmark{ID: s.newID(), CreatedAt: now, UpdatedAt: now}
	applyInput(b, in)

	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := requireCategory(ctx, tx, b.CategoryID); err != nil {
			return err
		}
		n, err := tx.Bookmarks().CountInCategory(ctx, b.CategoryID)
		if err != nil {
			return err
		}
		b.Order = n
		return tx.Bookmarks().Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBookmark edits a bookmark. Moving it to another category appends it
// there and closes the gap it left behind.
func (s *DashboardService) UpdateBookmark(ctx context.Context, id string, in models.BookmarkInput) (*models.Bookmark, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var out *models.Bookmark
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		b, err := tx.Bookmarks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		source := b.CategoryID
		applyInput(b, in)
		b.UpdatedAt = s.now()

		moved := b.CategoryID != source
		if moved {
			if err := requireCategory(ctx, tx, b.CategoryID); err != nil {
				return err
			}
			n, err := tx.Bookmarks().CountInCategory(ctx, b.CategoryID)
			if err != nil {
				return err
			}
			b.Order = n
		}
		if err := tx.Bookmarks().Update(ctx, b); err != nil {
			return err
		}
		if moved {
			if err := s.densifyBookmarks(ctx, tx, source); err != nil {
				return err
			}
		}
		out = b
		return nil
	})
	return out, err
}

// DeleteBookmark deletes a bookmark and closes the rank gap in its category
func (s *DashboardService) DeleteBookmark(ctx context.Context, id string) error {
	return s.repo.WithTx(ctx, func(tx repository.Repository) error {
		b, err := tx.Bookmarks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Bookmarks().Delete(ctx, id); err != nil {
			return err
		}
		return s.densifyBookmarks(ctx, tx, b.CategoryID)
	})
}

type position struct {
	category string
	rank     int
}

// ApplySort stores the bookmark order of every category named in the payload.
// Listed bookmarks take ranks in the given order, bookmarks of a listed category
// missing from its list follow in their previous order, and categories that
// lost bookmarks are renumbered. Unknown bookmark ids are skipped; a bookmark
// listed twice keeps its first position. Categories absent from the payload
// are left alone.
func (s *DashboardService) ApplySort(ctx context.Context, payload models.SortPayload) error {
	categoryIDs := make([]string, 0, len(payload.BookmarksOrder))
	for id := range payload.BookmarksOrder {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Strings(categoryIDs)

	return s.repo.WithTx(ctx, func(tx repository.Repository) error {
		all, err := tx.Bookmarks().List(ctx)
		if err != nil {
			return err
		}
		byID := make(map[string]models.Bookmark, len(all))
		for _, b := range all {
			byID[b.ID] = b
		}

		touched := make(map[string]bool)
		assigned := make(map[string]position)
		for _, categoryID := range categoryIDs {
			if err := requireCategory(ctx, tx, categoryID); err != nil {
				var verr *models.ValidationError
				if errors.As(err, &verr) {
					verr.Field = "bookmarksOrder"
				}
				return err
			}
			touched[categoryID] = true

			rank := 0
			for _, id := range payload.BookmarksOrder[categoryID] {
				b, ok := byID[id]
				if !ok {
					continue
				}
				if _, dup := assigned[id]; dup {
					continue
				}
				touched[b.CategoryID] = true
				assigned[id] = position{category: categoryID, rank: rank}
				rank++
			}
		}

		groups := make(map[string][]models.Bookmark)
		for _, b := range all {
			category := b.CategoryID
			if p, ok := assigned[b.ID]; ok {
				category = p.category
			}
			if touched[category] {
				groups[category] = append(groups[category], b)
			}
		}

		now := s.now()
		for category, list := range groups {
			sort.SliceStable(list, func(i, j int) bool {
				// an assigned bookmark is always assigned to the group it sits in
				pi, iok := assigned[list[i].ID]
				pj, jok := assigned[list[j].ID]
				switch {
				case iok && jok:
					return pi.rank < pj.rank
				case iok != jok:
					return iok
				default:
					return list[i].Order < list[j].Order
				}
			})
			for i, b := range list {
				if b.CategoryID == category && b.Order == i {
					continue
				}
				if err := tx.Bookmarks().SetPosition(ctx, b.ID, category, i, now); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// EnsureCategory returns the category named name, creating it when missing
func (s *DashboardService) EnsureCategory(ctx context.Context, name string, visibility models.Visibility) (*models.Category, error) {
	c, err := s.repo.Categories().GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}
	return s.CreateCategory(ctx, models.CategoryInput{Name: name, Visibility: visibility})
}

// RemoveDuplicateURLs deletes every bookmark whose URL already appeared earlier
// in dashboard order (category rank, then bookmark rank) and returns the removed ones.
func (s *DashboardService) RemoveDuplicateURLs(ctx context.Context) ([]models.Bookmark, error) {
	var removed []models.Bookmark
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		categories, err := tx.Categories().List(ctx)
		if err != nil {
			return err
		}

		seen := make(map[string]bool)
		for _, c := range categories {
			bookmarks, err := tx.Bookmarks().ListByCategory(ctx, c.ID)
			if err != nil {
				return err
			}
			changed := false
			for _, b := range bookmarks {
				if !seen[b.URL] {
					seen[b.URL] = true
					continue
				}
				if err := tx.Bookmarks().Delete(ctx, b.ID); err != nil {
					return err
				}
				removed = append(removed, b)
				changed = true
			}
			if changed {
				if err := s.densifyBookmarks(ctx, tx, c.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func applyInput(b *models.Bookmark, in models.BookmarkInput) {
	b.CategoryID = strings.TrimSpace(in.CategoryID)
	b.Title = strings.TrimSpace(in.Title)
	b.URL = strings.TrimSpace(in.URL)
	b.Description = in.Description
	b.IconURL = in.IconURL
	b.IsPrivate = in.IsPrivate
}

func requireCategory(ctx context.Context, tx repository.Repository, id string) error {
	_, err := tx.Categories().GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return &models.ValidationError{Field: "categoryId", Message: fmt.Sprintf("unknown category %q", id)}
	}
	return err
}

func densifyCategories(ctx context.Context, tx repository.Repository) error {
	categories, err := tx.Categories().List(ctx)
	if err != nil {
		return err
	}
	for i, c := range categories {
		if c.Order == i {
			continue
		}
		if err := tx.Categories().SetOrder(ctx, c.ID, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *DashboardService) densifyBookmarks(ctx context.Context, tx repository.Repository, categoryID string) error {
	bookmarks, err := tx.Bookmarks().ListByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	now := s.now()
	for i, b := range bookmarks {
		if b.Order == i {
			continue
		}
		if err := tx.Bookmarks().SetPosition(ctx, b.ID, categoryID, i, now); err != nil {
			return err
		}
	}
	return nil
}
