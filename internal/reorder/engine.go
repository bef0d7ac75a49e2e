package reorder

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dastanaron/bookmarks/internal/dataset"
	"github.com/dastanaron/bookmarks/internal/models"
)

// State of the drag gesture
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Persister sends a new bookmark order to the backend
type Persister interface {
	SaveOrder(ctx context.Context, payload models.SortPayload) error
}

// Engine tracks a single drag gesture at a time. A drop mutates the store
// synchronously and persists in the background; a failed persist is logged
// and neither rolled back nor retried, so the local view stands until the
// next full reload.
type Engine struct {
	ctx       context.Context
	store     *dataset.Store
	persister Persister
	log       zerolog.Logger

	mu     sync.Mutex
	state  State
	source string

	inflight sync.WaitGroup
}

// NewEngine creates an engine. ctx bounds every persistence request.
func NewEngine(ctx context.Context, store *dataset.Store, persister Persister, log zerolog.Logger) *Engine {
	return &Engine{
		ctx:       ctx,
		store:     store,
		persister: persister,
		log:       log.With().Str("component", "reorder").Logger(),
	}
}

// State returns the gesture state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// BeginDrag captures the dragged bookmark. A second call replaces the source.
func (e *Engine) BeginDrag(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id == "" {
		e.state, e.source = Idle, ""
		return
	}
	e.state, e.source = Dragging, id
}

// Dragging returns the captured source, if a gesture is active
func (e *Engine) Dragging() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source, e.state == Dragging
}

// Cancel aborts the gesture without any mutation
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state, e.source = Idle, ""
}

// Drop ends the gesture on destID. It reports whether the dataset changed.
// An empty destID, a drop onto the source itself or a drop without an active
// drag changes nothing and sends nothing.
func (e *Engine) Drop(destID string) (bool, error) {
	e.mu.Lock()
	source, active := e.source, e.state == Dragging
	e.state, e.source = Idle, ""
	e.mu.Unlock()

	if !active || destID == "" || destID == source {
		return false, nil
	}

	var payload models.SortPayload
	var err error
	// the move is computed and committed against the same dataset, so a
	// reload landing meanwhile is never overwritten by a stale copy
	changed := e.store.Update(func(ds models.Dataset) (models.Dataset, bool) {
		var next models.Dataset
		var moved bool
		next, payload, moved, err = Move(ds, source, destID)
		return next, err == nil && moved
	})
	if err != nil {
		if errors.Is(err, ErrUnknownBookmark) {
			e.log.Debug().Str("source", source).Str("dest", destID).Msg("drop on unknown bookmark ignored")
		}
		return false, err
	}
	if !changed {
		return false, nil
	}

	e.persist(payload)
	return true, nil
}

func (e *Engine) persist(payload models.SortPayload) {
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		if err := e.persister.SaveOrder(e.ctx, payload); err != nil {
			e.log.Warn().Err(err).Int("categories", len(payload.BookmarksOrder)).Msg("persisting bookmark order failed")
			return
		}
		e.log.Debug().Int("categories", len(payload.BookmarksOrder)).Msg("bookmark order persisted")
	}()
}

// Wait blocks until every persistence request started so far has returned
func (e *Engine) Wait() {
	e.inflight.Wait()
}
