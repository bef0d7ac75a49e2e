// Package visibility decides which projection of the dashboard the client may
// see and keeps the dataset store in line with that decision.
package visibility

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dastanaron/bookmarks/internal/dataset"
	"github.com/dastanaron/bookmarks/internal/models"
	"github.com/dastanaron/bookmarks/internal/session"
)

// Backend is the part of the dashboard API the resolver needs. A full read
// without a valid session must fail with an error matching session.ErrUnauthorized.
type Backend interface {
	FetchDataset(ctx context.Context, full bool) (models.Dataset, error)
	Login(ctx context.Context, password string) (string, error)
	Logout(ctx context.Context) error
}

// Resolver owns the transitions of a session and reloads the store after each one.
//
// Every transition starts a new generation. A load remembers the generation it
// started in and its result is dropped if a transition happened meanwhile, so
// a slow privileged read can never land after a logout. Store observers must
// not call back into the resolver.
type Resolver struct {
	backend Backend
	session *session.Session
	store   *dataset.Store
	log     zerolog.Logger

	// commitMu orders transitions against commits to the store
	commitMu   sync.Mutex
	generation uint64

	mu        sync.Mutex
	effective session.Capability
}

// NewResolver creates a resolver. sess must be the same session the backend client sends.
func NewResolver(backend Backend, sess *session.Session, store *dataset.Store, log zerolog.Logger) *Resolver {
	return &Resolver{
		backend: backend,
		session: sess,
		store:   store,
		log:     log.With().Str("component", "visibility").Logger(),
	}
}

// Session returns the session the resolver drives
func (r *Resolver) Session() *session.Session {
	return r.session
}

// Effective is the capability the currently stored dataset was loaded with
func (r *Resolver) Effective() session.Capability {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.effective
}

func (r *Resolver) setEffective(c session.Capability) {
	r.mu.Lock()
	r.effective = c
	r.mu.Unlock()
}

// transition applies fn to the session and starts a new generation
func (r *Resolver) transition(fn func()) uint64 {
	r.commitMu.Lock()
	defer r.commitMu.Unlock()
	fn()
	r.generation++
	return r.generation
}

// current returns the generation and the session capability as one reading
func (r *Resolver) current() (uint64, session.Capability) {
	r.commitMu.Lock()
	defer r.commitMu.Unlock()
	return r.generation, r.session.Capability()
}

// commit stores ds unless a transition happened since gen. A full dataset is
// only stored while the session is still elevated.
func (r *Resolver) commit(gen uint64, ds models.Dataset, capability session.Capability) bool {
	r.commitMu.Lock()
	defer r.commitMu.Unlock()
	if gen != r.generation {
		r.log.Debug().Stringer("capability", capability).Msg("dropping dataset loaded before a session change")
		return false
	}
	if capability == session.Elevated && r.session.Capability() != session.Elevated {
		r.log.Debug().Msg("dropping full dataset for an anonymous session")
		return false
	}
	r.store.SetDataset(ds)
	r.setEffective(capability)
	return true
}

// ProbeCapability issues a privileged read; success means the session is elevated,
// any failure means anonymous.
func (r *Resolver) ProbeCapability(ctx context.Context) session.Capability {
	_, capability, _ := r.probe(ctx)
	return capability
}

// probe also returns the dataset of a successful read and the generation it opened
func (r *Resolver) probe(ctx context.Context) (models.Dataset, session.Capability, uint64) {
	ds, err := r.backend.FetchDataset(ctx, true)
	if err != nil && !errors.Is(err, session.ErrUnauthorized) {
		r.log.Warn().Err(err).Msg("capability probe failed")
	}
	var capability session.Capability
	gen := r.transition(func() {
		capability = r.session.ApplyProbe(err == nil)
	})
	r.log.Debug().Stringer("capability", capability).Msg("capability probed")
	return ds, capability, gen
}

// Start runs the cold-start sequence: probe, then load the matching projection.
// An elevated probe already read the full dataset, which is stored as is.
func (r *Resolver) Start(ctx context.Context) (session.Capability, error) {
	ds, capability, gen := r.probe(ctx)
	if capability == session.Elevated {
		if r.commit(gen, ds, session.Elevated) {
			return session.Elevated, nil
		}
		return r.Effective(), nil
	}
	return r.load(ctx, gen, false)
}

// Load fetches the full projection when wantFull is set, the public one otherwise,
// and replaces the store's dataset. A full read rejected for lack of authorization
// falls back to the public projection and reports Anonymous. On any other failure
// the store keeps its previous dataset. A result overtaken by a login, logout or
// probe is dropped without error.
func (r *Resolver) Load(ctx context.Context, wantFull bool) (session.Capability, error) {
	gen, _ := r.current()
	return r.load(ctx, gen, wantFull)
}

func (r *Resolver) load(ctx context.Context, gen uint64, wantFull bool) (session.Capability, error) {
	if wantFull {
		ds, err := r.backend.FetchDataset(ctx, true)
		if err == nil {
			if r.commit(gen, ds, session.Elevated) {
				return session.Elevated, nil
			}
			return r.Effective(), nil
		}
		if !errors.Is(err, session.ErrUnauthorized) {
			return r.Effective(), err
		}
		r.log.Warn().Err(err).Msg("full dataset rejected, falling back to public")
	}

	ds, err := r.backend.FetchDataset(ctx, false)
	if err != nil {
		return r.Effective(), err
	}
	if r.commit(gen, ds.Public(), session.Anonymous) {
		return session.Anonymous, nil
	}
	return r.Effective(), nil
}

// Reload loads the projection matching the session's last known capability
func (r *Resolver) Reload(ctx context.Context) (session.Capability, error) {
	gen, capability := r.current()
	return r.load(ctx, gen, capability == session.Elevated)
}

// Login elevates the session once the backend accepts the password, then loads
// the full dataset. An empty password is rejected without a request.
func (r *Resolver) Login(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return &models.ValidationError{Field: "password", Message: "must not be empty"}
	}

	token, err := r.backend.Login(ctx, password)
	if err != nil {
		return err
	}
	gen := r.transition(func() { r.session.Elevate(token) })
	r.log.Info().Msg("logged in")

	_, err = r.load(ctx, gen, true)
	return err
}

// Logout revokes the session whatever the backend answers and reloads the public
// projection. Privileged items are stripped from the store at once, so they are
// gone even if that reload fails or a privileged read is still in flight.
func (r *Resolver) Logout(ctx context.Context) error {
	if err := r.backend.Logout(ctx); err != nil {
		r.log.Warn().Err(err).Msg("backend logout failed")
	}
	gen := r.transition(func() {
		r.session.Revoke()
		r.store.Update(func(ds models.Dataset) (models.Dataset, bool) {
			return ds.Public(), true
		})
		r.setEffective(session.Anonymous)
	})
	r.log.Info().Msg("logged out")

	_, err := r.load(ctx, gen, false)
	return err
}
