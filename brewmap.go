// Package brewmap curates a local-first map of craft-beer venues. It owns
// two collections in one identity space: the committed collection, persisted
// and authoritative, and the transient found-set staged by discovery
// searches. All mutations go through the pure operations in pkg/reconcile;
// this package adds state ownership, persistence and the discovery gateway
// wiring on top.
package brewmap

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brewmap/brewmap/internal/discovery"
	"github.com/brewmap/brewmap/internal/embedded"
	"github.com/brewmap/brewmap/internal/store"
	"github.com/brewmap/brewmap/pkg/errors"
	"github.com/brewmap/brewmap/pkg/kml"
	"github.com/brewmap/brewmap/pkg/reconcile"
	"github.com/brewmap/brewmap/pkg/venues"
)

// Brewmap manages the venue collections and is the only mutation surface
// over them. Implementations are safe for concurrent use; operations on the
// collections are serialized, so there is never a partial-update window.
type Brewmap interface {
	// Committed returns a copy of the committed collection.
	Committed() venues.Venues

	// Found returns a copy of the current found-set.
	Found() venues.Venues

	// Add validates and appends a new venue to the committed collection.
	// The returned venue carries the generated id.
	Add(ctx context.Context, v venues.Venue) (venues.Venue, error)

	// Edit overlays a patch onto the record with the given id, wherever it
	// currently lives (committed collection or found-set).
	Edit(ctx context.Context, id string, patch reconcile.Patch) error

	// Remove deletes a committed venue permanently.
	Remove(ctx context.Context, id string) error

	// ImportKML merges a KML document into the committed collection and
	// reports how many records were added.
	ImportKML(ctx context.Context, data []byte) (int, error)

	// ExportKML serializes the committed collection, returning the document
	// and its conventional filename.
	ExportKML() ([]byte, string, error)

	// Discover runs an AI search and stages the deduplicated candidates as
	// the new found-set. A result superseded by a later search is discarded.
	Discover(ctx context.Context, query string, origin *venues.Coordinates) (*discovery.Result, error)

	// Promote moves a found venue into the committed collection. It reports
	// whether anything moved; promoting an unknown id is a no-op.
	Promote(ctx context.Context, id string) (bool, error)

	// DiscardFound drops a venue from the found-set, reporting whether it
	// was present.
	DiscardFound(id string) bool

	// CheckHealth asks the discovery gateway whether the venue is still
	// operating and records the answer on the record.
	CheckHealth(ctx context.Context, id string) (venues.AliveStatus, error)

	// Checking reports whether a health check is in flight for the id.
	Checking(id string) bool

	// OnChange registers a callback invoked after every collection change.
	OnChange(ChangeHook)

	// Close releases the store handle.
	Close() error
}

// ChangeHook observes collection state after a mutation. Hooks receive
// copies and run outside the state lock.
type ChangeHook func(committed, found venues.Venues)

type brewmap struct {
	mu        sync.Mutex
	committed venues.Venues
	found     venues.Venues

	// searchSeq fences discovery results: a result is applied only when no
	// later search has started since its request was issued.
	searchSeq uint64

	// inflight marks ids with a health check in progress so the caller can
	// disable re-entry per id. Different ids may be checked concurrently.
	inflight map[string]struct{}

	store   store.Store
	gateway discovery.Gateway
	logger  *zerolog.Logger
	hooks   []ChangeHook

	config *config
}

// New creates a Brewmap, loads the committed collection from the configured
// store and silently merges the bootstrap catalog. Bootstrap failures are
// never fatal; the collection stays as loaded from persistence.
func New(ctx context.Context, opts ...Option) (Brewmap, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	b := &brewmap{
		inflight: make(map[string]struct{}),
		store:    cfg.store,
		gateway:  cfg.gateway,
		logger:   cfg.logger,
		config:   cfg,
	}

	if b.store != nil {
		loaded, err := b.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		b.committed = loaded
	}

	b.bootstrap(ctx)

	return b, nil
}

// bootstrap merges the default catalog into the committed collection. Name
// collisions keep the persisted record, so repeated startups add nothing.
func (b *brewmap) bootstrap(ctx context.Context) {
	if b.config.skipBootstrap {
		return
	}
	data := b.config.bootstrapKML
	if data == nil {
		data = embedded.DefaultKML()
	}
	if len(data) == 0 {
		return
	}

	imported, err := kml.Parse(data)
	if err != nil {
		b.logger.Debug().Err(err).Msg("bootstrap catalog unreadable, skipping")
		return
	}

	merged, added := reconcile.MergeImported(b.committed, imported)
	if added == 0 {
		return
	}
	b.committed = merged
	b.logger.Info().Int("added", added).Msg("bootstrap catalog merged")
	b.persistLocked(ctx)
}

// Committed implements Brewmap.
func (b *brewmap) Committed() venues.Venues {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committed.Copy()
}

// Found implements Brewmap.
func (b *brewmap) Found() venues.Venues {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.found.Copy()
}

// Add implements Brewmap.
func (b *brewmap) Add(ctx context.Context, v venues.Venue) (venues.Venue, error) {
	if v.ID == "" {
		v.ID = venues.NewID()
	}
	if v.Category == "" {
		v.Category = venues.CategoryCommon
	}
	if v.AliveStatus == "" {
		v.AliveStatus = venues.StatusUnknown
	}
	if err := v.Validate(); err != nil {
		return venues.Venue{}, err
	}

	b.mu.Lock()
	if b.committed.HasName(v.Name) {
		b.mu.Unlock()
		return venues.Venue{}, errors.ErrAlreadyExists
	}
	b.committed = append(b.committed.Copy(), v)
	b.persistLocked(ctx)
	b.mu.Unlock()

	b.notify()
	return v, nil
}

// Edit implements Brewmap. The target collection is chosen by where the id
// currently lives.
func (b *brewmap) Edit(ctx context.Context, id string, patch reconcile.Patch) error {
	b.mu.Lock()

	if b.committed.FindByID(id) != nil {
		edited, err := reconcile.ApplyEdit(b.committed, id, patch)
		if err != nil {
			b.mu.Unlock()
			return err
		}
		b.committed = edited
		b.persistLocked(ctx)
		b.mu.Unlock()
		b.notify()
		return nil
	}

	if b.found.FindByID(id) != nil {
		edited, err := reconcile.ApplyEdit(b.found, id, patch)
		if err != nil {
			b.mu.Unlock()
			return err
		}
		b.found = edited
		b.mu.Unlock()
		b.notify()
		return nil
	}

	b.mu.Unlock()
	return errors.NewNotFoundError("venue", id)
}

// Remove implements Brewmap.
func (b *brewmap) Remove(ctx context.Context, id string) error {
	b.mu.Lock()
	idx := b.committed.IndexByID(id)
	if idx < 0 {
		b.mu.Unlock()
		return errors.NewNotFoundError("venue", id)
	}

	next := make(venues.Venues, 0, len(b.committed)-1)
	next = append(next, b.committed[:idx]...)
	next = append(next, b.committed[idx+1:]...)
	b.committed = next
	b.persistLocked(ctx)
	b.mu.Unlock()

	b.notify()
	return nil
}

// ImportKML implements Brewmap.
func (b *brewmap) ImportKML(ctx context.Context, data []byte) (int, error) {
	imported, err := kml.Parse(data)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	merged, added := reconcile.MergeImported(b.committed, imported)
	if added > 0 {
		b.committed = merged
		b.persistLocked(ctx)
	}
	b.mu.Unlock()

	if added > 0 {
		b.notify()
	}
	b.logger.Info().
		Int("parsed", len(imported)).
		Int("added", added).
		Msg("KML import complete")
	return added, nil
}

// ExportKML implements Brewmap.
func (b *brewmap) ExportKML() ([]byte, string, error) {
	committed := b.Committed()
	data, err := kml.Serialize(committed)
	if err != nil {
		return nil, "", err
	}
	return data, kml.ExportFilename(len(committed), time.Now()), nil
}

// Discover implements Brewmap. Each search takes a fresh sequence number;
// when the gateway answers, the result is staged only if no later search has
// started. A stale result is returned to the caller for display but its
// candidates never touch the found-set.
func (b *brewmap) Discover(ctx context.Context, query string, origin *venues.Coordinates) (*discovery.Result, error) {
	if b.gateway == nil {
		return nil, &errors.ConfigError{Component: "discovery", Message: "no discovery gateway configured"}
	}

	b.mu.Lock()
	b.searchSeq++
	seq := b.searchSeq
	b.mu.Unlock()

	result, err := b.gateway.Search(ctx, query, origin)
	if err != nil {
		// Gateway failures degrade to an empty result with an advisory;
		// they are never fatal to the caller.
		b.logger.Warn().Err(err).Str("query", query).Msg("discovery search failed")
		return &discovery.Result{Summary: "search unavailable: " + err.Error()}, nil
	}

	b.mu.Lock()
	if seq != b.searchSeq {
		b.mu.Unlock()
		b.logger.Info().Str("query", query).Msg("discarding superseded search result")
		return &discovery.Result{Summary: result.Summary, Sources: result.Sources}, nil
	}
	b.found = reconcile.StageDiscovered(b.committed, result.Candidates)
	staged := b.found.Copy()
	b.mu.Unlock()

	b.notify()
	result.Candidates = staged
	return result, nil
}

// Promote implements Brewmap.
func (b *brewmap) Promote(ctx context.Context, id string) (bool, error) {
	b.mu.Lock()
	existing, staged := reconcile.Promote(b.committed, b.found, id)
	moved := len(staged) != len(b.found)
	if moved {
		b.committed = existing
		b.found = staged
		b.persistLocked(ctx)
	}
	b.mu.Unlock()

	if moved {
		b.notify()
	}
	return moved, nil
}

// DiscardFound implements Brewmap.
func (b *brewmap) DiscardFound(id string) bool {
	b.mu.Lock()
	next := reconcile.Discard(b.found, id)
	dropped := len(next) != len(b.found)
	b.found = next
	b.mu.Unlock()

	if dropped {
		b.notify()
	}
	return dropped
}

// CheckHealth implements Brewmap. One check per id at a time; different ids
// may be checked concurrently since each writes only its own record.
func (b *brewmap) CheckHealth(ctx context.Context, id string) (venues.AliveStatus, error) {
	if b.gateway == nil {
		return venues.StatusUnknown, &errors.ConfigError{Component: "discovery", Message: "no discovery gateway configured"}
	}

	b.mu.Lock()
	if _, busy := b.inflight[id]; busy {
		b.mu.Unlock()
		return venues.StatusUnknown, errors.New("health check already in progress")
	}
	target := b.committed.FindByID(id)
	if target == nil {
		target = b.found.FindByID(id)
	}
	if target == nil {
		b.mu.Unlock()
		return venues.StatusUnknown, errors.NewNotFoundError("venue", id)
	}
	name := target.Name
	b.inflight[id] = struct{}{}
	b.mu.Unlock()

	status, checkedAt := b.gateway.CheckHealth(ctx, name)

	b.mu.Lock()
	delete(b.inflight, id)
	if updated, err := reconcile.HealthUpdate(b.committed, id, status, checkedAt); err == nil {
		b.committed = updated
		b.persistLocked(ctx)
	} else if updated, err := reconcile.HealthUpdate(b.found, id, status, checkedAt); err == nil {
		b.found = updated
	}
	b.mu.Unlock()

	b.notify()
	return status, nil
}

// Checking implements Brewmap.
func (b *brewmap) Checking(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, busy := b.inflight[id]
	return busy
}

// OnChange implements Brewmap.
func (b *brewmap) OnChange(hook ChangeHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks = append(b.hooks, hook)
}

// Close implements Brewmap.
func (b *brewmap) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

// persistLocked saves the committed collection. Persistence is
// last-write-wins and failures are advisory only, so errors are logged and
// swallowed. Callers hold the state lock.
func (b *brewmap) persistLocked(ctx context.Context) {
	if b.store == nil {
		return
	}
	if err := b.store.Save(ctx, b.committed); err != nil {
		b.logger.Warn().Err(err).Msg("could not persist committed collection")
	}
}

// notify invokes change hooks with fresh copies, outside the lock.
func (b *brewmap) notify() {
	b.mu.Lock()
	hooks := make([]ChangeHook, len(b.hooks))
	copy(hooks, b.hooks)
	committed := b.committed.Copy()
	found := b.found.Copy()
	b.mu.Unlock()

	for _, hook := range hooks {
		hook(committed, found)
	}
}
