package brewmap_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewmap/brewmap"
	"github.com/brewmap/brewmap/internal/discovery"
	"github.com/brewmap/brewmap/pkg/errors"
	"github.com/brewmap/brewmap/pkg/reconcile"
	"github.com/brewmap/brewmap/pkg/venues"
)

// memStore is an in-memory Store used to observe persistence without SQLite.
type memStore struct {
	mu    sync.Mutex
	state venues.Venues
	saves int
}

func (m *memStore) Load(_ context.Context) (venues.Venues, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Copy(), nil
}

func (m *memStore) Save(_ context.Context, vs venues.Venues) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = vs.Copy()
	m.saves++
	return nil
}

func (m *memStore) Close() error { return nil }

// fakeGateway scripts discovery responses.
type fakeGateway struct {
	mu         sync.Mutex
	result     *discovery.Result
	err        error
	status     venues.AliveStatus
	healthName string
	release    chan struct{}
}

func (f *fakeGateway) Search(_ context.Context, _ string, _ *venues.Coordinates) (*discovery.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := *f.result
	out.Candidates = f.result.Candidates.Copy()
	return &out, nil
}

func (f *fakeGateway) CheckHealth(_ context.Context, name string) (venues.AliveStatus, time.Time) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthName = name
	return f.status, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
}

func candidate(name string) venues.Venue {
	return venues.Venue{
		ID:          venues.NewID(),
		Name:        name,
		Category:    venues.CategoryCommon,
		Coordinates: venues.Coordinates{Lat: 40.1, Lng: -3.5},
		AliveStatus: venues.StatusUnknown,
	}
}

func newApp(t *testing.T, opts ...brewmap.Option) brewmap.Brewmap {
	t.Helper()
	app, err := brewmap.New(context.Background(), append([]brewmap.Option{brewmap.WithoutBootstrap()}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestAddAndDuplicateName(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()

	added, err := app.Add(ctx, venues.Venue{Name: "Row 44", Coordinates: venues.Coordinates{Lat: 40.1, Lng: -3.5}})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, venues.CategoryCommon, added.Category)
	assert.Equal(t, venues.StatusUnknown, added.AliveStatus)

	_, err = app.Add(ctx, venues.Venue{Name: "ROW 44", Coordinates: venues.Coordinates{Lat: 41, Lng: -3}})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)

	assert.Len(t, app.Committed(), 1)
}

func TestAddPersists(t *testing.T) {
	ms := &memStore{}
	app := newApp(t, brewmap.WithStore(ms))

	_, err := app.Add(context.Background(), venues.Venue{Name: "Row 44", Coordinates: venues.Coordinates{Lat: 40.1, Lng: -3.5}})
	require.NoError(t, err)

	require.Len(t, ms.state, 1)
	assert.Equal(t, "Row 44", ms.state[0].Name)

	// A fresh instance over the same store sees the record.
	reopened := newApp(t, brewmap.WithStore(ms))
	assert.Len(t, reopened.Committed(), 1)
}

func TestEditRoutesToOwningCollection(t *testing.T) {
	gw := &fakeGateway{result: &discovery.Result{
		Summary:    "found",
		Candidates: venues.Venues{candidate("Staged Spot")},
	}}
	app := newApp(t, brewmap.WithDiscovery(gw))
	ctx := context.Background()

	committed, err := app.Add(ctx, venues.Venue{Name: "Committed Spot", Coordinates: venues.Coordinates{Lat: 40.1, Lng: -3.5}})
	require.NoError(t, err)
	_, err = app.Discover(ctx, "anything", nil)
	require.NoError(t, err)

	stagedID := app.Found()[0].ID

	desc := "updated"
	require.NoError(t, app.Edit(ctx, committed.ID, reconcile.Patch{Description: &desc}))
	require.NoError(t, app.Edit(ctx, stagedID, reconcile.Patch{Description: &desc}))

	assert.Equal(t, "updated", app.Committed()[0].Description)
	assert.Equal(t, "updated", app.Found()[0].Description)

	err = app.Edit(ctx, "missing-id", reconcile.Patch{Description: &desc})
	assert.True(t, errors.IsNotFound(err))
}

func TestEditRejectsInvalidPatch(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()

	v, err := app.Add(ctx, venues.Venue{Name: "Row 44", Coordinates: venues.Coordinates{Lat: 40.1, Lng: -3.5}})
	require.NoError(t, err)

	empty := ""
	err = app.Edit(ctx, v.ID, reconcile.Patch{Name: &empty})
	require.Error(t, err)
	assert.Equal(t, "Row 44", app.Committed()[0].Name, "collection unchanged after a rejected edit")
}

func TestRemove(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()

	v, err := app.Add(ctx, venues.Venue{Name: "Row 44", Coordinates: venues.Coordinates{Lat: 40.1, Lng: -3.5}})
	require.NoError(t, err)

	require.NoError(t, app.Remove(ctx, v.ID))
	assert.Empty(t, app.Committed())

	err = app.Remove(ctx, v.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestImportExportRoundTrip(t *testing.T) {
	app := newApp(t)
	ctx := context.Background()

	doc := `<kml xmlns="http://www.opengis.net/kml/2.2"><Document><Folder>
	  <name>Gold</name>
	  <Placemark><name>Imported One</name><Point><coordinates>-3.5,40.1,0</coordinates></Point></Placemark>
	</Folder></Document></kml>`

	added, err := app.ImportKML(ctx, []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	// Importing the same document again adds nothing.
	added, err = app.ImportKML(ctx, []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	data, filename, err := app.ExportKML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "Imported One")
	assert.True(t, strings.HasPrefix(filename, "breweries_1_"))
	assert.True(t, strings.HasSuffix(filename, ".kml"))
}

func TestDiscoverStagesAndReplaces(t *testing.T) {
	gw := &fakeGateway{result: &discovery.Result{
		Summary:    "first pass",
		Candidates: venues.Venues{candidate("Fresh Find"), candidate("Committed Spot")},
		Sources:    []string{"https://example.com/a"},
	}}
	app := newApp(t, brewmap.WithDiscovery(gw))
	ctx := context.Background()

	_, err := app.Add(ctx, venues.Venue{Name: "Committed Spot", Coordinates: venues.Coordinates{Lat: 40.1, Lng: -3.5}})
	require.NoError(t, err)

	result, err := app.Discover(ctx, "craft beer madrid", nil)
	require.NoError(t, err)
	assert.Equal(t, "first pass", result.Summary)
	assert.Equal(t, []string{"https://example.com/a"}, result.Sources)

	found := app.Found()
	require.Len(t, found, 1, "candidates colliding with committed names are filtered")
	assert.Equal(t, "Fresh Find", found[0].Name)

	// A second search replaces the found-set wholesale.
	gw.mu.Lock()
	gw.result = &discovery.Result{Summary: "second pass", Candidates: venues.Venues{candidate("Other Place")}}
	gw.mu.Unlock()

	_, err = app.Discover(ctx, "another query", nil)
	require.NoError(t, err)
	found = app.Found()
	require.Len(t, found, 1)
	assert.Equal(t, "Other Place", found[0].Name)
}

// slowFirstGateway blocks its first Search until released; later searches
// answer immediately.
type slowFirstGateway struct {
	mu           sync.Mutex
	calls        int
	firstStarted chan struct{}
	releaseFirst chan struct{}
}

func (g *slowFirstGateway) Search(_ context.Context, _ string, _ *venues.Coordinates) (*discovery.Result, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.mu.Unlock()

	if call == 1 {
		close(g.firstStarted)
		<-g.releaseFirst
		return &discovery.Result{Summary: "stale answer", Candidates: venues.Venues{candidate("Stale Find")}}, nil
	}
	return &discovery.Result{Summary: "fresh answer", Candidates: venues.Venues{candidate("Fresh Find")}}, nil
}

func (g *slowFirstGateway) CheckHealth(_ context.Context, _ string) (venues.AliveStatus, time.Time) {
	return venues.StatusUnknown, time.Now().UTC()
}

func TestDiscoverSupersededResultIsDiscarded(t *testing.T) {
	gw := &slowFirstGateway{
		firstStarted: make(chan struct{}),
		releaseFirst: make(chan struct{}),
	}
	app := newApp(t, brewmap.WithDiscovery(gw))
	ctx := context.Background()

	type outcome struct {
		result *discovery.Result
		err    error
	}
	firstDone := make(chan outcome, 1)
	go func() {
		result, err := app.Discover(ctx, "first query", nil)
		firstDone <- outcome{result, err}
	}()

	<-gw.firstStarted

	// The second search completes while the first is still in flight.
	_, err := app.Discover(ctx, "second query", nil)
	require.NoError(t, err)
	found := app.Found()
	require.Len(t, found, 1)
	assert.Equal(t, "Fresh Find", found[0].Name)

	close(gw.releaseFirst)
	first := <-firstDone
	require.NoError(t, first.err)

	// The late answer is still returned for display, but its candidates
	// never reach the found-set.
	assert.Equal(t, "stale answer", first.result.Summary)
	assert.Empty(t, first.result.Candidates)

	found = app.Found()
	require.Len(t, found, 1)
	assert.Equal(t, "Fresh Find", found[0].Name, "the later search's staging survives the late answer")
}

func TestDiscoverGatewayFailureIsAdvisory(t *testing.T) {
	gw := &fakeGateway{err: errors.New("network down")}
	app := newApp(t, brewmap.WithDiscovery(gw))

	result, err := app.Discover(context.Background(), "anything", nil)
	require.NoError(t, err, "gateway failure must not fail the operation")
	assert.Contains(t, result.Summary, "search unavailable")
	assert.Empty(t, result.Candidates)
	assert.Empty(t, app.Found())
}

func TestDiscoverWithoutGateway(t *testing.T) {
	app := newApp(t)
	_, err := app.Discover(context.Background(), "anything", nil)
	require.Error(t, err)
}

func TestPromoteAndDiscard(t *testing.T) {
	gw := &fakeGateway{result: &discovery.Result{
		Candidates: venues.Venues{candidate("Keep Me"), candidate("Drop Me")},
	}}
	ms := &memStore{}
	app := newApp(t, brewmap.WithDiscovery(gw), brewmap.WithStore(ms))
	ctx := context.Background()

	_, err := app.Discover(ctx, "q", nil)
	require.NoError(t, err)
	found := app.Found()
	require.Len(t, found, 2)

	var keepID, dropID string
	for _, v := range found {
		switch v.Name {
		case "Keep Me":
			keepID = v.ID
		case "Drop Me":
			dropID = v.ID
		}
	}

	moved, err := app.Promote(ctx, keepID)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Len(t, app.Committed(), 1)
	assert.Len(t, app.Found(), 1)
	assert.Len(t, ms.state, 1, "promotion persists the committed collection")

	// Re-promoting is a no-op.
	moved, err = app.Promote(ctx, keepID)
	require.NoError(t, err)
	assert.False(t, moved)

	assert.True(t, app.DiscardFound(dropID))
	assert.Empty(t, app.Found())
	assert.False(t, app.DiscardFound(dropID))
	assert.Len(t, app.Committed(), 1, "discard never touches the committed collection")
}

func TestCheckHealthUpdatesRecord(t *testing.T) {
	gw := &fakeGateway{status: venues.StatusActive}
	app := newApp(t, brewmap.WithDiscovery(gw))
	ctx := context.Background()

	v, err := app.Add(ctx, venues.Venue{Name: "Row 44", Coordinates: venues.Coordinates{Lat: 40.1, Lng: -3.5}})
	require.NoError(t, err)

	status, err := app.CheckHealth(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, venues.StatusActive, status)
	assert.Equal(t, "Row 44", gw.healthName, "the gateway is asked by name")

	got := app.Committed()[0]
	assert.Equal(t, venues.StatusActive, got.AliveStatus)
	require.NotNil(t, got.LastCheckedAt)

	_, err = app.CheckHealth(ctx, "missing-id")
	assert.True(t, errors.IsNotFound(err))
}

func TestCheckHealthGuardsReentryPerID(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{status: venues.StatusActive, release: release}
	app := newApp(t, brewmap.WithDiscovery(gw))
	ctx := context.Background()

	v, err := app.Add(ctx, venues.Venue{Name: "Row 44", Coordinates: venues.Coordinates{Lat: 40.1, Lng: -3.5}})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = app.CheckHealth(ctx, v.ID)
	}()

	require.Eventually(t, func() bool { return app.Checking(v.ID) }, time.Second, 5*time.Millisecond)

	_, err = app.CheckHealth(ctx, v.ID)
	require.Error(t, err, "second check for the same id is rejected while one is in flight")

	close(release)
	<-done
	assert.False(t, app.Checking(v.ID))
}

func TestBootstrapMergesOnce(t *testing.T) {
	bootstrap := []byte(`<kml xmlns="http://www.opengis.net/kml/2.2"><Document><Folder>
	  <name>Silver</name>
	  <Placemark><name>Seed Venue</name><Point><coordinates>-3.5,40.1,0</coordinates></Point></Placemark>
	</Folder></Document></kml>`)

	ms := &memStore{}
	app, err := brewmap.New(context.Background(), brewmap.WithStore(ms), brewmap.WithBootstrapKML(bootstrap))
	require.NoError(t, err)
	defer app.Close()

	committed := app.Committed()
	require.Len(t, committed, 1)
	assert.Equal(t, "Seed Venue", committed[0].Name)
	assert.Equal(t, venues.CategorySilver, committed[0].Category)
	firstID := committed[0].ID

	// Restart over the same store keeps the persisted record, not a new copy.
	again, err := brewmap.New(context.Background(), brewmap.WithStore(ms), brewmap.WithBootstrapKML(bootstrap))
	require.NoError(t, err)
	defer again.Close()

	committed = again.Committed()
	require.Len(t, committed, 1)
	assert.Equal(t, firstID, committed[0].ID)
}

func TestOnChangeHook(t *testing.T) {
	app := newApp(t)

	var mu sync.Mutex
	var calls int
	var lastCommitted venues.Venues
	app.OnChange(func(committed, _ venues.Venues) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		lastCommitted = committed
	})

	_, err := app.Add(context.Background(), venues.Venue{Name: "Row 44", Coordinates: venues.Coordinates{Lat: 40.1, Lng: -3.5}})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
	require.Len(t, lastCommitted, 1)
	assert.Equal(t, "Row 44", lastCommitted[0].Name)
}
