package handler

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/stationmap/internal/gbfs"
	"github.com/bbernstein/stationmap/internal/models"
	"github.com/bbernstein/stationmap/internal/render"
)

// mockFeedFetcher implements FeedFetcher for testing
type mockFeedFetcher struct {
	fetchFeedsFn func(ctx context.Context) (*gbfs.Feeds, error)
}

func (m *mockFeedFetcher) FetchFeeds(ctx context.Context) (*gbfs.Feeds, error) {
	if m.fetchFeedsFn != nil {
		return m.fetchFeedsFn(ctx)
	}
	return &gbfs.Feeds{}, nil
}

func feedsReturning(feeds *gbfs.Feeds) *mockFeedFetcher {
	return &mockFeedFetcher{
		fetchFeedsFn: func(ctx context.Context) (*gbfs.Feeds, error) {
			return feeds, nil
		},
	}
}

func newTestHandler(t *testing.T, fetcher FeedFetcher) *MapHandler {
	t.Helper()
	renderer, err := render.NewRenderer(render.DefaultMapOptions())
	require.NoError(t, err)
	return NewMapHandler(fetcher, renderer)
}

func TestBuildEndToEnd(t *testing.T) {
	h := newTestHandler(t, feedsReturning(&gbfs.Feeds{
		Information: []models.StationInfo{
			{ID: "1", Name: "A", Capacity: 10, Position: models.Coordinate{Latitude: 40.7, Longitude: -74.0}},
		},
		Status: []models.StationStatus{
			{ID: "1", BikesAvailable: 0, IsInstalled: true, IsRenting: true},
		},
	}))

	result, err := h.Build(context.Background())
	require.NoError(t, err)

	empty := result.Groups.Get(models.CategoryEmpty)
	require.Len(t, empty.Markers, 1)
	m := empty.Markers[0]
	assert.Equal(t, "red", m.Icon.Color)
	assert.Equal(t, models.IconBicycle, m.Icon.Shape)
	assert.Contains(t, m.Popup, "A")
	assert.Contains(t, m.Popup, "10")
	assert.Contains(t, m.Popup, "0")

	assert.Equal(t, 1, result.Summary.Markers)
	assert.Equal(t, 1, result.Groups.Total())
	for _, c := range []models.Category{models.CategoryHealthy, models.CategoryLow, models.CategoryOutOfOrder, models.CategoryComingSoon} {
		assert.Empty(t, result.Groups.Get(c).Markers, c.String())
	}
}

func TestBuildOrphanProducesNoMarkers(t *testing.T) {
	h := newTestHandler(t, feedsReturning(&gbfs.Feeds{
		Status: []models.StationStatus{
			{ID: "2", BikesAvailable: 3, IsInstalled: true, IsRenting: true},
		},
	}))

	result, err := h.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Groups.Total())
	assert.Equal(t, 1, result.Summary.Orphaned)
	assert.Len(t, result.Groups.Ordered(), 5)
}

func TestBuildSkipsInvalidCoordinates(t *testing.T) {
	h := newTestHandler(t, feedsReturning(&gbfs.Feeds{
		Information: []models.StationInfo{
			{ID: "good", Name: "Good", Capacity: 5, Position: models.Coordinate{Latitude: 40.7, Longitude: -74.0}},
			{ID: "nan", Name: "NaN", Capacity: 5, Position: models.Coordinate{Latitude: math.NaN(), Longitude: -74.0}},
			{ID: "far", Name: "Far", Capacity: 5, Position: models.Coordinate{Latitude: 140, Longitude: -74.0}},
		},
		Status: []models.StationStatus{
			{ID: "good", BikesAvailable: 9, IsInstalled: true, IsRenting: true},
			{ID: "nan", BikesAvailable: 9, IsInstalled: true, IsRenting: true},
			{ID: "far", BikesAvailable: 9, IsInstalled: true, IsRenting: true},
		},
	}))

	result, err := h.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.Markers)
	assert.Equal(t, 2, result.Summary.InvalidCoordinates)
	require.Len(t, result.Groups.Get(models.CategoryHealthy).Markers, 1)
	assert.Equal(t, "good", result.Groups.Get(models.CategoryHealthy).Markers[0].StationID)
}

func TestBuildPartition(t *testing.T) {
	infos := []models.StationInfo{}
	statuses := []models.StationStatus{}
	flags := []struct {
		installed, renting bool
		bikes              int
	}{
		{true, true, 10}, {true, true, 3}, {true, true, 0}, {true, false, 7}, {false, true, 20}, {false, false, 0},
	}
	for i, f := range flags {
		id := string(rune('a' + i))
		infos = append(infos, models.StationInfo{ID: id, Name: id, Capacity: 20, Position: models.Coordinate{Latitude: 40, Longitude: -74}})
		statuses = append(statuses, models.StationStatus{ID: id, BikesAvailable: f.bikes, IsInstalled: f.installed, IsRenting: f.renting})
	}
	statuses = append(statuses, models.StationStatus{ID: "orphan"})

	result, err := newTestHandler(t, feedsReturning(&gbfs.Feeds{Information: infos, Status: statuses})).Build(context.Background())
	require.NoError(t, err)

	seen := map[string]int{}
	for _, g := range result.Groups.Ordered() {
		for _, m := range g.Markers {
			seen[m.StationID]++
		}
	}
	assert.Len(t, seen, len(infos))
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
	assert.LessOrEqual(t, result.Summary.Markers, len(statuses))
	assert.Equal(t, map[string]int{"Healthy": 1, "Low": 1, "Empty": 1, "OutOfOrder": 1, "ComingSoon": 2}, result.Summary.Counts)
}

func TestRenderFetchFailureWritesNothing(t *testing.T) {
	fetchErr := &gbfs.FeedError{Feed: gbfs.FeedStatus, Err: errors.New("connection reset")}
	h := newTestHandler(t, &mockFeedFetcher{
		fetchFeedsFn: func(ctx context.Context) (*gbfs.Feeds, error) {
			return nil, fetchErr
		},
	})

	var buf bytes.Buffer
	summary, err := h.Render(context.Background(), &buf)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Zero(t, buf.Len())

	var feedErr *gbfs.FeedError
	assert.True(t, errors.As(err, &feedErr))
}

func TestRenderWritesPage(t *testing.T) {
	h := newTestHandler(t, feedsReturning(&gbfs.Feeds{
		Information: []models.StationInfo{
			{ID: "1", Name: "Grand Army Plaza", Capacity: 30, Position: models.Coordinate{Latitude: 40.67, Longitude: -73.97}},
		},
		Status: []models.StationStatus{
			{ID: "1", BikesAvailable: 2, IsInstalled: true, IsRenting: true},
		},
		StatusUpdatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}))

	var buf bytes.Buffer
	summary, err := h.Render(context.Background(), &buf)
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 1, summary.Counts["Low"])
	page := buf.String()
	assert.Contains(t, page, "Grand Army Plaza")
	assert.Contains(t, page, "Status updated 2024-05-01 12:00:00 UTC")
}

func TestBuildPassesContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")

	h := newTestHandler(t, &mockFeedFetcher{
		fetchFeedsFn: func(got context.Context) (*gbfs.Feeds, error) {
			assert.Equal(t, "marker", got.Value(ctxKey{}))
			return &gbfs.Feeds{}, nil
		},
	})

	_, err := h.Build(ctx)
	require.NoError(t, err)
}
