package handler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/stationmap/internal/gbfs"
	"github.com/bbernstein/stationmap/internal/layer"
	"github.com/bbernstein/stationmap/internal/marker"
	"github.com/bbernstein/stationmap/internal/render"
	"github.com/bbernstein/stationmap/internal/station"
)

// FeedFetcher fetches both GBFS feeds in one call.
type FeedFetcher interface {
	FetchFeeds(ctx context.Context) (*gbfs.Feeds, error)
}

var _ FeedFetcher = (*gbfs.Client)(nil)

// Summary describes one pipeline pass.
type Summary struct {
	InformationRecords int            `json:"informationRecords"`
	StatusRecords      int            `json:"statusRecords"`
	Markers            int            `json:"markers"`
	Orphaned           int            `json:"orphaned"`
	Duplicates         int            `json:"duplicates"`
	InvalidCoordinates int            `json:"invalidCoordinates"`
	Counts             map[string]int `json:"counts"`
}

type Result struct {
	Groups  *layer.Groups
	Times   render.FeedTimes
	Summary Summary
}

type MapHandler struct {
	fetcher  FeedFetcher
	renderer *render.Renderer
}

func NewMapHandler(fetcher FeedFetcher, renderer *render.Renderer) *MapHandler {
	return &MapHandler{
		fetcher:  fetcher,
		renderer: renderer,
	}
}

// Build fetches both feeds and turns them into layer groups. Nothing is
// built unless both fetches succeed.
func (h *MapHandler) Build(ctx context.Context) (*Result, error) {
	feeds, err := h.fetcher.FetchFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feeds: %w", err)
	}

	classified, stats := station.ClassifyAll(feeds.Information, feeds.Status)

	summary := Summary{
		InformationRecords: len(feeds.Information),
		StatusRecords:      len(feeds.Status),
		Orphaned:           stats.Orphaned,
		Duplicates:         stats.Duplicates,
	}

	markers := make([]marker.Marker, 0, len(classified))
	for _, s := range classified {
		m, err := marker.New(s)
		if errors.Is(err, marker.ErrInvalidCoordinate) {
			summary.InvalidCoordinates++
			log.Debug().Err(err).Str("station_id", s.ID).Msg("Skipping station")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("building marker: %w", err)
		}
		markers = append(markers, m)
	}
	if summary.InvalidCoordinates > 0 {
		log.Warn().Int("count", summary.InvalidCoordinates).Msg("Stations with invalid coordinates left off the map")
	}

	groups, err := layer.Aggregate(markers)
	if err != nil {
		return nil, fmt.Errorf("aggregating layers: %w", err)
	}
	summary.Markers = groups.Total()
	summary.Counts = groups.Counts()

	return &Result{
		Groups: groups,
		Times: render.FeedTimes{
			Information: feeds.InformationUpdatedAt,
			Status:      feeds.StatusUpdatedAt,
		},
		Summary: summary,
	}, nil
}

// Render runs one full pass and writes the page to w. Nothing is written
// when fetching or building fails.
func (h *MapHandler) Render(ctx context.Context, w io.Writer) (*Summary, error) {
	result, err := h.Build(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.renderer.Render(w, result.Groups, result.Times); err != nil {
		return nil, fmt.Errorf("rendering map: %w", err)
	}

	log.Info().
		Int("markers", result.Summary.Markers).
		Int("orphaned", result.Summary.Orphaned).
		Interface("counts", result.Summary.Counts).
		Msg("Rendered station map")

	return &result.Summary, nil
}
