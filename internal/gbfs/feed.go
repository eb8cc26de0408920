// Package gbfs fetches the GBFS station information and station status feeds.
package gbfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bbernstein/stationmap/internal/models"
	"github.com/bbernstein/stationmap/pkg/http/client"
)

const (
	DefaultInformationURL = "https://gbfs.citibikenyc.com/gbfs/en/station_information.json"
	DefaultStatusURL      = "https://gbfs.citibikenyc.com/gbfs/en/station_status.json"

	FeedInformation = "station_information"
	FeedStatus      = "station_status"
)

var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// FeedError reports which feed failed and why.
type FeedError struct {
	Feed string
	Err  error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("gbfs feed %s: %v", e.Feed, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

func newFeedError(feed string, err error) *FeedError {
	return &FeedError{Feed: feed, Err: err}
}

// Feeds is the combined result of one fetch of both feeds.
type Feeds struct {
	Information []models.StationInfo
	Status      []models.StationStatus

	// Zero when the feed omits last_updated.
	InformationUpdatedAt time.Time
	StatusUpdatedAt      time.Time
}

type Client struct {
	httpClient     client.Interface
	informationURL string
	statusURL      string
}

type Options struct {
	InformationURL string
	StatusURL      string
}

func NewClient(httpClient client.Interface, opts Options) *Client {
	if opts.InformationURL == "" {
		opts.InformationURL = DefaultInformationURL
	}
	if opts.StatusURL == "" {
		opts.StatusURL = DefaultStatusURL
	}
	return &Client{
		httpClient:     httpClient,
		informationURL: opts.InformationURL,
		statusURL:      opts.StatusURL,
	}
}

// FetchFeeds requests both feeds concurrently. It succeeds only if both
// succeed; the first failure cancels the other request.
func (c *Client) FetchFeeds(ctx context.Context) (*Feeds, error) {
	var (
		info   *Envelope[informationData]
		status *Envelope[statusData]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = fetch[informationData](gctx, c.httpClient, FeedInformation, c.informationURL)
		return err
	})
	g.Go(func() error {
		var err error
		status, err = fetch[statusData](gctx, c.httpClient, FeedStatus, c.statusURL)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	feeds := &Feeds{
		Information:          toStationInfos(info.Data.Stations),
		Status:               toStationStatuses(status.Data.Stations),
		InformationUpdatedAt: info.UpdatedAt(),
		StatusUpdatedAt:      status.UpdatedAt(),
	}

	log.Debug().
		Int("info_count", len(feeds.Information)).
		Int("status_count", len(feeds.Status)).
		Time("info_updated", feeds.InformationUpdatedAt).
		Time("status_updated", feeds.StatusUpdatedAt).
		Msg("Fetched GBFS feeds")

	return feeds, nil
}

// FetchInformation fetches only the station information feed.
func (c *Client) FetchInformation(ctx context.Context) ([]models.StationInfo, error) {
	env, err := fetch[informationData](ctx, c.httpClient, FeedInformation, c.informationURL)
	if err != nil {
		return nil, err
	}
	return toStationInfos(env.Data.Stations), nil
}

// FetchStatus fetches only the station status feed.
func (c *Client) FetchStatus(ctx context.Context) ([]models.StationStatus, error) {
	env, err := fetch[statusData](ctx, c.httpClient, FeedStatus, c.statusURL)
	if err != nil {
		return nil, err
	}
	return toStationStatuses(env.Data.Stations), nil
}

func fetch[T any](ctx context.Context, httpClient client.Interface, feed, url string) (*Envelope[T], error) {
	log.Trace().Str("feed", feed).Str("url", url).Msg("Requesting feed")

	resp, err := httpClient.Get(ctx, url)
	if err != nil {
		return nil, newFeedError(feed, fmt.Errorf("fetching: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newFeedError(feed, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
	}

	var env Envelope[T]
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, newFeedError(feed, fmt.Errorf("decoding response: %w", err))
	}

	log.Debug().Str("feed", feed).Int("bytes", len(resp.Body)).Msg("Feed received")
	return &env, nil
}

// A missing lat or lon becomes NaN so that coordinate validation
// downstream rejects the station instead of placing it at 0,0.
func toStationInfos(records []informationRecord) []models.StationInfo {
	infos := make([]models.StationInfo, len(records))
	for i, r := range records {
		lat, lon := math.NaN(), math.NaN()
		if r.Lat != nil {
			lat = *r.Lat
		}
		if r.Lon != nil {
			lon = *r.Lon
		}
		infos[i] = models.StationInfo{
			ID:       string(r.StationID),
			Name:     r.Name,
			Capacity: r.Capacity,
			Position: models.Coordinate{Latitude: lat, Longitude: lon},
		}
	}
	return infos
}

func toStationStatuses(records []statusRecord) []models.StationStatus {
	statuses := make([]models.StationStatus, len(records))
	for i, r := range records {
		statuses[i] = models.StationStatus{
			ID:             string(r.StationID),
			BikesAvailable: r.NumBikesAvailable,
			IsInstalled:    bool(r.IsInstalled),
			IsRenting:      bool(r.IsRenting),
		}
	}
	return statuses
}
