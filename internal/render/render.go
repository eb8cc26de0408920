// Package render produces the Leaflet HTML page for a set of layer groups.
package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/bbernstein/stationmap/internal/layer"
	"github.com/bbernstein/stationmap/internal/models"
)

const (
	DefaultTileURL         = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultTileAttribution = "© OpenStreetMap contributors"
	DefaultZoom            = 13
	DefaultTitle           = "Bike Share Station Availability"

	leafletCSS     = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"
	leafletJS      = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"
	fontAwesomeCSS = "https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.0/css/all.min.css"
	legendPosition = "bottomright"
)

// DefaultCenter approximates the Citi Bike service area.
var DefaultCenter = models.Coordinate{Latitude: 40.73, Longitude: -74.0059}

//go:embed templates/map.html.tmpl
var mapTemplate string

type MapOptions struct {
	Title           string
	Center          models.Coordinate
	Zoom            int
	TileURL         string
	TileAttribution string
}

func DefaultMapOptions() MapOptions {
	return MapOptions{
		Title:           DefaultTitle,
		Center:          DefaultCenter,
		Zoom:            DefaultZoom,
		TileURL:         DefaultTileURL,
		TileAttribution: DefaultTileAttribution,
	}
}

// LegendEntry is one static legend line.
type LegendEntry struct {
	Icon  models.IconShape `json:"icon"`
	Color string           `json:"color"`
	Label string           `json:"label"`
}

// Legend lists every category, independent of any station data.
func Legend() []LegendEntry {
	entries := make([]LegendEntry, 0, len(models.Categories))
	for _, c := range models.Categories {
		style := c.Style()
		entries = append(entries, LegendEntry{Icon: style.Icon, Color: style.Color, Label: style.LegendText})
	}
	return entries
}

// FeedTimes carries the last_updated stamps of the two feeds. Zero values are
// omitted from the page.
type FeedTimes struct {
	Information time.Time
	Status      time.Time
}

type mapConfig struct {
	Center         [2]float64     `json:"center"`
	Zoom           int            `json:"zoom"`
	TileURL        string         `json:"tileUrl"`
	Attribution    string         `json:"attribution"`
	LegendPosition string         `json:"legendPosition"`
	Layers         []*layer.Group `json:"layers"`
	Legend         []LegendEntry  `json:"legend"`
}

type pageData struct {
	Title          string
	LeafletCSS     string
	LeafletJS      string
	FontAwesomeCSS string
	UpdatedText    string
	ConfigJSON     template.JS
}

type Renderer struct {
	tmpl *template.Template
	opts MapOptions
}

func NewRenderer(opts MapOptions) (*Renderer, error) {
	defaults := DefaultMapOptions()
	if opts.Title == "" {
		opts.Title = defaults.Title
	}
	if opts.Zoom == 0 {
		opts.Zoom = defaults.Zoom
	}
	if opts.TileURL == "" {
		opts.TileURL = defaults.TileURL
	}
	if opts.TileAttribution == "" {
		opts.TileAttribution = defaults.TileAttribution
	}

	tmpl, err := template.New("map").Parse(mapTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing map template: %w", err)
	}
	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

func (r *Renderer) Options() MapOptions {
	return r.opts
}

// Render writes the complete page. All five layers are listed and visible
// even when they hold no markers.
func (r *Renderer) Render(w io.Writer, groups *layer.Groups, times FeedTimes) error {
	if groups == nil {
		groups = layer.NewGroups()
	}

	cfg := mapConfig{
		Center:         [2]float64{r.opts.Center.Latitude, r.opts.Center.Longitude},
		Zoom:           r.opts.Zoom,
		TileURL:        r.opts.TileURL,
		Attribution:    r.opts.TileAttribution,
		LegendPosition: legendPosition,
		Layers:         groups.Ordered(),
		Legend:         Legend(),
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding map config: %w", err)
	}

	data := pageData{
		Title:          r.opts.Title,
		LeafletCSS:     leafletCSS,
		LeafletJS:      leafletJS,
		FontAwesomeCSS: fontAwesomeCSS,
		UpdatedText:    updatedText(times),
		// json.Marshal escapes <, > and &, so the payload cannot close the
		// script element.
		ConfigJSON: template.JS(configJSON),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing map template: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	return nil
}

func updatedText(times FeedTimes) string {
	const layout = "2006-01-02 15:04:05 MST"
	switch {
	case !times.Information.IsZero() && !times.Status.IsZero():
		return fmt.Sprintf("Stations updated %s · status updated %s",
			times.Information.Format(layout), times.Status.Format(layout))
	case !times.Status.IsZero():
		return "Status updated " + times.Status.Format(layout)
	case !times.Information.IsZero():
		return "Stations updated " + times.Information.Format(layout)
	default:
		return ""
	}
}
