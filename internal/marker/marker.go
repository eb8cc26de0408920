// Package marker turns classified stations into map markers.
package marker

import (
	"errors"
	"fmt"
	"math"

	"github.com/bbernstein/stationmap/internal/models"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

const iconClassName = "custom-icon"

// Icon describes a Leaflet div icon.
type Icon struct {
	Shape       models.IconShape `json:"shape"`
	Color       string           `json:"color"`
	ClassName   string           `json:"className"`
	HTML        string           `json:"html"`
	Size        [2]int           `json:"iconSize"`
	Anchor      [2]int           `json:"iconAnchor"`
	PopupAnchor [2]int           `json:"popupAnchor"`
}

// Marker is one station pin. The icon is shared by every marker of the same
// category, so it is not serialized per marker.
type Marker struct {
	StationID string            `json:"id"`
	Category  models.Category   `json:"-"`
	Position  models.Coordinate `json:"position"`
	Popup     string            `json:"popup"`
	Icon      Icon              `json:"-"`
}

// IconFor returns the fixed icon of a category.
func IconFor(c models.Category) Icon {
	style := c.Style()
	return Icon{
		Shape:       style.Icon,
		Color:       style.Color,
		ClassName:   iconClassName,
		HTML:        fmt.Sprintf(`<i class="fa %s" style="color:%s;font-size:18px;"></i>`, style.Icon, style.Color),
		Size:        [2]int{24, 24},
		Anchor:      [2]int{12, 24},
		PopupAnchor: [2]int{0, -20},
	}
}

// New builds the marker for a classified station. Stations whose coordinate
// is not finite or lies outside WGS84 bounds are rejected with
// ErrInvalidCoordinate.
func New(s models.ClassifiedStation) (Marker, error) {
	if err := ValidateCoordinate(s.Position); err != nil {
		return Marker{}, fmt.Errorf("station %s: %w", s.ID, err)
	}
	if !s.Category.Valid() {
		return Marker{}, fmt.Errorf("station %s: unknown category %d", s.ID, int(s.Category))
	}

	return Marker{
		StationID: s.ID,
		Category:  s.Category,
		Position:  s.Position,
		Popup:     s.Popup,
		Icon:      IconFor(s.Category),
	}, nil
}

func ValidateCoordinate(c models.Coordinate) error {
	lat, lon := c.Latitude, c.Longitude
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return fmt.Errorf("%w: non-finite (%v, %v)", ErrInvalidCoordinate, lat, lon)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: out of range (%v, %v)", ErrInvalidCoordinate, lat, lon)
	}
	return nil
}
