package marker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/stationmap/internal/models"
)

func TestIconFor(t *testing.T) {
	tests := []struct {
		category models.Category
		shape    models.IconShape
		color    string
	}{
		{models.CategoryHealthy, models.IconBicycle, "green"},
		{models.CategoryLow, models.IconBicycle, "orange"},
		{models.CategoryEmpty, models.IconBicycle, "red"},
		{models.CategoryOutOfOrder, models.IconTools, "gray"},
		{models.CategoryComingSoon, models.IconClock, "blue"},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			icon := IconFor(tt.category)
			assert.Equal(t, tt.shape, icon.Shape)
			assert.Equal(t, tt.color, icon.Color)
			assert.Equal(t, "custom-icon", icon.ClassName)
			assert.Contains(t, icon.HTML, string(tt.shape))
			assert.Contains(t, icon.HTML, "color:"+tt.color)
			assert.Equal(t, [2]int{24, 24}, icon.Size)
			assert.Equal(t, [2]int{12, 24}, icon.Anchor)
			assert.Equal(t, [2]int{0, -20}, icon.PopupAnchor)
		})
	}
}

func TestNew(t *testing.T) {
	s := models.ClassifiedStation{
		ID:       "1",
		Category: models.CategoryEmpty,
		Popup:    "<strong>A</strong><br>Capacity: 10<br>Bikes: 0",
		Position: models.Coordinate{Latitude: 40.7, Longitude: -74.0},
	}

	m, err := New(s)
	require.NoError(t, err)

	assert.Equal(t, "1", m.StationID)
	assert.Equal(t, models.CategoryEmpty, m.Category)
	assert.Equal(t, s.Position, m.Position)
	assert.Equal(t, s.Popup, m.Popup)
	assert.Equal(t, models.IconBicycle, m.Icon.Shape)
	assert.Equal(t, "red", m.Icon.Color)
}

func TestNewRejectsInvalidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		pos  models.Coordinate
	}{
		{"NaN latitude", models.Coordinate{Latitude: math.NaN(), Longitude: -74}},
		{"NaN longitude", models.Coordinate{Latitude: 40, Longitude: math.NaN()}},
		{"infinite latitude", models.Coordinate{Latitude: math.Inf(1), Longitude: -74}},
		{"infinite longitude", models.Coordinate{Latitude: 40, Longitude: math.Inf(-1)}},
		{"latitude above 90", models.Coordinate{Latitude: 90.5, Longitude: 0}},
		{"longitude below -180", models.Coordinate{Latitude: 0, Longitude: -180.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(models.ClassifiedStation{ID: "x", Category: models.CategoryHealthy, Position: tt.pos})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCoordinate)
			assert.Contains(t, err.Error(), "station x")
		})
	}
}

func TestNewAcceptsBoundaryCoordinates(t *testing.T) {
	for _, pos := range []models.Coordinate{
		{Latitude: 90, Longitude: 180},
		{Latitude: -90, Longitude: -180},
		{Latitude: 0, Longitude: 0},
	} {
		_, err := New(models.ClassifiedStation{ID: "b", Category: models.CategoryLow, Position: pos})
		assert.NoError(t, err)
	}
}

func TestNewRejectsUnknownCategory(t *testing.T) {
	_, err := New(models.ClassifiedStation{ID: "u", Category: models.Category(99)})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCoordinate)
}
