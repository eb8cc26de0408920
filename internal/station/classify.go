package station

import (
	"fmt"
	"html"

	"github.com/bbernstein/stationmap/internal/models"
)

// LowBikesThreshold is the smallest bikes-available count that still counts
// as Healthy.
const LowBikesThreshold = 5

type rule struct {
	category models.Category
	matches  func(s models.StationStatus) bool
}

// Order matters: the first matching rule wins.
var classificationRules = []rule{
	{models.CategoryComingSoon, func(s models.StationStatus) bool { return !s.IsInstalled }},
	{models.CategoryOutOfOrder, func(s models.StationStatus) bool { return !s.IsRenting }},
	{models.CategoryEmpty, func(s models.StationStatus) bool { return s.BikesAvailable <= 0 }},
	{models.CategoryLow, func(s models.StationStatus) bool { return s.BikesAvailable < LowBikesThreshold }},
	{models.CategoryHealthy, func(models.StationStatus) bool { return true }},
}

// Classify maps a status record to its availability category. It only looks
// at the installed and renting flags and the bikes-available count.
func Classify(status models.StationStatus) models.Category {
	for _, r := range classificationRules {
		if r.matches(status) {
			return r.category
		}
	}
	// unreachable: the last rule always matches
	return models.CategoryHealthy
}

// PopupText is the HTML shown when a station's marker is clicked.
func PopupText(info models.StationInfo, status models.StationStatus) string {
	return fmt.Sprintf("<strong>%s</strong><br>Capacity: %d<br>Bikes: %d",
		html.EscapeString(info.Name), info.Capacity, status.BikesAvailable)
}
