package station

import (
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/stationmap/internal/models"
)

// JoinStats counts the records that did not make it through the join
// unchanged.
type JoinStats struct {
	Orphaned   int // status records with no matching info record
	Duplicates int // info records that replaced an earlier record with the same ID
}

// Join pairs each status record with the info record of the same ID, in
// status-feed order. Status records without info are dropped. When the
// information feed repeats an ID the last record wins.
func Join(infos []models.StationInfo, statuses []models.StationStatus) ([]models.JoinedStation, JoinStats) {
	var stats JoinStats

	byID := make(map[string]models.StationInfo, len(infos))
	for _, info := range infos {
		if _, exists := byID[info.ID]; exists {
			stats.Duplicates++
		}
		byID[info.ID] = info
	}

	joined := make([]models.JoinedStation, 0, len(statuses))
	for _, status := range statuses {
		info, ok := byID[status.ID]
		if !ok {
			stats.Orphaned++
			continue
		}
		joined = append(joined, models.JoinedStation{Info: info, Status: status})
	}

	if stats.Duplicates > 0 {
		log.Warn().Int("duplicates", stats.Duplicates).Msg("Information feed repeats station IDs, keeping the last record")
	}
	log.Trace().Int("joined", len(joined)).Int("orphaned", stats.Orphaned).Msg("Joined station feeds")

	return joined, stats
}

// ClassifyAll joins both feeds and classifies every surviving station.
func ClassifyAll(infos []models.StationInfo, statuses []models.StationStatus) ([]models.ClassifiedStation, JoinStats) {
	joined, stats := Join(infos, statuses)

	classified := make([]models.ClassifiedStation, len(joined))
	for i, j := range joined {
		classified[i] = models.ClassifiedStation{
			ID:       j.Info.ID,
			Category: Classify(j.Status),
			Popup:    PopupText(j.Info, j.Status),
			Position: j.Info.Position,
		}
	}
	return classified, stats
}
