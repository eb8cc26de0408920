package gbfs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Envelope is the wrapper every GBFS feed shares.
type Envelope[T any] struct {
	LastUpdated int64 `json:"last_updated"`
	TTL         int   `json:"ttl"`
	Data        T     `json:"data"`
}

// UpdatedAt converts the feed's last_updated epoch seconds to a time.
func (e Envelope[T]) UpdatedAt() time.Time {
	if e.LastUpdated == 0 {
		return time.Time{}
	}
	return time.Unix(e.LastUpdated, 0).UTC()
}

type informationData struct {
	Stations []informationRecord `json:"stations"`
}

type statusData struct {
	Stations []statusRecord `json:"stations"`
}

type informationRecord struct {
	StationID ID       `json:"station_id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

type statusRecord struct {
	StationID         ID   `json:"station_id"`
	NumBikesAvailable int  `json:"num_bikes_available"`
	IsInstalled       Flag `json:"is_installed"`
	IsRenting         Flag `json:"is_renting"`
}

// Flag decodes a GBFS boolean published either as a JSON boolean (v2+) or as
// the integers 0/1 (v1).
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "true", "1", `"true"`, `"1"`:
		*f = true
	case "false", "0", `"false"`, `"0"`, "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", b)
	}
	return nil
}

// ID decodes a station identifier published as either a JSON string or a
// JSON number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid station_id %s: %w", b, err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("invalid station_id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}
