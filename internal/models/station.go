package models

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// StationInfo is one record of the station information feed.
type StationInfo struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Position Coordinate `json:"position"`
	Capacity int        `json:"capacity"`
}

// StationStatus is one record of the station status feed.
type StationStatus struct {
	ID             string `json:"id"`
	BikesAvailable int    `json:"bikesAvailable"`
	IsInstalled    bool   `json:"isInstalled"`
	IsRenting      bool   `json:"isRenting"`
}

// JoinedStation pairs a status record with the info record of the same ID.
type JoinedStation struct {
	Info   StationInfo
	Status StationStatus
}

// ClassifiedStation is a joined station after classification, ready for
// marker construction.
type ClassifiedStation struct {
	ID       string
	Category Category
	Popup    string
	Position Coordinate
}
