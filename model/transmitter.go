package model

import "github.com/golang/geo/r3"

// Transmitter represents one access point: a fixed radio with a position in
// the building frame, a transmit power and an operating frequency. Values are
// immutable once loaded; the coordinate transformer returns new copies rather
// than mutating positions in place.
type Transmitter struct {
	ID          string    `json:"id"`
	Position    r3.Vector `json:"position"` // metres
	PowerDBm    float64   `json:"power_dbm"`
	FrequencyHz float64   `json:"frequency_hz"`
}
