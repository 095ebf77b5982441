package core

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
)

// ErrEmptyGrid is returned when statistics are requested over zero grid
// points. Summary values are never silently reported as zero.
var ErrEmptyGrid = errors.New("coverage grid is empty")

// MalformedRecordError reports a bad input record with enough context (line
// number, field, offending value) for the caller to fix the input.
type MalformedRecordError struct {
	Line   int
	Field  string
	Value  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed record at line %d: field %q value %q: %s", e.Line, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("malformed record at line %d: %s", e.Line, e.Reason)
}

// InvalidTransformError reports malformed coordinate-transform input, e.g. a
// translation vector with fewer than three components or non-finite angles.
type InvalidTransformError struct {
	Reason string
}

func (e *InvalidTransformError) Error() string {
	return fmt.Sprintf("invalid coordinate transform: %s", e.Reason)
}

// DegenerateGeometryError is raised when a transmitter and receiver coincide
// exactly and no distance floor is configured to lift the singularity.
type DegenerateGeometryError struct {
	TransmitterID string
	Position      r3.Vector
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("degenerate geometry: transmitter %q coincides with receiver at (%g, %g, %g)",
		e.TransmitterID, e.Position.X, e.Position.Y, e.Position.Z)
}

// InvalidBandConfigurationError reports classification bands that do not
// partition the real line into ordered, non-overlapping, exhaustive tiers.
type InvalidBandConfigurationError struct {
	Reason string
}

func (e *InvalidBandConfigurationError) Error() string {
	return fmt.Sprintf("invalid band configuration: %s", e.Reason)
}

// ModelParameterError reports a missing or out-of-range simulation parameter.
type ModelParameterError struct {
	Model  string
	Param  string
	Reason string
}

func (e *ModelParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s.%s: %s", e.Model, e.Param, e.Reason)
}
