package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/coverage-simulator/model"
)

// TransmitterDefaults supplies the power and frequency applied to every
// parsed AP record; the coordinate file carries positions only.
type TransmitterDefaults struct {
	PowerDBm    float64 `json:"power_dbm"`
	FrequencyHz float64 `json:"frequency_hz"`
}

// LoadTransmitters parses delimited AP coordinate input: one record per
// line, fields (identifier, x, y, z), no header row, coordinates in metres.
// Any record with fewer than four fields, an empty identifier, a duplicate
// identifier or a non-numeric coordinate fails with a MalformedRecordError
// naming the line. Raw records never leak past this boundary.
func LoadTransmitters(r io.Reader, defaults TransmitterDefaults) ([]model.Transmitter, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var txs []model.Transmitter
	seen := make(map[string]bool)
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &MalformedRecordError{Line: line, Reason: fmt.Sprintf("unreadable record: %v", err)}
		}
		if len(record) < 4 {
			return nil, &MalformedRecordError{Line: line, Reason: fmt.Sprintf("need 4 fields (identifier, x, y, z), got %d", len(record))}
		}

		id := strings.TrimSpace(record[0])
		if id == "" {
			return nil, &MalformedRecordError{Line: line, Field: "identifier", Reason: "empty identifier"}
		}
		if seen[id] {
			return nil, &MalformedRecordError{Line: line, Field: "identifier", Value: id, Reason: "duplicate identifier"}
		}

		coords := [3]float64{}
		for i, field := range []string{"x", "y", "z"} {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
			if err != nil {
				return nil, &MalformedRecordError{Line: line, Field: field, Value: record[i+1], Reason: "not a number"}
			}
			coords[i] = v
		}

		seen[id] = true
		txs = append(txs, model.Transmitter{
			ID:          id,
			Position:    r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]},
			PowerDBm:    defaults.PowerDBm,
			FrequencyHz: defaults.FrequencyHz,
		})
	}

	if len(txs) == 0 {
		return nil, &MalformedRecordError{Line: line, Reason: "no transmitter records found"}
	}
	return txs, nil
}
