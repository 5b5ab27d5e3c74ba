package apitypes

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

type Sensitivity struct {
	TriggerPress   float64 `json:"triggerPress"`
	TriggerRelease float64 `json:"triggerRelease"`
	Position       float64 `json:"position"`
}

// StatusResponse is returned by every lifecycle route.
type StatusResponse struct {
	Mode         string      `json:"mode"`
	Enabled      bool        `json:"enabled"`
	HasSource    bool        `json:"hasSource"`
	Calibrated   bool        `json:"calibrated"`
	CanCalibrate bool        `json:"canCalibrate"`
	Offset       [3]float64  `json:"offset"`
	Sensitivity  Sensitivity `json:"sensitivity"`
	// DeviceManaged reports whether the device layer owns controller management.
	DeviceManaged bool `json:"deviceManaged"`
}

// Event is the wire form of a dispatched controller event.
// Value holds [v] for triggers, [x y z] for position, [x y z w] for rotation
// and [x y] for the stick.
type Event struct {
	Slot  string    `json:"slot"`
	Kind  string    `json:"kind"`
	Value []float64 `json:"value"`
}

// Toggle is a boolean request payload accepting true/false, 1/0, on/off and yes/no.
type Toggle bool

func (t *Toggle) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case bool:
		*t = Toggle(v)
	case float64:
		*t = v != 0
	case string:
		b, err := ParseToggle(v)
		if err != nil {
			return err
		}
		*t = Toggle(b)
	default:
		return fmt.Errorf("expected boolean, got %T", raw)
	}
	return nil
}

// ParseToggle parses a loosely formatted boolean.
func ParseToggle(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}
