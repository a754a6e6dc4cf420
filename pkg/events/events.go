// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package events carries console messages from the controller to any number
// of viewers.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Type classifies a console event.
type Type string

// Event types
const (
	TypeCommand Type = "cmd"    // a command and its response
	TypeAction  Type = "action" // a controller decision
	TypeState   Type = "state"  // a controller state change
)

// Console colors
const (
	ColorOK      = "#a1ff0a"
	ColorError   = "#ff0000"
	ColorPending = "#ff8700"
	ColorEvade   = "#147df5"
	ColorClear   = "#580aff"
	ColorLeft    = "#be0aff"
	ColorRight   = "#0aefff"
	ColorReverse = "#0aff99"
	ColorStuck   = "#ffd300"
	ColorInfo    = "#dddddd"
)

// Event is one console line.
type Event struct {
	Seq   uint64    `json:"seq" cbor:"1,keyasint"`
	Time  time.Time `json:"time" cbor:"2,keyasint"`
	Type  Type      `json:"type" cbor:"3,keyasint"`
	Color string    `json:"color" cbor:"4,keyasint"`
	Data  string    `json:"data" cbor:"5,keyasint"`
}

func (e Event) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Time.Format("15:04:05.000"), e.Type, e.Data)
}

// Format selects the wire encoding of events.
type Format int

// Wire formats
const (
	FormatJSON Format = iota
	FormatCBOR
)

// ParseFormat maps a query value to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return FormatJSON, fmt.Errorf("unknown event format %q (use json or cbor)", s)
}

// Encode serializes an event.
func Encode(e Event, f Format) ([]byte, error) {
	if f == FormatCBOR {
		return cbor.Marshal(e)
	}
	return json.Marshal(e)
}

// Decode parses an event produced by Encode.
func Decode(data []byte, f Format) (Event, error) {
	var e Event
	var err error
	if f == FormatCBOR {
		err = cbor.Unmarshal(data, &e)
	} else {
		err = json.Unmarshal(data, &e)
	}
	if err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return e, nil
}
