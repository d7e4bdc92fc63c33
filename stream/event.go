// Package stream consumes a job's server-sent event stream. It splits the
// byte stream into event blocks, decodes them and republishes them on
// bounded channels from a background Pump.
package stream

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xraph/replicate"
)

// Event types emitted by the service. Other values pass through untouched;
// an empty type is valid.
const (
	EventOutput = "output"
	EventLogs   = "logs"
	EventError  = "error"
	EventDone   = "done"
)

// ErrInvalidData is returned for events whose data is not ASCII.
var ErrInvalidData = fmt.Errorf("%w: invalid event data", replicate.ErrDecode)

// Event is one decoded event block.
type Event struct {
	// Type is the "event" field. Compare against the Event* constants.
	Type string `json:"type"`

	// ID is the "id" field and doubles as the resume token.
	ID string `json:"id"`

	// Data is every "data" line of the block joined with "\n".
	Data string `json:"data"`
}

// IsDone reports whether the event marks the end of the stream.
func (e Event) IsDone() bool { return e.Type == EventDone }

// String returns Data for output events and "" for everything else, so
// printing events in order reproduces the model output.
func (e Event) String() string {
	if e.Type == EventOutput {
		return e.Data
	}
	return ""
}

// Decode parses one event block: "field: value" lines with no blank line
// inside. Fields other than id, event and data are ignored.
func Decode(block string) (Event, error) {
	var (
		evt  Event
		data []string
	)
	for _, line := range strings.Split(block, "\n") {
		field, value, ok := strings.Cut(strings.TrimSuffix(line, "\r"), ":")
		if !ok {
			continue
		}
		value = strings.TrimLeft(value, " \t")
		switch field {
		case "id":
			evt.ID = value
		case "event":
			evt.Type = value
		case "data":
			data = append(data, value)
		}
	}
	evt.Data = strings.Join(data, "\n")

	if evt.Data != "" && !isASCII(evt.Data) {
		return Event{}, ErrInvalidData
	}
	return evt, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
