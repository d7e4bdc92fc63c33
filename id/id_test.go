package id_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/xraph/replicate/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"RequestID", id.NewRequestID, "req_"},
		{"StreamID", id.NewStreamID, "strm_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew_Unique(t *testing.T) {
	a, b := id.NewRequestID(), id.NewRequestID()
	if a.String() == b.String() {
		t.Errorf("expected distinct IDs, both %q", a)
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"RequestID", id.NewRequestID, id.ParseRequestID},
		{"StreamID", id.NewStreamID, func(s string) (id.ID, error) { return id.ParseWithPrefix(s, id.PrefixStream) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestParseWithPrefix_Mismatch(t *testing.T) {
	s := id.NewRequestID().String()
	if _, err := id.ParseWithPrefix(s, id.PrefixStream); err == nil {
		t.Errorf("expected error parsing %q as stream ID", s)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "not-a-typeid", "req_!!!"} {
		if _, err := id.Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("expected empty prefix, got %q", i.Prefix())
	}
}

func TestMarshalText(t *testing.T) {
	original := id.NewRequestID()
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(data) != original.String() {
		t.Errorf("MarshalText = %q, want %q", data, original.String())
	}

	empty, err := id.Nil.MarshalText()
	if err != nil || len(empty) != 0 {
		t.Errorf("Nil.MarshalText = %q, %v; want empty, nil", empty, err)
	}
}

func TestSlogRendersString(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	rid := id.NewRequestID()
	logger.Info("attempt", slog.Any("request_id", rid))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if got := rec["request_id"]; got != rid.String() {
		t.Errorf("request_id = %v, want %q", got, rid.String())
	}
}
