package history

import (
	"testing"
	"time"
)

func TestParseTime_PlainStampIsUTC(t *testing.T) {
	want := time.Date(2023, 5, 1, 13, 30, 0, 0, time.UTC)

	tests := []string{
		"2023-05-01 13:30",
		"2023-05-01T13:30",
		"2023-05-01 13:30:00",
		"2023-05-01T13:30:00",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			got, ok := ParseTime(s)
			if !ok {
				t.Fatalf("ParseTime(%q) not ok", s)
			}
			if !got.Equal(want) {
				t.Errorf("ParseTime(%q) = %v, want %v", s, got, want)
			}
		})
	}

	// Space and T separators, and an explicit-zone RFC3339 stamp, all land
	// on the same instant.
	rfc, ok := ParseTime("2023-05-01T13:30:00Z")
	if !ok {
		t.Fatal("ParseTime(RFC3339) not ok")
	}
	if !rfc.Equal(want) {
		t.Errorf("RFC3339 stamp = %v, want %v", rfc, want)
	}
}

func TestParseTime_EpochMillis(t *testing.T) {
	got, ok := ParseTime(float64(1714567800000))
	if !ok {
		t.Fatal("ParseTime(number) not ok")
	}
	want := time.UnixMilli(1714567800000).UTC()
	if !got.Equal(want) {
		t.Errorf("ParseTime(number) = %v, want %v", got, want)
	}
}

func TestParseTime_FallbackLayouts(t *testing.T) {
	got, ok := ParseTime("2023-05-01")
	if !ok {
		t.Fatal("ParseTime(date-only) not ok")
	}
	if !got.Equal(time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ParseTime(date-only) = %v", got)
	}
}

func TestParseTime_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{name: "garbage string", in: "not-a-date"},
		{name: "empty string", in: ""},
		{name: "nil", in: nil},
		{name: "bool", in: true},
		{name: "object", in: map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTime(tt.in)
			if ok {
				t.Errorf("ParseTime(%v) = %v, want invalid", tt.in, got)
			}
			if !got.IsZero() {
				t.Errorf("invalid parse returned non-zero time %v", got)
			}
		})
	}
}
