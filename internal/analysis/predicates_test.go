package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" -3.5 ", -3.5, true},
		{"1.", 1, true},
		{".5", 0.5, true},
		{"1e3", 1000, true},
		{"0x1F", 31, true},
		{"0b101", 5, true},
		{"0o17", 15, true},
		{"Infinity", math.Inf(1), true},
		{"", 0, false},
		{"   ", 0, false},
		{"N/A", 0, false},
		{"12abc", 0, false},
		{"1,000", 0, false},
		{"2023-01-05", 0, false},
		{"1e", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLooksNumeric(t *testing.T) {
	if !LooksNumeric(dataset.Number(3)) {
		t.Fatalf("finite number must be numeric")
	}
	if LooksNumeric(dataset.Number(math.NaN())) || LooksNumeric(dataset.Number(math.Inf(1))) {
		t.Fatalf("non-finite numbers are not numeric")
	}
	if LooksNumeric(dataset.Null()) || LooksNumeric(dataset.Time(time.Now())) {
		t.Fatalf("null and time are not numeric")
	}
}

func TestLooksDate(t *testing.T) {
	tests := []struct {
		name string
		v    dataset.Value
		want bool
	}{
		{"iso", dataset.String("2024-03-01"), true},
		{"iso datetime", dataset.String("2024-03-01T10:00:00Z"), true},
		{"slash", dataset.String("3/1/2024"), true},
		{"long month", dataset.String("March 1, 2024"), true},
		{"plain year", dataset.String("2023"), false},
		{"epoch string", dataset.String("1709251200"), false},
		{"word", dataset.String("north"), false},
		{"epoch seconds", dataset.Number(1709251200), true},
		{"epoch millis", dataset.Number(1709251200000), true},
		{"small int", dataset.Number(2023), false},
		{"fraction", dataset.Number(1709251200.5), false},
		{"time", dataset.Time(time.Now()), true},
		{"null", dataset.Null(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksDate(tt.v); got != tt.want {
				t.Fatalf("LooksDate(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestParseDate_Epochs(t *testing.T) {
	secs, ok := ParseDate(dataset.Number(1709251200))
	if !ok {
		t.Fatalf("expected epoch seconds to parse")
	}
	millis, ok := ParseDate(dataset.Number(1709251200000))
	if !ok {
		t.Fatalf("expected epoch millis to parse")
	}
	if !secs.Equal(millis) {
		t.Fatalf("seconds %v and millis %v should agree", secs, millis)
	}
	if secs.Format("2006-01-02") != "2024-03-01" {
		t.Fatalf("unexpected date %v", secs)
	}
}
