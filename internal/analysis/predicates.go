package analysis

import (
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
)

var (
	decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	radixRe   = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
	isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// epochMinDigits is the shortest integer accepted as a timestamp.
const epochMinDigits = 10

// dateLayouts are tried in order; month-first wins over day-first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"02/01/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon Jan 2 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
}

// ParseNumber parses s the way a browser's Number() does, except that a blank
// string is rejected. Accepted: decimal literals with optional sign, fraction
// and exponent; hex/octal/binary integer literals; and signed Infinity.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if decimalRe.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			var ne *strconv.NumError
			if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
				return f, true
			}
			return 0, false
		}
		return f, true
	}
	if m := radixRe.FindStringSubmatch(s); m != nil {
		base := 16
		switch m[1][0] {
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		n, ok := new(big.Int).SetString(m[1][1:], base)
		if !ok {
			return 0, false
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, true
	}
	return 0, false
}

// LooksNumeric reports whether v counts as numeric: a finite number, or a
// string ParseNumber accepts. Infinity strings count, matching the browser.
func LooksNumeric(v dataset.Value) bool {
	switch v.Kind() {
	case dataset.KindNumber:
		f, _ := v.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case dataset.KindString:
		s, _ := v.Text()
		_, ok := ParseNumber(s)
		return ok
	}
	return false
}

// LooksDate reports whether v counts as a date:
//   - a time value;
//   - a string that parses with one of the known layouts and either contains
//     a YYYY-MM-DD run or is longer than four characters, so "2023" alone is
//     never a date;
//   - an integral number with at least ten digits, read as an epoch timestamp.
func LooksDate(v dataset.Value) bool {
	switch v.Kind() {
	case dataset.KindTime:
		return true
	case dataset.KindString:
		s, _ := v.Text()
		s = strings.TrimSpace(s)
		if _, ok := parseDateString(s); !ok {
			return false
		}
		return isoDateRe.MatchString(s) || len(s) > 4
	case dataset.KindNumber:
		f, _ := v.Float()
		return isEpoch(f)
	}
	return false
}

// ParseDate converts v to an instant when it looks like a date. Epoch values
// below 1e11 are seconds, larger ones milliseconds.
func ParseDate(v dataset.Value) (time.Time, bool) {
	switch v.Kind() {
	case dataset.KindTime:
		return v.Instant()
	case dataset.KindString:
		s, _ := v.Text()
		return parseDateString(strings.TrimSpace(s))
	case dataset.KindNumber:
		f, _ := v.Float()
		if !isEpoch(f) {
			return time.Time{}, false
		}
		if math.Abs(f) < 1e11 {
			return time.Unix(int64(f), 0).UTC(), true
		}
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Time{}, false
}

func parseDateString(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isEpoch(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	// 8.64e15 ms is the largest instant a browser Date accepts.
	abs := math.Abs(f)
	return abs >= math.Pow10(epochMinDigits-1) && abs <= 8.64e15
}
