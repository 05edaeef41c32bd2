package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MaxKPIs is how many numeric columns get a headline total.
const MaxKPIs = 4

var moneyHints = []string{"sale", "profit", "expense"}

// KPI is a headline total for one numeric column.
type KPI struct {
	Column      string  `json:"column"`
	Title       string  `json:"title"`
	Value       string  `json:"value"`
	Description string  `json:"description"`
	Total       float64 `json:"total"`
}

type kpiJSON KPI

// MarshalJSON writes a non-finite total as null.
func (k KPI) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		kpiJSON
		Total dataset.Value `json:"total"`
	}{kpiJSON(k), dataset.Number(k.Total)})
}

// KPIs totals the first MaxKPIs numeric columns over rows. Values that do
// not convert to a number contribute zero.
func KPIs(rows []dataset.Row, cols []ColumnInfo) []KPI {
	names := NamesOf(cols, Numeric, MaxKPIs)
	out := make([]KPI, 0, len(names))
	p := message.NewPrinter(language.English)
	for _, name := range names {
		var total float64
		for _, r := range rows {
			total += numberOrZero(r[name])
		}
		out = append(out, KPI{
			Column:      name,
			Title:       capitalize(name),
			Value:       formatTotal(p, name, total),
			Description: "Total " + name,
			Total:       total,
		})
	}
	return out
}

func formatTotal(p *message.Printer, name string, total float64) string {
	if !isMoney(name) {
		return p.Sprint(number.Decimal(total, number.MaxFractionDigits(3)))
	}
	switch {
	case total > 1_000_000:
		return fmt.Sprintf("$%.1fM", total/1_000_000)
	case total > 1_000:
		return fmt.Sprintf("$%.1fK", total/1_000)
	default:
		return "$" + p.Sprint(number.Decimal(total, number.MaxFractionDigits(3)))
	}
}

func isMoney(name string) bool {
	lower := strings.ToLower(name)
	for _, h := range moneyHints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// numberOrZero converts v the way Number(v) || 0 does.
func numberOrZero(v dataset.Value) float64 {
	var f float64
	switch v.Kind() {
	case dataset.KindNumber:
		f, _ = v.Float()
	case dataset.KindString:
		s, _ := v.Text()
		f, _ = ParseNumber(s)
	case dataset.KindTime:
		t, _ := v.Instant()
		f = float64(t.UnixMilli())
	case dataset.KindBool:
		if b, _ := v.Boolean(); b {
			f = 1
		}
	}
	if math.IsNaN(f) {
		return 0
	}
	return f
}
