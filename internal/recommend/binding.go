package recommend

import (
	"encoding/json"
	"fmt"
)

// Binding assigns columns to a chart kind's roles. The concrete types are
// AxisBinding, BarBinding, PieBinding and RadarBinding.
type Binding interface {
	// Columns lists the bound column names, role order.
	Columns() []string
	isBinding()
}

// AxisBinding serves line, area and scatter charts.
type AxisBinding struct {
	XAxis string   `json:"xAxis"`
	YAxis []string `json:"yAxis"`
}

// BarBinding serves bar charts.
type BarBinding struct {
	CategoryKey string `json:"categoryKey"`
	ValueKey    string `json:"valueKey"`
}

// PieBinding serves pie charts.
type PieBinding struct {
	NameKey  string `json:"nameKey"`
	ValueKey string `json:"valueKey"`
}

// RadarBinding serves radar charts. ValueKeys holds 2 to MaxRadarKeys names.
type RadarBinding struct {
	CategoryKey string   `json:"categoryKey"`
	ValueKeys   []string `json:"valueKeys"`
}

func (b AxisBinding) Columns() []string  { return append([]string{b.XAxis}, b.YAxis...) }
func (b BarBinding) Columns() []string   { return []string{b.CategoryKey, b.ValueKey} }
func (b PieBinding) Columns() []string   { return []string{b.NameKey, b.ValueKey} }
func (b RadarBinding) Columns() []string { return append([]string{b.CategoryKey}, b.ValueKeys...) }

func (AxisBinding) isBinding()  {}
func (BarBinding) isBinding()   {}
func (PieBinding) isBinding()   {}
func (RadarBinding) isBinding() {}

// Suggestion is a chart kind together with its role bindings.
type Suggestion struct {
	Kind    ChartKind
	Binding Binding
}

// MarshalJSON flattens the binding next to a "chartType" tag.
func (s Suggestion) MarshalJSON() ([]byte, error) {
	kind, err := json.Marshal(s.Kind)
	if err != nil {
		return nil, err
	}
	out := append([]byte(`{"chartType":`), kind...)
	if s.Binding == nil {
		return append(out, '}'), nil
	}
	b, err := json.Marshal(s.Binding)
	if err != nil {
		return nil, fmt.Errorf("marshal %s binding: %w", s.Kind, err)
	}
	if len(b) > 2 {
		out = append(out, ',')
		out = append(out, b[1:]...)
		return out, nil
	}
	return append(out, '}'), nil
}

// UnmarshalJSON picks the binding type from "chartType".
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	var head struct {
		ChartType string `json:"chartType"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	kind, err := ParseKind(head.ChartType)
	if err != nil {
		return err
	}
	var b Binding
	switch kind {
	case Line, Area, Scatter:
		var ab AxisBinding
		err = json.Unmarshal(data, &ab)
		b = ab
	case Bar:
		var bb BarBinding
		err = json.Unmarshal(data, &bb)
		b = bb
	case Pie:
		var pb PieBinding
		err = json.Unmarshal(data, &pb)
		b = pb
	case Radar:
		var rb RadarBinding
		err = json.Unmarshal(data, &rb)
		b = rb
	}
	if err != nil {
		return fmt.Errorf("decode %s binding: %w", kind, err)
	}
	s.Kind, s.Binding = kind, b
	return nil
}
