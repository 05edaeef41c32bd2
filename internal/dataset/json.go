package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotArray is returned when the input is not a JSON array of records.
var ErrNotArray = errors.New("expected a JSON array of records")

// ParseRecords decodes a JSON array of flat objects. Column order follows the
// key order of the first object.
func ParseRecords(b []byte) (*Dataset, error) {
	return DecodeJSON(bytes.NewReader(b))
}

// DecodeJSON reads a JSON array of flat objects from r.
func DecodeJSON(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNotArray
		}
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, ErrNotArray
	}
	var (
		columns []string
		rows    []Row
	)
	for dec.More() {
		row, keys, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(rows)+1, err)
		}
		if columns == nil {
			columns = keys
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return New(columns, rows), nil
}

func decodeObject(dec *json.Decoder) (Row, []string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}
	row := Row{}
	keys := []string{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected key token %v", kt)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", key, err)
		}
		if _, dup := row[key]; !dup {
			keys = append(keys, key)
		}
		row[key] = FromAny(raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return row, keys, nil
}

// FromRecords converts generic maps into a dataset. columns fixes the order;
// when omitted the first record's keys are sorted.
func FromRecords(records []map[string]any, columns ...string) *Dataset {
	rows := make([]Row, len(records))
	for i, rec := range records {
		r := make(Row, len(rec))
		for k, v := range rec {
			r[k] = FromAny(v)
		}
		rows[i] = r
	}
	return New(columns, rows)
}

// EncodeRecords writes rows as a JSON array of objects whose keys follow
// d.Columns, so DecodeJSON recovers the same column order.
func (d *Dataset) EncodeRecords() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range d.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range d.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(col)
			if err != nil {
				return nil, err
			}
			v, err := r[col].MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, col, err)
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
