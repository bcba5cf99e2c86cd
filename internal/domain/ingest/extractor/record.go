// Package extractor turns decoded statement tables into normalized
// transaction records. One extractor exists per known statement layout plus a
// generic heuristic fallback; all of them share the column-discovery and
// amount/date normalization rules in this package.
package extractor

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/finlytics/finlytics-api/internal/domain/ingest/tabular"
)

// Direction is whether a transaction decreases (DEBIT) or increases (CREDIT)
// the account balance.
type Direction string

const (
	DirectionDebit  Direction = "DEBIT"
	DirectionCredit Direction = "CREDIT"
)

// ParsedRecord is the normalized output of an extractor, pre-persistence.
// Amount is always a positive magnitude; records that would resolve to a
// zero or unparseable amount are never emitted.
type ParsedRecord struct {
	Date        time.Time
	Time        string // "HH:MM" when the source provides a time of day
	Description string
	Amount      float64
	Direction   Direction
	Metadata    *RawMetadata
}

// RawMetadata is the full original row keyed by original column label, in
// column order, with missing cells kept as explicit nulls. It preserves
// insertion order through JSON marshalling so the stored metadata reads like
// the source row.
type RawMetadata struct {
	keys   []string
	values map[string]*string
}

// NewRawMetadata returns an empty ordered metadata map.
func NewRawMetadata() *RawMetadata {
	return &RawMetadata{values: make(map[string]*string)}
}

// Set records a label/value pair. A nil value marks a missing cell. Setting
// an existing label overwrites the value but keeps its original position.
func (m *RawMetadata) Set(label string, value *string) {
	if _, exists := m.values[label]; !exists {
		m.keys = append(m.keys, label)
	}
	m.values[label] = value
}

// Get returns the value for a label; the second return is false when the
// label was never captured.
func (m *RawMetadata) Get(label string) (*string, bool) {
	v, ok := m.values[label]
	return v, ok
}

// Len returns the number of captured labels.
func (m *RawMetadata) Len() int {
	return len(m.keys)
}

// MarshalJSON renders the metadata as a JSON object in insertion order.
func (m *RawMetadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if v := m.values[k]; v == nil {
			buf.WriteString("null")
		} else {
			val, err := json.Marshal(*v)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a metadata object, preserving the key order of the
// encoded document.
func (m *RawMetadata) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.values = make(map[string]*string)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var val *string
		if err := dec.Decode(&val); err != nil {
			return err
		}
		m.Set(key, val)
	}
	_, err = dec.Token() // closing brace
	return err
}

// captureRow snapshots a data row keyed by the table's column labels. Cells
// beyond the captured labels (or missing/NaN) become explicit nulls.
func captureRow(table *tabular.Table, row int) *RawMetadata {
	meta := NewRawMetadata()
	for col, label := range table.Columns() {
		if label == "" {
			label = strconv.Itoa(col)
		}
		if v, ok := table.Cell(row, col); ok {
			value := v
			meta.Set(label, &value)
		} else {
			meta.Set(label, nil)
		}
	}
	return meta
}

// capturePositional snapshots a raw row keyed by stringified column index,
// for layouts with no usable header text.
func capturePositional(cells []string) *RawMetadata {
	meta := NewRawMetadata()
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if tabular.IsMissing(cell) {
			meta.Set(strconv.Itoa(i), nil)
			continue
		}
		value := cell
		meta.Set(strconv.Itoa(i), &value)
	}
	return meta
}
