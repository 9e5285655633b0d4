// Package record describes the shape of data exchanged with a record backend:
// loosely typed records, queries over them, and the tagged result every
// backend call produces.
package record

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// IDField is the key holding a record's numeric identifier.
const IDField = "Id"

// Record is a single row as the backend returns it.
type Record map[string]any

// ID returns the record identifier, accepting the numeric and string forms
// backends send.
func (r Record) ID() (int64, bool) {
	switch v := r[IDField].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Only returns a copy of r restricted to fields. The ID is always kept.
// An empty field list returns a full copy.
func (r Record) Only(fields []string) Record {
	out := make(Record, len(fields)+1)
	if len(fields) == 0 {
		for k, v := range r {
			out[k] = v
		}
		return out
	}
	if id, ok := r[IDField]; ok {
		out[IDField] = id
	}
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

// Decode converts a record into a typed value through its JSON tags.
func Decode[T any](r Record) (T, error) {
	var out T
	raw, err := json.Marshal(r)
	if err != nil {
		return out, fmt.Errorf("marshal record: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}
