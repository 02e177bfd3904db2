// Package shape holds the small JSON helpers shared by the source adapters'
// shape guards.
package shape

import (
	"bytes"
	"encoding/json"
)

// IsArray reports whether raw is a JSON array (ignoring surrounding whitespace).
// null, objects and absent fields are not arrays.
func IsArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// Entries splits a JSON array into its elements.
// It returns nil when raw is not a well-formed array.
func Entries(raw json.RawMessage) []json.RawMessage {
	if !IsArray(raw) {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}

// Decode unmarshals each array element into T, skipping elements that fail
// to decode. A malformed entry never poisons its siblings.
func Decode[T any](raw json.RawMessage) []T {
	entries := Entries(raw)
	out := make([]T, 0, len(entries))
	for _, entry := range entries {
		var v T
		if err := json.Unmarshal(entry, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
