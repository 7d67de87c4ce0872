package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// errUnsupportedObject is returned for a JSON object that is not a known dump
// shape. Such input parses to nothing instead of being read as a table.
var errUnsupportedObject = errors.New("unsupported JSON object")

// isJSONObject reports whether raw is one well-formed JSON object
func isJSONObject(raw string) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal([]byte(raw), &obj) == nil
}

// decodeLoose decodes JSON keeping numbers as json.Number
func decodeLoose(raw string, v any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// decodeObjectArray decodes a JSON array of flat objects. Elements that are
// not objects are returned as nil entries so positional names stay stable.
func decodeObjectArray(raw string) ([]map[string]any, error) {
	var items []any
	if err := decodeLoose(raw, &items); err != nil {
		return nil, err
	}
	objects := make([]map[string]any, len(items))
	for i, item := range items {
		if obj, ok := item.(map[string]any); ok {
			objects[i] = obj
		}
	}
	return objects, nil
}

// jsonString returns the first present synonym as text
func jsonString(obj map[string]any, synonyms Synonyms, field Field) string {
	v, ok := lookup(obj, synonyms[field])
	if !ok {
		return ""
	}
	return stringValue(v)
}

// jsonValue returns the first present synonym as its raw decoded value
func jsonValue(obj map[string]any, synonyms Synonyms, field Field) any {
	v, _ := lookup(obj, synonyms[field])
	return v
}
