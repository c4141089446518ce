package inception

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// splitFields decodes a JSON object, returning the raw values of the known
// keys and the decoded values of every other key. A JSON null decodes to
// two empty maps.
func splitFields(data []byte, known ...string) (map[string]json.RawMessage, map[string]any, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, nil, err
	}

	fields := make(map[string]json.RawMessage, len(known))
	extra := make(map[string]any)
	for key, raw := range all {
		if containsString(known, key) {
			fields[key] = raw
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", key, err)
		}
		extra[key] = v
	}
	return fields, extra, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// stringValue reads a JSON string or number as a string. Missing and null
// values yield "".
func stringValue(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", raw)
	}
	return n.String(), nil
}

// int64Value reads a JSON number or numeric string. Missing, null and
// empty values yield 0.
func int64Value(raw json.RawMessage) (int64, error) {
	s, err := stringValue(raw)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer, got %q", s)
	}
	return int64(f), nil
}

func uint32Value(raw json.RawMessage) (uint32, error) {
	v, err := int64Value(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > int64(^uint32(0)) {
		return 0, fmt.Errorf("value %d out of range", v)
	}
	return uint32(v), nil
}

func boolValue(raw json.RawMessage) (bool, error) {
	if isNull(raw) {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, fmt.Errorf("expected boolean, got %s", raw)
	}
	return b, nil
}

// anyInt64 converts an already-decoded JSON value to an integer.
// Unconvertible values yield def.
func anyInt64(v any, def int64) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i
		}
	}
	return def
}

// anyString converts an already-decoded JSON scalar to a string.
// nil and non-scalar values yield "".
func anyString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}
