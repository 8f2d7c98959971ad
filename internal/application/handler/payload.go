package handler

import (
	"encoding/json"
	"fmt"
	"time"
)

// Payload is the arbitrary key-value form data accompanying a workflow
// action. Handlers read it through typed accessors; unknown keys are ignored.
type Payload map[string]interface{}

// Bool returns a boolean payload value and whether the key was present
func (p Payload) Bool(key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}

// String returns a string payload value, or "" when absent
func (p Payload) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Int64 returns an integer payload value and whether the key was present.
// JSON-decoded numbers arrive as float64 and are accepted.
func (p Payload) Int64(key string) (int64, bool) {
	switch v := p[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}
	return 0, false
}

// Time returns a timestamp payload value. Accepts time.Time or an RFC 3339 /
// date-only string.
func (p Payload) Time(key string) (time.Time, bool) {
	switch v := p[key].(type) {
	case time.Time:
		return v, true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DecodeJSON re-marshals a payload value into the given destination. Used
// for structured entries such as the new-member list.
func (p Payload) DecodeJSON(key string, dest interface{}) error {
	v, ok := p[key]
	if !ok {
		return fmt.Errorf("payload key %q not present", key)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode payload key %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode payload key %q: %w", key, err)
	}
	return nil
}

// Has returns true if the key is present
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}
