package task

import (
	"encoding/json"
	"fmt"
	"time"
)

// localTimestamp is ISO-8601 without a UTC offset, as written by writers
// that keep naive local times.
const localTimestamp = "2006-01-02T15:04:05.999999999"

// ParseTimestamp parses an ISO-8601 date-time. RFC 3339 is tried first; a
// value without an offset is taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(localTimestamp, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: want ISO-8601 date-time", s)
	}
	return t, nil
}

// UnmarshalJSON decodes a task, accepting timestamps with or without a
// UTC offset. Absent or null timestamps stay zero.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		CreatedAt *string `json:"created_at"`
		UpdatedAt *string `json:"updated_at"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	for _, ts := range []struct {
		field string
		raw   *string
		dst   *time.Time
	}{
		{"created_at", aux.CreatedAt, &t.CreatedAt},
		{"updated_at", aux.UpdatedAt, &t.UpdatedAt},
	} {
		if ts.raw == nil {
			continue
		}
		parsed, err := ParseTimestamp(*ts.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", ts.field, err)
		}
		*ts.dst = parsed
	}
	return nil
}
