package tools

import (
	"fmt"
	"math"

	"github.com/nibzard/tasks-go/internal/task"
)

// arguments wraps the decoded parameters of a tool call. Every parameter is
// required, so a missing key is always a validation error.
type arguments map[string]any

func (a arguments) lookup(key string) (any, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, &task.ValidationError{Field: key, Reason: "missing required parameter"}
	}
	return v, nil
}

func typeError(key, want string, got any) error {
	return &task.ValidationError{Field: key, Reason: fmt.Sprintf("must be %s, got %T", want, got)}
}

func (a arguments) str(key string) (string, error) {
	v, err := a.lookup(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", typeError(key, "a string", v)
	}
	return s, nil
}

func (a arguments) boolean(key string) (bool, error) {
	v, err := a.lookup(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, typeError(key, "a boolean", v)
	}
	return b, nil
}

func (a arguments) integer(key string) (int, error) {
	v, err := a.lookup(key)
	if err != nil {
		return 0, err
	}
	n, ok := toInt(v)
	if !ok {
		return 0, typeError(key, "an integer", v)
	}
	return n, nil
}

func (a arguments) strings(key string) ([]string, error) {
	v, err := a.lookup(key)
	if err != nil {
		return nil, err
	}
	switch items := v.(type) {
	case []string:
		return append([]string{}, items...), nil
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, typeError(key, "an array of strings", v)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, typeError(key, "an array of strings", v)
}

func (a arguments) ints(key string) ([]int, error) {
	v, err := a.lookup(key)
	if err != nil {
		return nil, err
	}
	switch items := v.(type) {
	case []int:
		return append([]int{}, items...), nil
	case []any:
		out := make([]int, 0, len(items))
		for _, item := range items {
			n, ok := toInt(item)
			if !ok {
				return nil, typeError(key, "an array of integers", v)
			}
			out = append(out, n)
		}
		return out, nil
	}
	return nil, typeError(key, "an array of integers", v)
}

// toInt accepts the numeric forms a decoded JSON value can take.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) >= math.MaxInt {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
