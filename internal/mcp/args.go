package mcp

import (
	"fmt"
	"time"
)

// toolArgs is the decoded argument object of a tool call.
type toolArgs map[string]interface{}

func argsOf(raw interface{}) (toolArgs, error) {
	if raw == nil {
		return toolArgs{}, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid arguments format")
	}
	return toolArgs(m), nil
}

// str returns a string argument. Missing optional arguments yield "".
func (a toolArgs) str(key string, required bool) (string, error) {
	val, ok := a[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	if required && s == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return s, nil
}

// intPtr distinguishes "not provided" (nil) from an explicit 0.
// Numbers arrive as float64.
func (a toolArgs) intPtr(key string) (*int, error) {
	val, ok := a[key]
	if !ok {
		return nil, nil
	}
	f, ok := val.(float64)
	if !ok {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	n := int(f)
	return &n, nil
}

// clamped returns an integer argument bounded to [lo, hi], or def when missing.
func (a toolArgs) clamped(key string, def, lo, hi int) int {
	n, err := a.intPtr(key)
	if err != nil || n == nil {
		return def
	}
	return min(max(*n, lo), hi)
}

// since parses an RFC 3339 timestamp or a plain YYYY-MM-DD date.
func (a toolArgs) since(key string) (time.Time, error) {
	s, err := a.str(key, false)
	if err != nil || s == "" {
		return time.Time{}, err
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC 3339 or YYYY-MM-DD: %q", key, s)
	}
	return t, nil
}
