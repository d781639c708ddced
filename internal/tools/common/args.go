package common

import (
	"fmt"
	"strings"
)

// StringArg returns args[name] as a string, or "" when absent or not a string.
func StringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// RequiredStringArg returns args[name] or an error when it is missing or empty.
func RequiredStringArg(args map[string]any, name string) (string, error) {
	s := StringArg(args, name)
	if s == "" {
		return "", fmt.Errorf("'%s' field is required", name)
	}
	return s, nil
}

// IntArg returns args[name] as an int64. JSON numbers arrive as float64.
func IntArg(args map[string]any, name string, defaultValue int64) int64 {
	switch v := args[name].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return defaultValue
	}
}

// StringListArg parses a parameter that can be a single string (comma-separated)
// or an array of strings. A missing parameter yields nil and no error.
func StringListArg(args map[string]any, name string) ([]string, error) {
	var result []string

	switch v := args[name].(type) {
	case nil:
		return nil, nil
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	case []string:
		for i, s := range v {
			if s == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", name, i)
			}
		}
		result = append(result, v...)
	case []any:
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", name, i)
			}
			if s == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", name, i)
			}
			result = append(result, s)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", name)
	}

	return result, nil
}
