package tools

// Argument extraction helpers for RunFuncs. Model-produced arguments arrive as
// a JSON object, so numbers decode as float64 and lists as []any.

// StringArg returns the named string argument, or "" when absent or not a
// string.
func StringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// StringSliceArg returns the named list-of-strings argument. Non-string
// elements are skipped.
func StringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// BoolArg returns the named boolean argument, or false when absent.
func BoolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// IntArg returns the named integer argument, or fallback when absent.
func IntArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}
