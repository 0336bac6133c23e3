package normalize

import (
	"strings"
	"unicode"
)

// Snake converts a Go field name to the snake_case key used by config
// sources. Acronym runs are kept together.
// Examples:
//   - "VarInt" → "var_int"
//   - "Host" → "host"
//   - "APIKey" → "api_key"
func Snake(fieldName string) string {
	var b strings.Builder
	runes := []rune(fieldName)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (i > 0 && nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FoldHyphens rewrites a file key to its env-var-safe spelling.
// Example: "var-str" → "var_str".
func FoldHyphens(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}
