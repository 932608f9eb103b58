package normalize

import "strings"

// ToLowerDotPath normalizes a configuration key to a lowercase dot-separated path.
// Double underscores (__) are treated as level separators and converted to dots.
// Single underscores within a level are preserved.
// Examples:
//   - "DATABASE__PASSWORD" → "database.password"
//   - "API_KEY" → "api_key"
//   - "SMTP__AUTH_TOKEN" → "smtp.auth_token"
func ToLowerDotPath(key string) string {
	normalized := strings.ReplaceAll(key, "__", ".")
	return strings.ToLower(normalized)
}

// FieldKey derives the default document key for a struct field name.
// Field names are lowercased wholesale, so both "Host" and "APIKey"
// produce keys that match lowercased document paths.
// Examples:
//   - "Host" → "host"
//   - "APIKey" → "apikey"
func FieldKey(fieldName string) string {
	return strings.ToLower(fieldName)
}

// ApplyPrefix combines a prefix with a key to create a nested configuration path.
// Examples:
//   - ApplyPrefix("database", "host") → "database.host"
//   - ApplyPrefix("", "host") → "host"
func ApplyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	return prefix + "." + key
}
