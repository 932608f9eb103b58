package grip

import "strings"

// docEntry is a single flattened document value together with its origin,
// recorded for provenance.
type docEntry struct {
	value  any
	source string
}

// flattenDocument flattens a nested document into dot-separated lowercase
// key paths. Sequences are leaves; only mappings introduce nesting.
func flattenDocument(doc Document, source string) map[string]docEntry {
	result := make(map[string]docEntry)
	flattenValue("", map[string]any(doc), result, source)
	return result
}

func flattenValue(prefix string, value any, result map[string]docEntry, source string) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flattenValue(joinKey(prefix, key), val, result, source)
		}
	case map[any]any:
		// yaml.v3 produces map[any]any for some nested mappings
		for key, val := range v {
			keyStr, ok := key.(string)
			if !ok {
				continue
			}
			flattenValue(joinKey(prefix, keyStr), val, result, source)
		}
	default:
		if prefix != "" {
			result[prefix] = docEntry{value: value, source: source}
		}
	}
}

func joinKey(prefix, key string) string {
	key = strings.ToLower(key)
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
