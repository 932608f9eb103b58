package grip

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"
)

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

// dumpConfig holds options for DumpEffective.
type dumpConfig struct {
	withSources bool   // Include source attribution for each field
	asJSON      bool   // Output as JSON instead of text format
	indent      string // Indentation for JSON output (default: "  ")
}

// WithSources includes source attribution for each field in the output.
func WithSources() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withSources = true
	}
}

// AsJSON outputs configuration as JSON instead of text format.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  ").
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// DumpEffective writes a human-readable representation of the configuration.
// Secret fields never leak: resolved secrets render as "***redacted***" and
// unresolved ones as "<unresolved>". Returns an error if writing fails.
func DumpEffective[T any](w io.Writer, cfg *T, opts ...DumpOption) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	config := dumpConfig{
		indent: "  ", // Default indent
	}
	for _, opt := range opts {
		opt(&config)
	}

	// Source attribution comes from stored provenance, keyed by field path
	provenanceMap := make(map[string]*FieldProvenance)
	if prov, ok := GetProvenance(cfg); ok && prov != nil {
		for i := range prov.Fields {
			provenanceMap[prov.Fields[i].FieldPath] = &prov.Fields[i]
		}
	}

	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("config must be a struct or pointer to struct")
	}

	if config.asJSON {
		return dumpAsJSON(w, v, config)
	}
	return dumpAsText(w, v, provenanceMap, config)
}

// fieldLine holds one rendered field for the text dump.
type fieldLine struct {
	keyPath      string
	displayValue string
	source       string
}

// dumpAsText outputs configuration in text format (key: value), sorted by key.
func dumpAsText(w io.Writer, v reflect.Value, provenanceMap map[string]*FieldProvenance, config dumpConfig) error {
	var lines []fieldLine
	collectLines(v, "", "", provenanceMap, &lines)

	sort.Slice(lines, func(i, j int) bool { return lines[i].keyPath < lines[j].keyPath })

	for _, line := range lines {
		out := fmt.Sprintf("%s: %s", line.keyPath, line.displayValue)
		if config.withSources && line.source != "" {
			out += fmt.Sprintf(" (source: %s)", line.source)
		}
		out += "\n"

		if _, err := w.Write([]byte(out)); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}

	return nil
}

// collectLines walks the struct and renders leaves, recursing into nested
// structs and unwrapping set Optionals.
func collectLines(v reflect.Value, fieldPrefix, keyPrefix string, provenanceMap map[string]*FieldProvenance, lines *[]fieldLine) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		fieldPath := field.Name
		if fieldPrefix != "" {
			fieldPath = fieldPrefix + "." + field.Name
		}

		tagCfg := parseTag(field.Tag.Get("conf"))
		keyPath := determineKeyPath(field.Name, tagCfg, keyPrefix)

		var source string
		if prov, ok := provenanceMap[fieldPath]; ok {
			source = prov.Source
		}

		if isSecretType(field.Type) {
			secret := fieldValue.Interface().(Secret)
			*lines = append(*lines, fieldLine{keyPath: keyPath, displayValue: secret.String(), source: source})
			continue
		}

		if isOptionalType(field.Type) {
			setField := fieldValue.Field(1)
			if !setField.Bool() {
				*lines = append(*lines, fieldLine{keyPath: keyPath, displayValue: "<not set>", source: source})
				continue
			}
			valueField := fieldValue.Field(0)
			if valueField.Kind() == reflect.Struct && !isTimeType(valueField.Type()) {
				collectLines(valueField, fieldPath, keyPath, provenanceMap, lines)
				continue
			}
			*lines = append(*lines, fieldLine{keyPath: keyPath, displayValue: formatValueAsString(valueField), source: source})
			continue
		}

		if fieldValue.Kind() == reflect.Struct && !isTimeType(field.Type) {
			nestedPrefix := keyPath
			if tagCfg.prefix != "" {
				nestedPrefix = tagCfg.prefix
			}
			collectLines(fieldValue, fieldPath, nestedPrefix, provenanceMap, lines)
			continue
		}

		*lines = append(*lines, fieldLine{keyPath: keyPath, displayValue: formatValueAsString(fieldValue), source: source})
	}
}

// dumpAsJSON outputs configuration as JSON. Secret redaction happens through
// Secret's own MarshalText, so the struct can be handed to encoding/json
// after being rebuilt as a nested map keyed by document paths.
func dumpAsJSON(w io.Writer, v reflect.Value, config dumpConfig) error {
	result := buildJSONStructure(v)

	var data []byte
	var err error
	if config.indent != "" {
		data, err = json.MarshalIndent(result, "", config.indent)
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write error: %w", err)
	}

	return nil
}

// buildJSONStructure recursively builds a nested map for JSON output.
func buildJSONStructure(v reflect.Value) map[string]any {
	result := make(map[string]any)

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tagCfg := parseTag(field.Tag.Get("conf"))

		// Only the last component of an explicit name is a JSON key
		jsonKey := strings.ToLower(field.Name)
		if tagCfg.name != "" {
			parts := strings.Split(tagCfg.name, ".")
			jsonKey = parts[len(parts)-1]
		}

		if isSecretType(field.Type) {
			result[jsonKey] = fieldValue.Interface().(Secret).String()
			continue
		}

		if isOptionalType(field.Type) {
			setField := fieldValue.Field(1)
			if !setField.Bool() {
				result[jsonKey] = nil
				continue
			}
			valueField := fieldValue.Field(0)
			if valueField.Kind() == reflect.Struct && !isTimeType(valueField.Type()) {
				result[jsonKey] = buildJSONStructure(valueField)
			} else {
				result[jsonKey] = formatValueForJSON(valueField)
			}
			continue
		}

		if fieldValue.Kind() == reflect.Struct && !isTimeType(field.Type) {
			result[jsonKey] = buildJSONStructure(fieldValue)
			continue
		}

		result[jsonKey] = formatValueForJSON(fieldValue)
	}

	return result
}

// formatValueForJSON returns a field value in its natural JSON type.
func formatValueForJSON(v reflect.Value) any {
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == reflect.TypeOf(time.Duration(0)) {
			return v.Interface().(time.Duration).String()
		}
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Slice:
		slice := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			slice[i] = formatValueForJSON(v.Index(i))
		}
		return slice
	case reflect.Struct:
		if v.Type() == reflect.TypeOf(time.Time{}) {
			return v.Interface().(time.Time).Format(time.RFC3339)
		}
		return v.Interface()
	default:
		return v.Interface()
	}
}

// formatValueAsString formats a field value for text output.
func formatValueAsString(v reflect.Value) string {
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return "<nil>"
	}

	switch v.Kind() {
	case reflect.String:
		return fmt.Sprintf("%q", v.String())
	case reflect.Bool:
		return fmt.Sprintf("%t", v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == reflect.TypeOf(time.Duration(0)) {
			return v.Interface().(time.Duration).String()
		}
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%g", v.Float())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.String {
			strs := make([]string, v.Len())
			for i := 0; i < v.Len(); i++ {
				strs[i] = v.Index(i).String()
			}
			return fmt.Sprintf("[%s]", strings.Join(strs, ", "))
		}
		return fmt.Sprintf("%v", v.Interface())
	case reflect.Struct:
		if v.Type() == reflect.TypeOf(time.Time{}) {
			return v.Interface().(time.Time).Format(time.RFC3339)
		}
		return fmt.Sprintf("%v", v.Interface())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
