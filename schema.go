package grip

import (
	"reflect"
	"strings"

	"github.com/vnyb/grip/internal/normalize"
)

var secretType = reflect.TypeOf(Secret{})

// isSecretType reports whether t is the grip.Secret placeholder type.
func isSecretType(t reflect.Type) bool {
	return t == secretType
}

// isOptionalType reports whether t is an instantiation of grip.Optional.
func isOptionalType(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && strings.HasPrefix(t.String(), "grip.Optional[")
}

// isTimeType reports whether t is a time package type bound as a primitive.
func isTimeType(t reflect.Type) bool {
	return t.PkgPath() == "time"
}

// determineKeyPath resolves the document key path for a struct field.
// An explicit name tag wins; otherwise the lowercased field name is
// appended to the enclosing prefix.
func determineKeyPath(fieldName string, tags tagConfig, prefix string) string {
	if tags.name != "" {
		return tags.name
	}
	return normalize.ApplyPrefix(prefix, normalize.FieldKey(fieldName))
}

// collectValidKeys recursively collects all valid document keys for a
// schema type. Used for unknown-key rejection in strict mode.
func collectValidKeys(t reflect.Type, prefix string) map[string]bool {
	validKeys := make(map[string]bool)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return validKeys
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tagCfg := parseTag(field.Tag.Get("conf"))
		keyPath := determineKeyPath(field.Name, tagCfg, prefix)
		validKeys[keyPath] = true

		fieldType := field.Type

		if isOptionalType(fieldType) {
			// For Optional[T], nested keys come from the inner type
			innerType := fieldType.Field(0).Type
			if innerType.Kind() == reflect.Struct && !isTimeType(innerType) {
				for k := range collectValidKeys(innerType, keyPath) {
					validKeys[k] = true
				}
			}
		} else if fieldType.Kind() == reflect.Struct && !isTimeType(fieldType) && !isSecretType(fieldType) {
			nestedPrefix := keyPath
			if tagCfg.prefix != "" {
				nestedPrefix = tagCfg.prefix
			}
			for k := range collectValidKeys(fieldType, nestedPrefix) {
				validKeys[k] = true
			}
		}
	}

	return validKeys
}

// secretField locates one declared secret field: its document key path and
// the index chain to reach it from the root struct.
type secretField struct {
	keyPath   string
	fieldPath string
	index     []int
}

// collectSecretFields recursively collects every Secret-typed field of a
// schema type, keyed for injection and error reporting.
func collectSecretFields(t reflect.Type, keyPrefix, fieldPrefix string, index []int) []secretField {
	var fields []secretField

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fields
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tagCfg := parseTag(field.Tag.Get("conf"))
		keyPath := determineKeyPath(field.Name, tagCfg, keyPrefix)
		fieldPath := field.Name
		if fieldPrefix != "" {
			fieldPath = fieldPrefix + "." + field.Name
		}

		chain := append(append([]int(nil), index...), i)

		if isSecretType(field.Type) {
			fields = append(fields, secretField{
				keyPath:   keyPath,
				fieldPath: fieldPath,
				index:     chain,
			})
			continue
		}

		if field.Type.Kind() == reflect.Struct && !isTimeType(field.Type) && !isOptionalType(field.Type) {
			nestedPrefix := keyPath
			if tagCfg.prefix != "" {
				nestedPrefix = tagCfg.prefix
			}
			fields = append(fields, collectSecretFields(field.Type, nestedPrefix, fieldPath, chain)...)
		}
	}

	return fields
}

// findUnresolvedSecrets walks a struct value and returns the field paths of
// any Secret still in the unresolved state. Used both for phase-1 skip
// logic and as the defensive post-injection invariant check.
func findUnresolvedSecrets(v reflect.Value, fieldPrefix string) []string {
	var pending []string

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return pending
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return pending
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldPath := field.Name
		if fieldPrefix != "" {
			fieldPath = fieldPrefix + "." + field.Name
		}

		fv := v.Field(i)
		if isSecretType(field.Type) {
			if s, ok := fv.Interface().(Secret); ok && !s.Resolved() {
				pending = append(pending, fieldPath)
			}
			continue
		}

		if field.Type.Kind() == reflect.Struct && !isTimeType(field.Type) && !isOptionalType(field.Type) {
			pending = append(pending, findUnresolvedSecrets(fv, fieldPath)...)
		}
	}

	return pending
}
