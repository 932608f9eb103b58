package grip

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Provenance source labels.
const (
	sourceDocument = "document"
	sourceDefault  = "default"
	sourcePending  = "pending"
	sourceInjected = "injected"
)

// bindStruct populates a struct from flattened document entries.
// It records provenance for every field it touches and returns type errors
// without short-circuiting; required checks belong to the validation phase.
func bindStruct(v reflect.Value, data map[string]docEntry, prov *[]FieldProvenance, fieldPrefix, keyPrefix string) []FieldError {
	var fieldErrors []FieldError

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fieldErrors
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fieldErrors
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
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

		// Secret fields: bound when the document supplies a value,
		// otherwise left as the unresolved placeholder for phase 2.
		if isSecretType(field.Type) {
			entry, ok := data[keyPath]
			if !ok {
				*prov = append(*prov, FieldProvenance{
					FieldPath: fieldPath,
					KeyPath:   keyPath,
					Source:    sourcePending,
					Secret:    true,
				})
				continue
			}
			if ferr := bindSecret(fieldValue, entry.value, fieldPath); ferr != nil {
				fieldErrors = append(fieldErrors, *ferr)
				continue
			}
			*prov = append(*prov, FieldProvenance{
				FieldPath: fieldPath,
				KeyPath:   keyPath,
				Source:    entry.source,
				Secret:    true,
			})
			continue
		}

		// Optional fields: absent means unset, no default applies.
		if isOptionalType(field.Type) {
			errs := bindOptional(fieldValue, data, keyPath, fieldPath, prov)
			fieldErrors = append(fieldErrors, errs...)
			continue
		}

		// Nested structs recurse with their key prefix. A leaf entry at
		// the struct's own key path means the document supplied a scalar
		// where a mapping is declared.
		if field.Type.Kind() == reflect.Struct && !isTimeType(field.Type) {
			nestedPrefix := keyPath
			if tagCfg.prefix != "" {
				nestedPrefix = tagCfg.prefix
			}
			if entry, ok := data[nestedPrefix]; ok {
				fieldErrors = append(fieldErrors, FieldError{
					FieldPath: fieldPath,
					Code:      ErrCodeInvalidType,
					Message:   fmt.Sprintf("cannot use %T as a nested mapping", entry.value),
					Value:     entry.value,
				})
				continue
			}
			errs := bindStruct(fieldValue, data, prov, fieldPath, nestedPrefix)
			fieldErrors = append(fieldErrors, errs...)
			continue
		}

		entry, ok := data[keyPath]
		if !ok {
			if tagCfg.hasDefault {
				if ferr := setFromString(fieldValue, tagCfg.defValue, fieldPath); ferr != nil {
					fieldErrors = append(fieldErrors, *ferr)
					continue
				}
				*prov = append(*prov, FieldProvenance{
					FieldPath: fieldPath,
					KeyPath:   keyPath,
					Source:    sourceDefault,
				})
			}
			continue
		}

		if ferr := setFieldValue(fieldValue, entry.value, fieldPath); ferr != nil {
			fieldErrors = append(fieldErrors, *ferr)
			continue
		}
		*prov = append(*prov, FieldProvenance{
			FieldPath: fieldPath,
			KeyPath:   keyPath,
			Source:    entry.source,
		})
	}

	return fieldErrors
}

// bindSecret assigns a document-supplied secret value.
func bindSecret(fieldValue reflect.Value, raw any, fieldPath string) *FieldError {
	switch v := raw.(type) {
	case string:
		fieldValue.Set(reflect.ValueOf(NewSecret(v)))
		return nil
	case Secret:
		if !v.Resolved() {
			return &FieldError{
				FieldPath: fieldPath,
				Code:      ErrCodeSecretType,
				Message:   "secret value is unresolved",
				Value:     raw,
			}
		}
		fieldValue.Set(reflect.ValueOf(v))
		return nil
	default:
		return &FieldError{
			FieldPath: fieldPath,
			Code:      ErrCodeSecretType,
			Message:   fmt.Sprintf("expected string secret value, got %T", raw),
			Value:     raw,
		}
	}
}

// bindOptional populates an Optional[T] field when its key (or, for nested
// struct values, any key under it) is present.
func bindOptional(fieldValue reflect.Value, data map[string]docEntry, keyPath, fieldPath string, prov *[]FieldProvenance) []FieldError {
	var fieldErrors []FieldError

	valueField := fieldValue.Field(0) // Value
	setField := fieldValue.Field(1)   // Set

	innerType := valueField.Type()
	if innerType.Kind() == reflect.Struct && !isTimeType(innerType) && !isSecretType(innerType) {
		if entry, ok := data[keyPath]; ok {
			return append(fieldErrors, FieldError{
				FieldPath: fieldPath,
				Code:      ErrCodeInvalidType,
				Message:   fmt.Sprintf("cannot use %T as a nested mapping", entry.value),
				Value:     entry.value,
			})
		}
		if !hasKeyWithPrefix(data, keyPath+".") {
			return fieldErrors
		}
		setField.SetBool(true)
		return bindStruct(valueField, data, prov, fieldPath, keyPath)
	}

	entry, ok := data[keyPath]
	if !ok {
		return fieldErrors
	}

	if ferr := setFieldValue(valueField, entry.value, fieldPath); ferr != nil {
		return append(fieldErrors, *ferr)
	}
	setField.SetBool(true)
	*prov = append(*prov, FieldProvenance{
		FieldPath: fieldPath,
		KeyPath:   keyPath,
		Source:    entry.source,
	})
	return fieldErrors
}

func hasKeyWithPrefix(data map[string]docEntry, prefix string) bool {
	for k := range data {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// setFieldValue converts a document value to the field's type and assigns it.
// Conversions are strict: only lossless cross-kind coercion is accepted
// (e.g. an integral float64 from JSON into an int field). Strings are never
// parsed into numbers or booleans, with the single exception of the string
// forms of time.Duration and time.Time, which have no native document
// representation.
func setFieldValue(fieldValue reflect.Value, raw any, fieldPath string) *FieldError {
	if raw == nil {
		return typeError(fieldPath, fieldValue.Type(), raw)
	}

	switch fieldValue.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return typeError(fieldPath, fieldValue.Type(), raw)
		}
		fieldValue.SetString(s)
		return nil

	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return typeError(fieldPath, fieldValue.Type(), raw)
		}
		fieldValue.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if fieldValue.Type() == reflect.TypeOf(time.Duration(0)) {
			s, ok := raw.(string)
			if !ok {
				return typeError(fieldPath, fieldValue.Type(), raw)
			}
			d, err := time.ParseDuration(s)
			if err != nil {
				return typeError(fieldPath, fieldValue.Type(), raw)
			}
			fieldValue.SetInt(int64(d))
			return nil
		}
		n, ok := toInt64(raw)
		if !ok || fieldValue.OverflowInt(n) {
			return typeError(fieldPath, fieldValue.Type(), raw)
		}
		fieldValue.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := toInt64(raw)
		if !ok || n < 0 || fieldValue.OverflowUint(uint64(n)) {
			return typeError(fieldPath, fieldValue.Type(), raw)
		}
		fieldValue.SetUint(uint64(n))
		return nil

	case reflect.Float32, reflect.Float64:
		f, ok := toFloat64(raw)
		if !ok || fieldValue.OverflowFloat(f) {
			return typeError(fieldPath, fieldValue.Type(), raw)
		}
		fieldValue.SetFloat(f)
		return nil

	case reflect.Slice:
		return setSliceValue(fieldValue, raw, fieldPath)

	case reflect.Struct:
		if fieldValue.Type() == reflect.TypeOf(time.Time{}) {
			switch v := raw.(type) {
			case time.Time:
				fieldValue.Set(reflect.ValueOf(v))
				return nil
			case string:
				parsed, err := time.Parse(time.RFC3339, v)
				if err != nil {
					return typeError(fieldPath, fieldValue.Type(), raw)
				}
				fieldValue.Set(reflect.ValueOf(parsed))
				return nil
			}
		}
		return typeError(fieldPath, fieldValue.Type(), raw)

	default:
		return typeError(fieldPath, fieldValue.Type(), raw)
	}
}

// setSliceValue converts a document sequence into a typed slice, element
// by element.
func setSliceValue(fieldValue reflect.Value, raw any, fieldPath string) *FieldError {
	var elems []any
	switch v := raw.(type) {
	case []any:
		elems = v
	case []string:
		elems = make([]any, len(v))
		for i, s := range v {
			elems[i] = s
		}
	default:
		return typeError(fieldPath, fieldValue.Type(), raw)
	}

	slice := reflect.MakeSlice(fieldValue.Type(), len(elems), len(elems))
	for i, elem := range elems {
		elemPath := fmt.Sprintf("%s[%d]", fieldPath, i)
		if ferr := setFieldValue(slice.Index(i), elem, elemPath); ferr != nil {
			return ferr
		}
	}
	fieldValue.Set(slice)
	return nil
}

// setFromString parses a tag default into the field's type.
func setFromString(fieldValue reflect.Value, raw, fieldPath string) *FieldError {
	switch fieldValue.Kind() {
	case reflect.String:
		fieldValue.SetString(raw)
		return nil

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return typeError(fieldPath, fieldValue.Type(), raw)
		}
		fieldValue.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if fieldValue.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return typeError(fieldPath, fieldValue.Type(), raw)
			}
			fieldValue.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || fieldValue.OverflowInt(n) {
			return typeError(fieldPath, fieldValue.Type(), raw)
		}
		fieldValue.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || fieldValue.OverflowUint(n) {
			return typeError(fieldPath, fieldValue.Type(), raw)
		}
		fieldValue.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || fieldValue.OverflowFloat(f) {
			return typeError(fieldPath, fieldValue.Type(), raw)
		}
		fieldValue.SetFloat(f)
		return nil

	case reflect.Slice:
		if fieldValue.Type().Elem().Kind() != reflect.String {
			return typeError(fieldPath, fieldValue.Type(), raw)
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		fieldValue.Set(reflect.ValueOf(parts))
		return nil

	default:
		return typeError(fieldPath, fieldValue.Type(), raw)
	}
}

// toInt64 widens any integer kind, and integral floats, to int64.
func toInt64(raw any) (int64, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		// JSON numbers arrive as float64; accept only integral values
		if f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// toFloat64 widens numeric kinds to float64.
func toFloat64(raw any) (float64, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}

func typeError(fieldPath string, want reflect.Type, raw any) *FieldError {
	return &FieldError{
		FieldPath: fieldPath,
		Code:      ErrCodeInvalidType,
		Message:   fmt.Sprintf("cannot use %T as %s without lossy coercion", raw, want),
		Value:     raw,
	}
}
