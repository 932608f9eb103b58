package grip

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// validateStruct walks a struct and validates all fields according to their tags.
// Unresolved secrets are skipped entirely: their constraints only become
// meaningful after injection, and injection itself guarantees resolution.
func validateStruct(cfg reflect.Value) []FieldError {
	return validateStructRecursive(cfg, "")
}

func validateStructRecursive(cfg reflect.Value, parentFieldPath string) []FieldError {
	var fieldErrors []FieldError

	if cfg.Kind() == reflect.Ptr {
		if cfg.IsNil() {
			return fieldErrors
		}
		cfg = cfg.Elem()
	}
	if cfg.Kind() != reflect.Struct {
		return fieldErrors
	}

	cfgType := cfg.Type()

	for i := 0; i < cfg.NumField(); i++ {
		field := cfgType.Field(i)
		fieldValue := cfg.Field(i)

		if !field.IsExported() {
			continue
		}

		fieldPath := field.Name
		if parentFieldPath != "" {
			fieldPath = parentFieldPath + "." + field.Name
		}

		tagCfg := parseTag(field.Tag.Get("conf"))

		// Secret fields: only resolved values are checked. min/max apply
		// to the length of the secret string.
		if isSecretType(field.Type) {
			secret := fieldValue.Interface().(Secret)
			if !secret.Resolved() {
				continue
			}
			errs := validateField(reflect.ValueOf(secret.Value()), fieldPath, tagCfg)
			fieldErrors = append(fieldErrors, errs...)
			continue
		}

		// Optional[T]: validate the inner value only if set.
		if isOptionalType(fieldValue.Type()) {
			setField := fieldValue.Field(1)
			if setField.Bool() {
				valueField := fieldValue.Field(0)
				if valueField.Kind() == reflect.Struct && !isTimeType(valueField.Type()) {
					fieldErrors = append(fieldErrors, validateStructRecursive(valueField, fieldPath)...)
				} else {
					fieldErrors = append(fieldErrors, validateField(valueField, fieldPath, tagCfg)...)
				}
			}
			continue
		}

		// Nested structs recurse; time types validate as primitives.
		if fieldValue.Kind() == reflect.Struct {
			if isTimeType(fieldValue.Type()) {
				fieldErrors = append(fieldErrors, validateField(fieldValue, fieldPath, tagCfg)...)
				continue
			}
			fieldErrors = append(fieldErrors, validateStructRecursive(fieldValue, fieldPath)...)
			continue
		}

		fieldErrors = append(fieldErrors, validateField(fieldValue, fieldPath, tagCfg)...)
	}

	return fieldErrors
}

// validateField validates a single field value against tag-based constraints.
// It checks required, min, max, and oneof constraints based on the field's type.
func validateField(fieldValue reflect.Value, fieldPath string, tags tagConfig) []FieldError {
	var errors []FieldError

	if tags.required {
		if isZeroValue(fieldValue) {
			errors = append(errors, FieldError{
				FieldPath: fieldPath,
				Code:      ErrCodeRequired,
				Message:   "field is required but not provided",
			})
			// If required and zero, skip other validations
			return errors
		}
	}

	// Skip other validations if value is zero (for non-required fields)
	if isZeroValue(fieldValue) {
		return errors
	}

	switch fieldValue.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		errors = append(errors, validateIntMinMax(fieldValue, fieldPath, tags)...)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		errors = append(errors, validateUintMinMax(fieldValue, fieldPath, tags)...)
	case reflect.Float32, reflect.Float64:
		errors = append(errors, validateFloatMinMax(fieldValue, fieldPath, tags)...)
	case reflect.String:
		errors = append(errors, validateStringMinMax(fieldValue, fieldPath, tags)...)
	}

	if len(tags.oneof) > 0 {
		errors = append(errors, validateOneof(fieldValue, fieldPath, tags)...)
	}

	return errors
}

// isZeroValue checks if a reflect.Value is the zero value for its type.
func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

// validateIntMinMax validates min/max constraints for signed integer types.
func validateIntMinMax(fieldValue reflect.Value, fieldPath string, tags tagConfig) []FieldError {
	var errors []FieldError
	value := fieldValue.Int()

	if tags.min != "" {
		minVal, err := strconv.ParseInt(tags.min, 10, 64)
		if err == nil && value < minVal {
			errors = append(errors, FieldError{
				FieldPath: fieldPath,
				Code:      ErrCodeMin,
				Message:   fmt.Sprintf("value %d is below minimum %d", value, minVal),
				Value:     value,
			})
		}
	}

	if tags.max != "" {
		maxVal, err := strconv.ParseInt(tags.max, 10, 64)
		if err == nil && value > maxVal {
			errors = append(errors, FieldError{
				FieldPath: fieldPath,
				Code:      ErrCodeMax,
				Message:   fmt.Sprintf("value %d exceeds maximum %d", value, maxVal),
				Value:     value,
			})
		}
	}

	return errors
}

// validateUintMinMax validates min/max constraints for unsigned integer types.
func validateUintMinMax(fieldValue reflect.Value, fieldPath string, tags tagConfig) []FieldError {
	var errors []FieldError
	value := fieldValue.Uint()

	if tags.min != "" {
		minVal, err := strconv.ParseUint(tags.min, 10, 64)
		if err == nil && value < minVal {
			errors = append(errors, FieldError{
				FieldPath: fieldPath,
				Code:      ErrCodeMin,
				Message:   fmt.Sprintf("value %d is below minimum %d", value, minVal),
				Value:     value,
			})
		}
	}

	if tags.max != "" {
		maxVal, err := strconv.ParseUint(tags.max, 10, 64)
		if err == nil && value > maxVal {
			errors = append(errors, FieldError{
				FieldPath: fieldPath,
				Code:      ErrCodeMax,
				Message:   fmt.Sprintf("value %d exceeds maximum %d", value, maxVal),
				Value:     value,
			})
		}
	}

	return errors
}

// validateFloatMinMax validates min/max constraints for floating-point types.
func validateFloatMinMax(fieldValue reflect.Value, fieldPath string, tags tagConfig) []FieldError {
	var errors []FieldError
	value := fieldValue.Float()

	if tags.min != "" {
		minVal, err := strconv.ParseFloat(tags.min, 64)
		if err == nil && value < minVal {
			errors = append(errors, FieldError{
				FieldPath: fieldPath,
				Code:      ErrCodeMin,
				Message:   fmt.Sprintf("value %g is below minimum %g", value, minVal),
				Value:     value,
			})
		}
	}

	if tags.max != "" {
		maxVal, err := strconv.ParseFloat(tags.max, 64)
		if err == nil && value > maxVal {
			errors = append(errors, FieldError{
				FieldPath: fieldPath,
				Code:      ErrCodeMax,
				Message:   fmt.Sprintf("value %g exceeds maximum %g", value, maxVal),
				Value:     value,
			})
		}
	}

	return errors
}

// validateStringMinMax validates min/max constraints for string length.
func validateStringMinMax(fieldValue reflect.Value, fieldPath string, tags tagConfig) []FieldError {
	var errors []FieldError
	value := fieldValue.String()
	length := len(value)

	if tags.min != "" {
		minLen, err := strconv.Atoi(tags.min)
		if err == nil && length < minLen {
			errors = append(errors, FieldError{
				FieldPath: fieldPath,
				Code:      ErrCodeMin,
				Message:   fmt.Sprintf("string length %d is below minimum %d", length, minLen),
				Value:     value,
			})
		}
	}

	if tags.max != "" {
		maxLen, err := strconv.Atoi(tags.max)
		if err == nil && length > maxLen {
			errors = append(errors, FieldError{
				FieldPath: fieldPath,
				Code:      ErrCodeMax,
				Message:   fmt.Sprintf("string length %d exceeds maximum %d", length, maxLen),
				Value:     value,
			})
		}
	}

	return errors
}

// validateOneof validates that a field value is one of the allowed options.
func validateOneof(fieldValue reflect.Value, fieldPath string, tags tagConfig) []FieldError {
	var errors []FieldError

	var valueStr string
	switch fieldValue.Kind() {
	case reflect.String:
		valueStr = fieldValue.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		valueStr = strconv.FormatInt(fieldValue.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		valueStr = strconv.FormatUint(fieldValue.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		valueStr = strconv.FormatFloat(fieldValue.Float(), 'f', -1, 64)
	case reflect.Bool:
		valueStr = strconv.FormatBool(fieldValue.Bool())
	default:
		// For unsupported types, skip oneof validation
		return errors
	}

	found := false
	for _, allowed := range tags.oneof {
		if valueStr == allowed {
			found = true
			break
		}
	}

	if !found {
		errors = append(errors, FieldError{
			FieldPath: fieldPath,
			Code:      ErrCodeOneOf,
			Message:   fmt.Sprintf("value %q must be one of: %s", valueStr, strings.Join(tags.oneof, ", ")),
			Value:     valueStr,
		})
	}

	return errors
}
