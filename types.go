package grip

import "context"

// Document is a raw configuration document: a nested mapping of strings,
// numbers, booleans, sequences, and sub-mappings, already parsed from its
// source encoding. The sourcefile package produces Documents from TOML,
// YAML, and JSON files; the core itself performs no I/O.
type Document map[string]any

// Secrets maps normalized secret key paths (e.g. "database.password") to
// resolved values. Values must be strings or resolved Secret instances.
// Callers assemble the map from any source (environment, secret manager,
// operator input) before calling InjectSecrets.
type Secrets map[string]any

// Set records a secret value under a dotted key path and returns the map
// for chaining. The map itself accumulates values; injection remains
// all-or-nothing.
func (s Secrets) Set(path string, value string) Secrets {
	s[path] = value
	return s
}

// Optional distinguishes "not set" from "zero value".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Get returns the wrapped value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// OrDefault returns the wrapped value or the provided default.
func (o Optional[T]) OrDefault(defaultVal T) T {
	if o.Set {
		return o.Value
	}
	return defaultVal
}

// Validator performs custom validation after tag-based validation.
// Use for cross-field, semantic, or external validation.
type Validator[T any] interface {
	// Validate checks configuration. Return *ValidationError for field-level errors.
	Validate(ctx context.Context, cfg *T) error
}

// ValidatorFunc is a function adapter for the Validator interface.
type ValidatorFunc[T any] func(ctx context.Context, cfg *T) error

func (f ValidatorFunc[T]) Validate(ctx context.Context, cfg *T) error {
	return f(ctx, cfg)
}
