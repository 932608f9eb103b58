package grip

import (
	"fmt"
	"strings"
)

// Error codes for validation failures.
const (
	ErrCodeRequired    = "required"
	ErrCodeMin         = "min"
	ErrCodeMax         = "max"
	ErrCodeOneOf       = "oneof"
	ErrCodeInvalidType = "invalid_type"
	ErrCodeUnknownKey  = "unknown_key"
	ErrCodeSecretType  = "secret_type"
)

// FieldError represents a single field validation failure.
type FieldError struct {
	FieldPath string // Dot notation (e.g., "Database.Host")
	Code      string // Error code (e.g., "required", "min")
	Message   string // Human-readable description
	Value     any    // Offending input value, nil when absent
}

// ValidationError aggregates field-level validation failures.
// Both loading phases collect every violation before failing, so a single
// report covers everything that needs fixing.
type ValidationError struct {
	FieldErrors []FieldError
}

// Error formats validation errors as a multi-line message.
func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return "config validation failed: no errors"
	}

	var b strings.Builder
	if len(e.FieldErrors) == 1 {
		b.WriteString("config validation failed: 1 error\n")
	} else {
		fmt.Fprintf(&b, "config validation failed: %d errors\n", len(e.FieldErrors))
	}

	for _, fe := range e.FieldErrors {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", fe.FieldPath, fe.Code, fe.Message)
	}

	return strings.TrimRight(b.String(), "\n")
}

// ParseError reports a malformed configuration document before any schema
// validation could take place.
type ParseError struct {
	Source string // Where the document came from (e.g., "file:config.toml")
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config from %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingSecretsError reports secret fields left uncovered by the secrets
// map passed to InjectSecrets. Injection is all-or-nothing: every declared
// secret field needs an entry, and none is applied when any is missing.
type MissingSecretsError struct {
	KeyPaths []string // Sorted normalized key paths
}

func (e *MissingSecretsError) Error() string {
	return fmt.Sprintf("missing secret values for: %s", strings.Join(e.KeyPaths, ", "))
}

// UnknownSecretsError reports secrets-map keys that do not name a declared
// secret field. This signals a misconfigured injection call rather than a
// bad configuration document.
type UnknownSecretsError struct {
	Keys []string // Sorted offending map keys
}

func (e *UnknownSecretsError) Error() string {
	return fmt.Sprintf("unknown secret keys: %s", strings.Join(e.Keys, ", "))
}

// InternalError reports a broken library invariant, such as an unresolved
// secret surviving a completed injection. It is a defect in grip itself,
// never a user error.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "grip internal error: " + e.Message
}
