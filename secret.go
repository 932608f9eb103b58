package grip

// Redaction placeholders used by String, MarshalText, and DumpEffective.
const (
	redactedValue   = "***redacted***"
	unresolvedValue = "<unresolved>"
)

// Secret holds a string whose value may not be known at parse time.
// The zero value is the unresolved placeholder: "required but not yet
// supplied". Fields typed Secret are bound as optional during Load and
// must be filled by InjectSecrets before the configuration is complete.
//
// Secret is an immutable value type and safe to share across goroutines.
type Secret struct {
	value    string
	resolved bool
}

// NewSecret creates a resolved Secret holding v.
func NewSecret(v string) Secret {
	return Secret{value: v, resolved: true}
}

// Resolved reports whether the secret holds a real value.
// It is false only for the zero (unresolved) state.
func (s Secret) Resolved() bool {
	return s.resolved
}

// Value returns the resolved secret value. It returns "" while the secret
// is unresolved; callers that may observe that state should use TryValue.
// Configurations returned by InjectSecrets never contain unresolved secrets.
func (s Secret) Value() string {
	return s.value
}

// TryValue returns the secret value and whether it has been resolved.
func (s Secret) TryValue() (string, bool) {
	return s.value, s.resolved
}

// String never exposes the underlying value.
func (s Secret) String() string {
	if !s.resolved {
		return unresolvedValue
	}
	return redactedValue
}

// GoString keeps %#v output redacted as well.
func (s Secret) GoString() string {
	return "grip.Secret(" + s.String() + ")"
}

// MarshalText redacts the value so secrets cannot leak through
// encoding/json or other text-based encoders.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsSentinel reports whether v is an unresolved Secret placeholder.
// It returns false for every domain value, including empty strings, zero
// numbers, nil, and resolved Secrets.
func IsSentinel(v any) bool {
	s, ok := v.(Secret)
	return ok && !s.resolved
}
