package grip

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Loader binds and validates configuration for a schema type T in two phases.
//
// Phase 1 (Load) consumes an already-parsed document, rejects unknown keys,
// binds every field, and validates everything except unresolved secrets.
// Phase 2 (InjectSecrets) substitutes caller-resolved secret values into a
// fresh copy of the phase-1 model and re-runs full validation.
//
// A Loader is immutable once configured and safe to share across goroutines.
type Loader[T any] struct {
	validators         []Validator[T]
	deferredValidators []Validator[T]
	strict             bool // Fail on unknown keys (default: true)
}

// NewLoader creates a Loader with no validators and strict mode enabled.
func NewLoader[T any]() *Loader[T] {
	return &Loader[T]{
		validators:         make([]Validator[T], 0),
		deferredValidators: make([]Validator[T], 0),
		strict:             true, // Default to strict mode
	}
}

// WithValidator adds a custom validator executed after tag-based validation
// in both phases. Validators registered here must not read secret values:
// during phase 1 those are still unresolved.
func (l *Loader[T]) WithValidator(v Validator[T]) *Loader[T] {
	l.validators = append(l.validators, v)
	return l
}

// WithDeferredValidator adds a validator that runs only after secret
// injection. Any invariant referencing a secret field belongs here, since
// evaluating it against an unresolved placeholder is meaningless.
func (l *Loader[T]) WithDeferredValidator(v Validator[T]) *Loader[T] {
	l.deferredValidators = append(l.deferredValidators, v)
	return l
}

// Strict controls whether unknown keys cause errors. Default: true.
func (l *Loader[T]) Strict(strict bool) *Loader[T] {
	l.strict = strict
	return l
}

// Load runs phase 1: it binds doc into a new instance of T and validates it.
// Secret-typed fields absent from the document are left as unresolved
// placeholders instead of causing a missing-field error.
//
// Returns *ParseError when doc is nil and *ValidationError aggregating every
// schema violation found: unknown keys, type mismatches, and constraint
// failures are all collected before failing.
func (l *Loader[T]) Load(ctx context.Context, doc Document) (*T, error) {
	if doc == nil {
		return nil, &ParseError{Source: "document", Err: fmt.Errorf("document is nil")}
	}

	data := flattenDocument(doc, sourceDocument)

	var allErrors []FieldError

	// Step 1: In strict mode, detect unknown keys
	if l.strict {
		var cfg T
		validKeys := collectValidKeys(reflect.TypeOf(cfg), "")

		var unknownKeys []string
		for key := range data {
			if !validKeys[key] {
				unknownKeys = append(unknownKeys, key)
			}
		}
		sort.Strings(unknownKeys)
		for _, key := range unknownKeys {
			allErrors = append(allErrors, FieldError{
				FieldPath: key,
				Code:      ErrCodeUnknownKey,
				Message:   "unknown configuration key (strict mode)",
				Value:     data[key].value,
			})
		}
	}

	// Step 2: Bind struct fields from the flattened document
	cfg := new(T)
	cfgValue := reflect.ValueOf(cfg).Elem()

	var provenanceFields []FieldProvenance
	allErrors = append(allErrors, bindStruct(cfgValue, data, &provenanceFields, "", "")...)

	// Step 3: Tag-based validation (unresolved secrets are skipped)
	allErrors = append(allErrors, validateStruct(cfgValue)...)

	// Step 4: Run custom validators (deferred ones wait for injection)
	for i, validator := range l.validators {
		if err := l.runValidator(ctx, validator, cfg, i, &allErrors); err != nil {
			return nil, err
		}
	}

	if len(allErrors) > 0 {
		return nil, &ValidationError{FieldErrors: allErrors}
	}

	storeProvenance(cfg, &Provenance{Fields: provenanceFields})
	return cfg, nil
}

// InjectSecrets runs phase 2: it returns a new instance of model with every
// declared secret field set from secrets, fully re-validated.
//
// The secrets map is keyed by normalized key paths (e.g. "database.password")
// and must cover every secret field exactly: unrecognized keys fail with
// *UnknownSecretsError, uncovered fields with *MissingSecretsError, and
// wrong-typed values with *ValidationError. Injection is all-or-nothing;
// model itself is never mutated.
func (l *Loader[T]) InjectSecrets(ctx context.Context, model *T, secrets Secrets) (*T, error) {
	if model == nil {
		return nil, fmt.Errorf("grip: model is nil")
	}

	var zero T
	declared := collectSecretFields(reflect.TypeOf(zero), "", "", nil)

	declaredByKey := make(map[string]secretField, len(declared))
	for _, sf := range declared {
		declaredByKey[sf.keyPath] = sf
	}

	// Step 1: Reject keys that do not name a declared secret field
	var unknown []string
	for key := range secrets {
		if _, ok := declaredByKey[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnknownSecretsError{Keys: unknown}
	}

	// Step 2: Require an entry for every declared secret field
	var missing []string
	for _, sf := range declared {
		if _, ok := secrets[sf.keyPath]; !ok {
			missing = append(missing, sf.keyPath)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingSecretsError{KeyPaths: missing}
	}

	// Step 3: Substitute into a detached copy, collecting type errors
	cfg := deepCopy(model)
	cfgValue := reflect.ValueOf(cfg).Elem()

	var allErrors []FieldError
	for _, sf := range declared {
		fieldValue := cfgValue.FieldByIndex(sf.index)
		if ferr := bindSecret(fieldValue, secrets[sf.keyPath], sf.fieldPath); ferr != nil {
			allErrors = append(allErrors, *ferr)
		}
	}
	if len(allErrors) > 0 {
		return nil, &ValidationError{FieldErrors: allErrors}
	}

	// Step 4: Full re-validation, now including secret-dependent invariants
	allErrors = append(allErrors, validateStruct(cfgValue)...)

	for i, validator := range l.validators {
		if err := l.runValidator(ctx, validator, cfg, i, &allErrors); err != nil {
			return nil, err
		}
	}
	for i, validator := range l.deferredValidators {
		if err := l.runValidator(ctx, validator, cfg, i, &allErrors); err != nil {
			return nil, err
		}
	}

	if len(allErrors) > 0 {
		return nil, &ValidationError{FieldErrors: allErrors}
	}

	// Step 5: Closed invariant: no sentinel may survive a completed
	// injection. A leak here is a defect in grip, not a user error.
	if leaked := findUnresolvedSecrets(cfgValue, ""); len(leaked) > 0 {
		return nil, &InternalError{
			Message: "unresolved secrets after injection: " + strings.Join(leaked, ", "),
		}
	}

	// Step 6: Carry provenance forward, marking secret fields as injected
	prov := &Provenance{}
	if prev, ok := GetProvenance(model); ok {
		prov.Fields = append(prov.Fields, prev.Fields...)
	}
	for i := range prov.Fields {
		if prov.Fields[i].Secret {
			prov.Fields[i].Source = sourceInjected
		}
	}
	storeProvenance(cfg, prov)

	return cfg, nil
}

// runValidator executes one custom validator, folding *ValidationError
// results into the aggregate and failing hard on any other error.
func (l *Loader[T]) runValidator(ctx context.Context, validator Validator[T], cfg *T, i int, allErrors *[]FieldError) error {
	err := validator.Validate(ctx, cfg)
	if err == nil {
		return nil
	}
	if valErr, ok := err.(*ValidationError); ok {
		*allErrors = append(*allErrors, valErr.FieldErrors...)
		return nil
	}
	return fmt.Errorf("validator %d failed: %w", i, err)
}
