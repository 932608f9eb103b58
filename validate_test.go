package grip

import (
	"reflect"
	"testing"
)

func TestValidateStruct_Required(t *testing.T) {
	type Config struct {
		Host string `conf:"required"`
		Port int
	}

	cfg := Config{Port: 8080}
	errors := validateStruct(reflect.ValueOf(&cfg))

	if len(errors) != 1 {
		t.Fatalf("errors = %d, want 1: %v", len(errors), errors)
	}
	if errors[0].FieldPath != "Host" || errors[0].Code != ErrCodeRequired {
		t.Errorf("error = %+v, want required Host", errors[0])
	}
}

func TestValidateStruct_MinMax(t *testing.T) {
	type Config struct {
		Port    int     `conf:"min:1024,max:65535"`
		Ratio   float64 `conf:"max:1"`
		Name    string  `conf:"min:3"`
		Workers uint    `conf:"min:2"`
	}

	cfg := Config{Port: 80, Ratio: 1.5, Name: "ab", Workers: 1}
	errors := validateStruct(reflect.ValueOf(&cfg))

	if len(errors) != 4 {
		t.Fatalf("errors = %d, want 4: %v", len(errors), errors)
	}

	codes := map[string]string{}
	for _, fe := range errors {
		codes[fe.FieldPath] = fe.Code
	}
	if codes["Port"] != ErrCodeMin {
		t.Errorf("Port code = %q, want %q", codes["Port"], ErrCodeMin)
	}
	if codes["Ratio"] != ErrCodeMax {
		t.Errorf("Ratio code = %q, want %q", codes["Ratio"], ErrCodeMax)
	}
	if codes["Name"] != ErrCodeMin {
		t.Errorf("Name code = %q, want %q", codes["Name"], ErrCodeMin)
	}
	if codes["Workers"] != ErrCodeMin {
		t.Errorf("Workers code = %q, want %q", codes["Workers"], ErrCodeMin)
	}
}

func TestValidateStruct_OneOf(t *testing.T) {
	type Config struct {
		Level string `conf:"oneof:debug,info,warn,error"`
	}

	cfg := Config{Level: "verbose"}
	errors := validateStruct(reflect.ValueOf(&cfg))

	if len(errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(errors))
	}
	if errors[0].Code != ErrCodeOneOf {
		t.Errorf("code = %q, want %q", errors[0].Code, ErrCodeOneOf)
	}

	cfg.Level = "info"
	if errors := validateStruct(reflect.ValueOf(&cfg)); len(errors) != 0 {
		t.Errorf("valid value produced errors: %v", errors)
	}
}

func TestValidateStruct_ZeroOptionalFieldsSkipped(t *testing.T) {
	type Config struct {
		Port int    `conf:"min:1024"`
		Name string `conf:"min:3"`
	}

	// Zero values of non-required fields skip range checks
	cfg := Config{}
	if errors := validateStruct(reflect.ValueOf(&cfg)); len(errors) != 0 {
		t.Errorf("zero values should skip constraint checks, got %v", errors)
	}
}

func TestValidateStruct_Nested(t *testing.T) {
	type Database struct {
		Host string `conf:"required"`
		Port int    `conf:"min:1,max:65535"`
	}
	type Config struct {
		Database Database
	}

	cfg := Config{Database: Database{Port: 70000}}
	errors := validateStruct(reflect.ValueOf(&cfg))

	if len(errors) != 2 {
		t.Fatalf("errors = %d, want 2: %v", len(errors), errors)
	}

	paths := map[string]bool{}
	for _, fe := range errors {
		paths[fe.FieldPath] = true
	}
	if !paths["Database.Host"] || !paths["Database.Port"] {
		t.Errorf("error paths = %v, want Database.Host and Database.Port", paths)
	}
}

func TestValidateStruct_UnresolvedSecretSkipped(t *testing.T) {
	type Config struct {
		APIKey Secret `conf:"required,min:8"`
	}

	// Phase 1: unresolved secrets bypass every constraint, including required
	cfg := Config{}
	if errors := validateStruct(reflect.ValueOf(&cfg)); len(errors) != 0 {
		t.Errorf("unresolved secret should skip validation, got %v", errors)
	}
}

func TestValidateStruct_ResolvedSecretChecked(t *testing.T) {
	type Config struct {
		APIKey Secret `conf:"min:8"`
	}

	cfg := Config{APIKey: NewSecret("short")}
	errors := validateStruct(reflect.ValueOf(&cfg))

	if len(errors) != 1 {
		t.Fatalf("errors = %d, want 1: %v", len(errors), errors)
	}
	if errors[0].FieldPath != "APIKey" || errors[0].Code != ErrCodeMin {
		t.Errorf("error = %+v, want min violation on APIKey", errors[0])
	}

	cfg.APIKey = NewSecret("longenough")
	if errors := validateStruct(reflect.ValueOf(&cfg)); len(errors) != 0 {
		t.Errorf("valid secret produced errors: %v", errors)
	}
}

func TestValidateStruct_OptionalInnerValue(t *testing.T) {
	type Config struct {
		Timeout Optional[int] `conf:"min:1"`
	}

	// Unset Optional skips validation entirely
	cfg := Config{}
	if errors := validateStruct(reflect.ValueOf(&cfg)); len(errors) != 0 {
		t.Errorf("unset Optional should skip validation, got %v", errors)
	}

	// Set Optional validates the inner value
	cfg.Timeout = Optional[int]{Value: 0, Set: true}
	errors := validateStruct(reflect.ValueOf(&cfg))
	if len(errors) != 0 {
		// Zero inner value is skipped like any non-required zero
		t.Errorf("zero inner value should skip constraints, got %v", errors)
	}

	cfg.Timeout = Optional[int]{Value: -5, Set: true}
	errors = validateStruct(reflect.ValueOf(&cfg))
	if len(errors) != 1 || errors[0].Code != ErrCodeMin {
		t.Errorf("errors = %v, want one min violation", errors)
	}
}
