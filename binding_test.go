package grip

import (
	"reflect"
	"testing"
)

// TestParseTagEmpty verifies an empty tag yields an empty config.
func TestParseTagEmpty(t *testing.T) {
	cfg := parseTag("")

	if cfg.name != "" || cfg.prefix != "" || cfg.hasDefault || cfg.required {
		t.Errorf("empty tag should produce zero config, got %+v", cfg)
	}
}

// TestParseTagName verifies the name directive.
func TestParseTagName(t *testing.T) {
	cfg := parseTag("name:api.key")

	if cfg.name != "api.key" {
		t.Errorf("name = %q, want %q", cfg.name, "api.key")
	}
}

// TestParseTagDefault verifies the default directive and its presence flag.
func TestParseTagDefault(t *testing.T) {
	cfg := parseTag("default:8080")

	if !cfg.hasDefault {
		t.Error("hasDefault should be true")
	}
	if cfg.defValue != "8080" {
		t.Errorf("defValue = %q, want %q", cfg.defValue, "8080")
	}

	// Empty defaults are intentional
	cfg = parseTag("default:")
	if !cfg.hasDefault {
		t.Error("hasDefault should be true for an explicit empty default")
	}
	if cfg.defValue != "" {
		t.Errorf("defValue = %q, want empty", cfg.defValue)
	}
}

// TestParseTagRequired verifies the boolean directive forms.
func TestParseTagRequired(t *testing.T) {
	if !parseTag("required").required {
		t.Error("bare 'required' should be true")
	}
	if !parseTag("required:true").required {
		t.Error("'required:true' should be true")
	}
	if parseTag("required:false").required {
		t.Error("'required:false' should be false")
	}
	// Invalid values default to true for safety
	if !parseTag("required:banana").required {
		t.Error("invalid required value should default to true")
	}
}

// TestParseTagMinMax verifies range constraint directives.
func TestParseTagMinMax(t *testing.T) {
	cfg := parseTag("min:1,max:65535")

	if cfg.min != "1" {
		t.Errorf("min = %q, want %q", cfg.min, "1")
	}
	if cfg.max != "65535" {
		t.Errorf("max = %q, want %q", cfg.max, "65535")
	}
}

// TestParseTagOneof verifies oneof values, including commas inside the list.
func TestParseTagOneof(t *testing.T) {
	cfg := parseTag("oneof:debug,info,warn,error")

	want := []string{"debug", "info", "warn", "error"}
	if !reflect.DeepEqual(cfg.oneof, want) {
		t.Errorf("oneof = %v, want %v", cfg.oneof, want)
	}
}

// TestParseTagOneofFollowedByDirective verifies the oneof list stops at the
// next known directive.
func TestParseTagOneofFollowedByDirective(t *testing.T) {
	cfg := parseTag("oneof:a,b,c,required")

	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(cfg.oneof, want) {
		t.Errorf("oneof = %v, want %v", cfg.oneof, want)
	}
	if !cfg.required {
		t.Error("required should be parsed after the oneof list")
	}
}

// TestParseTagCombined verifies several directives in one tag.
func TestParseTagCombined(t *testing.T) {
	cfg := parseTag("name:db.port,default:5432,min:1,max:65535,required")

	if cfg.name != "db.port" {
		t.Errorf("name = %q, want %q", cfg.name, "db.port")
	}
	if cfg.defValue != "5432" || !cfg.hasDefault {
		t.Errorf("default = %q (present=%t), want 5432/true", cfg.defValue, cfg.hasDefault)
	}
	if cfg.min != "1" || cfg.max != "65535" {
		t.Errorf("min/max = %q/%q, want 1/65535", cfg.min, cfg.max)
	}
	if !cfg.required {
		t.Error("required should be true")
	}
}

// TestParseTagPrefix verifies the prefix directive for nested structs.
func TestParseTagPrefix(t *testing.T) {
	cfg := parseTag("prefix:db")

	if cfg.prefix != "db" {
		t.Errorf("prefix = %q, want %q", cfg.prefix, "db")
	}
}

// TestDetermineKeyPath verifies key path resolution precedence.
func TestDetermineKeyPath(t *testing.T) {
	// Explicit name wins over everything
	if got := determineKeyPath("APIKey", tagConfig{name: "api_key"}, "server"); got != "api_key" {
		t.Errorf("keyPath = %q, want %q", got, "api_key")
	}

	// Otherwise lowercased field name under the prefix
	if got := determineKeyPath("Host", tagConfig{}, "database"); got != "database.host" {
		t.Errorf("keyPath = %q, want %q", got, "database.host")
	}

	// No prefix at the root
	if got := determineKeyPath("Port", tagConfig{}, ""); got != "port" {
		t.Errorf("keyPath = %q, want %q", got, "port")
	}
}
