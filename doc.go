// Package grip provides strict, two-phase configuration loading with typed secrets.
//
// Quick Start:
//
//	type Config struct {
//	    Host   string      `conf:"required"`
//	    Port   int         `conf:"default:5432,min:1,max:65535"`
//	    APIKey grip.Secret `conf:"name:api_key"`
//	}
//
//	loader := grip.NewLoader[Config]()
//
//	// Phase 1: bind and validate everything except secrets.
//	cfg, err := loader.Load(ctx, doc)
//
//	// Phase 2: inject secrets resolved out of band and re-validate.
//	cfg, err = loader.InjectSecrets(ctx, cfg, grip.Secrets{}.Set("api_key", "abc123"))
//
// Fields typed grip.Secret are optional during Load and hold an unresolved
// placeholder until InjectSecrets supplies a value for every one of them.
// Unknown document keys are rejected, and all violations are reported in a
// single *ValidationError rather than one at a time.
//
// Tag directives: name:path, prefix:path, default:val, required, min:N, max:N, oneof:a,b,c
//
// See example_test.go and README.md for detailed usage.
package grip
