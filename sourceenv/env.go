package sourceenv

import (
	"os"
	"strings"

	"github.com/vnyb/grip"
	"github.com/vnyb/grip/internal/normalize"
)

// Options configures environment variable secret resolution.
type Options struct {
	// Prefix filters vars starting with prefix (stripped before normalization).
	// Empty = consider all vars.
	// Prefix matching behavior is controlled by CaseSensitive.
	Prefix string

	// CaseSensitive controls prefix matching (default: false).
	// When false, prefix matching is case-insensitive (APP_ matches app_, App_, etc.).
	// When true, prefix must match exactly.
	// Keys are always normalized to lowercase after prefix stripping.
	CaseSensitive bool
}

// Secrets scans the environment and returns a secrets map keyed by
// normalized dot paths. Double underscores separate nesting levels, so with
// Prefix "APP_" the variable APP_DATABASE__PASSWORD resolves the secret key
// "database.password".
//
// The result typically feeds Loader.InjectSecrets directly; combine maps
// from several resolvers with Merge before injecting if secrets come from
// more than one place.
func Secrets(opts Options) grip.Secrets {
	result := make(grip.Secrets)

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := parts[0]
		value := parts[1]

		if opts.Prefix != "" {
			var hasPrefix bool
			if opts.CaseSensitive {
				hasPrefix = strings.HasPrefix(key, opts.Prefix)
			} else {
				hasPrefix = strings.HasPrefix(strings.ToLower(key), strings.ToLower(opts.Prefix))
			}
			if !hasPrefix {
				continue
			}
			key = key[len(opts.Prefix):]
		}

		result[normalize.ToLowerDotPath(key)] = value
	}

	return result
}

// Merge combines secrets maps; later maps override earlier ones.
func Merge(maps ...grip.Secrets) grip.Secrets {
	result := make(grip.Secrets)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}
