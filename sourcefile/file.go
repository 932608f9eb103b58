package sourcefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/vnyb/grip"
)

// Options configures file loading behavior.
type Options struct {
	// Format: "yaml", "json", or "toml". Auto-detected from extension if empty.
	Format string

	// Required: if true, missing files cause an error. Default: false
	// (a missing file yields an empty document).
	Required bool
}

// Load reads and parses a configuration file into a raw document.
// Syntax failures surface as *grip.ParseError so callers can tell a broken
// file apart from a schema violation.
func Load(path string, opts Options) (grip.Document, error) {
	raw, found, err := readMapping(path, opts)
	if err != nil {
		return nil, err
	}
	if !found {
		return grip.Document{}, nil
	}
	return grip.Document(raw), nil
}

// LoadSecrets reads a secrets file into a flat map of dot-separated key
// paths, ready to pass to Loader.InjectSecrets. Supported formats: TOML and
// JSON, detected from the extension.
func LoadSecrets(path string) (grip.Secrets, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".json":
	default:
		return nil, fmt.Errorf("unsupported secrets file extension %q (supported: .toml, .json)", ext)
	}

	raw, found, err := readMapping(path, Options{Required: true})
	if err != nil {
		return nil, err
	}
	if !found {
		return grip.Secrets{}, nil
	}

	secrets := make(grip.Secrets)
	flattenSecrets("", raw, secrets)
	return secrets, nil
}

// readMapping reads and parses a file into a top-level mapping.
// The second return reports whether the file existed.
func readMapping(path string, opts Options) (map[string]any, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if opts.Required {
				return nil, false, fmt.Errorf("required config file not found: %s: %w", path, err)
			}
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read config file %s: %w", path, err)
	}

	format := opts.Format
	if format == "" {
		format = inferFormat(path)
	}

	source := "file:" + filepath.Base(path)

	var raw map[string]any
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, true, &grip.ParseError{Source: source, Err: err}
		}
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, true, &grip.ParseError{Source: source, Err: err}
		}
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, true, &grip.ParseError{Source: source, Err: err}
		}
	default:
		return nil, true, fmt.Errorf("unsupported file format: %s (supported: yaml, json, toml)", format)
	}

	return raw, true, nil
}

// flattenSecrets flattens nested secret tables to dot-separated keys.
func flattenSecrets(prefix string, value any, result grip.Secrets) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			newPrefix := strings.ToLower(key)
			if prefix != "" {
				newPrefix = prefix + "." + newPrefix
			}
			flattenSecrets(newPrefix, val, result)
		}
	default:
		if prefix != "" {
			result[prefix] = value
		}
	}
}

func inferFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}
