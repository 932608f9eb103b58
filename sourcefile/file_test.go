package sourcefile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnyb/grip"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
host = "db"
port = 5432

[database]
name = "app"
`)

	doc, err := Load(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "db", doc["host"])
	assert.EqualValues(t, 5432, doc["port"])

	database, ok := doc["database"].(map[string]any)
	require.True(t, ok, "database should be a nested mapping")
	assert.Equal(t, "app", database["name"])
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
host: db
port: 5432
database:
  name: app
`)

	doc, err := Load(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "db", doc["host"])
	assert.EqualValues(t, 5432, doc["port"])
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"host": "db", "port": 5432}`)

	doc, err := Load(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "db", doc["host"])
	assert.EqualValues(t, 5432, doc["port"])
}

func TestLoadExplicitFormat(t *testing.T) {
	// Extension lies, explicit format wins
	path := writeFile(t, "config.txt", `host = "db"`)

	doc, err := Load(path, Options{Format: "toml"})
	require.NoError(t, err)
	assert.Equal(t, "db", doc["host"])
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "config.ini", `host=db`)

	_, err := Load(path, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestLoadMissingOptional(t *testing.T) {
	doc, err := Load(filepath.Join(t.TempDir(), "nope.toml"), Options{})
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestLoadMissingRequired(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), Options{Required: true})
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Unwrap(err)))
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeFile(t, "bad.toml", `this is not = [valid toml`)

	_, err := Load(path, Options{})
	require.Error(t, err)

	var parseErr *grip.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Source, "bad.toml")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "host: [unclosed")

	_, err := Load(path, Options{})

	var parseErr *grip.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestLoadSecretsTOML(t *testing.T) {
	path := writeFile(t, "secrets.toml", `
master = "m"

[database]
password = "db-pass"
`)

	secrets, err := LoadSecrets(path)
	require.NoError(t, err)

	assert.Equal(t, "m", secrets["master"])
	assert.Equal(t, "db-pass", secrets["database.password"])
}

func TestLoadSecretsJSON(t *testing.T) {
	path := writeFile(t, "secrets.json", `{"api_key": "abc123", "smtp": {"auth_token": "tok"}}`)

	secrets, err := LoadSecrets(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", secrets["api_key"])
	assert.Equal(t, "tok", secrets["smtp.auth_token"])
}

func TestLoadSecretsUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "secrets.yaml", `api_key: abc`)

	_, err := LoadSecrets(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported secrets file extension")
}

func TestLoadSecretsMissingFile(t *testing.T) {
	_, err := LoadSecrets(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
