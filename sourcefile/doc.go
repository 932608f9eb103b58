// Package sourcefile reads configuration documents and secrets files from
// disk. It parses TOML, YAML, and JSON into grip.Document values; the grip
// core itself never touches the filesystem.
package sourcefile
