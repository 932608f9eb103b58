// Package sourceenv resolves secret values from process environment
// variables. It is a caller-side collaborator for the injection phase: the
// grip core never reads the environment itself.
package sourceenv
