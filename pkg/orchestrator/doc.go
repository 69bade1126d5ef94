// Package orchestrator wires the loader → parser → transformer → renderer
// pipeline for YAML form documents behind a single entry point.
package orchestrator
