// Package encoding converts function arguments and results between JSON, YAML and TOML,
// and generates example arguments.
package encoding
