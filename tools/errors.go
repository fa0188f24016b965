package tools

import "github.com/cockroachdb/errors"

var (
	// ErrToolNotFound is returned when the tool is not registered.
	ErrToolNotFound = errors.New("tool not found")
	// ErrInvalidArguments is returned when the tool arguments can not be parsed or validated.
	ErrInvalidArguments = errors.New("invalid tool arguments")
	// ErrInvalidConfig is returned when the tool config is invalid.
	ErrInvalidConfig = errors.New("invalid tool config")
	// ErrProviderNotFound is returned when the tool provider is not in the catalog.
	ErrProviderNotFound = errors.New("tool provider not found")
)
