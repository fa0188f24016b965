package schema

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

// ResourceID is the ID of the compiled parameters schema.
const ResourceID = "urn:functic:parameters"

// Validator validates JSON documents against a compiled schema.
type Validator struct {
	compiled *jsv.Schema
}

// ValidationError wraps a JSON Schema validation error with a cleaner message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "schema validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidator compiles the raw schema.
// A nil schema produces a validator that accepts everything.
func NewValidator(raw map[string]any) (*Validator, error) {
	if raw == nil {
		return &Validator{}, nil
	}

	js, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal schema")
	}

	doc, err := jsv.UnmarshalJSON(bytes.NewReader(js))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse schema")
	}

	c := jsv.NewCompiler()
	if err := c.AddResource(ResourceID, doc); err != nil {
		return nil, errors.Wrap(err, "failed to add schema resource")
	}

	compiled, err := c.Compile(ResourceID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile schema")
	}

	return &Validator{compiled: compiled}, nil
}

// Validate validates the JSON document.
func (v *Validator) Validate(doc []byte) error {
	if v == nil || v.compiled == nil {
		return nil
	}

	inst, err := jsv.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return errors.Wrap(err, "failed to parse document")
	}

	if err = v.compiled.Validate(inst); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
