package schema

import (
	"encoding/json"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

// StrictProperty is the subset of JSON schema accepted by
// OpenAI function calling in strict mode.
type StrictProperty struct {
	// Type is a string, or a list of types for the nullable properties
	Type                 any                        `json:"type,omitempty"`
	Description          string                     `json:"description,omitempty"`
	Enum                 []any                      `json:"enum,omitempty"`
	Items                *StrictProperty            `json:"items,omitempty"`
	Properties           map[string]*StrictProperty `json:"properties,omitempty"`
	AdditionalProperties *bool                      `json:"additionalProperties,omitempty"`
	Required             []string                   `json:"required,omitempty"`
}

var falseVal = false

// Strict converts the parameters schema into the strict form:
// every object forbids additional properties and lists all of its
// properties as required, the optional ones become nullable.
func Strict(in *jsonschema.Schema) *StrictProperty {
	return toStrict(in, false)
}

// StrictMap returns the strict form of the parameters as a generic map.
func (s *Schema) StrictMap() (map[string]any, error) {
	js, err := json.Marshal(Strict(s.Parameters))
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal strict schema")
	}
	var m map[string]any
	if err = json.Unmarshal(js, &m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal strict schema")
	}
	return m, nil
}

func toStrict(in *jsonschema.Schema, nullable bool) *StrictProperty {
	if in == nil {
		return nil
	}

	result := &StrictProperty{
		Description: in.Description,
		Enum:        in.Enum,
	}
	if nullable && in.Type != "" {
		result.Type = []string{in.Type, "null"}
		if len(in.Enum) > 0 {
			result.Enum = append(slices.Clone(in.Enum), nil)
		}
	} else if in.Type != "" {
		result.Type = in.Type
	}

	if in.Type == "object" || in.Properties != nil {
		result.AdditionalProperties = &falseVal
		result.Properties = map[string]*StrictProperty{}
		if in.Properties != nil {
			for pair := in.Properties.Oldest(); pair != nil; pair = pair.Next() {
				optional := !slices.Contains(in.Required, pair.Key)
				result.Properties[pair.Key] = toStrict(pair.Value, optional)
				result.Required = append(result.Required, pair.Key)
			}
		}
	}

	if in.Items != nil {
		result.Items = toStrict(in.Items, false)
	}

	return result
}
