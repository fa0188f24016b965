package llmtools

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/tools"
	"google.golang.org/genai"
)

// GenAITools converts the function definitions to Gemini tools.
func GenAITools(defs ...tools.FunctionDefinition) ([]*genai.Tool, error) {
	genaiTools := make([]*genai.Tool, 0, len(defs))
	for i, def := range defs {
		decl := &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
		}

		if def.Parameters != nil {
			sc, err := GenAISchema(def.Parameters)
			if err != nil {
				return nil, errors.Wrapf(err, "tool [%d]", i)
			}
			decl.Parameters = sc
		}

		genaiTools = append(genaiTools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{decl},
		})
	}
	return genaiTools, nil
}

// GenAISchema converts a JSON schema in the generic form to a genai.Schema.
// The nullable types of the strict schema, like ["string", "null"],
// are converted to nullable schemas.
func GenAISchema(js map[string]any) (*genai.Schema, error) {
	if js == nil {
		return nil, nil
	}

	out := &genai.Schema{}
	if s, ok := js["description"].(string); ok {
		out.Description = s
	}

	switch typ := js["type"].(type) {
	case nil:
	case string:
		out.Type = GenAIType(typ)
		if out.Type == genai.TypeUnspecified {
			return nil, errors.Errorf("unsupported type %q", typ)
		}
	case []any:
		for _, t := range typ {
			s, _ := t.(string)
			if s == "null" {
				out.Nullable = genai.Ptr(true)
				continue
			}
			if out.Type != "" {
				return nil, errors.Errorf("unsupported type %v", typ)
			}
			out.Type = GenAIType(s)
			if out.Type == genai.TypeUnspecified {
				return nil, errors.Errorf("unsupported type %q", s)
			}
		}
	default:
		return nil, errors.Errorf("unsupported type %v", typ)
	}

	if enum, ok := js["enum"].([]any); ok {
		for _, e := range enum {
			if e == nil {
				out.Nullable = genai.Ptr(true)
				continue
			}
			out.Enum = append(out.Enum, fmt.Sprint(e))
		}
	}

	out.Required = stringList(js["required"])

	if props, ok := js["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for key, val := range props {
			m, _ := val.(map[string]any)
			prop, err := GenAISchema(m)
			if err != nil {
				return nil, errors.Wrapf(err, "property [%s]", key)
			}
			out.Properties[key] = prop
		}
		out.PropertyOrdering = propertyOrdering(out.Required, props)
	}

	if items, ok := js["items"].(map[string]any); ok {
		sc, err := GenAISchema(items)
		if err != nil {
			return nil, errors.Wrap(err, "items")
		}
		out.Items = sc
	}

	return out, nil
}

// propertyOrdering returns the required properties first, then the rest sorted by name
func propertyOrdering(required []string, props map[string]any) []string {
	order := make([]string, 0, len(props))
	for _, key := range required {
		if _, ok := props[key]; ok {
			order = append(order, key)
		}
	}
	var rest []string
	for key := range props {
		if !slices.Contains(order, key) {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	return append(order, rest...)
}

// GenAIType converts a JSON schema type to a genai.Type.
func GenAIType(dt string) genai.Type {
	switch dt {
	case "object":
		return genai.TypeObject
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeUnspecified
	}
}
