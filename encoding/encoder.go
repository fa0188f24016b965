package encoding

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/pkg/llmutils"
	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"
)

// Format of the documents.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat returns the format by name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", errors.Newf("unsupported format: %q", name)
}

// FormatFromFile returns the format by the file extension, JSON by default.
func FormatFromFile(filename string) Format {
	switch {
	case strings.HasSuffix(filename, ".yaml"), strings.HasSuffix(filename, ".yml"):
		return FormatYAML
	case strings.HasSuffix(filename, ".toml"):
		return FormatTOML
	}
	return FormatJSON
}

// Marshal encodes the value in the format.
// The field names are taken from `json` tags for all formats.
func Marshal(format Format, v any) ([]byte, error) {
	js, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal")
	}

	switch format {
	case FormatJSON, "":
		var buf bytes.Buffer
		if err = json.Indent(&buf, js, "", "  "); err != nil {
			return nil, errors.WithStack(err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case FormatYAML:
		bs, err := k8syaml.JSONToYAML(js)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode YAML")
		}
		return bs, nil
	case FormatTOML:
		var m map[string]any
		if err = json.Unmarshal(js, &m); err != nil {
			return nil, errors.Wrap(err, "TOML requires an object")
		}
		var buf bytes.Buffer
		if err = toml.NewEncoder(&buf).Encode(m); err != nil {
			return nil, errors.Wrap(err, "failed to encode TOML")
		}
		return buf.Bytes(), nil
	}
	return nil, errors.Newf("unsupported format: %q", format)
}

// ToJSON converts the document in the format to JSON.
// Markdown fences around the document are removed.
func ToJSON(format Format, doc []byte) ([]byte, error) {
	doc = llmutils.BytesTrimBackticks(doc)

	var v any
	switch format {
	case FormatJSON, "":
		return doc, nil
	case FormatYAML:
		if err := yaml.Unmarshal(doc, &v); err != nil {
			return nil, errors.Wrap(err, "failed to decode YAML")
		}
	case FormatTOML:
		m := map[string]any{}
		if _, err := toml.Decode(string(doc), &m); err != nil {
			return nil, errors.Wrap(err, "failed to decode TOML")
		}
		v = m
	default:
		return nil, errors.Newf("unsupported format: %q", format)
	}

	js, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode JSON")
	}
	return js, nil
}
