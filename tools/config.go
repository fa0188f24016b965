package tools

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// DefaultErrorContent is reported to the model when the function fails.
const DefaultErrorContent = "The service is currently unavailable. Please try again later."

// MaxDescriptionLength is the limit of the function description.
const MaxDescriptionLength = 1024

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Config provides the function tool configuration.
type Config struct {
	// Name of the function, must be a-z, A-Z, 0-9, underscores and dashes,
	// with a maximum length of 64.
	Name string `json:"name" yaml:"name" validate:"required,toolname"`
	// Description of what the function does, used by the model to choose
	// when and how to call the function.
	Description string `json:"description,omitempty" yaml:"description,omitempty" validate:"max=1024"`
	// ErrorContent is returned to the model when the function fails.
	ErrorContent string `json:"error_content,omitempty" yaml:"error_content,omitempty"`
	// Strict enables strict schema adherence when generating the function call.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`
	// ContentTemplate is an optional text/template with sprig functions,
	// used to render the function result as the tool content.
	ContentTemplate string `json:"content_template,omitempty" yaml:"content_template,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("toolname", func(fl validator.FieldLevel) bool {
		return nameRegex.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(errors.Wrap(err, "failed to register toolname validation"))
	}
	return v
}

// ValidName returns true if the name can be used as a function name.
func ValidName(name string) bool {
	return nameRegex.MatchString(name)
}

// Validate returns ErrInvalidConfig error if the config is not valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Mark(errors.Wrapf(err, "invalid config for function %q", c.Name), ErrInvalidConfig)
	}
	return nil
}

// GetErrorContent returns ErrorContent, or the default one.
func (c *Config) GetErrorContent() string {
	if s := strings.TrimSpace(c.ErrorContent); s != "" {
		return s
	}
	return DefaultErrorContent
}
