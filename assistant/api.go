// Package assistant finds or creates the OpenAI assistants,
// with the functions of the registry as tools.
package assistant

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/tools"
	"github.com/effective-security/xlog"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/functic", "assistant")

//go:generate mockgen -source=api.go -destination=../mocks/mockassistant/api_mock.gen.go -package mockassistant

// ErrAssistantNotFound is returned when the assistant does not exist.
var ErrAssistantNotFound = errors.New("assistant not found")

// API is the assistants API.
type API interface {
	// Get returns the assistant by ID, or ErrAssistantNotFound.
	Get(ctx context.Context, id string) (*Assistant, error)
	// List returns the page of assistants after the ID.
	List(ctx context.Context, after string, limit int) (*tools.Pagination[*Assistant], error)
	// Create creates the assistant.
	Create(ctx context.Context, req *CreateRequest) (*Assistant, error)
}

type openAIClient struct {
	client openai.Client
	beta   option.RequestOption
}

// NewOpenAIClient returns the assistants API of OpenAI.
// The client reads OPENAI_API_KEY from the environment,
// unless provided with the options.
func NewOpenAIClient(opts ...option.RequestOption) API {
	return &openAIClient{
		client: openai.NewClient(opts...),
		beta:   option.WithHeader("OpenAI-Beta", "assistants=v2"),
	}
}

func (c *openAIClient) Get(ctx context.Context, id string) (*Assistant, error) {
	res := new(Assistant)
	err := c.client.Get(ctx, "assistants/"+id, nil, res, c.beta)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Mark(errors.Wrapf(err, "assistant %q", id), ErrAssistantNotFound)
		}
		return nil, errors.Wrapf(err, "failed to get assistant %q", id)
	}
	return res, nil
}

func (c *openAIClient) List(ctx context.Context, after string, limit int) (*tools.Pagination[*Assistant], error) {
	opts := []option.RequestOption{c.beta}
	if limit > 0 {
		opts = append(opts, option.WithQuery("limit", strconv.Itoa(limit)))
	}
	if after != "" {
		opts = append(opts, option.WithQuery("after", after))
	}

	res := new(tools.Pagination[*Assistant])
	if err := c.client.Get(ctx, "assistants", nil, res, opts...); err != nil {
		return nil, errors.Wrap(err, "failed to list assistants")
	}
	return res, nil
}

func (c *openAIClient) Create(ctx context.Context, req *CreateRequest) (*Assistant, error) {
	res := new(Assistant)
	if err := c.client.Post(ctx, "assistants", req, res, c.beta); err != nil {
		return nil, errors.Wrapf(err, "failed to create assistant %q", req.Name)
	}

	logger.ContextKV(ctx, xlog.INFO,
		"status", "created",
		"assistant", res.ID,
		"name", res.Name,
	)
	return res, nil
}

func isNotFound(err error) bool {
	var apiErr *openai.Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
