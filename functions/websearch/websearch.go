// Package websearch provides the web search function backed by Tavily.
package websearch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
	tavilygo "github.com/diverged/tavily-go"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/effective-security/functic/tools"
)

// ProviderWebSearch is the catalog name of the web search function.
const ProviderWebSearch = "tavily/websearch"

// EnvAPIKey is the environment variable of the Tavily API key.
const EnvAPIKey = "TAVILY_API_KEY"

func init() {
	tools.Provide(ProviderWebSearch, func() ([]tools.ITool, error) {
		// the key is read on each call
		tool, err := New("")
		if err != nil {
			return nil, err
		}
		return []tools.ITool{tool.Function()}, nil
	})
}

// SearchRequest represents the tool input.
type SearchRequest struct {
	Query string `json:"query" jsonschema:"description=The query to search web" fake:"{sentence:5}"`
}

// SearchResult represents the structure for a search response
type SearchResult struct {
	Results []tavilyModels.SearchResult `json:"results"`
	Answer  string                      `json:"answer,omitempty"`
}

// String returns the tool content of the search.
func (r *SearchResult) String() string {
	var buf bytes.Buffer
	if r.Answer != "" {
		fmt.Fprintf(&buf, "ANSWER: %s\n", r.Answer)
	}

	for _, result := range r.Results {
		fmt.Fprintf(&buf, "- URL: %s\n", result.URL)
		fmt.Fprintf(&buf, "  TITLE: %s\n", result.Title)
		fmt.Fprintf(&buf, "  SCORE: %f\n", result.Score)
		fmt.Fprintf(&buf, "  CONTENT: %s\n", result.Content)
	}

	return buf.String()
}

// Search is the web search function.
type Search struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	fn *tools.Function[SearchRequest, SearchResult]
}

// New returns the web_search function.
// An empty apiKey is taken from TAVILY_API_KEY when the function is called.
func New(apiKey string) (*Search, error) {
	s := &Search{
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
	fn, err := tools.New(tools.Config{
		Name:        "web_search",
		Description: "This function searches the web and returns the most relevant results with an aggregated answer. Use it for recent events or facts that are not known to the model.",
	}, s.run)
	if err != nil {
		return nil, err
	}
	s.fn = fn
	return s, nil
}

// WithBaseURL overrides the Tavily API URL.
func (s *Search) WithBaseURL(baseURL string) *Search {
	s.baseURL = baseURL
	return s
}

// WithHTTPClient overrides the HTTP client.
func (s *Search) WithHTTPClient(client *http.Client) *Search {
	s.httpClient = client
	return s
}

// Function returns the function tool.
func (s *Search) Function() *tools.Function[SearchRequest, SearchResult] {
	return s.fn
}

func (s *Search) run(_ context.Context, req *SearchRequest) (*SearchResult, error) {
	if req.Query == "" {
		return nil, errors.New("invalid request: empty query")
	}

	apiKey := s.apiKey
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if apiKey == "" {
		return nil, errors.Newf("%s is not set", EnvAPIKey)
	}

	client := tavilygo.NewClient(apiKey)
	if s.baseURL != "" {
		client.BaseURL = s.baseURL
	}
	if s.httpClient != nil {
		client.HTTPClient = s.httpClient
	}

	searchResp, err := tavilygo.Search(client, tavilyModels.SearchRequest{
		Query:         req.Query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform search")
	}

	return &SearchResult{
		Results: searchResp.Results,
		Answer:  searchResp.Answer,
	}, nil
}
