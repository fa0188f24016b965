package tools_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	tools.Provide("test/weather", func() ([]tools.ITool, error) {
		f, err := tools.New(tools.Config{Name: "get_weather"}, getWeather)
		if err != nil {
			return nil, err
		}
		return []tools.ITool{f}, nil
	})
	tools.Provide("test/failing", func() ([]tools.ITool, error) {
		return nil, errors.New("API key is not set")
	})
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	assert.Subset(t, tools.Providers(), []string{"test/failing", "test/weather"})

	assert.Panics(t, func() {
		tools.Provide("test/weather", func() ([]tools.ITool, error) { return nil, nil })
	})

	_, err := tools.GetProvider("test/unknown")
	assert.True(t, errors.Is(err, tools.ErrProviderNotFound))

	r := tools.NewRegistry()
	require.NoError(t, r.Load(" test/weather ", ""))
	assert.Equal(t, []string{"get_weather"}, r.Names())

	content, err := r.Call(context.Background(), tools.FunctionCall{Name: "get_weather", Arguments: `{"location":"Paris"}`})
	require.NoError(t, err)
	assert.Contains(t, content, "Paris")

	err = r.Load("test/unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrProviderNotFound))
	assert.EqualError(t, err, `provider "test/unknown": tool provider not found`)

	err = r.Load("test/failing")
	assert.EqualError(t, err, `provider "test/failing": API key is not set`)
}
