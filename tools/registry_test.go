package tools_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/mocks/mocktools"
	"github.com/effective-security/functic/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRegistry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	weather := newWeather(t, tools.Config{})
	rates := tools.MustNew(tools.Config{Name: "get_rates"}, func(_ context.Context, in *ratesRequest) (*ratesRequest, error) {
		return in, nil
	})

	r := tools.NewRegistry(weather, rates)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"get_weather", "get_rates"}, r.Names())
	assert.True(t, r.Has("get_rates"))
	assert.False(t, r.Has("get_time"))

	tool, err := r.Get("get_weather")
	require.NoError(t, err)
	assert.Same(t, weather, tool)

	_, err = r.Get("get_time")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrToolNotFound))
	assert.EqualError(t, err, `function "get_time": tool not found`)

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "get_weather", defs[0].Name)
	assert.Equal(t, "get_rates", defs[1].Name)

	t.Run("overwrite keeps position", func(t *testing.T) {
		r := tools.NewRegistry(weather, rates)
		replaced := newWeather(t, tools.Config{Description: "replaced"})
		r.Register(replaced)

		assert.Equal(t, 2, r.Len())
		assert.Equal(t, []string{"get_weather", "get_rates"}, r.Names())
		tool, err := r.Get("get_weather")
		require.NoError(t, err)
		assert.Equal(t, "replaced", tool.Description())
		assert.Equal(t, "replaced", r.List()[0].Description())
	})

	t.Run("call", func(t *testing.T) {
		content, err := r.Call(ctx, tools.FunctionCall{Name: "get_rates", Arguments: `{'base': 'EUR',}`})
		require.NoError(t, err)
		assert.Contains(t, content, `"base": "EUR"`)

		_, err = r.Call(ctx, tools.FunctionCall{Name: "get_time"})
		assert.True(t, errors.Is(err, tools.ErrToolNotFound))

		_, err = r.Call(ctx, tools.FunctionCall{Name: "get_weather", Arguments: `{}`})
		assert.True(t, errors.Is(err, tools.ErrInvalidArguments))
	})

	t.Run("execute", func(t *testing.T) {
		out, err := r.Execute(ctx, tools.ToolCall{
			ID:       "call_1",
			Type:     "function",
			Function: tools.FunctionCall{Name: "get_weather", Arguments: `{"location":"Atlantis"}`},
		})
		require.Error(t, err)
		require.NotNil(t, out)
		assert.Equal(t, tools.DefaultErrorContent, out.Output)
		assert.Equal(t, "call_1", out.ToolCallID)

		msg, err := r.ExecuteMessage(ctx, tools.ToolCall{
			ID:       "call_2",
			Function: tools.FunctionCall{Name: "get_weather", Arguments: `{"location":"Paris"}`},
		})
		require.NoError(t, err)
		assert.Equal(t, "tool", msg.Role)
		assert.Equal(t, "call_2", msg.ToolCallID)

		_, err = r.ExecuteMessage(ctx, tools.ToolCall{ID: "call_3", Function: tools.FunctionCall{Name: "get_time"}})
		assert.True(t, errors.Is(err, tools.ErrToolNotFound))
	})

	t.Run("execute all", func(t *testing.T) {
		calls := []tools.ToolCall{
			{ID: "call_1", Function: tools.FunctionCall{Name: "get_weather", Arguments: `{"location":"Paris"}`}},
			{ID: "call_2", Function: tools.FunctionCall{Name: "get_rates"}},
			{ID: "call_3", Function: tools.FunctionCall{Name: "get_weather", Arguments: `{"location":"Atlantis"}`}},
		}
		outs, err := r.ExecuteAll(ctx, calls)
		require.NoError(t, err)
		require.Len(t, outs, 3)
		for i, out := range outs {
			assert.Equal(t, calls[i].ID, out.ToolCallID)
		}
		assert.Contains(t, outs[0].Output, "Paris")
		assert.Contains(t, outs[1].Output, "USD")
		assert.Equal(t, tools.DefaultErrorContent, outs[2].Output)

		_, err = r.ExecuteAll(ctx, append(calls, tools.ToolCall{ID: "call_4", Function: tools.FunctionCall{Name: "get_time"}}))
		assert.True(t, errors.Is(err, tools.ErrToolNotFound))

		_, err = r.ExecuteAll(ctx, []tools.ToolCall{
			{ID: "call_1", Function: tools.FunctionCall{Name: "get_weather", Arguments: `{"unit":"kelvin"}`}},
		})
		assert.True(t, errors.Is(err, tools.ErrInvalidArguments))

		outs, err = r.ExecuteAll(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, outs)
	})
}

func TestRegistryCallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	mockTool := mocktools.NewMockITool(ctrl)
	mockTool.EXPECT().Name().Return("mock_tool").AnyTimes()
	cb := mocktools.NewMockCallback(ctrl)

	r := tools.NewRegistry(mockTool).WithCallback(cb)

	gomock.InOrder(
		cb.EXPECT().OnToolStart(ctx, mockTool, `{"a":1}`),
		mockTool.EXPECT().Call(ctx, `{"a":1}`).Return("done", nil),
		cb.EXPECT().OnToolEnd(ctx, mockTool, `{"a":1}`, "done"),
	)
	content, err := r.Call(ctx, tools.FunctionCall{Name: "mock_tool", Arguments: `{"a":1}`})
	require.NoError(t, err)
	assert.Equal(t, "done", content)

	failure := errors.New("failed")
	gomock.InOrder(
		cb.EXPECT().OnToolStart(ctx, mockTool, `{}`),
		mockTool.EXPECT().Call(ctx, `{}`).Return("sorry", failure),
		cb.EXPECT().OnToolError(ctx, mockTool, `{}`, failure),
	)
	out, err := r.Execute(ctx, tools.ToolCall{ID: "call_1", Function: tools.FunctionCall{Name: "mock_tool", Arguments: `{}`}})
	assert.Equal(t, failure, err)
	require.NotNil(t, out)
	assert.Equal(t, "sorry", out.Output)

	cb.EXPECT().OnToolNotFound(ctx, "unknown")
	_, err = r.Call(ctx, tools.FunctionCall{Name: "unknown"})
	assert.True(t, errors.Is(err, tools.ErrToolNotFound))
}
