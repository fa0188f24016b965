package tools_test

import (
	"encoding/json"
	"testing"

	"github.com/effective-security/functic/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionCallUnmarshal(t *testing.T) {
	t.Parallel()

	tcases := []struct {
		js  string
		exp tools.FunctionCall
	}{
		{js: `{"name":"get_weather","arguments":"{\"location\":\"Paris\"}"}`, exp: tools.FunctionCall{Name: "get_weather", Arguments: `{"location":"Paris"}`}},
		{js: `{"name":"get_weather","arguments":{"location":"Paris"}}`, exp: tools.FunctionCall{Name: "get_weather", Arguments: `{"location":"Paris"}`}},
		{js: `{"name":"get_weather","arguments":null}`, exp: tools.FunctionCall{Name: "get_weather"}},
		{js: `{"name":"get_weather"}`, exp: tools.FunctionCall{Name: "get_weather"}},
		{js: `{"name":"get_weather","arguments":"{'location': 'Paris',}"}`, exp: tools.FunctionCall{Name: "get_weather", Arguments: `{'location': 'Paris',}`}},
	}
	for _, tc := range tcases {
		var call tools.FunctionCall
		require.NoError(t, json.Unmarshal([]byte(tc.js), &call), tc.js)
		assert.Equal(t, tc.exp, call)
	}

	var call tools.FunctionCall
	assert.Error(t, json.Unmarshal([]byte(`{"name":1}`), &call))

	var tc tools.ToolCall
	require.NoError(t, json.Unmarshal([]byte(`{"id":"call_1","type":"function","function":{"name":"get_weather","arguments":"{}"}}`), &tc))
	assert.Equal(t, "call_1", tc.ID)
	assert.Equal(t, "get_weather", tc.Function.Name)
	assert.Equal(t, "{}", tc.Function.Arguments)
}

func TestMessages(t *testing.T) {
	t.Parallel()

	msg := tools.NewToolMessage("sunny", "call_1")
	js, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Equal(t, `{"role":"tool","content":"sunny","tool_call_id":"call_1"}`, string(js))

	out := tools.NewToolOutput("sunny", "call_1")
	js, err = json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, `{"output":"sunny","tool_call_id":"call_1"}`, string(js))

	assert.Equal(t, "sunny", tools.ToolContent("sunny"))
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.True(t, tools.ValidName("get_weather-2"))
	assert.False(t, tools.ValidName("get weather"))

	cfg := tools.Config{Name: "get_weather"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, tools.DefaultErrorContent, cfg.GetErrorContent())

	cfg.Name = "get:weather"
	assert.Error(t, cfg.Validate())
}

func TestPagination(t *testing.T) {
	t.Parallel()

	defs := []tools.FunctionDefinition{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	p := tools.NewPagination(defs, func(d tools.FunctionDefinition) string { return d.Name })
	js, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"object":"list","data":[{"name":"a"},{"name":"b"},{"name":"c"}],"first_id":"a","last_id":"c","has_more":false}`, string(js))

	empty := tools.NewPagination[tools.FunctionDefinition](nil, func(d tools.FunctionDefinition) string { return d.Name })
	js, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"object":"list","data":[],"first_id":null,"last_id":null,"has_more":false}`, string(js))
}
