package llmutils_test

import (
	"testing"

	"github.com/effective-security/functic/pkg/llmutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	t.Parallel()

	tcases := []struct {
		name     string
		in       string
		exp      string
		repaired bool
	}{
		{name: "empty", in: "", exp: `{}`},
		{name: "spaces", in: " \n\t", exp: `{}`},
		{name: "valid", in: `{"base":"EUR"}`, exp: `{"base":"EUR"}`},
		{name: "single quotes", in: `{'base': 'EUR',}`, exp: `{"base":"EUR"}`, repaired: true},
		{name: "fenced", in: "```json\n{\"base\":\"EUR\"}\n```", exp: `{"base":"EUR"}`, repaired: true},
		{name: "text around", in: `Sure, here you go: {"base":"EUR"} Thanks!`, exp: `{"base":"EUR"}`, repaired: true},
		{name: "unclosed", in: `{"base":"EUR","symbols":["USD","JPY"`, exp: `{"base":"EUR","symbols":["USD","JPY"]}`, repaired: true},
		{name: "unquoted keys", in: `{base: "EUR"}`, exp: `{"base":"EUR"}`, repaired: true},
		{name: "truncated after array", in: `{"symbols": ["EUR"], "base": "GBP"`, exp: `{"symbols":["EUR"],"base":"GBP"}`, repaired: true},
		{name: "truncated after object", in: `{"options": {"mode": "fast"}, "query": "x"`, exp: `{"options":{"mode":"fast"},"query":"x"}`, repaired: true},
		{name: "fenced truncated", in: "```json\n{\"symbols\": [\"EUR\"], \"base\": \"GBP\"\n```", exp: `{"symbols":["EUR"],"base":"GBP"}`, repaired: true},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			res, repaired, err := llmutils.RepairJSON(tc.in)
			require.NoError(t, err)
			assert.JSONEq(t, tc.exp, res)
			assert.Equal(t, tc.repaired, repaired)
		})
	}
}
