package assorted_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/functions/assorted"
	"github.com/effective-security/functic/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencies(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		base := r.URL.Query().Get("base")
		if base == "GBP" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		assert.Equal(t, "JPY,CHF", r.URL.Query().Get("symbols"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"` + base + `","date":"2025-05-02","rates":{"JPY":144.5,"CHF":0.8275}}`))
	}))
	defer server.Close()

	f, err := assorted.NewCurrencies(server.URL, server.Client())
	require.NoError(t, err)
	assert.Equal(t, "get_currencies", f.Name())

	def := f.Definition()
	props := def.Parameters["properties"].(map[string]any)
	base := props["base"].(map[string]any)
	assert.Equal(t, "USD", base["default"])
	assert.Len(t, base["enum"], len(assorted.CurrencyNames))

	ctx := context.Background()
	content, err := f.Call(ctx, `{"symbols":["JPY","CHF"]}`)
	require.NoError(t, err)
	assert.Equal(t, "The base currency is USD on 2025-05-02. Exchange rates:\nCHF: 0.8275\nJPY: 144.5", content)

	content, err = f.Call(ctx, `{"base":"EUR","symbols":["JPY","CHF"]}`)
	require.NoError(t, err)
	assert.Contains(t, content, "The base currency is EUR on 2025-05-02.")

	_, err = f.Call(ctx, `{"base":"XXX"}`)
	assert.True(t, errors.Is(err, tools.ErrInvalidArguments))

	content, err = f.Call(ctx, `{"base":"GBP"}`)
	assert.EqualError(t, err, `function "get_currencies" failed: exchange rates API returned 500`)
	assert.Equal(t, tools.DefaultErrorContent, content)
}

func TestCurrencySymbols(t *testing.T) {
	t.Parallel()

	symbols := assorted.CurrencySymbols()
	require.Len(t, symbols, 31)
	assert.Equal(t, "AUD", symbols[0])
	assert.Equal(t, "ZAR", symbols[30])
	assert.Equal(t, "Japanese Yen", assorted.CurrencyNames["JPY"])
}

func TestCurrenciesProvider(t *testing.T) {
	t.Parallel()

	r := tools.NewRegistry()
	require.NoError(t, r.Load(assorted.ProviderCurrencies))
	assert.Equal(t, []string{"get_currencies"}, r.Names())
}
