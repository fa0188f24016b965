package google_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/functions/google"
	"github.com/effective-security/functic/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "testkey", q.Get("key"))
		w.Header().Set("Content-Type", "application/json")
		switch q.Get("address") {
		case "nowhere":
			_, _ = w.Write([]byte(`{"results":[],"status":"ZERO_RESULTS"}`))
		case "denied":
			_, _ = w.Write([]byte(`{"results":[],"status":"REQUEST_DENIED","error_message":"invalid key"}`))
		default:
			assert.Equal(t, "de", q.Get("language"))
			_, _ = w.Write([]byte(`{
				"results":[{
					"formatted_address":"Pariser Platz, 10117 Berlin, Germany",
					"geometry":{"location":{"lat":52.5163,"lng":13.3777},"location_type":"ROOFTOP"},
					"place_id":"ChIJ",
					"types":["street_address"]
				}],
				"status":"OK"
			}`))
		}
	}))
	defer server.Close()

	f, err := google.NewGeocode(server.URL, "testkey", server.Client())
	require.NoError(t, err)
	assert.Equal(t, "get_maps_geocode", f.Name())
	assert.Equal(t, []any{"address"}, f.Definition().Parameters["required"])

	ctx := context.Background()
	content, err := f.Call(ctx, `{"address":"Brandenburger Tor","language":"de"}`)
	require.NoError(t, err)
	assert.Equal(t, "- ADDRESS: Pariser Platz, 10117 Berlin, Germany\n  LOCATION: 52.5163, 13.3777\n  PLACE ID: ChIJ", content)

	content, err = f.Call(ctx, `{"address":"nowhere"}`)
	require.NoError(t, err)
	assert.Equal(t, "No results found for the address.", content)

	content, err = f.Call(ctx, `{"address":"denied"}`)
	assert.EqualError(t, err, `function "get_maps_geocode" failed: geocoding failed: REQUEST_DENIED`)
	assert.Equal(t, tools.DefaultErrorContent, content)

	_, err = f.Call(ctx, `{}`)
	assert.True(t, errors.Is(err, tools.ErrInvalidArguments))
}

func TestGeocodeProvider(t *testing.T) {
	r := tools.NewRegistry()

	t.Setenv(google.EnvAPIKey, "")
	require.NoError(t, r.Load(google.ProviderGeocode))
	assert.Equal(t, []string{"get_maps_geocode"}, r.Names())

	// the missing key fails the call, not the load
	content, err := r.Call(context.Background(), tools.FunctionCall{
		Name:      "get_maps_geocode",
		Arguments: `{"address":"Brandenburger Tor"}`,
	})
	assert.EqualError(t, err, `function "get_maps_geocode" failed: GOOGLE_MAPS_API_KEY is not set`)
	assert.Equal(t, tools.DefaultErrorContent, content)
}

func TestGeocodeKeyFromEnv(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "envkey", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[],"status":"ZERO_RESULTS"}`))
	}))
	defer server.Close()

	f, err := google.NewGeocode(server.URL, "", server.Client())
	require.NoError(t, err)

	t.Setenv(google.EnvAPIKey, "envkey")
	content, err := f.Call(context.Background(), `{"address":"nowhere"}`)
	require.NoError(t, err)
	assert.Equal(t, "No results found for the address.", content)
}
