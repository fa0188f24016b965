// Package google provides the Google Maps functions.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/functic/functions", "google")

// ProviderGeocode is the catalog name of the geocode function.
const ProviderGeocode = "google/geocode"

// GeocodeURL is the URL of the geocoding API.
const GeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// EnvAPIKey is the environment variable of the Google Maps API key.
const EnvAPIKey = "GOOGLE_MAPS_API_KEY"

func init() {
	tools.Provide(ProviderGeocode, func() ([]tools.ITool, error) {
		// the key is read on each call
		tool, err := NewGeocode(GeocodeURL, "", http.DefaultClient)
		if err != nil {
			return nil, err
		}
		return []tools.ITool{tool}, nil
	})
}

// GeocodeRequest is the address to geocode.
type GeocodeRequest struct {
	Address  string `json:"address" jsonschema:"description=The street address or plus code to geocode" fake:"{street}, {city}"`
	Language string `json:"language,omitempty" jsonschema:"description=The language of the results\\, as IETF language code" fake:"{randomstring:[en,de,fr]}"`
	Region   string `json:"region,omitempty" jsonschema:"description=The region code\\, as ccTLD two-character value" fake:"{randomstring:[us,uk,de]}"`
}

// Location is a geographic point.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry of the geocoding result.
type Geometry struct {
	Location     Location `json:"location"`
	LocationType string   `json:"location_type,omitempty"`
}

// GeocodeResult is a matched place.
type GeocodeResult struct {
	FormattedAddress string   `json:"formatted_address"`
	Geometry         Geometry `json:"geometry"`
	PlaceID          string   `json:"place_id,omitempty"`
	Types            []string `json:"types,omitempty"`
}

// GeocodeResponse is the response of the geocoding API.
type GeocodeResponse struct {
	Results      []GeocodeResult `json:"results"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// String returns the tool content of the results.
func (r *GeocodeResponse) String() string {
	if len(r.Results) == 0 {
		return "No results found for the address."
	}

	var buf strings.Builder
	for i, res := range r.Results {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "- ADDRESS: %s\n", res.FormattedAddress)
		fmt.Fprintf(&buf, "  LOCATION: %v, %v", res.Geometry.Location.Lat, res.Geometry.Location.Lng)
		if res.PlaceID != "" {
			fmt.Fprintf(&buf, "\n  PLACE ID: %s", res.PlaceID)
		}
	}
	return buf.String()
}

// NewGeocode returns the get_maps_geocode function.
// An empty apiKey is taken from GOOGLE_MAPS_API_KEY when the function is called.
func NewGeocode(baseURL, apiKey string, client *http.Client) (*tools.Function[GeocodeRequest, GeocodeResponse], error) {
	if client == nil {
		client = http.DefaultClient
	}
	g := &geocode{baseURL: baseURL, apiKey: apiKey, client: client}
	return tools.New(tools.Config{
		Name:        "get_maps_geocode",
		Description: "This function converts a street address into geographic coordinates, latitude and longitude, using Google Maps. Use it to locate places or to prepare coordinates for other geographic requests.",
	}, g.run)
}

type geocode struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func (g *geocode) run(ctx context.Context, in *GeocodeRequest) (*GeocodeResponse, error) {
	if strings.TrimSpace(in.Address) == "" {
		return nil, errors.New("address is required")
	}

	apiKey := g.apiKey
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if apiKey == "" {
		return nil, errors.Newf("%s is not set", EnvAPIKey)
	}

	q := url.Values{}
	q.Set("address", in.Address)
	q.Set("key", apiKey)
	if in.Language != "" {
		q.Set("language", in.Language)
	}
	if in.Region != "" {
		q.Set("region", in.Region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to geocode")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("geocoding API returned %d", resp.StatusCode)
	}

	res := new(GeocodeResponse)
	if err = json.NewDecoder(resp.Body).Decode(res); err != nil {
		return nil, errors.Wrap(err, "failed to decode geocoding response")
	}

	switch res.Status {
	case "OK", "ZERO_RESULTS":
		return res, nil
	default:
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "geocode",
			"status", res.Status,
			"err", res.ErrorMessage,
		)
		return nil, errors.Newf("geocoding failed: %s", res.Status)
	}
}
