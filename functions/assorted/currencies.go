// Package assorted provides the assorted functions, that do not require an API key.
package assorted

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/functic/tools"
	"github.com/effective-security/xlog"
	"github.com/invopop/jsonschema"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/functic/functions", "assorted")

// ProviderCurrencies is the catalog name of the currencies function.
const ProviderCurrencies = "assorted/currencies"

// CurrenciesURL is the URL of the latest exchange rates API.
const CurrenciesURL = "https://api.frankfurter.dev/v1/latest"

func init() {
	tools.Provide(ProviderCurrencies, func() ([]tools.ITool, error) {
		tool, err := NewCurrencies(CurrenciesURL, http.DefaultClient)
		if err != nil {
			return nil, err
		}
		return []tools.ITool{tool}, nil
	})
}

// CurrencyNames maps the supported currency symbols to their names.
var CurrencyNames = map[string]string{
	"AUD": "Australian Dollar",
	"BGN": "Bulgarian Lev",
	"BRL": "Brazilian Real",
	"CAD": "Canadian Dollar",
	"CHF": "Swiss Franc",
	"CNY": "Chinese Renminbi Yuan",
	"CZK": "Czech Koruna",
	"DKK": "Danish Krone",
	"EUR": "Euro",
	"GBP": "British Pound",
	"HKD": "Hong Kong Dollar",
	"HUF": "Hungarian Forint",
	"IDR": "Indonesian Rupiah",
	"ILS": "Israeli New Sheqel",
	"INR": "Indian Rupee",
	"ISK": "Icelandic Króna",
	"JPY": "Japanese Yen",
	"KRW": "South Korean Won",
	"MXN": "Mexican Peso",
	"MYR": "Malaysian Ringgit",
	"NOK": "Norwegian Krone",
	"NZD": "New Zealand Dollar",
	"PHP": "Philippine Peso",
	"PLN": "Polish Złoty",
	"RON": "Romanian Leu",
	"SEK": "Swedish Krona",
	"SGD": "Singapore Dollar",
	"THB": "Thai Baht",
	"TRY": "Turkish Lira",
	"USD": "United States Dollar",
	"ZAR": "South African Rand",
}

// CurrencySymbols returns the sorted list of the supported currency symbols.
func CurrencySymbols() []string {
	list := make([]string, 0, len(CurrencyNames))
	for s := range CurrencyNames {
		list = append(list, s)
	}
	slices.Sort(list)
	return list
}

// GetCurrencies is the request of the exchange rates.
type GetCurrencies struct {
	Base    string   `json:"base,omitempty" jsonschema:"description=The base currency to convert from,default=USD" fake:"{randomstring:[USD,EUR,GBP]}"`
	Symbols []string `json:"symbols,omitempty" jsonschema:"description=The currencies to convert to" fakesize:"2" fake:"{randomstring:[JPY,CHF,CAD]}"`
}

// JSONSchemaExtend restricts the values to the supported currency symbols.
func (GetCurrencies) JSONSchemaExtend(s *jsonschema.Schema) {
	symbols := CurrencySymbols()
	enum := make([]any, len(symbols))
	for i, sym := range symbols {
		enum[i] = sym
	}
	if p, ok := s.Properties.Get("base"); ok {
		p.Enum = enum
	}
	if p, ok := s.Properties.Get("symbols"); ok && p.Items != nil {
		p.Items.Enum = enum
	}
}

// GetCurrenciesResponse is the exchange rates of the base currency.
type GetCurrenciesResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// String returns the tool content of the rates.
func (r *GetCurrenciesResponse) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "The base currency is %s on %s. Exchange rates:", r.Base, r.Date)

	symbols := make([]string, 0, len(r.Rates))
	for sym := range r.Rates {
		symbols = append(symbols, sym)
	}
	slices.Sort(symbols)
	for _, sym := range symbols {
		fmt.Fprintf(&buf, "\n%s: %s", sym, strconv.FormatFloat(r.Rates[sym], 'f', -1, 64))
	}
	return buf.String()
}

// NewCurrencies returns the get_currencies function.
func NewCurrencies(baseURL string, client *http.Client) (*tools.Function[GetCurrencies, GetCurrenciesResponse], error) {
	if client == nil {
		client = http.DefaultClient
	}
	h := &currencies{baseURL: baseURL, client: client}
	return tools.New(tools.Config{
		Name:        "get_currencies",
		Description: "This function retrieves a list of supported currencies, including their symbols and full names. It provides standardized currency information for applications requiring financial data or currency conversions.",
	}, h.run)
}

type currencies struct {
	baseURL string
	client  *http.Client
}

func (c *currencies) run(ctx context.Context, in *GetCurrencies) (*GetCurrenciesResponse, error) {
	q := url.Values{}
	if in.Base != "" {
		q.Set("base", in.Base)
	}
	if len(in.Symbols) > 0 {
		q.Set("symbols", strings.Join(in.Symbols, ","))
	}

	u := c.baseURL
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	res := new(GetCurrenciesResponse)
	if err := getJSON(ctx, c.client, u, res); err != nil {
		return nil, err
	}
	if res.Base == "" || res.Rates == nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"reason", "invalid_response",
			"base", res.Base,
		)
		return nil, errors.New("invalid exchange rates response")
	}
	return res, nil
}

func getJSON(ctx context.Context, client *http.Client, u string, res any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to get exchange rates")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("exchange rates API returned %d", resp.StatusCode)
	}
	if err = json.NewDecoder(resp.Body).Decode(res); err != nil {
		return errors.Wrap(err, "failed to decode exchange rates")
	}
	return nil
}
