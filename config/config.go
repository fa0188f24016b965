// Package config loads the functic settings from the defaults,
// .env file, YAML/JSON or TOML config file, and the environment.
package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/functic", "config")

// Environment variables
const (
	EnvDatabaseConnectionString = "FUNCTIC_DATABASE_CONNECTION_STRING"
	EnvDatabaseName             = "FUNCTIC_DATABASE_NAME"
	EnvFunctionsTableName       = "FUNCTIC_FUNCTIONS_REPOSITORY_TABLE_NAME"
	EnvFunctions                = "FUNCTIC_FUNCTIONS"
	EnvCacheURL                 = "FUNCTIC_CACHE_URL"
	EnvCacheExpireSeconds       = "FUNCTIC_CACHE_EXPIRE_SECONDS"
	EnvListen                   = "FUNCTIC_LISTEN"
	EnvSyncFunctions            = "FUNCTIC_SYNC_FUNCTIONS"
)

// Defaults
const (
	DefaultDatabaseConnectionString = "mongodb://localhost:27017/"
	DefaultDatabaseName             = "functic"
	DefaultFunctionsTableName       = "functions"
	DefaultFunctions                = "assorted/currencies,google/geocode"
	DefaultCacheURL                 = "memory://"
	DefaultCacheExpireSeconds       = 900
	DefaultListen                   = ":8000"
)

// Settings of the functic service.
type Settings struct {
	// DatabaseConnectionString is the connection string of the functions store:
	// mongodb://, mongodb+srv://, sqlite://<path> or memory://
	DatabaseConnectionString string `json:"database_connection_string" yaml:"database_connection_string" toml:"database_connection_string"`
	DatabaseName             string `json:"database_name" yaml:"database_name" toml:"database_name"`
	FunctionsTableName       string `json:"functions_repository_table_name" yaml:"functions_repository_table_name" toml:"functions_repository_table_name"`
	// Functions is the list of the function providers to load
	Functions Functions `json:"functions" yaml:"functions" toml:"functions"`
	// SyncFunctions stores the function definitions on start
	SyncFunctions      bool   `json:"sync_functions" yaml:"sync_functions" toml:"sync_functions"`
	CacheURL           string `json:"cache_url" yaml:"cache_url" toml:"cache_url"`
	CacheExpireSeconds int    `json:"cache_expire_seconds" yaml:"cache_expire_seconds" toml:"cache_expire_seconds"`
	Listen             string `json:"listen" yaml:"listen" toml:"listen"`
}

// Default returns the default settings.
func Default() *Settings {
	return &Settings{
		DatabaseConnectionString: DefaultDatabaseConnectionString,
		DatabaseName:             DefaultDatabaseName,
		FunctionsTableName:       DefaultFunctionsTableName,
		Functions:                SplitFunctions(DefaultFunctions),
		CacheURL:                 DefaultCacheURL,
		CacheExpireSeconds:       DefaultCacheExpireSeconds,
		Listen:                   DefaultListen,
	}
}

// Load returns the settings: the defaults, overridden by the config file,
// overridden by the environment. The .env file in the current folder
// is loaded into the environment, without overriding the existing variables.
func Load(file string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	s := Default()
	if file != "" {
		if err := loadFile(file, s); err != nil {
			return nil, err
		}
	}
	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	s.applyDefaults()

	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger.KV(xlog.DEBUG,
		"status", "loaded",
		"file", file,
		"database", s.MaskedConnectionString(),
		"functions", strings.Join(s.Functions, ","),
	)
	return s, nil
}

func loadFile(file string, s *Settings) error {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".toml":
		data, err := os.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "failed to read %q", file)
		}
		if _, err = toml.Decode(os.ExpandEnv(string(data)), s); err != nil {
			return errors.Wrapf(err, "failed to parse %q", file)
		}
	default:
		if err := configloader.UnmarshalAndExpand(file, s); err != nil {
			return errors.Wrapf(err, "failed to load %q", file)
		}
	}
	return nil
}

func (s *Settings) applyEnv() error {
	if v, ok := os.LookupEnv(EnvDatabaseConnectionString); ok {
		s.DatabaseConnectionString = v
	}
	if v, ok := os.LookupEnv(EnvDatabaseName); ok {
		s.DatabaseName = v
	}
	if v, ok := os.LookupEnv(EnvFunctionsTableName); ok {
		s.FunctionsTableName = v
	}
	if v, ok := os.LookupEnv(EnvFunctions); ok {
		s.Functions = SplitFunctions(v)
	}
	if v, ok := os.LookupEnv(EnvCacheURL); ok {
		s.CacheURL = v
	}
	if v, ok := os.LookupEnv(EnvListen); ok {
		s.Listen = v
	}
	if v, ok := os.LookupEnv(EnvCacheExpireSeconds); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvCacheExpireSeconds)
		}
		s.CacheExpireSeconds = n
	}
	if v, ok := os.LookupEnv(EnvSyncFunctions); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvSyncFunctions)
		}
		s.SyncFunctions = b
	}
	return nil
}

func (s *Settings) applyDefaults() {
	s.DatabaseConnectionString = values.StringsCoalesce(s.DatabaseConnectionString, DefaultDatabaseConnectionString)
	s.DatabaseName = values.StringsCoalesce(s.DatabaseName, DefaultDatabaseName)
	s.FunctionsTableName = values.StringsCoalesce(s.FunctionsTableName, DefaultFunctionsTableName)
	s.CacheURL = values.StringsCoalesce(s.CacheURL, DefaultCacheURL)
	s.Listen = values.StringsCoalesce(s.Listen, DefaultListen)
}

// Validate returns error if the settings are not valid.
func (s *Settings) Validate() error {
	if s.CacheExpireSeconds < 0 {
		return errors.Newf("invalid cache expiration: %d", s.CacheExpireSeconds)
	}
	if _, err := url.Parse(s.DatabaseConnectionString); err != nil {
		return errors.New("invalid database connection string")
	}
	return nil
}

// CacheExpire returns the expiration of the cached values.
func (s *Settings) CacheExpire() time.Duration {
	return time.Duration(s.CacheExpireSeconds) * time.Second
}

// MaskedConnectionString returns the connection string with the password masked.
func (s *Settings) MaskedConnectionString() string {
	u, err := url.Parse(s.DatabaseConnectionString)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}

var splitRegex = regexp.MustCompile(`[;,]`)

// SplitFunctions splits the list of the function providers on `;` or `,`,
// the spaces and quotes are removed.
func SplitFunctions(value string) []string {
	var list []string
	for _, s := range splitRegex.Split(value, -1) {
		s = strings.TrimSpace(strings.Trim(s, ` '"`))
		if s != "" {
			list = append(list, s)
		}
	}
	return list
}

// Functions is the list of the function providers,
// configured as a list or as a string separated by `;` or `,`.
type Functions []string

// UnmarshalJSON accepts a string or a list of strings.
func (f *Functions) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = SplitFunctions(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.Wrap(err, "functions must be a string or a list of strings")
	}
	*f = normalize(list)
	return nil
}

// UnmarshalYAML accepts a string or a list of strings.
func (f *Functions) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*f = SplitFunctions(node.Value)
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return errors.Wrap(err, "functions must be a string or a list of strings")
	}
	*f = normalize(list)
	return nil
}

// UnmarshalTOML accepts a string or a list of strings.
func (f *Functions) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		*f = SplitFunctions(val)
	case []any:
		list := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return errors.Newf("functions must be a list of strings, got %T", item)
			}
			list = append(list, s)
		}
		*f = normalize(list)
	default:
		return errors.Newf("functions must be a string or a list of strings, got %T", v)
	}
	return nil
}

func normalize(list []string) []string {
	return SplitFunctions(strings.Join(list, ","))
}
