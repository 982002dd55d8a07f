package command

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lexware-office/go-lexware-client/core"
	"github.com/lexware-office/go-lexware-client/internal/logging"
)

const (
	envPrefix  = "LEXWARE"
	configName = "lexware"

	OutputTable = "table"
	OutputJSON  = "json"
)

// Settings is the CLI configuration.
//
// Priority (highest to lowest):
//  1. Environment variables with the LEXWARE_ prefix (e.g. LEXWARE_API_KEY)
//  2. lexware.yaml / lexware.toml in the working directory or ~/.config/lexware
//  3. Built-in defaults
type Settings struct {
	ApiKey      string
	ResourceUrl string
	ApiVersion  string
	AppUrl      string
	Timeout     time.Duration
	PageSize    int
	// RateLimit is requests per second. Zero turns the client side limiter off.
	RateLimit float64
	RateBurst int
	Output    string

	LogLevel string
	LogFile  string

	HistoryEnabled bool
	HistoryPath    string
}

// LoadSettings reads settings from configFile (when not empty), the default locations and the environment.
func LoadSettings(configFile string) (*Settings, error) {
	v := viper.New()
	v.SetDefault("resource_url", core.DefaultResourceUrl)
	v.SetDefault("api_version", core.DefaultApiVersion)
	v.SetDefault("timeout", core.DefaultTimeout)
	v.SetDefault("page_size", core.DefaultPageSize)
	v.SetDefault("rate_limit", core.DefaultRateLimit)
	v.SetDefault("rate_burst", core.DefaultRateBurst)
	v.SetDefault("output", OutputTable)
	v.SetDefault("log.level", "info")
	v.SetDefault("history.enabled", true)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	settings := &Settings{
		ApiKey:         v.GetString("api_key"),
		ResourceUrl:    v.GetString("resource_url"),
		ApiVersion:     v.GetString("api_version"),
		AppUrl:         v.GetString("app_url"),
		Timeout:        v.GetDuration("timeout"),
		PageSize:       v.GetInt("page_size"),
		RateLimit:      v.GetFloat64("rate_limit"),
		RateBurst:      v.GetInt("rate_burst"),
		Output:         strings.ToLower(v.GetString("output")),
		LogLevel:       v.GetString("log.level"),
		LogFile:        v.GetString("log.file"),
		HistoryEnabled: v.GetBool("history.enabled"),
		HistoryPath:    v.GetString("history.path"),
	}
	if err := settings.validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Settings) validate() error {
	switch s.Output {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("output must be %q or %q, got %q", OutputTable, OutputJSON, s.Output)
	}
	if s.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}

// ClientConfig converts the settings into a client config. The API key is checked by the client.
func (s *Settings) ClientConfig(logger *zap.Logger) *core.Config {
	timeout := s.Timeout
	limit := rate.Limit(s.RateLimit)
	if s.RateLimit == 0 {
		limit = rate.Inf
	}
	return &core.Config{
		ApiKey:      s.ApiKey,
		ResourceUrl: s.ResourceUrl,
		ApiVersion:  s.ApiVersion,
		AppUrl:      s.AppUrl,
		Timeout:     &timeout,
		PageSize:    s.PageSize,
		RateLimit:   limit,
		RateBurst:   s.RateBurst,
		Logger:      logger,
	}
}

// historyPath returns the journal location, defaulting to ~/.lexware/history.sqlite.
func (s *Settings) historyPath() (string, error) {
	if s.HistoryPath != "" {
		return s.HistoryPath, nil
	}
	dir, err := logging.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.sqlite"), nil
}
