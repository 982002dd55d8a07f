package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config represents the configuration required to create a Lexware Office session.
type Config struct {
	ApiKey         string          `validate:"required"`      // Bearer token issued in the Lexware Office public API settings.
	ResourceUrl    string          `validate:"required,url"`  // Base URL of the public API, e.g. https://api.lexware.io.
	ApiVersion     string          `validate:"required"`      // API version path segment, "v1" by default.
	Timeout        *time.Duration  `validate:"required"`      // HTTP client timeout. If nil, a default is applied by validators.
	MaxConnections int             `validate:"min=1"`         // Maximum number of concurrent HTTP connections.
	UserAgent      string          `validate:"required"`      // Optional custom User-Agent header. If empty, a default is applied.
	PageSize       int             `validate:"min=1,max=250"` // Default page size for list requests and iterators.
	RateLimit      rate.Limit      `validate:"gt=0"`          // Client side request quota in requests per second. rate.Inf disables it.
	RateBurst      int             `validate:"min=1"`         // Burst size for the client side limiter.
	AppUrl         string          `validate:"omitempty,url"` // Web application URL used to build deeplinks.
	Logger         *zap.Logger     `validate:"-"`             // Structured logger. Defaults to the LEXWARE_LOG driven logger.
	HTTPClient     *http.Client    `validate:"-"`             // Optional pre-built HTTP client.
	Context        context.Context `validate:"-"`             // Optional parent context for all requests made by the client.

	// BeforeRequestFn is an optional function hook executed before an API request is sent.
	// It allows for request inspection, mutation, or logging.
	//
	// Parameters:
	//   - ctx: The request context for managing deadlines and cancellations.
	//   - req: Request object
	//   - verb: The HTTP method (e.g., GET, POST, PUT).
	//   - url: The target URL (path and query parameters).
	//   - body: The request body reader, typically containing JSON payload.
	//
	// Return:
	//   - error: Any error returned will abort the request.
	BeforeRequestFn func(ctx context.Context, r *http.Request, verb, url string, body io.Reader) error `validate:"-"`

	// AfterRequestFn is an optional function hook executed after receiving an API response.
	// It can be used for post-processing, transformation, or logging of the response.
	AfterRequestFn func(ctx context.Context, response Renderable) (Renderable, error) `validate:"-"`
}

// ConfigFunc defines a function that can modify or validate a Config.
type ConfigFunc func(*Config) error

// Validate applies the given ConfigFunc validators to the config
// and returns the first error reported.
func (config *Config) Validate(validators ...ConfigFunc) error {
	for _, fn := range validators {
		if err := fn(config); err != nil {
			return err
		}
	}
	return nil
}

// ApplyDefaults runs the default validator chain used by NewSession.
func (config *Config) ApplyDefaults() error {
	return config.Validate(
		WithAuth,
		WithResourceUrl(DefaultResourceUrl),
		WithApiVersion(DefaultApiVersion),
		WithTimeout(DefaultTimeout),
		WithMaxConnections(DefaultMaxConnections),
		WithPageSize(DefaultPageSize),
		WithRateLimit(DefaultRateLimit, DefaultRateBurst),
		WithAppUrl(DefaultAppUrl),
		WithUserAgent,
		WithLogger,
		WithStructValidation,
	)
}

// WithTimeout returns a ConfigFunc that sets a default timeout if none is provided.
func WithTimeout(timeout time.Duration) ConfigFunc {
	return func(config *Config) error {
		if config.Timeout == nil {
			config.Timeout = &timeout
		}
		return nil
	}
}

// WithMaxConnections returns a ConfigFunc that sets the maximum number of connections
// if not explicitly provided.
func WithMaxConnections(maxConnections int) ConfigFunc {
	return func(config *Config) error {
		if config.MaxConnections == 0 {
			config.MaxConnections = maxConnections
		}
		return nil
	}
}

// WithResourceUrl sets the API base URL when empty and strips trailing slashes.
func WithResourceUrl(defaultUrl string) ConfigFunc {
	return func(config *Config) error {
		if config.ResourceUrl == "" {
			config.ResourceUrl = defaultUrl
		}
		config.ResourceUrl = strings.TrimRight(config.ResourceUrl, "/")
		return nil
	}
}

// WithAppUrl sets the web application URL used for deeplinks.
func WithAppUrl(defaultUrl string) ConfigFunc {
	return func(config *Config) error {
		if config.AppUrl == "" {
			config.AppUrl = defaultUrl
		}
		config.AppUrl = strings.TrimRight(config.AppUrl, "/")
		return nil
	}
}

// WithAuth validates that an API key is provided.
func WithAuth(config *Config) error {
	if strings.TrimSpace(config.ApiKey) == "" {
		return &ValidationError{Field: "ApiKey", Reason: "api key must be provided"}
	}
	return nil
}

// WithPageSize sets the default page size and clamps it to the API maximum.
func WithPageSize(defaultSize int) ConfigFunc {
	return func(config *Config) error {
		if config.PageSize <= 0 {
			config.PageSize = defaultSize
		}
		if config.PageSize > MaxPageSize {
			config.PageSize = MaxPageSize
		}
		return nil
	}
}

// WithRateLimit sets the client side quota if none is provided.
func WithRateLimit(limit rate.Limit, burst int) ConfigFunc {
	return func(config *Config) error {
		if config.RateLimit == 0 {
			config.RateLimit = limit
		}
		if config.RateBurst == 0 {
			config.RateBurst = burst
		}
		return nil
	}
}

// WithUserAgent sets a default User-Agent header if none is provided in the config.
func WithUserAgent(config *Config) error {
	if config.UserAgent == "" {
		config.UserAgent = fmt.Sprintf(
			"%s,os:%s,arch:%s",
			fmt.Sprintf("go-lexware-client-%s", ClientVersion()),
			runtime.GOOS,
			runtime.GOARCH,
		)
	}
	return nil
}

// WithApiVersion sets a default API version and rejects versions this client cannot talk to.
func WithApiVersion(defaultVer string) ConfigFunc {
	return func(config *Config) error {
		if config.ApiVersion == "" {
			config.ApiVersion = defaultVer
		}
		return CheckApiVersion(config.ApiVersion)
	}
}

// WithLogger installs the LEXWARE_LOG driven logger when no logger is configured.
func WithLogger(config *Config) error {
	if config.Logger == nil {
		config.Logger = loggerFromEnv()
	}
	return nil
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// WithStructValidation checks the declarative constraints on Config fields.
// It must run after the defaulting validators.
func WithStructValidation(config *Config) error {
	if err := structValidator.Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ValidationError{
				Field:  fe.Field(),
				Reason: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			}
		}
		return err
	}
	return nil
}
