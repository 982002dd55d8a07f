package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type contextKey string

const (
	caller contextKey = "@caller" // Resource Caller object key
)

type RESTSession interface {
	Get(context.Context, string, Params, []http.Header) (Renderable, error)
	Post(context.Context, string, Params, []http.Header) (Renderable, error)
	Put(context.Context, string, Params, []http.Header) (Renderable, error)
	Delete(context.Context, string, Params, []http.Header) (Renderable, error)
	GetConfig() *Config
	Logger() *zap.Logger
}

// LexwareSession performs authenticated HTTP calls against the Lexware Office API.
// One call is issued per invocation; failed calls are never repeated by the session.
type LexwareSession struct {
	config  *Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type SessionMethod func(context.Context, string, Params, []http.Header) (Renderable, error)

// NewSession validates config (applying defaults) and creates a session.
func NewSession(config *Config) (*LexwareSession, error) {
	if config == nil {
		return nil, &ValidationError{Reason: "config must not be nil"}
	}
	if err := config.ApplyDefaults(); err != nil {
		return nil, err
	}
	client := config.HTTPClient
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxConnsPerHost = config.MaxConnections
		transport.MaxIdleConnsPerHost = config.MaxConnections
		transport.IdleConnTimeout = *config.Timeout
		client = &http.Client{Transport: transport}
	}
	client.Timeout = *config.Timeout
	return &LexwareSession{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(config.RateLimit, config.RateBurst),
		logger:  config.Logger,
	}, nil
}

// Request performs an API call on behalf of resource r and converts the result to T.
func Request[T RecordUnion](
	ctx context.Context,
	r InterceptableResourceAPI,
	verb, path string,
	params, body Params,
) (T, error) {
	return RequestWithHeaders[T](ctx, r, verb, path, params, body, nil)
}

func RequestWithHeaders[T RecordUnion](
	ctx context.Context,
	r InterceptableResourceAPI,
	verb, path string,
	params, body Params,
	headers []http.Header,
) (T, error) {
	response, url, err := dispatch(ctx, r, verb, path, params, body, headers)
	if err != nil {
		return nil, err
	}
	if typeMatch[Record](response) {
		// Non-paged list endpoints answer with a bare object or a {content: [...]} wrapper.
		var zero T
		if typeMatch[RecordSet](Renderable(zero)) {
			response = recordToRecordSet(response.(Record))
		}
	}
	resultVal, ok := response.(T)
	if !ok {
		return nil, fmt.Errorf(
			"unexpected response type for request to %s: got %T, expected %T",
			url,
			response,
			*new(T),
		)
	}
	return resultVal, nil
}

// RequestBinary performs a GET expecting a file (PDF, image, XML) in response.
func RequestBinary(ctx context.Context, r InterceptableResourceAPI, path string, params Params, accept string) (*BinaryData, error) {
	if accept == "" {
		accept = ContentTypeAny
	}
	headers := []http.Header{{HeaderAccept: []string{accept}}}
	response, url, err := dispatch(ctx, r, http.MethodGet, path, params, nil, headers)
	if err != nil {
		return nil, err
	}
	switch typed := response.(type) {
	case *BinaryData:
		return typed, nil
	case Record:
		if typed.Empty() {
			return &BinaryData{}, nil
		}
	}
	return nil, fmt.Errorf("unexpected response type for file download from %s: got %T", url, response)
}

func dispatch(
	ctx context.Context,
	r InterceptableResourceAPI,
	verb, path string,
	params, body Params,
	headers []http.Header,
) (Renderable, string, error) {
	var (
		method SessionMethod
		query  string
	)
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, caller, r)
	verb = strings.ToUpper(verb)
	session := r.Session()

	switch verb {
	case http.MethodGet:
		method = session.Get
	case http.MethodPost:
		method = session.Post
	case http.MethodPut:
		method = session.Put
	case http.MethodDelete:
		method = session.Delete
	default:
		return nil, "", fmt.Errorf("unknown verb: %s", verb)
	}
	if params != nil {
		query = params.ToQuery()
	}
	url, err := buildUrl(session, path, query, session.GetConfig().ApiVersion)
	if err != nil {
		return nil, "", err
	}
	response, err := method(ctx, url, body, headers)
	return response, url, err
}

// recordToRecordSet unwraps {content: [...]} envelopes and wraps single objects.
func recordToRecordSet(record Record) RecordSet {
	if record.Empty() {
		return RecordSet{}
	}
	if content, ok := record["content"].([]any); ok {
		return anyToRecordSet(content)
	}
	return RecordSet{record}
}

func (s *LexwareSession) Get(ctx context.Context, url string, _ Params, headers []http.Header) (Renderable, error) {
	return doRequest(ctx, s, http.MethodGet, url, nil, headers)
}

func (s *LexwareSession) Post(ctx context.Context, url string, body Params, headers []http.Header) (Renderable, error) {
	return doRequest(ctx, s, http.MethodPost, url, body, headers)
}

func (s *LexwareSession) Put(ctx context.Context, url string, body Params, headers []http.Header) (Renderable, error) {
	return doRequest(ctx, s, http.MethodPut, url, body, headers)
}

func (s *LexwareSession) Delete(ctx context.Context, url string, body Params, headers []http.Header) (Renderable, error) {
	return doRequest(ctx, s, http.MethodDelete, url, body, headers)
}

func (s *LexwareSession) GetConfig() *Config {
	return s.config
}

func (s *LexwareSession) Logger() *zap.Logger {
	return s.logger
}

func consolidateHeaders(s RESTSession, customHeaders []http.Header) http.Header {
	finalHeaders := make(http.Header)

	for _, header := range customHeaders {
		for key, values := range header {
			for _, value := range values {
				finalHeaders.Add(key, value)
			}
		}
	}

	// Defaults only where the caller did not set a value.
	if finalHeaders.Get(HeaderAccept) == "" {
		finalHeaders.Set(HeaderAccept, ContentTypeJSON)
	}
	if finalHeaders.Get(HeaderContentType) == "" {
		finalHeaders.Set(HeaderContentType, ContentTypeJSON)
	}
	if finalHeaders.Get(HeaderUserAgent) == "" {
		finalHeaders.Set(HeaderUserAgent, s.GetConfig().UserAgent)
	}
	return finalHeaders
}

func setupHeaders(s RESTSession, r *http.Request, headers http.Header) {
	r.Header.Set(HeaderAuthorization, AuthTypeBearer+" "+s.GetConfig().ApiKey)
	for key, values := range headers {
		for _, value := range values {
			r.Header.Add(key, value)
		}
	}
}

// doRequest creates and processes a single HTTP request.
func doRequest(ctx context.Context, s *LexwareSession, verb, url string, body Params, headers []http.Header) (Renderable, error) {
	var (
		resourceCaller    InterceptableResourceAPI
		requestData       io.Reader
		beforeRequestData io.Reader
		err               error
	)
	if ctx == nil {
		ctx = context.Background()
	}
	if origin, ok := ctx.Value(caller).(InterceptableResourceAPI); ok {
		resourceCaller = origin
	} else {
		resourceCaller = NewRawResource(ctx, s)
	}
	if url, err = pathToUrl(s, url); err != nil {
		return nil, err
	}

	finalHeaders := consolidateHeaders(s, headers)
	contentType := finalHeaders.Get(HeaderContentType)
	useMultipart := strings.Contains(strings.ToLower(contentType), ContentTypeMultipartForm)

	var payload []byte
	if body != nil {
		var reader io.Reader
		if useMultipart {
			multipartData, err := body.ToMultipartFormData()
			if err != nil {
				return nil, fmt.Errorf("failed to create multipart form data: %w", err)
			}
			reader = multipartData.Body
			finalHeaders.Set(HeaderContentType, multipartData.ContentType)
		} else if reader, err = body.ToBody(); err != nil {
			return nil, err
		}
		if payload, err = io.ReadAll(reader); err != nil {
			return nil, err
		}
		requestData = bytes.NewReader(payload)
		beforeRequestData = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, verb, url, requestData)
	if err != nil {
		return nil, &UnknownError{Err: err}
	}
	setupHeaders(s, req, finalHeaders)

	if err = resourceCaller.doBeforeRequest(ctx, req, verb, url, beforeRequestData); err != nil {
		return nil, err
	}
	if err = s.limiter.Wait(ctx); err != nil {
		return nil, &UnknownError{Err: fmt.Errorf("rate limiter: %w", err)}
	}

	start := time.Now()
	response, responseErr := s.client.Do(req)
	elapsed := time.Since(start)
	if responseErr != nil {
		if errors.Is(responseErr, context.Canceled) {
			return nil, &UnknownError{Err: responseErr}
		}
		s.logger.Error("request failed",
			zap.String("method", verb),
			zap.String("url", url),
			zap.Duration("duration", elapsed),
			zap.Error(responseErr))
		return nil, &NetworkError{Method: verb, URL: url, Err: responseErr}
	}
	s.logger.Debug("request completed",
		zap.String("method", verb),
		zap.String("url", url),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", elapsed))

	if err = validateResponse(response); err != nil {
		if apiErr, ok := AsApiError(err); ok {
			s.logger.Warn("api error",
				zap.String("method", verb),
				zap.String("url", url),
				zap.Int("status", apiErr.StatusCode),
				zap.String("code", apiErr.Code),
				zap.String("category", string(apiErr.Classification.Category)),
				zap.Bool("retryable", apiErr.Classification.Retryable),
				zap.String("requestId", apiErr.RequestID))
		}
		return nil, err
	}
	result, err := unmarshalToRenderable(response)
	if err != nil {
		return nil, &UnknownError{Err: fmt.Errorf("failed to decode response from %s: %w", url, err)}
	}
	return resourceCaller.doAfterRequest(ctx, result)
}
