package core

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ######################################################
//
//	REQUEST/RESPONSE INTERCEPTORS
//
// ######################################################

// BeforeRequest No op in current implementation. You have to shadow this method on particular Resource
// IOW declare the same method with the same signature for Invoice or Contact etc.
func (e *Resource) BeforeRequest(_ context.Context, r *http.Request, verb, url string, body io.Reader) error {
	return nil
}

// AfterRequest No op in current implementation. You have to shadow this method on particular Resource
// IOW declare the same method with the same signature for Invoice or Contact etc.
func (e *Resource) AfterRequest(_ context.Context, response Renderable) (Renderable, error) {
	return response, nil
}

// doBeforeRequest Do not override this method in Resource implementations. For internal use only
func (e *Resource) doBeforeRequest(ctx context.Context, r *http.Request, verb, url string, body io.Reader) error {
	config := e.Session().GetConfig()
	var payload []byte
	if body != nil {
		var err error
		if payload, err = io.ReadAll(body); err != nil {
			return err
		}
	}
	beforeRequestLog(e.Session().Logger(), e.resourceType, verb, url, payload)
	if interceptor, ok := e.caller().(RequestInterceptor); ok {
		if err := interceptor.BeforeRequest(ctx, r, verb, url, bodyReader(payload)); err != nil {
			return err
		}
	}
	// User-defined callback
	if config.BeforeRequestFn != nil {
		return config.BeforeRequestFn(ctx, r, verb, url, bodyReader(payload))
	}
	return nil
}

// bodyReader gives every hook its own reader over the same payload.
func bodyReader(payload []byte) io.Reader {
	if payload == nil {
		return nil
	}
	return bytes.NewReader(payload)
}

// doAfterRequest Do not override this method in Resource implementations. For internal use only
func (e *Resource) doAfterRequest(ctx context.Context, response Renderable) (Renderable, error) {
	var err error
	config := e.Session().GetConfig()
	isRaw := e.resourceType == rawResourceType
	if !isRaw {
		if err = setResourceKey(response, e.resourceType); err != nil {
			return nil, err
		}
	}
	afterRequestLog(e.Session().Logger(), response)
	if interceptor, ok := e.caller().(RequestInterceptor); ok {
		if response, err = interceptor.AfterRequest(ctx, response); err != nil {
			return nil, err
		}
	}
	// User-defined callback
	if config.AfterRequestFn != nil {
		if response, err = config.AfterRequestFn(ctx, response); err != nil {
			return nil, err
		}
	}
	// Interceptors may return fresh records without the key.
	if !isRaw {
		if err = setResourceKey(response, e.resourceType); err != nil {
			return nil, err
		}
	}
	return response, nil
}

// caller returns the registered resource embedding e, so shadowed hooks are found.
func (e *Resource) caller() any {
	if e.Rest != nil {
		if registered, ok := e.Rest.GetResourceMap()[e.resourceType]; ok {
			return registered
		}
	}
	if e.parent != nil {
		return e.parent
	}
	return e
}

// ######################################################
//
//	REQUEST/RESPONSE LOGGING
//
// ######################################################

// beforeRequestLog logs the outgoing request. The body is only read at debug level.
// Authorization headers are never logged.
func beforeRequestLog(logger *zap.Logger, resourceType, verb, url string, body []byte) {
	if logger == nil || !logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	fields := []zap.Field{
		zap.String("resource", resourceType),
		zap.String("method", verb),
		zap.String("url", url),
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err == nil {
			fields = append(fields, zap.String("body", compact.String()))
		} else {
			fields = append(fields, zap.Int("bodySize", len(trimmed)))
		}
	}
	logger.Debug("http request start", fields...)
}

// afterRequestLog logs a response summary at debug level.
func afterRequestLog(logger *zap.Logger, response Renderable) {
	if logger == nil || !logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	switch resp := response.(type) {
	case Record:
		resourceType, _ := resp[ResourceTypeKey].(string)
		logger.Debug("http response", zap.String("kind", "record"), zap.String("resource", resourceType))
	case RecordSet:
		var resourceType string
		if len(resp) > 0 {
			resourceType, _ = resp[0][ResourceTypeKey].(string)
		}
		logger.Debug("http response",
			zap.String("kind", "recordSet"),
			zap.Int("count", len(resp)),
			zap.String("resource", resourceType))
	case *BinaryData:
		logger.Debug("http response",
			zap.String("kind", "file"),
			zap.String("contentType", resp.ContentType),
			zap.Int("size", resp.Size()))
	}
}
