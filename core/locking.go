package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Version bounds accepted by the API for the optimistic locking token.
const (
	MinVersion       = 0
	MaxVersion       = math.MaxInt32
	VersionIncrement = 1

	// VersionKey is the body attribute carrying the locking token.
	VersionKey = "version"
)

// DefaultConflictRetryDelay is the base delay used by RetryOnConflict when none is given.
const DefaultConflictRetryDelay = time.Second

// VersionConflictError describes a rejected update caused by a stale version.
type VersionConflictError struct {
	StatusCode       int
	CurrentVersion   *int64
	RequestedVersion *int64
	Message          string
	// RetryAfter is copied from the API error. Zero when absent.
	RetryAfter time.Duration

	cause error
}

func (e *VersionConflictError) Error() string {
	msg := fmt.Sprintf("%s: %s", CategoryOptimisticLocking.Label(), categoryActions[CategoryOptimisticLocking])
	switch {
	case e.CurrentVersion != nil && e.RequestedVersion != nil:
		msg += fmt.Sprintf(" [requested version %d, current version %d]", *e.RequestedVersion, *e.CurrentVersion)
	case e.CurrentVersion != nil:
		msg += fmt.Sprintf(" [current version %d]", *e.CurrentVersion)
	}
	if e.Message != "" {
		msg += " " + e.Message
	}
	return msg
}

func (e *VersionConflictError) Unwrap() error {
	return e.cause
}

// IsVersionConflict reports whether err was caused by a stale version.
func IsVersionConflict(err error) bool {
	var vErr *VersionConflictError
	if errors.As(err, &vErr) {
		return true
	}
	return isLockingApiError(err)
}

func isLockingApiError(err error) bool {
	apiErr, ok := AsApiError(err)
	if !ok {
		return false
	}
	if apiErr.StatusCode != http.StatusConflict && apiErr.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	// 422 is also used for plain validation failures; an explicit code decides.
	if apiErr.Code != "" {
		return GetErrorCategory(apiErr.Code) == CategoryOptimisticLocking || apiErr.StatusCode == http.StatusConflict
	}
	return true
}

// IsValidVersion reports whether v is an integer within [MinVersion, MaxVersion].
// Integral float64 and json.Number values are accepted since decoded JSON carries numbers that way.
func IsValidVersion(v any) bool {
	_, ok := versionToInt(v)
	return ok
}

func versionToInt(v any) (int64, bool) {
	var n int64
	switch val := v.(type) {
	case int:
		n = int64(val)
	case int8:
		n = int64(val)
	case int16:
		n = int64(val)
	case int32:
		n = int64(val)
	case int64:
		n = val
	case uint:
		if uint64(val) > math.MaxInt64 {
			return 0, false
		}
		n = int64(val)
	case uint8:
		n = int64(val)
	case uint16:
		n = int64(val)
	case uint32:
		n = int64(val)
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		n = int64(val)
	case float32:
		return floatVersion(float64(val))
	case float64:
		return floatVersion(val)
	case json.Number:
		i, err := strconv.ParseInt(val.String(), 10, 64)
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	if n < MinVersion || n > MaxVersion {
		return 0, false
	}
	return n, true
}

func floatVersion(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < MinVersion || f > MaxVersion {
		return 0, false
	}
	return int64(f), true
}

// IncrementVersion returns v + VersionIncrement.
func IncrementVersion(v any) (int64, error) {
	n, ok := versionToInt(v)
	if !ok {
		return 0, invalidVersionError(v)
	}
	if n+VersionIncrement > MaxVersion {
		return 0, &ValidationError{
			Field:  VersionKey,
			Reason: fmt.Sprintf("version %d cannot be incremented beyond %d", n, MaxVersion),
		}
	}
	return n + VersionIncrement, nil
}

func invalidVersionError(v any) error {
	return &ValidationError{
		Field:  VersionKey,
		Reason: fmt.Sprintf("invalid version %v (%T): must be an integer between %d and %d", v, v, MinVersion, MaxVersion),
	}
}

// UpdateRequest wraps an update payload with its locking token.
type UpdateRequest struct {
	Data             Params
	Version          int64
	ForceUpdate      bool
	SkipVersionCheck bool
}

// PrepareUpdate validates version and wraps data for an update request.
func PrepareUpdate(data Params, version any) (*UpdateRequest, error) {
	n, ok := versionToInt(version)
	if !ok {
		return nil, invalidVersionError(version)
	}
	if data == nil {
		data = Params{}
	}
	return &UpdateRequest{
		Data:    data,
		Version: n,
	}, nil
}

// Body returns the request body: a copy of Data with the locking token attached.
func (u *UpdateRequest) Body() Params {
	body := make(Params, len(u.Data)+1)
	for k, v := range u.Data {
		body[k] = v
	}
	body[VersionKey] = u.Version
	return body
}

// HandleErrorResponse converts a 409/422 API error into a *VersionConflictError.
// Any other error is returned unchanged.
func HandleErrorResponse(err error) error {
	if err == nil {
		return nil
	}
	var vErr *VersionConflictError
	if errors.As(err, &vErr) {
		return err
	}
	if !isLockingApiError(err) {
		return err
	}
	apiErr, _ := AsApiError(err)
	conflict := &VersionConflictError{
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		RetryAfter: apiErr.RetryAfter,
		cause:      err,
	}
	payload := apiErr.Payload()
	if v, ok := versionToInt(payload["currentVersion"]); ok {
		conflict.CurrentVersion = &v
	}
	if v, ok := versionToInt(payload["requestedVersion"]); ok {
		conflict.RequestedVersion = &v
	}
	return conflict
}

// ShouldRetry reports whether an update failing with err may be retried.
// Only version conflicts without a server retry hint qualify.
func ShouldRetry(err error, attempt, maxAttempts int) bool {
	if attempt >= maxAttempts || !IsVersionConflict(err) {
		return false
	}
	return retryAfterOf(err) == 0
}

func retryAfterOf(err error) time.Duration {
	var vErr *VersionConflictError
	if errors.As(err, &vErr) && vErr.RetryAfter > 0 {
		return vErr.RetryAfter
	}
	if apiErr, ok := AsApiError(err); ok {
		return apiErr.RetryAfter
	}
	return 0
}

// CalculateRetryDelay returns baseDelay * 2^(attempt-1) with ±10% jitter.
// No upper cap is applied; maxAttempts bounds the sequence instead.
func CalculateRetryDelay(attempt, maxAttempts int, baseDelay time.Duration) (time.Duration, error) {
	raw, err := conflictDelay(attempt, maxAttempts, baseDelay)
	if err != nil {
		return 0, err
	}
	jittered := float64(raw) * (1 + (rand.Float64()*2-1)*retryJitter)
	if jittered >= math.MaxInt64 {
		return time.Duration(math.MaxInt64), nil
	}
	return time.Duration(jittered), nil
}

// conflictDelay is the delay before jitter.
func conflictDelay(attempt, maxAttempts int, baseDelay time.Duration) (time.Duration, error) {
	if attempt < 1 {
		return 0, &ValidationError{Field: "attempt", Reason: fmt.Sprintf("attempt must be >= 1, got %d", attempt)}
	}
	if attempt >= maxAttempts {
		return 0, &ValidationError{
			Field:  "attempt",
			Reason: fmt.Sprintf("maximum retry attempts exceeded (%d >= %d)", attempt, maxAttempts),
		}
	}
	if baseDelay <= 0 {
		baseDelay = DefaultConflictRetryDelay
	}
	factor := math.Pow(2, float64(attempt-1))
	if float64(baseDelay)*factor >= math.MaxInt64 {
		return time.Duration(math.MaxInt64), nil
	}
	return time.Duration(float64(baseDelay) * factor), nil
}

// RetryOnConflict runs fn until it succeeds, fails with something other than a
// version conflict, or maxAttempts is reached. fn is expected to re-read the
// resource and re-apply the change with the fresh version.
// Nothing in this module calls it implicitly.
func RetryOnConflict(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func(ctx context.Context, attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = DefaultConflictRetryDelay
	}
	expo := &backoff.ExponentialBackOff{
		InitialInterval:     baseDelay,
		RandomizationFactor: retryJitter,
		Multiplier:          2,
		MaxInterval:         time.Duration(math.MaxInt64),
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	expo.Reset()
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(maxAttempts-1)), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		err = HandleErrorResponse(err)
		if !IsVersionConflict(err) {
			return backoff.Permanent(err)
		}
		if d := retryAfterOf(err); d > 0 {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
