package core

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidVersion(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"zero", 0, true},
		{"positive int", 7, true},
		{"max", MaxVersion, true},
		{"above max", int64(MaxVersion) + 1, false},
		{"negative", -1, false},
		{"integral float", float64(3), true},
		{"fractional float", 2.5, false},
		{"nan", math.NaN(), false},
		{"json number", json.Number("12"), true},
		{"json number fraction", json.Number("1.2"), false},
		{"uint64 huge", uint64(math.MaxUint64), false},
		{"string", "1", false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidVersion(tt.v))
		})
	}
}

func TestIncrementVersion(t *testing.T) {
	got, err := IncrementVersion(4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	got, err = IncrementVersion(float64(0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	for _, bad := range []any{-1, 1.5, "3", nil, MaxVersion} {
		_, err := IncrementVersion(bad)
		assert.True(t, IsValidationErr(err), "%v", bad)
	}
}

func TestPrepareUpdate(t *testing.T) {
	data := Params{"name": "Acme"}
	req, err := PrepareUpdate(data, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), req.Version)
	assert.False(t, req.ForceUpdate)
	assert.False(t, req.SkipVersionCheck)

	body := req.Body()
	assert.Equal(t, Params{"name": "Acme", "version": int64(3)}, body)
	_, mutated := data["version"]
	assert.False(t, mutated, "input data must not be modified")

	_, err = PrepareUpdate(data, "x")
	assert.True(t, IsValidationErr(err))
	_, err = PrepareUpdate(nil, nil)
	assert.True(t, IsValidationErr(err))
}

func TestHandleErrorResponse(t *testing.T) {
	conflict := &ApiError{
		StatusCode: 409,
		Message:    "stale",
		payload:    Record{"currentVersion": float64(5), "requestedVersion": float64(3)},
	}
	err := HandleErrorResponse(conflict)
	var vErr *VersionConflictError
	require.ErrorAs(t, err, &vErr)
	require.NotNil(t, vErr.CurrentVersion)
	require.NotNil(t, vErr.RequestedVersion)
	assert.Equal(t, int64(5), *vErr.CurrentVersion)
	assert.Equal(t, int64(3), *vErr.RequestedVersion)
	assert.Contains(t, err.Error(), "requested version 3, current version 5")
	assert.ErrorIs(t, err, conflict)

	unprocessable := &ApiError{StatusCode: 422}
	assert.True(t, IsVersionConflict(HandleErrorResponse(unprocessable)))

	validation422 := &ApiError{StatusCode: 422, Code: CodeMissingRequiredField}
	assert.Same(t, validation422, HandleErrorResponse(validation422))

	notFound := &ApiError{StatusCode: 404}
	assert.Same(t, notFound, HandleErrorResponse(notFound))
	assert.NoError(t, HandleErrorResponse(nil))
}

func TestShouldRetry(t *testing.T) {
	conflict := &ApiError{StatusCode: 409}
	assert.True(t, ShouldRetry(conflict, 1, 3))
	assert.False(t, ShouldRetry(conflict, 3, 3))
	assert.False(t, ShouldRetry(&ApiError{StatusCode: 409, RetryAfter: time.Second}, 1, 3))
	assert.False(t, ShouldRetry(&ApiError{StatusCode: 500}, 1, 3))
	assert.False(t, ShouldRetry(errors.New("x"), 1, 3))
}

func TestCalculateRetryDelay(t *testing.T) {
	base := time.Second
	var previous time.Duration
	for attempt := 1; attempt < 3; attempt++ {
		raw, err := conflictDelay(attempt, 3, base)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, raw, previous, "non-decreasing before jitter")
		previous = raw

		got, err := CalculateRetryDelay(attempt, 3, base)
		require.NoError(t, err)
		assert.InDelta(t, float64(raw), float64(got), float64(raw)*retryJitter+1)
	}
	_, err := CalculateRetryDelay(3, 3, base)
	assert.Error(t, err)
	_, err = CalculateRetryDelay(0, 3, base)
	assert.Error(t, err)

	// No absolute ceiling at this layer.
	raw, err := conflictDelay(10, 20, base)
	require.NoError(t, err)
	assert.Equal(t, 512*time.Second, raw)
}

func TestCalculateRetryDelay_Saturates(t *testing.T) {
	for i := 0; i < 50; i++ {
		got, err := CalculateRetryDelay(100, 200, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, time.Duration(math.MaxInt64), got)
	}
}

func TestRetryOnConflict(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), 3, time.Millisecond, func(_ context.Context, attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if attempt < 3 {
			return &ApiError{StatusCode: 409}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryOnConflict(context.Background(), 5, time.Millisecond, func(context.Context, int) error {
		calls++
		return &ApiError{StatusCode: 400}
	})
	assert.True(t, IsApiError(err))
	assert.Equal(t, 1, calls, "non conflict errors are not retried")

	calls = 0
	err = RetryOnConflict(context.Background(), 2, time.Millisecond, func(context.Context, int) error {
		calls++
		return &ApiError{StatusCode: 409}
	})
	assert.True(t, IsVersionConflict(err))
	assert.Equal(t, 2, calls)
}
