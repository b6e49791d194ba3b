package clients

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pai-platform/insight-service/internal/adapters/http/middleware"
)

func newClient(t *testing.T, baseURL string, retry RetryConfig, breaker BreakerConfig) *Client {
	t.Helper()
	client, err := New(&Config{
		BaseURL:     baseURL,
		ServiceName: "test-upstream",
		Timeout:     time.Second,
		Retry:       retry,
		Breaker:     breaker,
		Logger:      slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return client
}

func TestNew_RequiresServiceName(t *testing.T) {
	_, err := New(&Config{BaseURL: "http://localhost"})
	assert.Error(t, err)

	_, err = New(nil)
	assert.Error(t, err)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL,
		RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond, Multiplier: 2},
		BreakerConfig{MaxFailures: 10},
	)

	resp, err := client.Get(context.Background(), "/resource")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL,
		RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond, Multiplier: 2},
		BreakerConfig{MaxFailures: 10},
	)

	resp, err := client.Get(context.Background(), "/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	// 4xx responses are final: the caller interprets them.
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ExhaustedRetriesWrapError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL,
		RetryConfig{MaxAttempts: 2, InitialInterval: time.Millisecond, Multiplier: 2},
		BreakerConfig{MaxFailures: 10},
	)

	_, err := client.Get(context.Background(), "/resource")
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
}

func TestClient_CircuitOpensAndBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL,
		RetryConfig{MaxAttempts: 1},
		BreakerConfig{MaxFailures: 2, Timeout: time.Hour, HalfOpenLimit: 1},
	)

	ctx := context.Background()
	for range 2 {
		_, err := client.Get(ctx, "/resource")
		require.Error(t, err)
	}

	assert.Equal(t, StateOpen, client.CircuitState())

	_, err := client.Get(ctx, "/resource")
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestClient_AuthFuncInjectsHeader(t *testing.T) {
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client, err := New(&Config{
		BaseURL:     server.URL,
		ServiceName: "test-upstream",
		Retry:       RetryConfig{MaxAttempts: 1},
		AuthFunc: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer test-token")
		},
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/resource")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer test-token", gotAuth.Load())
}

func TestBackoff_CappedAtMaxInterval(t *testing.T) {
	client := newClient(t, "http://localhost",
		RetryConfig{
			MaxAttempts:     5,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     time.Second,
			Multiplier:      10,
		},
		BreakerConfig{},
	)

	// With ±25% jitter the result stays within [0.75, 1.25] of the cap.
	backoff := client.backoff(4)
	assert.GreaterOrEqual(t, backoff, 750*time.Millisecond)
	assert.LessOrEqual(t, backoff, 1250*time.Millisecond)
}

func TestBreaker_StateTransitions(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerConfig{MaxFailures: 2, Timeout: time.Minute, HalfOpenLimit: 1})
	b.now = func() time.Time { return now }

	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())

	// After the timeout one probe is allowed.
	now = now.Add(2 * time.Minute)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())

	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerConfig{MaxFailures: 1, Timeout: time.Minute, HalfOpenLimit: 2})
	b.now = func() time.Time { return now }

	b.RecordFailure()
	require.Equal(t, StateOpen, b.State())

	now = now.Add(2 * time.Minute)
	require.True(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(BreakerConfig{MaxFailures: 2, Timeout: time.Minute, HalfOpenLimit: 1})

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()

	assert.Equal(t, StateClosed, b.State())
}

func TestClient_PropagatesRequestIDs(t *testing.T) {
	var gotRequestID, gotCorrelationID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(middleware.HeaderRequestID)
		gotCorrelationID = r.Header.Get(middleware.HeaderCorrelationID)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newClient(t, server.URL, RetryConfig{MaxAttempts: 1}, BreakerConfig{MaxFailures: 5})

	ctx := middleware.ContextWithRequestID(context.Background(), "req-123")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-456")

	resp, err := client.Get(ctx, "/ping")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "req-123", gotRequestID)
	assert.Equal(t, "corr-456", gotCorrelationID)
}
