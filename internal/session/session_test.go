package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		JitterMin:     time.Millisecond,
		JitterMax:     2 * time.Millisecond,
		RetryAttempts: 2,
		BackoffBase:   time.Millisecond,
		BackoffCap:    5 * time.Millisecond,
		Timeout:       2 * time.Second,
	}
}

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>profile page</body></html>"))
	}))
	defer srv.Close()

	s, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // no renderer running

	resp, err := s.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(resp.Body), "profile page")
	require.False(t, resp.Rendered)
}

func TestFetchRetriesThrottling(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)

	resp, err := s.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(2), calls.Load())
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)

	resp, err := s.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, int32(1), calls.Load())
}

func TestFetchWithHeaders(t *testing.T) {
	t.Parallel()

	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("X-Api-Key"))
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	s, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = s.FetchWithHeaders(context.Background(), srv.URL, map[string]string{"X-Api-Key": "secret"})
	require.NoError(t, err)
	require.Equal(t, "secret", got.Load())
}

func TestFetchExistenceFallsBackToGet(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		methods []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)

	resp, err := s.FetchExistence(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{http.MethodHead, http.MethodGet}, methods)
}

func TestFetchHonorsContextCancel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	s, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = s.Fetch(ctx, srv.URL)
	require.Error(t, err)
}

func TestUserAgentRotation(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.UserAgents = []string{"agent-a", "agent-b"}
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, "agent-a", s.nextUserAgent())
	require.Equal(t, "agent-b", s.nextUserAgent())
	require.Equal(t, "agent-a", s.nextUserAgent())
}

func TestBlockDetector(t *testing.T) {
	t.Parallel()

	d := newBlockDetector(nil, 0)
	require.True(t, d.LooksBlocked(200, []byte("<html>Please Enable JavaScript to continue</html>")))
	require.True(t, d.LooksBlocked(403, []byte("cf-chl-widget")))
	require.False(t, d.LooksBlocked(200, []byte("<html><body>a perfectly ordinary result page</body></html>")))

	tiny := newBlockDetector(nil, 64)
	require.True(t, tiny.LooksBlocked(200, []byte("<html></html>")))
	require.False(t, tiny.LooksBlocked(404, []byte("<html></html>")))
}

func TestRetryPolicy(t *testing.T) {
	t.Parallel()

	p := newRetryPolicy(2, time.Millisecond, 10*time.Millisecond)
	require.True(t, p.RetryStatus(429, 0))
	require.True(t, p.RetryStatus(503, 1))
	require.False(t, p.RetryStatus(503, 2))
	require.False(t, p.RetryStatus(404, 0))
	require.False(t, p.RetryStatus(200, 0))

	require.False(t, p.RetryError(nil, 0))
	require.False(t, p.RetryError(context.Canceled, 0))

	for i := 0; i < 5; i++ {
		d := p.Backoff(i)
		require.GreaterOrEqual(t, d, time.Duration(0))
		require.LessOrEqual(t, d, 10*time.Millisecond)
	}
}
