package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── RequestID ─────────────────────────────────────────────────────────────────

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil)
	w := serve(r, req)
	generated := w.Header().Get(requestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req, _ = http.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

// ── TrustedForwarding ─────────────────────────────────────────────────────────

func TestTrustedForwarding(t *testing.T) {
	tests := []struct {
		name    string
		proxies []string
		remote  string
		want    string
	}{
		{name: "no proxies configured", remote: "192.0.2.1:1234", want: "<unset>"},
		{name: "peer inside trusted cidr", proxies: []string{"192.0.2.0/24"}, remote: "192.0.2.1:1234", want: "https"},
		{name: "peer is trusted address", proxies: []string{"10.0.0.1", "192.0.2.1"}, remote: "192.0.2.1:1234", want: "https"},
		{name: "peer outside trusted cidr", proxies: []string{"10.0.0.0/8"}, remote: "192.0.2.1:1234", want: "<unset>"},
		{name: "ipv6 peer", proxies: []string{"2001:db8::/32"}, remote: "[2001:db8::7]:443", want: "https"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(TrustedForwarding(tc.proxies))
			r.GET("/", func(c *gin.Context) {
				proto, ok := c.Get("forwarded_proto")
				if !ok {
					proto = "<unset>"
				}
				c.String(http.StatusOK, "%v", proto)
			})

			req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			req.Header.Set("X-Forwarded-Proto", "HTTPS")
			assert.Equal(t, tc.want, serve(r, req).Body.String())
		})
	}
}

// ── RateLimit ─────────────────────────────────────────────────────────────────

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	r := gin.New()
	r.POST("/form", RateLimit(5, 3), func(c *gin.Context) { c.Status(http.StatusCreated) })

	post := func(ip string) int {
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "/form", nil)
		req.RemoteAddr = ip + ":5555"
		return serve(r, req).Code
	}

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, post("10.0.0.1"), "request %d within burst", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post("10.0.0.2"), "buckets are per client")
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.POST("/form", RateLimit(5, 1), func(c *gin.Context) { c.Status(http.StatusCreated) })

	post := func(spoofed string) int {
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "/form", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		req.Header.Set("X-Forwarded-For", spoofed)
		return serve(r, req).Code
	}

	require.Equal(t, http.StatusCreated, post("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("203.0.113.2"))
}

func TestIPLimiters_Refill(t *testing.T) {
	l := &ipLimiters{every: 1, burst: 1, buckets: make(map[string]*bucket)}
	now := time.Now()
	assert.True(t, l.allow("a", now))
	assert.False(t, l.allow("a", now))
	assert.True(t, l.allow("a", now.Add(1100*time.Millisecond)))
}

// ── CORSMiddleware ────────────────────────────────────────────────────────────

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{name: "wildcard", origins: []string{"*"}, origin: "https://any.dev", want: "*"},
		{name: "listed origin", origins: []string{"https://me.dev"}, origin: "https://me.dev", want: "https://me.dev"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORSMiddleware(tc.origins))
			r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil)
			req.Header.Set("Origin", tc.origin)
			w := serve(r, req)
			assert.Equal(t, tc.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSMiddleware_UnlistedOriginForbidden(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://me.dev"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.dev")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}

// ── healthHandler ─────────────────────────────────────────────────────────────

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	r := gin.New()
	healthy := true
	r.GET("/health", healthHandler(pingFunc(func(context.Context) error {
		if healthy {
			return nil
		}
		return context.DeadlineExceeded
	})))

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	healthy = false
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, req).Code)
}
