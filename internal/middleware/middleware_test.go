package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/inn-reservation/internal/config"
)

func newContext(method, target, route string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(route)
	return c
}

func TestCacheKeyStrategies(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "inn:cache", KeyStrategy: "route_query"}
	a := cacheKeyFrom(cfg, newContext(http.MethodGet, "/v1/rooms?limit=5", "/v1/rooms"))
	b := cacheKeyFrom(cfg, newContext(http.MethodGet, "/v1/rooms?limit=6", "/v1/rooms"))
	if a == b {
		t.Fatalf("route_query should separate query strings, both got %s", a)
	}
	if !strings.HasPrefix(a, "inn:cache:") {
		t.Fatalf("key %q lacks prefix", a)
	}

	cfg.KeyStrategy = "route"
	a = cacheKeyFrom(cfg, newContext(http.MethodGet, "/v1/rooms?limit=5", "/v1/rooms"))
	b = cacheKeyFrom(cfg, newContext(http.MethodGet, "/v1/rooms?limit=6", "/v1/rooms"))
	if a != b {
		t.Fatalf("route strategy should ignore the query: %s vs %s", a, b)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, got, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || string(body) != `{"ok":true}` || got.Get("Content-Type") != "application/json" {
		t.Fatalf("decode = %d %v %q %v", status, got, body, ok)
	}
	if _, _, _, ok := decodePayload(bs[:5]); ok {
		t.Fatal("short payload decoded")
	}
}

func TestCaptureWriterDropsOversizedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("def"))
	if !cw.truncated || cw.buf.Len() != 0 {
		t.Fatalf("truncated=%v buffered=%q", cw.truncated, cw.buf.String())
	}
	if rec.Body.String() != "abcdef" {
		t.Fatalf("client got %q", rec.Body.String())
	}
}

func TestRateKey(t *testing.T) {
	c := newContext(http.MethodPost, "/v1/bookings", "/v1/bookings")
	cases := map[string]string{
		"ip":       "inn:rl:ip:203.0.113.7",
		"route":    "inn:rl:route:POST /v1/bookings",
		"ip_route": "inn:rl:ip:203.0.113.7:route:POST /v1/bookings",
		"":         "inn:rl:ip:203.0.113.7:route:POST /v1/bookings",
	}
	for strategy, want := range cases {
		got := rateKey(config.RateLimitConfig{Prefix: "inn:rl", KeyStrategy: strategy}, c)
		if got != want {
			t.Errorf("strategy %q: got %q, want %q", strategy, got, want)
		}
	}
}

func TestWithoutRedisEverythingPassesThrough(t *testing.T) {
	log := logrus.New()
	called := 0
	h := func(c echo.Context) error { called++; return c.NoContent(http.StatusCreated) }

	mws := []echo.MiddlewareFunc{
		NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, log),
		NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil, log),
		InvalidateCache(config.CacheConfig{Enabled: true}, nil, log),
	}
	for _, mw := range mws {
		if err := mw(h)(newContext(http.MethodPost, "/v1/bookings", "/v1/bookings")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if called != len(mws) {
		t.Fatalf("handler ran %d times, want %d", called, len(mws))
	}
}
