package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pdfsum/internal/config"
	"github.com/iliyamo/pdfsum/internal/logger"
	"github.com/iliyamo/pdfsum/internal/utils"
)

func TestIdentity(t *testing.T) {
	const secret = "s3cret"
	valid, err := utils.NewAccessToken(secret, 42, 5)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}
	foreign, err := utils.NewAccessToken("other", 42, 5)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}

	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
		wantUID    uint64
	}{
		{name: "anonymous", secret: secret, wantStatus: http.StatusOK},
		{name: "valid token", secret: secret, header: "Bearer " + valid.Token, wantStatus: http.StatusOK, wantUID: 42},
		{name: "wrong signature", secret: secret, header: "Bearer " + foreign.Token, wantStatus: http.StatusUnauthorized},
		{name: "not bearer", secret: secret, header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage", secret: secret, header: "Bearer x.y.z", wantStatus: http.StatusUnauthorized},
		{name: "no secret ignores header", header: "Bearer x.y.z", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var gotUID uint64
			h := Identity(tt.secret)(func(c echo.Context) error {
				gotUID, _ = UserID(c)
				return c.NoContent(http.StatusOK)
			})
			if err := h(c); err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotUID != tt.wantUID {
				t.Errorf("user id = %d, want %d", gotUID, tt.wantUID)
			}
		})
	}
}

func TestCacheKeyFrom(t *testing.T) {
	e := echo.New()
	key := func(strategy, target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/pdf/:id")
		return cacheKeyFrom(config.CacheConfig{Prefix: "cache", KeyStrategy: strategy}, c)
	}

	if key("path_query", "/pdf/1") == key("path_query", "/pdf/2") {
		t.Error("different pdf ids share a cache key")
	}
	if key("path_query", "/pdf/1?a=1") == key("path_query", "/pdf/1?a=2") {
		t.Error("path_query ignores the query string")
	}
	if key("path", "/pdf/1?a=1") != key("path", "/pdf/1?a=2") {
		t.Error("path strategy depends on the query string")
	}
	if !strings.HasPrefix(key("", "/pdf/1"), "cache:") {
		t.Error("key lacks prefix")
	}
}

func TestCaptureWriter(t *testing.T) {
	tests := []struct {
		name         string
		limit        int64
		writes       []string
		wantOverflow bool
		wantBuf      string
	}{
		{name: "under limit", limit: 10, writes: []string{"abc", "def"}, wantBuf: "abcdef"},
		{name: "exactly limit", limit: 6, writes: []string{"abc", "def"}, wantBuf: "abcdef"},
		{name: "over limit", limit: 5, writes: []string{"abc", "def"}, wantOverflow: true},
		{name: "no limit", limit: 0, writes: []string{"abc", "def"}, wantBuf: "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: tt.limit}
			for _, w := range tt.writes {
				if _, err := cw.Write([]byte(w)); err != nil {
					t.Fatalf("Write() error = %v", err)
				}
			}
			if cw.overflow != tt.wantOverflow {
				t.Errorf("overflow = %v, want %v", cw.overflow, tt.wantOverflow)
			}
			if !tt.wantOverflow && cw.buf.String() != tt.wantBuf {
				t.Errorf("captured = %q, want %q", cw.buf.String(), tt.wantBuf)
			}
			if rec.Body.String() != strings.Join(tt.writes, "") {
				t.Errorf("client got %q, want everything", rec.Body.String())
			}
		})
	}
}

func TestPayloadCodec(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/pdf"}}
	body := []byte("%PDF")

	bs, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encodePayload() error = %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || gotHdr.Get("Content-Type") != "application/pdf" || !bytes.Equal(gotBody, body) {
		t.Errorf("decodePayload() = %d %v %q %v", status, gotHdr, gotBody, ok)
	}

	if _, _, _, ok := decodePayload(bs[:6]); ok {
		t.Error("decodePayload() accepted a truncated payload")
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/pdf/upload", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/pdf/upload")

	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:10.0.0.1"},
		{"user", "rl:user:anon"},
		{"route", "rl:route:POST /pdf/upload"},
		{"", "rl:ip:10.0.0.1:user:anon:route:POST /pdf/upload"},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: tt.strategy}, c)
			if got != tt.want {
				t.Errorf("buildRateKey() = %q, want %q", got, tt.want)
			}
		})
	}

	c.Set(userIDKey, uint64(9))
	if got := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c); got != "rl:user:9" {
		t.Errorf("buildRateKey() with user = %q, want rl:user:9", got)
	}
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, logger.Discard()))
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil))
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("got %d %q, want 200 ok", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Error("disabled cache still set X-Cache")
	}
}
