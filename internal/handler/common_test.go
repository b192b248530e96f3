package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw    string
		want   uint64
		wantOK bool
	}{
		{raw: "7", want: 7, wantOK: true},
		{raw: "0", want: 0, wantOK: true},
		{raw: "-1"},
		{raw: "abc"},
		{raw: ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := newContext("/")
			c.SetParamNames("id")
			c.SetParamValues(tt.raw)

			got, ok := parseID(c, "id")
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseID(%q) = %d, %v, want %d, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantSkip  int
		wantLimit int
		wantErr   bool
	}{
		{name: "defaults", query: "", wantSkip: 0, wantLimit: 10},
		{name: "explicit", query: "?skip=5&limit=20", wantSkip: 5, wantLimit: 20},
		{name: "clamped", query: "?limit=500", wantSkip: 0, wantLimit: 100},
		{name: "zero limit", query: "?limit=0", wantSkip: 0, wantLimit: 0},
		{name: "negative skip", query: "?skip=-1", wantErr: true},
		{name: "non integer limit", query: "?limit=ten", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, limit, err := parsePage(newContext("/users"+tt.query), 100)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePage() = %d, %d, want error", skip, limit)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePage() error = %v", err)
			}
			if skip != tt.wantSkip || limit != tt.wantLimit {
				t.Errorf("parsePage() = %d, %d, want %d, %d", skip, limit, tt.wantSkip, tt.wantLimit)
			}
		})
	}
}
