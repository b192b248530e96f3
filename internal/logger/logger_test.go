package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantErr   bool
		wantDebug bool
		contains  string
	}{
		{name: "text info", level: "info", format: "text", contains: "msg=hello"},
		{name: "json debug", level: "debug", format: "json", wantDebug: true, contains: `"msg":"hello"`},
		{name: "upper case level", level: "WARN", format: "text"},
		{name: "bad level", level: "loud", format: "text", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(tt.level, tt.format, &buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			l.Debug("dbg")
			if got := strings.Contains(buf.String(), "dbg"); got != tt.wantDebug {
				t.Errorf("debug emitted = %v, want %v", got, tt.wantDebug)
			}
			if tt.contains != "" {
				l.Info("hello")
				if !strings.Contains(buf.String(), tt.contains) {
					t.Errorf("output %q does not contain %q", buf.String(), tt.contains)
				}
			}
		})
	}
}
