package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		want zapcore.Level
	}{
		{"production", Options{}, zapcore.InfoLevel},
		{"verbose", Options{Verbose: true}, zapcore.DebugLevel},
		{"quiet", Options{Quiet: true}, zapcore.ErrorLevel},
		{"quiet wins over verbose", Options{Verbose: true, Quiet: true}, zapcore.ErrorLevel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.opts)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if !logger.Core().Enabled(tc.want) {
				t.Fatalf("level %v should be enabled", tc.want)
			}
			if tc.want > zapcore.DebugLevel && logger.Core().Enabled(tc.want-1) {
				t.Fatalf("level %v should be disabled", tc.want-1)
			}
		})
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	logger, err := New(Options{OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("printed", zap.String("path", "a.json"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if got := string(data); !strings.Contains(got, `"msg":"printed"`) || !strings.Contains(got, `"path":"a.json"`) {
		t.Fatalf("unexpected log output: %s", got)
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without logger must return a no-op logger")
	}
	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatalf("FromContext returned %p, want %p", got, logger)
	}
}
