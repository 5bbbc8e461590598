package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/loan-tracker/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LoggingConfig
		override string
		enabled  zapcore.Level
		disabled zapcore.Level
		wantErr  bool
	}{
		{"defaults", config.LoggingConfig{}, "", zapcore.InfoLevel, zapcore.DebugLevel, false},
		{"console debug", config.LoggingConfig{Level: "debug", Format: "console"}, "", zapcore.DebugLevel, zapcore.DebugLevel - 1, false},
		{"override wins", config.LoggingConfig{Level: "debug"}, "error", zapcore.ErrorLevel, zapcore.WarnLevel, false},
		{"warning alias", config.LoggingConfig{Level: "warning"}, "", zapcore.WarnLevel, zapcore.InfoLevel, false},
		{"bad level", config.LoggingConfig{Level: "verbose"}, "", 0, 0, true},
		{"bad format", config.LoggingConfig{Format: "xml"}, "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !logger.Core().Enabled(tt.enabled) {
				t.Errorf("expected level %s to be enabled", tt.enabled)
			}
			if logger.Core().Enabled(tt.disabled) {
				t.Errorf("expected level %s to be disabled", tt.disabled)
			}
		})
	}
}

func TestNewWritesToOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "loan-tracker.log")

	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", OutputFile: path}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("payment recorded", zap.String("op", "test"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "payment recorded") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestParseLevel(t *testing.T) {
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("expected error for unknown level")
	}
	level, err := ParseLevel("error")
	if err != nil || level != zapcore.ErrorLevel {
		t.Errorf("ParseLevel(error) = %v, %v", level, err)
	}
}
