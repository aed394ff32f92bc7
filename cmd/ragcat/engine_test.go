package main

import (
	"testing"

	"github.com/ragcat-dev/ragcat/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.DiagnosticsConfig
		wantErr bool
	}{
		{name: "info_level", cfg: config.DiagnosticsConfig{LogLevel: "info"}},
		{name: "debug_flag_overrides_level", cfg: config.DiagnosticsConfig{Debug: true, LogLevel: "error"}},
		{name: "invalid_level", cfg: config.DiagnosticsConfig{LogLevel: "not-a-level"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			log, err := newLogger(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && log == nil {
				t.Fatal("newLogger() returned nil logger with no error")
			}
		})
	}
}
