package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Origin != "http://localhost:5000" {
		t.Errorf("Expected default origin http://localhost:5000, got %s", cfg.Server.Origin)
	}
	if cfg.UI.Language != "auto" {
		t.Errorf("Expected language auto, got %s", cfg.UI.Language)
	}
	if !cfg.UI.UseAltScreen() || !cfg.UI.ShowInlineResultImage() || !cfg.UI.ShouldWatchSelection() {
		t.Error("Expected UI toggles to default on")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{
			name:    "origin with path",
			mutate:  func(c *Config) { c.Server.Origin = "http://localhost:5000/api" },
			wantErr: "server.origin",
		},
		{
			name:    "origin without scheme",
			mutate:  func(c *Config) { c.Server.Origin = "localhost:5000" },
			wantErr: "server.origin",
		},
		{
			name:    "invalid language",
			mutate:  func(c *Config) { c.UI.Language = "de" },
			wantErr: "invalid ui.language: de (must be one of: auto, en, fr)",
		},
		{
			name:    "zero preview width",
			mutate:  func(c *Config) { c.UI.PreviewWidth = 0 },
			wantErr: "ui.preview_width must be greater than 0",
		},
		{
			name:    "negative preview height",
			mutate:  func(c *Config) { c.UI.PreviewHeight = -1 },
			wantErr: "ui.preview_height must be greater than 0",
		},
		{
			name:    "no allowed types",
			mutate:  func(c *Config) { c.UI.AllowedTypes = nil },
			wantErr: "ui.allowed_types must list at least one extension",
		},
		{
			name:    "allowed type without dot",
			mutate:  func(c *Config) { c.UI.AllowedTypes = []string{"png"} },
			wantErr: `invalid ui.allowed_types entry "png"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
