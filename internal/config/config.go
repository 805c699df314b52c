package config

import (
	"fmt"
	"strings"

	"github.com/benamedd/phytoscan/internal/analysis"
)

// Config holds the complete application configuration
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	UI     UIConfig     `yaml:"ui" json:"ui"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// ServerConfig locates the analysis server
type ServerConfig struct {
	Origin string `yaml:"origin" json:"origin"` // scheme://host[:port], uploads go to {origin}/upload
}

// UIConfig configures the terminal widget
type UIConfig struct {
	Language          string   `yaml:"language" json:"language"`       // auto|en|fr
	AltScreen         *bool    `yaml:"alt_screen" json:"alt_screen"`   // use the alternate screen buffer
	StartDir          string   `yaml:"start_dir" json:"start_dir"`     // file picker start directory
	AllowedTypes      []string `yaml:"allowed_types" json:"allowed_types"`
	PreviewWidth      int      `yaml:"preview_width" json:"preview_width"`   // cells
	PreviewHeight     int      `yaml:"preview_height" json:"preview_height"` // cells
	InlineResultImage *bool    `yaml:"inline_result_image" json:"inline_result_image"`
	WatchSelection    *bool    `yaml:"watch_selection" json:"watch_selection"`
}

// LogConfig configures diagnostics
type LogConfig struct {
	File  string `yaml:"file" json:"file"` // empty disables logging in the TUI
	Debug bool   `yaml:"debug" json:"debug"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Origin: analysis.DefaultOrigin,
		},
		UI: UIConfig{
			Language:          "auto",
			AltScreen:         boolPtr(true),
			StartDir:          ".",
			AllowedTypes:      []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"},
			PreviewWidth:      40,
			PreviewHeight:     16,
			InlineResultImage: boolPtr(true),
			WatchSelection:    boolPtr(true),
		},
	}
}

// UseAltScreen reports whether the alternate screen is enabled.
func (u UIConfig) UseAltScreen() bool { return u.AltScreen == nil || *u.AltScreen }

// ShowInlineResultImage reports whether annotated images are fetched for display.
func (u UIConfig) ShowInlineResultImage() bool {
	return u.InlineResultImage == nil || *u.InlineResultImage
}

// ShouldWatchSelection reports whether the selected file is followed on disk.
func (u UIConfig) ShouldWatchSelection() bool { return u.WatchSelection == nil || *u.WatchSelection }

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServerConfig(); err != nil {
		return err
	}
	if err := c.validateUIConfig(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServerConfig() error {
	if _, err := analysis.ParseOrigin(c.Server.Origin); err != nil {
		return fmt.Errorf("server.origin: %w", err)
	}
	return nil
}

func (c *Config) validateUIConfig() error {
	validLanguages := map[string]bool{
		"auto": true,
		"en":   true,
		"fr":   true,
	}
	if !validLanguages[strings.ToLower(c.UI.Language)] {
		return fmt.Errorf("invalid ui.language: %s (must be one of: auto, en, fr)", c.UI.Language)
	}
	if c.UI.PreviewWidth < 1 {
		return fmt.Errorf("ui.preview_width must be greater than 0")
	}
	if c.UI.PreviewHeight < 1 {
		return fmt.Errorf("ui.preview_height must be greater than 0")
	}
	if len(c.UI.AllowedTypes) == 0 {
		return fmt.Errorf("ui.allowed_types must list at least one extension")
	}
	for _, ext := range c.UI.AllowedTypes {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid ui.allowed_types entry %q (must look like .png)", ext)
		}
	}
	return nil
}

func boolPtr(v bool) *bool { return &v }
