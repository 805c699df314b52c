package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.phytoscan.yaml",               // project config (highest priority)
	"~/.config/phytoscan/config.yaml", // user config
	"/etc/phytoscan/config.yaml",      // system config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	getenv      func(string) string
	warn        func(format string, args ...any)
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		getenv:      os.Getenv,
		warn: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
	}
}

// LoadConfig loads configuration with priority order (highest first):
// command line flags (applied by the caller), PHYTOSCAN_* environment
// variables, ./.phytoscan.yaml, ~/.config/phytoscan/config.yaml,
// /etc/phytoscan/config.yaml, built-in defaults.
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			path := expandPath(l.configPaths[i])
			if !fileExists(path) {
				continue
			}
			if err := l.loadFromFile(config, path); err != nil {
				l.warn("failed to load config from %s: %v", path, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func (l *Loader) loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	mergeConfigs(config, &fileConfig)
	return nil
}

func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		"PHYTOSCAN_SERVER_ORIGIN": func(v string) error { config.Server.Origin = v; return nil },

		"PHYTOSCAN_UI_LANGUAGE":            func(v string) error { config.UI.Language = v; return nil },
		"PHYTOSCAN_UI_ALT_SCREEN":          func(v string) error { return parseBoolPtr(v, &config.UI.AltScreen) },
		"PHYTOSCAN_UI_START_DIR":           func(v string) error { config.UI.StartDir = v; return nil },
		"PHYTOSCAN_UI_PREVIEW_WIDTH":       func(v string) error { return parseInt(v, &config.UI.PreviewWidth) },
		"PHYTOSCAN_UI_PREVIEW_HEIGHT":      func(v string) error { return parseInt(v, &config.UI.PreviewHeight) },
		"PHYTOSCAN_UI_INLINE_RESULT_IMAGE": func(v string) error { return parseBoolPtr(v, &config.UI.InlineResultImage) },
		"PHYTOSCAN_UI_WATCH_SELECTION":     func(v string) error { return parseBoolPtr(v, &config.UI.WatchSelection) },

		"PHYTOSCAN_LOG_FILE":  func(v string) error { config.Log.File = v; return nil },
		"PHYTOSCAN_LOG_DEBUG": func(v string) error { return parseBool(v, &config.Log.Debug) },
	}

	for envVar, setter := range envMappings {
		if value := l.getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	if types := l.getenv("PHYTOSCAN_UI_ALLOWED_TYPES"); types != "" {
		config.UI.AllowedTypes = splitList(types)
	}
	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

var supportedLanguages = []language.Tag{language.English, language.French}

// ResolveLanguage maps a configured language onto a supported tag. "auto"
// consults LC_ALL, LC_MESSAGES and LANG in that order.
func ResolveLanguage(configured string, getenv func(string) string) language.Tag {
	if getenv == nil {
		getenv = os.Getenv
	}
	want := strings.ToLower(strings.TrimSpace(configured))
	if want == "" || want == "auto" {
		want = ""
		for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
			if v := getenv(key); v != "" {
				want = v
				break
			}
		}
	}
	// POSIX locales look like fr_FR.UTF-8
	want, _, _ = strings.Cut(want, ".")
	want = strings.ReplaceAll(want, "_", "-")
	if want == "" || want == "C" || want == "POSIX" {
		return language.English
	}
	tag, err := language.Parse(want)
	if err != nil {
		return language.English
	}
	matcher := language.NewMatcher(supportedLanguages)
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return language.English
	}
	return supportedLanguages[index]
}

func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}
	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// mergeConfigs merges source config into destination config.
// Only values set in source overwrite destination.
func mergeConfigs(dst, src *Config) {
	if src.Server.Origin != "" {
		dst.Server.Origin = src.Server.Origin
	}
	mergeUIConfig(&dst.UI, &src.UI)
	mergeLogConfig(&dst.Log, &src.Log)
}

func mergeUIConfig(dst, src *UIConfig) {
	if src.Language != "" {
		dst.Language = src.Language
	}
	if src.StartDir != "" {
		dst.StartDir = src.StartDir
	}
	if len(src.AllowedTypes) > 0 {
		dst.AllowedTypes = src.AllowedTypes
	}
	if src.PreviewWidth != 0 {
		dst.PreviewWidth = src.PreviewWidth
	}
	if src.PreviewHeight != 0 {
		dst.PreviewHeight = src.PreviewHeight
	}
	mergeBoolPtr(&dst.AltScreen, src.AltScreen)
	mergeBoolPtr(&dst.InlineResultImage, src.InlineResultImage)
	mergeBoolPtr(&dst.WatchSelection, src.WatchSelection)
}

func mergeLogConfig(dst, src *LogConfig) {
	if src.File != "" {
		dst.File = src.File
	}
	if src.Debug {
		dst.Debug = true
	}
}

// mergeBoolPtr copies booleans that were present in the YAML document.
func mergeBoolPtr(dst **bool, src *bool) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBoolPtr(s string, dst **bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = &val
	return nil
}
