package runtimeconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-kb/internal/node"
)

// DefaultFilename is the project file looked up when no path is given.
const DefaultFilename = "kb.yaml"

var ErrSourceDirRequired = errors.New("kb config: source directory is required")
var ErrOutputDirRequired = errors.New("kb config: output directory is required")
var ErrRootsRequired = errors.New("kb config: at least one root document is required")
var ErrFilenameStyleUnknown = errors.New("kb config: filename style is invalid")
var ErrExtensionInvalid = errors.New("kb config: extension must start with a dot")
var ErrConcurrencyInvalid = errors.New("kb config: concurrency must be zero or positive")
var ErrRenderTimeoutInvalid = errors.New("kb config: render timeout must be zero or positive")
var ErrLoggingProviderRequired = errors.New("kb config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("kb config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("kb config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("kb config: logging format is invalid")
var ErrConfigRead = errors.New("kb config: unable to read project file")
var ErrConfigDecode = errors.New("kb config: unable to decode project file")

// Config describes a knowledge-base project: where sources live, which
// documents are roots and how rendering and output behave.
type Config struct {
	// Source is the directory holding the markdown sources.
	Source string `yaml:"source"`
	// Output is the directory receiving rendered files.
	Output string `yaml:"output"`
	// Roots lists document ids that always produce a file.
	Roots []string `yaml:"roots"`

	DefaultEmbed EmbedSetting `yaml:"default_embed"`
	DefaultEmit  bool         `yaml:"default_emit"`
	// FilenameStyle selects the stem transform: "default" or "slug".
	FilenameStyle string `yaml:"filename_style"`
	Extension     string `yaml:"extension"`
	// Paths maps document ids to output directories; "*" matches the rest.
	Paths          map[string]string `yaml:"paths"`
	RemarkPrefixes map[string]string `yaml:"remark_prefixes"`
	Concurrency    int               `yaml:"concurrency"`
	RenderTimeout  time.Duration     `yaml:"render_timeout"`

	HTML    HTMLConfig    `yaml:"html"`
	Logging LoggingConfig `yaml:"logging"`

	// Dir is the directory of the loaded project file. Relative Source and
	// Output paths resolve against it.
	Dir string `yaml:"-"`
}

// HTMLConfig controls the optional HTML copies of rendered documents.
type HTMLConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
	Unsafe     bool     `yaml:"unsafe"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// EmbedSetting decodes an embed condition from YAML: a bool, "no_series",
// "always", "never" or {max_references: n}.
type EmbedSetting struct {
	Condition node.EmbedCondition
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *EmbedSetting) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	condition, err := node.ParseEmbedCondition(raw)
	if err != nil {
		return err
	}
	s.Condition = condition
	return nil
}

// DefaultConfig returns the settings used when the project file omits them.
func DefaultConfig() Config {
	return Config{
		Source:         "docs",
		Output:         "dist",
		FilenameStyle:  "default",
		Extension:      ".md",
		Paths:          map[string]string{},
		RemarkPrefixes: map[string]string{},
		HTML: HTMLConfig{
			Extensions: []string{"gfm"},
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Load reads a YAML project file over DefaultConfig and validates it.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultFilename
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigRead, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes YAML over DefaultConfig and validates the result. An empty
// document yields the defaults.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigDecode, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SourceDir returns Source resolved against Dir.
func (cfg Config) SourceDir() string {
	return cfg.resolve(cfg.Source)
}

// OutputDir returns Output resolved against Dir.
func (cfg Config) OutputDir() string {
	return cfg.resolve(cfg.Output)
}

func (cfg Config) resolve(path string) string {
	if filepath.IsAbs(path) || cfg.Dir == "" {
		return path
	}
	return filepath.Join(cfg.Dir, path)
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Source) == "" {
		return ErrSourceDirRequired
	}
	if strings.TrimSpace(cfg.Output) == "" {
		return ErrOutputDirRequired
	}
	if len(cfg.Roots) == 0 {
		return ErrRootsRequired
	}
	if err := validation.Validate(cfg.Roots, validation.Each(validation.Required)); err != nil {
		return fmt.Errorf("%w: %w", ErrRootsRequired, err)
	}
	if style := strings.TrimSpace(cfg.FilenameStyle); style != "" && !isSupportedFilenameStyle(style) {
		return fmt.Errorf("%w: %s", ErrFilenameStyleUnknown, style)
	}
	if ext := cfg.Extension; ext != "" && (!strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `/\`)) {
		return fmt.Errorf("%w: %s", ErrExtensionInvalid, ext)
	}
	if cfg.Concurrency < 0 {
		return fmt.Errorf("%w: %d", ErrConcurrencyInvalid, cfg.Concurrency)
	}
	if cfg.RenderTimeout < 0 {
		return fmt.Errorf("%w: %s", ErrRenderTimeoutInvalid, cfg.RenderTimeout)
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func isSupportedFilenameStyle(style string) bool {
	switch strings.ToLower(style) {
	case "default", "slug":
		return true
	default:
		return false
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
