package kb_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-kb"
)

func TestConfigValidateRequiresRoots(t *testing.T) {
	cfg := kb.DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, kb.ErrRootsRequired) {
		t.Fatalf("expected ErrRootsRequired, got %v", err)
	}
}

func TestConfigValidateFilenameStyle(t *testing.T) {
	cfg := kb.DefaultConfig()
	cfg.Roots = []string{"index"}
	cfg.FilenameStyle = "kebab"

	if err := cfg.Validate(); !errors.Is(err, kb.ErrFilenameStyleUnknown) {
		t.Fatalf("expected ErrFilenameStyleUnknown, got %v", err)
	}
}

func TestConfigValidateLoggingProviderUnknown(t *testing.T) {
	cfg := kb.DefaultConfig()
	cfg.Roots = []string{"index"}
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, kb.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestParseConfigDecodesEmbedSetting(t *testing.T) {
	cfg, err := kb.ParseConfig([]byte("roots: [index]\ndefault_embed:\n  max_references: 1\n"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.DefaultEmbed.Condition != kb.EmbedCondition(kb.ReferenceCount{MaxReferenceCount: 1}) {
		t.Fatalf("unexpected embed condition %#v", cfg.DefaultEmbed.Condition)
	}
}

func TestLoadConfigResolvesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.yaml")
	if err := os.WriteFile(path, []byte("roots: [index]\nsource: src\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := kb.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SourceDir() != filepath.Join(dir, "src") || cfg.OutputDir() != filepath.Join(dir, "dist") {
		t.Fatalf("unexpected directories %q %q", cfg.SourceDir(), cfg.OutputDir())
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := kb.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, kb.ErrConfigRead) {
		t.Fatalf("expected ErrConfigRead, got %v", err)
	}
}
