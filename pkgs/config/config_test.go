package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mockmail.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Output.Samples != "doc/eml" || cfg.Output.Bulk != "doc/eml/bulk" || cfg.Output.Special != "doc/eml/special" {
		t.Errorf("unexpected output dirs: %+v", cfg.Output)
	}
	if !cfg.Assets.PDF || !cfg.Assets.PNG {
		t.Errorf("assets should be enabled by default: %+v", cfg.Assets)
	}
	if len(cfg.Sinks) != 1 || cfg.Sinks[0] != SinkDir {
		t.Errorf("unexpected sinks: %v", cfg.Sinks)
	}
}

func TestLoadFile_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
output:
  bulk: out/bulk
  format: both
assets:
  pdf: false
seed: 7
sinks: [dir, smtp]
smtp:
  host: localhost
  port: 1025
  recipients: [capture@example.com]
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Output.Bulk != "out/bulk" {
		t.Errorf("Output.Bulk = %q", cfg.Output.Bulk)
	}
	if cfg.Output.Samples != "doc/eml" {
		t.Errorf("unset keys should keep defaults, Output.Samples = %q", cfg.Output.Samples)
	}
	if cfg.Output.Format != FormatBoth {
		t.Errorf("Output.Format = %q", cfg.Output.Format)
	}
	if cfg.Assets.PDF {
		t.Error("Assets.PDF should be false")
	}
	if !cfg.Assets.PNG {
		t.Error("Assets.PNG should keep its default")
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d", cfg.Seed)
	}
	if !cfg.HasSink(SinkSMTP) || cfg.HasSink(SinkS3) {
		t.Errorf("unexpected sinks: %v", cfg.Sinks)
	}
	if cfg.SMTP.Host != "localhost" || cfg.SMTP.Port != 1025 {
		t.Errorf("unexpected smtp settings: %+v", cfg.SMTP)
	}
	if len(cfg.SMTP.Recipients) != 1 || cfg.SMTP.Recipients[0] != "capture@example.com" {
		t.Errorf("unexpected smtp recipients: %v", cfg.SMTP.Recipients)
	}
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "seed: 7\nsinks: [smtp]\nsmtp:\n  host: mail.example.com\n  port: 25\n")
	t.Setenv("MOCKMAIL_SEED", "99")
	t.Setenv("MOCKMAIL_SMTP_HOST", "localhost")
	t.Setenv("MOCKMAIL_LOG_LEVEL", "DEBUG")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Seed != 99 {
		t.Errorf("Seed = %d, want 99", cfg.Seed)
	}
	if cfg.SMTP.Host != "localhost" {
		t.Errorf("SMTP.Host = %q, want localhost", cfg.SMTP.Host)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFile(writeConfig(t, "output: [not, a, map]")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadFile(writeConfig(t, "sinks: [carrier-pigeon]")); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Output.Samples != "doc/eml" {
		t.Errorf("expected defaults, got %+v", cfg.Output)
	}
}

func TestLoad_FromEnvPath(t *testing.T) {
	path := writeConfig(t, "forward_depth: 5\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ForwardDepth != 5 {
		t.Errorf("ForwardDepth = %d, want 5", cfg.ForwardDepth)
	}
}

func TestGetEnvConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "  ")
	_, err := GetEnvConfigPath()
	if !errors.Is(err, ErrNoConfig) {
		t.Fatalf("expected ErrNoConfig, got %v", err)
	}

	t.Setenv(EnvConfigPath, "/etc/mockmail.yaml")
	path, err := GetEnvConfigPath()
	if err != nil || path != "/etc/mockmail.yaml" {
		t.Errorf("GetEnvConfigPath() = %q, %v", path, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad format", func(c *Config) { c.Output.Format = "msg" }, "output.format"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad depth", func(c *Config) { c.ForwardDepth = 0 }, "forward_depth"},
		{"smtp without host", func(c *Config) { c.Sinks = []string{SinkSMTP} }, "smtp.host"},
		{"imap without user", func(c *Config) {
			c.Sinks = []string{SinkIMAP}
			c.IMAP.Host, c.IMAP.Port = "localhost", 143
		}, "imap.username"},
		{"s3 without bucket", func(c *Config) { c.Sinks = []string{SinkS3} }, "s3.bucket"},
		{"ses without region", func(c *Config) { c.Sinks = []string{SinkSES} }, "ses.region"},
		{"unknown sink", func(c *Config) { c.Sinks = []string{"fax"} }, "unknown sink"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSaveAndLoadExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mockmail.yaml")
	if err := Save(path, Example()); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Seed != 42 || !cfg.HasSink(SinkSMTP) || cfg.IMAP.Mailbox != "INBOX" || cfg.S3.Bucket != "mail-fixtures" {
		t.Errorf("example did not round trip: %+v", cfg)
	}
}
