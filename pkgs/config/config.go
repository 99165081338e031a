// Package config loads the mockmail configuration: built-in defaults, then
// an optional YAML file, then environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath is the env var that points to the YAML config file
	// used when --config is not given.
	EnvConfigPath = "MOCKMAIL_CONFIG"
)

// ErrNoConfig is returned when no config file location is known.
var ErrNoConfig = errors.New("no config file")

// Output formats accepted by the bulk generator.
const (
	FormatEML  = "eml"
	FormatMbox = "mbox"
	FormatBoth = "both"
)

// Sink names.
const (
	SinkDir  = "dir"
	SinkMbox = "mbox"
	SinkSMTP = "smtp"
	SinkIMAP = "imap"
	SinkS3   = "s3"
	SinkSES  = "ses"
)

// ProtocolSettings holds connection settings common to SMTP and IMAP.
type ProtocolSettings struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	// SSL enables implicit TLS (connect directly over TLS).
	SSL bool `yaml:"ssl,omitempty"`
	// StartTLS enables opportunistic TLS upgrade after connecting in plaintext.
	StartTLS bool `yaml:"starttls,omitempty"`
}

// SMTPConfig configures delivery of fixtures to an SMTP server, typically
// a local capture server.
type SMTPConfig struct {
	ProtocolSettings `yaml:",inline"`

	// Recipients overrides the envelope recipients. When empty, the
	// message's To and Cc addresses are used.
	Recipients []string `yaml:"recipients,omitempty"`
}

// IMAPConfig configures APPEND of fixtures into an IMAP mailbox.
type IMAPConfig struct {
	ProtocolSettings `yaml:",inline"`
	Mailbox          string `yaml:"mailbox"`
}

// S3Config configures upload of fixtures to an S3 compatible bucket.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix,omitempty"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	UsePathStyle    bool   `yaml:"use_path_style,omitempty"`
}

// SESConfig configures raw sends through AWS SES v2.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	// Recipients overrides the destination addresses.
	Recipients []string `yaml:"recipients,omitempty"`
}

// OutputConfig holds the default output locations of the generators.
type OutputConfig struct {
	Samples string `yaml:"samples"`
	Bulk    string `yaml:"bulk"`
	Special string `yaml:"special"`
	Format  string `yaml:"format"`
	// Mbox is the archive file name used by the mbox sink, relative to the
	// output directory.
	Mbox string `yaml:"mbox"`
}

// AssetsConfig toggles the optional attachment generators.
type AssetsConfig struct {
	LogoDir string `yaml:"logo_dir"`
	PDF     bool   `yaml:"pdf"`
	PNG     bool   `yaml:"png"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config holds the application configuration.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Assets AssetsConfig `yaml:"assets"`

	// Seed makes runs reproducible. Zero seeds from the clock.
	Seed int64 `yaml:"seed,omitempty"`

	// ForwardDepth is the length of the special forward chain.
	ForwardDepth int `yaml:"forward_depth"`

	// Sinks lists where generated fixtures go. Defaults to [dir].
	Sinks []string `yaml:"sinks"`

	Logging LoggingConfig `yaml:"logging"`

	SMTP SMTPConfig `yaml:"smtp,omitempty"`
	IMAP IMAPConfig `yaml:"imap,omitempty"`
	S3   S3Config   `yaml:"s3,omitempty"`
	SES  SESConfig  `yaml:"ses,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load resolves the config file from path, or from EnvConfigPath when path
// is empty, and loads it. Without any config file the defaults are used,
// still subject to environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := GetEnvConfigPath()
		if errors.Is(err, ErrNoConfig) {
			cfg := Default()
			cfg.applyEnvVars()
			return cfg, cfg.Validate()
		}
		path = p
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a YAML file as the base layer, then
// overrides with environment variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetEnvConfigPath returns the config file path from EnvConfigPath.
func GetEnvConfigPath() (string, error) {
	path := strings.TrimSpace(os.Getenv(EnvConfigPath))
	if path == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrNoConfig, EnvConfigPath)
	}
	return path, nil
}

// HasSink reports whether name is among the configured sinks.
func (c *Config) HasSink(name string) bool {
	for _, s := range c.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatEML, FormatMbox, FormatBoth:
	default:
		return fmt.Errorf("output.format must be eml, mbox or both, got %q", c.Output.Format)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}

	if c.ForwardDepth < 1 {
		return fmt.Errorf("forward_depth must be at least 1, got %d", c.ForwardDepth)
	}

	for _, s := range c.Sinks {
		switch s {
		case SinkDir, SinkMbox:
		case SinkSMTP:
			if c.SMTP.Host == "" || c.SMTP.Port <= 0 {
				return fmt.Errorf("sink smtp: smtp.host and smtp.port are required")
			}
		case SinkIMAP:
			if c.IMAP.Host == "" || c.IMAP.Port <= 0 {
				return fmt.Errorf("sink imap: imap.host and imap.port are required")
			}
			if c.IMAP.Username == "" {
				return fmt.Errorf("sink imap: imap.username is required")
			}
		case SinkS3:
			if c.S3.Bucket == "" || c.S3.Region == "" {
				return fmt.Errorf("sink s3: s3.bucket and s3.region are required")
			}
		case SinkSES:
			if c.SES.Region == "" {
				return fmt.Errorf("sink ses: ses.region is required")
			}
		default:
			return fmt.Errorf("unknown sink: %s", s)
		}
	}
	return nil
}

// Example returns an example configuration for "init".
func Example() *Config {
	cfg := Default()
	cfg.Seed = 42
	cfg.Sinks = []string{SinkDir, SinkSMTP}
	cfg.SMTP = SMTPConfig{
		ProtocolSettings: ProtocolSettings{
			Host: "localhost",
			Port: 1025,
		},
	}
	cfg.IMAP = IMAPConfig{
		ProtocolSettings: ProtocolSettings{
			Host:     "localhost",
			Port:     1143,
			Username: "fixtures@example.com",
			Password: "change-me",
		},
		Mailbox: "INBOX",
	}
	cfg.S3 = S3Config{
		Bucket:       "mail-fixtures",
		Prefix:       "eml",
		Region:       "eu-west-2",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	}
	cfg.SES = SESConfig{
		Region:     "eu-west-2",
		Recipients: []string{"success@simulator.amazonses.com"},
	}
	return cfg
}

// --- internal helpers ---

func (c *Config) applyDefaults() {
	c.Output = OutputConfig{
		Samples: "doc/eml",
		Bulk:    "doc/eml/bulk",
		Special: "doc/eml/special",
		Format:  FormatEML,
		Mbox:    "fixtures.mbox",
	}
	c.Assets = AssetsConfig{LogoDir: "doc/res/logos", PDF: true, PNG: true}
	c.ForwardDepth = 3
	c.Sinks = []string{SinkDir}
	c.Logging.Level = "info"
	c.IMAP.Mailbox = "INBOX"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("MOCKMAIL_LOGO_DIR"); v != "" {
		c.Assets.LogoDir = v
	}
	if v := os.Getenv("MOCKMAIL_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = seed
		}
	}
	if v := os.Getenv("MOCKMAIL_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv("MOCKMAIL_SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("MOCKMAIL_SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv("MOCKMAIL_SMTP_USERNAME"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("MOCKMAIL_SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("MOCKMAIL_IMAP_PASSWORD"); v != "" {
		c.IMAP.Password = v
	}

	if v := os.Getenv("MOCKMAIL_S3_BUCKET"); v != "" {
		c.S3.Bucket = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		if c.S3.Region == "" {
			c.S3.Region = v
		}
		if c.SES.Region == "" {
			c.SES.Region = v
		}
	}
}
