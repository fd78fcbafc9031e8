package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".skillhook"
	DefaultConfigFile = "config.yaml"
	EnvPrefix         = "SKILLHOOK"

	FormatText   = "text"
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"

	DefaultLogLevel     = "warn"
	DefaultLogFormat    = FormatText
	DefaultRegexTimeout = 100 * time.Millisecond

	// Variables set by the host when it runs the hook.
	EnvHome       = "HOME"
	EnvProjectDir = "CLAUDE_PROJECT_DIR"
	EnvPluginRoot = "CLAUDE_PLUGIN_ROOT"
)

// Keys shared by the config file, SKILLHOOK_* variables and bound flags.
const (
	KeyHome         = "home"
	KeyProjectDir   = "project_dir"
	KeyPluginRoot   = "plugin_root"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyAuditLog     = "audit_log"
	KeyRegexTimeout = "regex_timeout"
)

var (
	ErrInvalidConfig = errors.New("invalid config")

	// Accepted values for log_level and log_format.
	LogLevels  = []string{"error", "warn", "info", "debug"}
	LogFormats = []string{FormatText, FormatLogfmt, FormatJSON}
)

type Config struct {
	Home         string        `mapstructure:"home"`
	ProjectDir   string        `mapstructure:"project_dir"`
	PluginRoot   string        `mapstructure:"plugin_root"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`
	AuditLog     string        `mapstructure:"audit_log"`
	RegexTimeout time.Duration `mapstructure:"regex_timeout"`

	// ConfigFile is the file that was read, if any.
	ConfigFile string `mapstructure:"-"`
	// Level is LogLevel parsed.
	Level slog.Level `mapstructure:"-"`
}

// DefaultConfigPath returns ~/.skillhook/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile), nil
}

// Load resolves configuration with increasing precedence: defaults, config
// file, environment, flags bound to v. An explicit configFile must exist;
// the default one is optional.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyRegexTimeout, DefaultRegexTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// $HOME is applied after the config file, so it stays a fallback.
	if err := v.BindEnv(KeyHome, EnvPrefix+"_HOME"); err != nil {
		return nil, err
	}
	if err := v.BindEnv(KeyProjectDir, EnvPrefix+"_PROJECT_DIR", EnvProjectDir); err != nil {
		return nil, err
	}
	if err := v.BindEnv(KeyPluginRoot, EnvPrefix+"_PLUGIN_ROOT", EnvPluginRoot); err != nil {
		return nil, err
	}

	cfgPath, err := readConfigFile(v, configFile)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConfigFile = cfgPath

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Home == "" {
		cfg.Home = os.Getenv(EnvHome)
	}
	if cfg.Home == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			cfg.Home = homeDir
		}
	}

	if cfg.ProjectDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve project dir: %w", err)
		}
		cfg.ProjectDir = cwd
	}

	if cfg.RegexTimeout <= 0 {
		cfg.RegexTimeout = DefaultRegexTimeout
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	if !slices.Contains(LogLevels, c.LogLevel) {
		return fmt.Errorf("%w: log_level %q, want one of %v", ErrInvalidConfig, c.LogLevel, LogLevels)
	}
	if err := c.Level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}

	c.LogFormat = strings.ToLower(c.LogFormat)
	if !slices.Contains(LogFormats, c.LogFormat) {
		return fmt.Errorf("%w: log_format %q, want one of %v", ErrInvalidConfig, c.LogFormat, LogFormats)
	}

	return nil
}

func readConfigFile(v *viper.Viper, configFile string) (string, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config %s: %w", configFile, err)
		}
		return configFile, nil
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return "", nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read config %s: %w", path, err)
	}
	return path, nil
}
