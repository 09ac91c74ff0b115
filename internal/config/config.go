package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".qrchat"
	envPrefix  = "QC"

	KeyBaseURL        = "server.base_url"
	KeyRequestTimeout = "server.request_timeout"
	KeyPollInterval   = "poll.interval"
	KeyTickTimeout    = "poll.tick_timeout"
	KeySessionPath    = "session.path"
	KeyLogLevel       = "log.level"
	KeyLogPretty      = "log.pretty"

	sessionFile = "session.toml"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Poll    PollConfig    `mapstructure:"poll"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type PollConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	TickTimeout time.Duration `mapstructure:"tick_timeout"`
}

type SessionConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load resolves configuration from defaults, an optional config file and
// QC_* environment variables. An explicit configFile must exist; the default
// ~/.qrchat/config.toml is optional.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	SetDefaults(v, homeDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(filepath.Join(homeDir, configDir))
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func SetDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault(KeyBaseURL, "http://localhost:3000")
	v.SetDefault(KeyRequestTimeout, 5*time.Second)
	v.SetDefault(KeyPollInterval, time.Second)
	v.SetDefault(KeyTickTimeout, 10*time.Second)
	v.SetDefault(KeySessionPath, filepath.Join(homeDir, configDir, sessionFile))
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogPretty, false)
}

func (c Config) Validate() error {
	parsed, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("parse %s: %w", KeyBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", KeyBaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s host is required", KeyBaseURL)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyRequestTimeout)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("%s must be positive", KeyPollInterval)
	}
	if c.Poll.TickTimeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyTickTimeout)
	}
	if strings.TrimSpace(c.Session.Path) == "" {
		return fmt.Errorf("%s is empty", KeySessionPath)
	}

	return nil
}
