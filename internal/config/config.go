package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "SITE"
	configFileEnv  = "SITE_CONFIG"
	configFileName = "site"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Auth    AuthConfig    `mapstructure:"auth"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Jobs    JobsConfig    `mapstructure:"jobs"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type StoreConfig struct {
	// Driver is one of file, sqlite, postgres.
	Driver      string `mapstructure:"driver"`
	Path        string `mapstructure:"path"`
	DSN         string `mapstructure:"dsn"`
	Compression string `mapstructure:"compression"`
}

// RedisConfig enables the content cache when Addr is set.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	TTL         time.Duration `mapstructure:"ttl"`
	Compression string        `mapstructure:"compression"`
}

// AuthConfig holds the shared admin secret. An empty password disables auth.
type AuthConfig struct {
	Password string        `mapstructure:"password"`
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type LLMConfig struct {
	Provider       string        `mapstructure:"provider"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Models         []string      `mapstructure:"models"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	MinLength      int           `mapstructure:"min_length"`
}

type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// JobsConfig holds cron schedules. An empty schedule disables the job.
type JobsConfig struct {
	CacheSync   string `mapstructure:"cache_sync"`
	SessionReap string `mapstructure:"session_reap"`
}

type SessionConfig struct {
	MaxIdle time.Duration `mapstructure:"max_idle"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "4001")

	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "site-data.json")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.compression", "none")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)
	v.SetDefault("redis.compression", "gzip")

	v.SetDefault("auth.password", "")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.models", []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"})
	v.SetDefault("llm.attempt_timeout", 10*time.Second)
	v.SetDefault("llm.min_length", 80)

	v.SetDefault("watch.enabled", false)
	v.SetDefault("watch.debounce", 300*time.Millisecond)

	v.SetDefault("jobs.cache_sync", "@every 5m")
	v.SetDefault("jobs.session_reap", "@every 1m")

	v.SetDefault("session.max_idle", 2*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads defaults, the optional site.yaml and SITE_* environment variables.
// A broken config file is logged and ignored.
func LoadConfig() *Config {
	cfg, err := Load(os.Getenv(configFileEnv))
	if err != nil {
		logrus.Errorf("error loading config: %v", err)
		cfg, _ = Load("")
	}
	return cfg
}

// Load reads the configuration, using path as the config file when set.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	cfg.LLM.Models = splitList(strings.Join(cfg.LLM.Models, ","))

	return cfg, nil
}

// ConfigureLogger applies the log section to the standard logrus logger.
func ConfigureLogger(cfg LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
