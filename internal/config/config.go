package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Store drivers understood by the store section.
// DriverMemory keeps nothing between runs; every langdict command starts from
// an empty catalog with it.
const (
	DriverMemory  = "memory"
	DriverMySQL   = "mysql"
	DriverSQLite3 = "sqlite3"
	DriverRedis   = "redis"
	DriverYAML    = "yaml"
)

// Bundle sources understood by the bundles section.
const (
	BundleSourceEmbedded  = "embedded"
	BundleSourceDirectory = "directory"
	BundleSourceHTTP      = "http"
)

type Config struct {
	Languages []string       `mapstructure:"languages" validate:"min=1,dive,bcp47_language_tag"`
	Bundles   BundlesConfig  `mapstructure:"bundles"`
	Store     StoreConfig    `mapstructure:"store"`
	Database  DatabaseConfig `mapstructure:"database"`
	SQLite    SQLiteConfig   `mapstructure:"sqlite"`
	Redis     RedisConfig    `mapstructure:"redis"`
	YAML      YAMLConfig     `mapstructure:"yaml"`
	Cache     CacheConfig    `mapstructure:"cache"`
}

type BundlesConfig struct {
	Source         string   `mapstructure:"source" validate:"oneof=embedded directory http"`
	Names          []string `mapstructure:"names" validate:"dive,required,bundlename"`
	Directory      string   `mapstructure:"directory" validate:"required_if=Source directory,omitempty,dir"`
	BaseURL        string   `mapstructure:"base_url" validate:"required_if=Source http,omitempty,url"`
	RetryAttempts  uint     `mapstructure:"retry_attempts"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" validate:"gte=0"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory mysql sqlite3 redis yaml"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
	ConnectAttempts uint              `mapstructure:"connect_attempts"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL       string `mapstructure:"url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type YAMLConfig struct {
	Directory string `mapstructure:"directory"`
}

type CacheConfig struct {
	Prewarm bool `mapstructure:"prewarm"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/langdict")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("languages", []string{"en", "da"})
	v.SetDefault("bundles.source", BundleSourceEmbedded)
	v.SetDefault("bundles.names", []string{"web", "message", "pdf", "mail", "template"})
	v.SetDefault("bundles.retry_attempts", 2)
	v.SetDefault("bundles.timeout_seconds", 10)
	v.SetDefault("store.driver", DriverYAML)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "langdict")
	v.SetDefault("database.username", "user")
	v.SetDefault("database.connect_attempts", 3)
	v.SetDefault("sqlite.path", filepath.Join("data", "langdict.db"))
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.key_prefix", "langdict:")
	v.SetDefault("yaml.directory", filepath.Join("data", "dictionaries"))
	v.SetDefault("cache.prewarm", true)

	// Secrets come from the environment only
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("redis.url", "REDIS_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind REDIS_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
