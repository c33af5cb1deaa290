package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends selectable with storage.backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendS3     = "s3"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	SQLite    SQLiteConfig    `mapstructure:"sqlite"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Timer     TimerConfig     `mapstructure:"timer"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig selects the key-value backend sessions are kept in.
type StorageConfig struct {
	Backend     string `mapstructure:"backend"`
	QuotaBytes  int64  `mapstructure:"quota_bytes"` // 0 disables the limit
	SessionsKey string `mapstructure:"sessions_key"`
	ThemeKey    string `mapstructure:"theme_key"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type DatabaseConfig struct {
	URI        string `mapstructure:"uri"`
	Name       string `mapstructure:"name"`
	Collection string `mapstructure:"collection"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	Prefix          string `mapstructure:"prefix"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// AuthConfig protects the API with a single passphrase. An empty hash leaves
// the API open.
type AuthConfig struct {
	PassphraseHash string `mapstructure:"passphrase_hash"` // bcrypt
}

type RecommendConfig struct {
	MaxLevel int `mapstructure:"max_level"` // 0 = no upper bound
}

// TimerConfig sets the phase lengths of the hang timer.
type TimerConfig struct {
	Prep time.Duration `mapstructure:"prep"`
	Hang time.Duration `mapstructure:"hang"`
	Rest time.Duration `mapstructure:"rest"`
	Tick time.Duration `mapstructure:"tick"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Nested keys map to env vars, e.g. storage.backend -> STORAGE_BACKEND
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// Defaults and env vars are enough to run.
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if err = config.Validate(); err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.quota_bytes", 5*1024*1024)
	v.SetDefault("storage.sessions_key", "sessions-store")
	v.SetDefault("storage.theme_key", "theme-store")

	v.SetDefault("sqlite.path", "data/climb-tracker.db")

	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "climb_tracker")
	v.SetDefault("database.collection", "kv")

	// Keys need a default for AutomaticEnv to reach them in Unmarshal.
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.prefix", "")
	v.SetDefault("s3.use_ssl", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("auth.passphrase_hash", "")

	v.SetDefault("recommend.max_level", 0)

	v.SetDefault("timer.prep", "5s")
	v.SetDefault("timer.hang", "7s")
	v.SetDefault("timer.rest", "180s")
	v.SetDefault("timer.tick", "100ms")
}

// Validate checks settings that would otherwise fail later at startup.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite, BackendMongo, BackendS3:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.QuotaBytes < 0 {
		return errors.New("storage.quota_bytes must not be negative")
	}
	if c.Recommend.MaxLevel < 0 {
		return errors.New("recommend.max_level must not be negative")
	}
	if c.Auth.PassphraseHash != "" && c.JWT.Secret == "" {
		return errors.New("jwt.secret is required when auth.passphrase_hash is set")
	}
	if c.Timer.Tick <= 0 {
		return errors.New("timer.tick must be positive")
	}
	return nil
}
