package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"indexo/pkg/loader"
)

// Config holds all configuration for the application
type Config struct {
	SecretKey    string
	Store        string
	Database     string
	BucketName   string
	Port         string
	FavoritesDir string
	ViewsDir     string
	PublicDir    string
	DefaultIndex string
	OnMissingID  loader.MissingIDPolicy
	CacheTTL     time.Duration
	LogLevel     string
	LogFile      string

	// Quiet turns console logging off, e.g. while a full screen program owns
	// the terminal. LogFile still receives everything.
	Quiet bool
}

const (
	StoreSQLite = "sqlite"
	StoreGCS    = "gcs"
)

// ErrBucketNameNotSet is returned when the gcs store is selected without a bucket
var ErrBucketNameNotSet = errors.New("BUCKET_NAME not set for gcs store")

// ErrUnknownStore is returned for a store kind other than sqlite or gcs
var ErrUnknownStore = errors.New("unknown store")

// ErrInvalidMissingPolicy is returned for an on_missing_id other than error or loadDefault
var ErrInvalidMissingPolicy = errors.New("invalid on_missing_id policy")

// ErrInvalidLogLevel is returned for a log_level other than none, normal or debug
var ErrInvalidLogLevel = errors.New("invalid log_level")

func defaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("store", StoreSQLite)
	v.SetDefault("database", "indexo.db")
	v.SetDefault("favorites_dir", "favorites")
	v.SetDefault("views_dir", "views")
	v.SetDefault("public_dir", "public")
	v.SetDefault("on_missing_id", string(loader.MissingIDError))
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("log_level", "normal")
}

// Load reads .indexo.yaml, INDEXO_* environment variables and any flags that were
// set on the command line, in increasing priority.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetConfigName(".indexo") // .yaml is implicit
	v.SetEnvPrefix("INDEXO")
	v.AutomaticEnv()

	// these keys keep their unprefixed environment names
	for key, env := range map[string]string{
		"secret_key": "SECRET_KEY",
		"bucket":     "BUCKET_NAME",
		"port":       "PORT",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if override := os.Getenv("INDEXO_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	return fromViper(v)
}

// bindFlags binds only flags that exist, so commands may define a subset
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range map[string]string{
		"secret_key":    "secret-key",
		"bucket":        "bucket",
		"port":          "port",
		"store":         "store",
		"database":      "database",
		"log_level":     "log-level",
		"on_missing_id": "on-missing-id",
	} {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		SecretKey:    v.GetString("secret_key"),
		Store:        strings.ToLower(v.GetString("store")),
		Database:     v.GetString("database"),
		BucketName:   v.GetString("bucket"),
		Port:         v.GetString("port"),
		FavoritesDir: v.GetString("favorites_dir"),
		ViewsDir:     v.GetString("views_dir"),
		PublicDir:    v.GetString("public_dir"),
		DefaultIndex: v.GetString("default_index"),
		CacheTTL:     v.GetDuration("cache_ttl"),
		LogLevel:     strings.ToLower(v.GetString("log_level")),
		LogFile:      v.GetString("log_file"),
	}

	switch cfg.Store {
	case StoreSQLite:
	case StoreGCS:
		if cfg.BucketName == "" {
			return nil, ErrBucketNameNotSet
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store)
	}

	policy, ok := loader.ParseMissingIDPolicy(v.GetString("on_missing_id"))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMissingPolicy, v.GetString("on_missing_id"))
	}
	cfg.OnMissingID = policy

	switch cfg.LogLevel {
	case "none", "normal", "debug":
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel)
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	return cfg, nil
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// UploadsProtected reports whether uploads need the secret key
func (c *Config) UploadsProtected() bool {
	return c.SecretKey != ""
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Projects URL: http://localhost:%s/projects\n", c.Port)
	fmt.Printf("Plugin socket: ws://localhost:%s/api/ws\n", c.Port)
}
