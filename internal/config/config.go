// Package config provides functionality for managing configuration options
// for the application using a config file, environment variables and
// command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the API listening address (ip:port).
	Addr string `yaml:"addr" json:"addr" env:"ACCOUNTS_ADDR" env-default:"127.0.0.1:8080"`

	// Backend selects the storage slot implementation.
	Backend string `yaml:"backend" json:"backend" env:"ACCOUNTS_BACKEND" env-default:"file"`

	// Path is the slot directory (file) or database file (bolt).
	Path string `yaml:"path" json:"path" env:"ACCOUNTS_PATH" env-default:"./data"`

	// DatabaseDSN holds the PostgreSQL connection string for the postgres backend.
	DatabaseDSN string `yaml:"database_dsn" json:"database_dsn" env:"DATABASE_DSN"`

	// DatabaseTimeout bounds each slot query on the postgres backend.
	DatabaseTimeout time.Duration `yaml:"database_timeout" json:"database_timeout" env:"ACCOUNTS_DB_TIMEOUT" env-default:"5s"`

	// Key is the slot key the account list is stored under.
	Key string `yaml:"key" json:"key" env:"ACCOUNTS_KEY" env-default:"accounts"`

	// Format is the serialization format: json or cbor.
	Format string `yaml:"format" json:"format" env:"ACCOUNTS_FORMAT" env-default:"json"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// Config is the path to the config file.
	Config string `yaml:"-" json:"-"`
}

// Parse loads configuration for the program name from, in increasing
// priority: defaults, the config file, environment variables and args.
// The config file is taken from --config/-c or the CONFIG environment
// variable; a missing default file is ignored.
func Parse(name string, args []string) (*Options, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	var flags Options
	fs.StringVarP(&flags.Config, "config", "c", "config.yaml", "path to config file")
	fs.StringVarP(&flags.Addr, "addr", "a", "", "API listen address (ip:port)")
	fs.StringVarP(&flags.Backend, "backend", "b", "", "storage backend: file, bolt, postgres, memory")
	fs.StringVarP(&flags.Path, "path", "p", "", "slot directory or bolt database file")
	fs.StringVarP(&flags.DatabaseDSN, "dsn", "d", "", "postgres connection string")
	fs.DurationVar(&flags.DatabaseTimeout, "db-timeout", 0, "postgres query timeout")
	fs.StringVarP(&flags.Key, "key", "k", "", "slot key")
	fs.StringVarP(&flags.Format, "format", "f", "", "serialization format: json, cbor")
	fs.StringVarP(&flags.LogLevel, "log-level", "l", "", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	path := flags.Config
	explicit := fs.Changed("config")
	if env := os.Getenv("CONFIG"); env != "" && !explicit {
		path = env
		explicit = true
	}

	var opts Options
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &opts); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&opts); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	opts.Config = path

	override := func(flag string, dst *string, v string) {
		if fs.Changed(flag) {
			*dst = v
		}
	}
	override("addr", &opts.Addr, flags.Addr)
	override("backend", &opts.Backend, flags.Backend)
	override("path", &opts.Path, flags.Path)
	override("dsn", &opts.DatabaseDSN, flags.DatabaseDSN)
	override("key", &opts.Key, flags.Key)
	override("format", &opts.Format, flags.Format)
	override("log-level", &opts.LogLevel, flags.LogLevel)
	if fs.Changed("db-timeout") {
		opts.DatabaseTimeout = flags.DatabaseTimeout
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &opts, nil
}

// Validate reports every invalid option at once.
func (o *Options) Validate() error {
	var err error
	switch o.Backend {
	case BackendFile, BackendBolt, BackendMemory:
		if o.Backend != BackendMemory && o.Path == "" {
			err = multierr.Append(err, fmt.Errorf("path is required for the %s backend", o.Backend))
		}
	case BackendPostgres:
		if o.DatabaseDSN == "" {
			err = multierr.Append(err, fmt.Errorf("database_dsn is required for the postgres backend"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unknown backend %q", o.Backend))
	}
	if o.Key == "" {
		err = multierr.Append(err, fmt.Errorf("key must not be empty"))
	}
	switch o.Format {
	case "json", "cbor":
	default:
		err = multierr.Append(err, fmt.Errorf("unknown format %q", o.Format))
	}
	if o.DatabaseTimeout < 0 {
		err = multierr.Append(err, fmt.Errorf("database_timeout must not be negative"))
	}
	return err
}
