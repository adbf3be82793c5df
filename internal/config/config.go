package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	CORS       CORSConfig       `mapstructure:"cors" yaml:"cors"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Data       DataConfig       `mapstructure:"data" yaml:"data"`
	Pagination PaginationConfig `mapstructure:"pagination" yaml:"pagination"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host" validate:"required"`
	Port            int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// CORSConfig lists the browser origins allowed to call the API.
// The defaults only cover local frontend development servers.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins" validate:"dive,required"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age" validate:"min=0"`
}

// LogConfig selects log verbosity and encoding
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json console"`
}

// DataConfig selects where reports come from
type DataConfig struct {
	// FixturesPath points at a YAML/JSON report document. Empty serves the
	// built-in sample report.
	FixturesPath string `mapstructure:"fixtures_path" yaml:"fixtures_path"`
}

// PaginationConfig bounds the list endpoint
type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit" yaml:"default_limit" validate:"min=1"`
	MaxLimit     int `mapstructure:"max_limit" yaml:"max_limit" validate:"min=1,gtefield=DefaultLimit"`
}

// CacheConfig sizes the encoded-response cache
type CacheConfig struct {
	Size int `mapstructure:"size" yaml:"size" validate:"min=1"`
}

// Addr returns the host:port the server listens on
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads and parses configuration from a YAML file.
// If path is empty, searches for scanreports.yaml in the current directory,
// ./configs and ~/.config/scanreports/, falling back to defaults when none exists.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if path != "" {
		// Use explicit path
		v.SetConfigFile(path)
	} else {
		// Search for config in default locations
		v.SetConfigName("scanreports")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")

		homeDir, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "scanreports"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so partial config files are filled in
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("cors.allowed_origins", d.CORS.AllowedOrigins)
	v.SetDefault("cors.allow_credentials", d.CORS.AllowCredentials)
	v.SetDefault("cors.max_age", d.CORS.MaxAge)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("data.fixtures_path", d.Data.FixturesPath)

	v.SetDefault("pagination.default_limit", d.Pagination.DefaultLimit)
	v.SetDefault("pagination.max_limit", d.Pagination.MaxLimit)

	v.SetDefault("cache.size", d.Cache.Size)
}

var validate = validator.New()

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fieldError(fe))
		}
	}

	for _, origin := range c.CORS.AllowedOrigins {
		if origin == "*" && c.CORS.AllowCredentials {
			errs = append(errs, errors.New("cors.allowed_origins cannot contain \"*\" when allow_credentials is set"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// fieldError renders a validator failure using the config file key path
func fieldError(fe validator.FieldError) error {
	key := configKey(fe.StructNamespace())

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s cannot be empty", key)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "min", "gte":
		return fmt.Errorf("%s must be at least %s", key, fe.Param())
	case "max", "lte":
		return fmt.Errorf("%s must be at most %s", key, fe.Param())
	case "gt":
		return fmt.Errorf("%s must be positive", key)
	case "gtefield":
		return fmt.Errorf("%s must not be lower than %s", key, configKey("Config.Pagination."+fe.Param()))
	default:
		return fmt.Errorf("%s failed %q validation", key, fe.Tag())
	}
}

// configKey maps a struct namespace like Config.Server.ReadTimeout to server.read_timeout
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snakeCase(p)
	}
	return strings.Join(parts, ".")
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
