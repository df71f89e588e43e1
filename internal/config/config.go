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

const (
	EnvPrefix  = "MANTELLA"
	configName = ".mantella"
	stateDir   = ".mantella"
)

var validate = validator.New()

// Config holds all runtime configuration for mantella.
// Values are populated from .mantella.yaml, MANTELLA_* env vars, and CLI flags.
type Config struct {
	Server          string        `mapstructure:"server" validate:"omitempty,url"`
	Username        string        `mapstructure:"username"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserLimit       int           `mapstructure:"user_limit" validate:"min=1,max=5000"`
	CredentialsPath string        `mapstructure:"credentials_path" validate:"required"`
	LogPath         string        `mapstructure:"log_path" validate:"required"`
	Verbose         bool          `mapstructure:"verbose"`
}

// Setup points viper at cfgFile, or at .mantella.yaml in the working or home
// directory when cfgFile is empty, and enables MANTELLA_* overrides. A missing
// default config file is not an error.
func Setup(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	dir := stateDir
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, stateDir)
	}

	viper.SetDefault("server", "")
	viper.SetDefault("username", "")
	viper.SetDefault("timeout", 15*time.Second)
	viper.SetDefault("user_limit", 500)
	viper.SetDefault("credentials_path", filepath.Join(dir, "credentials.json"))
	viper.SetDefault("log_path", filepath.Join(dir, "mantella.log"))
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Server = strings.TrimSpace(cfg.Server)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatFieldError(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a URL", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
