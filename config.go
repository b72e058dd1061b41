package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/alc6/metareg/metamodel"
)

const (
	defaultPostgresImage = "postgres:16-alpine"
	defaultNamespace     = "models"
	defaultDBName        = "default"
)

// Config holds settings shared by every command
type Config struct {
	PostgresImage string `mapstructure:"postgres_image"`
	Namespace     string `mapstructure:"namespace"`
	DBName        string `mapstructure:"db_name"`
	Format        string `mapstructure:"format"`
	LogLevel      string `mapstructure:"log_level"`
}

// LoadConfig reads .env, metareg.yaml and METAREG_* variables, in that order of precedence
// from lowest to highest.
func LoadConfig(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("postgres_image", defaultPostgresImage)
	v.SetDefault("namespace", defaultNamespace)
	v.SetDefault("db_name", defaultDBName)
	v.SetDefault("format", string(metamodel.FormatJSON))
	v.SetDefault("log_level", "info")

	v.SetConfigName("metareg")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("METAREG")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DBName == "" {
		return errors.New("db_name must not be empty")
	}
	if _, err := metamodel.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a slog level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func defaultConfig() *Config {
	return &Config{
		PostgresImage: defaultPostgresImage,
		Namespace:     defaultNamespace,
		DBName:        defaultDBName,
		Format:        string(metamodel.FormatJSON),
		LogLevel:      "info",
	}
}
