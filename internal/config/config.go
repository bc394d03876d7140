package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Input         string   `mapstructure:"input" yaml:"input"`
	OutputDir     string   `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`
	Delimiter     string   `mapstructure:"delimiter" yaml:"delimiter"`
	Sheet         string   `mapstructure:"sheet" yaml:"sheet"`
	DateLayout    string   `mapstructure:"date_layout" yaml:"date_layout"`
	MissingPolicy string   `mapstructure:"missing_policy" yaml:"missing_policy" validate:"oneof=fail drop"`
	Locations     []string `mapstructure:"locations" yaml:"locations" validate:"min=1,dive,required"`

	// Charts
	ChartWidth        int  `mapstructure:"chart_width" yaml:"chart_width" validate:"gte=320"`
	ChartHeight       int  `mapstructure:"chart_height" yaml:"chart_height" validate:"gte=240"`
	HistogramBins     int  `mapstructure:"histogram_bins" yaml:"histogram_bins" validate:"gte=0"`
	WordCloudMaxWords int  `mapstructure:"word_cloud_max_words" yaml:"word_cloud_max_words" validate:"gte=1"`
	TopWords          int  `mapstructure:"top_words" yaml:"top_words" validate:"gte=1"`
	XLSXExport        bool `mapstructure:"xlsx_export" yaml:"xlsx_export"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Dir returns ~/.empsent.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".empsent"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.empsent/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("EMPSENT")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input", "Dataset.csv")
	v.SetDefault("output_dir", "report")
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet", "")
	v.SetDefault("date_layout", "")
	v.SetDefault("missing_policy", "fail")
	v.SetDefault("locations", []string{"CityA", "CityB", "CityC"})
	v.SetDefault("chart_width", 1000)
	v.SetDefault("chart_height", 600)
	v.SetDefault("histogram_bins", 0)
	v.SetDefault("word_cloud_max_words", 200)
	v.SetDefault("top_words", 10)
	v.SetDefault("xlsx_export", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	return v
}

// Defaults returns the configuration from env and defaults only.
func Defaults() (*Global, error) {
	return decode(newViper())
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := newViper()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// The default file is optional; an explicit --config must exist and parse.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Global, error) {
	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
