package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"lumos/adapters/datareadiness/coercer"
	"lumos/domain/assay"
	"lumos/internal/errors"
	"lumos/internal/pipeline"
	"lumos/internal/plot"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Server   ServerConfig   `yaml:"server"`
	Output   OutputConfig   `yaml:"output"`
	LogLevel string         `yaml:"log_level" validate:"omitempty,oneof=ERROR WARN INFO DEBUG TRACE error warn info debug trace"`
}

// AnalysisConfig holds the defaults applied to a run when a request omits them
type AnalysisConfig struct {
	Delimiter         string  `yaml:"delimiter" validate:"required"`
	Variables         string  `yaml:"variables"`
	IncludeAreaRatios bool    `yaml:"include_area_ratios"`
	DecimalComma      bool    `yaml:"decimal_comma"`
	TrendFraction     float64 `yaml:"trend_fraction" validate:"gt=0,lte=1"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string `yaml:"port" validate:"required,numeric"`
	GinMode     string `yaml:"gin_mode" validate:"oneof=debug release test"`
	MaxUploadMB int    `yaml:"max_upload_mb" validate:"gt=0"`
}

// OutputConfig holds export settings
type OutputConfig struct {
	Dir              string `yaml:"dir" validate:"required"`
	ChartWidth       int    `yaml:"chart_width" validate:"gte=200"`
	ChartHeight      int    `yaml:"chart_height" validate:"gte=200"`
	ChartConcurrency int    `yaml:"chart_concurrency" validate:"gte=1"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Delimiter:     "-",
			TrendFraction: plot.DefaultTrendFraction,
		},
		Server: ServerConfig{
			Port:        "8080",
			GinMode:     "debug",
			MaxUploadMB: 32,
		},
		Output: OutputConfig{
			Dir:              "./lumos-output",
			ChartWidth:       1024,
			ChartHeight:      640,
			ChartConcurrency: 4,
		},
		LogLevel: "INFO",
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// LUMOS_CONFIG, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("LUMOS_CONFIG"); path != "" {
		if err := loadFromFile(path, config); err != nil {
			return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to load configuration file")
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// loadFromFile overlays the YAML file onto config; absent keys keep their value
func loadFromFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func applyEnv(config *Config) {
	config.Analysis.Delimiter = getEnvOrDefault("LUMOS_DELIMITER", config.Analysis.Delimiter)
	config.Analysis.Variables = getEnvOrDefault("LUMOS_VARIABLES", config.Analysis.Variables)
	config.Analysis.IncludeAreaRatios = getEnvBoolOrDefault("LUMOS_INCLUDE_AREA", config.Analysis.IncludeAreaRatios)
	config.Analysis.DecimalComma = getEnvBoolOrDefault("LUMOS_DECIMAL_COMMA", config.Analysis.DecimalComma)
	config.Analysis.TrendFraction = getEnvFloatOrDefault("LUMOS_TREND_FRACTION", config.Analysis.TrendFraction)

	config.Server.Port = getEnvOrDefault("PORT", config.Server.Port)
	config.Server.GinMode = getEnvOrDefault("GIN_MODE", config.Server.GinMode)
	config.Server.MaxUploadMB = getEnvIntOrDefault("MAX_UPLOAD_MB", config.Server.MaxUploadMB)

	config.Output.Dir = getEnvOrDefault("LUMOS_OUTPUT_DIR", config.Output.Dir)
	config.Output.ChartConcurrency = getEnvIntOrDefault("LUMOS_CHART_CONCURRENCY", config.Output.ChartConcurrency)

	config.LogLevel = getEnvOrDefault("LOG_LEVEL", config.LogLevel)
}

var validate = validator.New()

// Validate checks field constraints and that the analysis defaults parse
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.ConfigInvalid(describeValidation(err))
	}
	if _, err := assay.ParseDelimiter(c.Analysis.Delimiter); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if c.Analysis.Variables != "" {
		if _, err := c.Schema(); err != nil {
			return errors.ConfigInvalid(err.Error())
		}
	}
	return nil
}

func describeValidation(err error) string {
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	messages := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		messages[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
	}
	return strings.Join(messages, "; ")
}

// Schema parses the configured default variables
func (c *Config) Schema() (assay.VariableSchema, error) {
	delimiter, err := assay.ParseDelimiter(c.Analysis.Delimiter)
	if err != nil {
		return assay.VariableSchema{}, err
	}
	return assay.ParseVariableSchema(delimiter, c.Analysis.Variables)
}

// Coercion returns the numeric coercion rules
func (c *Config) Coercion() coercer.CoercionConfig {
	rules := coercer.DefaultCoercionConfig()
	rules.DecimalComma = c.Analysis.DecimalComma
	return rules
}

// PipelineOptions returns the pipeline options of this configuration
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		IncludeAreaRatios: c.Analysis.IncludeAreaRatios,
		Coercion:          c.Coercion(),
	}
}

// PlotOptions returns the figure options of this configuration
func (c *Config) PlotOptions() plot.Options {
	return plot.Options{
		TrendFraction: c.Analysis.TrendFraction,
		Numbers:       coercer.NewNumberCoercer(c.Coercion()),
	}
}

// MaxUploadBytes is the multipart memory limit of the server
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
