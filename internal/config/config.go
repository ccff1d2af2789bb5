package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable (CFEM_SERVER_PORT, ...)
const EnvPrefix = "CFEM"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Ingestion IngestionConfig `yaml:"ingestion" envconfig:"INGESTION"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// SecurityConfig contains CORS and rate limiting configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8501"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// IngestionConfig controls how uploaded tables are read
type IngestionConfig struct {
	Delimiter      string `yaml:"delimiter" envconfig:"DELIMITER" default:";"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`
}

// AnalyticsConfig holds the tunables of the analytics engine
type AnalyticsConfig struct {
	ParetoThreshold    float64 `yaml:"pareto_threshold" envconfig:"PARETO_THRESHOLD" default:"80"`
	DefaultCaptureRate float64 `yaml:"default_capture_rate" envconfig:"DEFAULT_CAPTURE_RATE" default:"30"`
	SimulationTopN     int     `yaml:"simulation_top_n" envconfig:"SIMULATION_TOP_N" default:"50"`
	OpportunitiesTopN  int     `yaml:"opportunities_top_n" envconfig:"OPPORTUNITIES_TOP_N" default:"20"`
	GroupChartTopN     int     `yaml:"group_chart_top_n" envconfig:"GROUP_CHART_TOP_N" default:"15"`
	PriorityGroupsTopN int     `yaml:"priority_groups_top_n" envconfig:"PRIORITY_GROUPS_TOP_N" default:"10"`
	MinTEC01Sample     int     `yaml:"min_tec01_sample" envconfig:"MIN_TEC01_SAMPLE" default:"5"`
}

// SourceConfig optionally points the server at a file to load at start-up
type SourceConfig struct {
	Path     string        `yaml:"path" envconfig:"FILE"`
	Watch    bool          `yaml:"watch" envconfig:"WATCH" default:"false"`
	Debounce time.Duration `yaml:"debounce" envconfig:"DEBOUNCE" default:"500ms"`
}

// TelemetryConfig toggles OpenTelemetry tracing and metrics
type TelemetryConfig struct {
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING" default:"false"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS" default:"true"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"stdout"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
}

// Load loads configuration from .env, environment variables and an optional YAML file
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path; an empty path skips the file
func LoadFrom(configFile string) (*Config, error) {
	// .env is optional; real environment variables keep precedence
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileConfig, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileConfig, cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs overlays the file config onto env values that were left at
// their defaults. An explicitly set environment variable always wins.
func mergeConfigs(fileConfig, envConfig Config) Config {
	defaults := Default()

	if !envSet("SERVER_PORT") && fileConfig.Server.Port != 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if !envSet("SERVER_READ_TIMEOUT") && fileConfig.Server.ReadTimeout != 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if !envSet("SERVER_WRITE_TIMEOUT") && fileConfig.Server.WriteTimeout != 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if !envSet("SERVER_REQUEST_TIMEOUT") && fileConfig.Server.RequestTimeout != 0 {
		envConfig.Server.RequestTimeout = fileConfig.Server.RequestTimeout
	}
	if !envSet("SECURITY_ALLOWED_ORIGINS") && len(fileConfig.Security.AllowedOrigins) > 0 {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if !envSet("LOGGING_LEVEL") && fileConfig.Logging.Level != "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if !envSet("LOGGING_OUTPUT") && fileConfig.Logging.Output != "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if !envSet("LOGGING_FILE_PATH") && fileConfig.Logging.FilePath != "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if !envSet("INGESTION_DELIMITER") && fileConfig.Ingestion.Delimiter != "" {
		envConfig.Ingestion.Delimiter = fileConfig.Ingestion.Delimiter
	}
	if !envSet("INGESTION_MAX_UPLOAD_BYTES") && fileConfig.Ingestion.MaxUploadBytes != 0 {
		envConfig.Ingestion.MaxUploadBytes = fileConfig.Ingestion.MaxUploadBytes
	}
	if !envSet("ANALYTICS_PARETO_THRESHOLD") && fileConfig.Analytics.ParetoThreshold != 0 {
		envConfig.Analytics.ParetoThreshold = fileConfig.Analytics.ParetoThreshold
	}
	if !envSet("ANALYTICS_DEFAULT_CAPTURE_RATE") && fileConfig.Analytics.DefaultCaptureRate != 0 {
		envConfig.Analytics.DefaultCaptureRate = fileConfig.Analytics.DefaultCaptureRate
	}
	if !envSet("ANALYTICS_SIMULATION_TOP_N") && fileConfig.Analytics.SimulationTopN != 0 {
		envConfig.Analytics.SimulationTopN = fileConfig.Analytics.SimulationTopN
	}
	if !envSet("ANALYTICS_OPPORTUNITIES_TOP_N") && fileConfig.Analytics.OpportunitiesTopN != 0 {
		envConfig.Analytics.OpportunitiesTopN = fileConfig.Analytics.OpportunitiesTopN
	}
	if !envSet("SOURCE_FILE") && fileConfig.Source.Path != "" {
		envConfig.Source.Path = fileConfig.Source.Path
	}
	if !envSet("SOURCE_WATCH") && fileConfig.Source.Watch != defaults.Source.Watch {
		envConfig.Source.Watch = fileConfig.Source.Watch
	}
	if !envSet("TELEMETRY_ENABLE_TRACING") && fileConfig.Telemetry.EnableTracing != defaults.Telemetry.EnableTracing {
		envConfig.Telemetry.EnableTracing = fileConfig.Telemetry.EnableTracing
	}
	if !envSet("TELEMETRY_ENABLE_METRICS") && fileConfig.Telemetry.EnableMetrics != defaults.Telemetry.EnableMetrics {
		envConfig.Telemetry.EnableMetrics = fileConfig.Telemetry.EnableMetrics
	}

	return envConfig
}

func envSet(suffix string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + suffix)
	return ok
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len([]rune(c.Ingestion.Delimiter)) != 1 {
		return fmt.Errorf("ingestion delimiter must be a single character, got %q", c.Ingestion.Delimiter)
	}

	if c.Ingestion.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	if c.Analytics.ParetoThreshold <= 0 || c.Analytics.ParetoThreshold > 100 {
		return fmt.Errorf("pareto threshold must be in (0, 100], got %v", c.Analytics.ParetoThreshold)
	}

	if c.Analytics.DefaultCaptureRate < 0 {
		return fmt.Errorf("default capture rate must not be negative")
	}

	if c.Analytics.SimulationTopN <= 0 || c.Analytics.OpportunitiesTopN <= 0 {
		return fmt.Errorf("top-N sizes must be positive")
	}

	// JSON is the only supported log format
	c.Logging.Format = "json"

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8501"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Ingestion: IngestionConfig{
			Delimiter:      DefaultDelimiter,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Analytics: AnalyticsConfig{
			ParetoThreshold:    DefaultParetoThreshold,
			DefaultCaptureRate: DefaultCaptureRate,
			SimulationTopN:     DefaultSimulationTopN,
			OpportunitiesTopN:  DefaultOpportunitiesTopN,
			GroupChartTopN:     DefaultGroupChartTopN,
			PriorityGroupsTopN: DefaultPriorityGroupsTopN,
			MinTEC01Sample:     DefaultMinTEC01Sample,
		},
		Source: SourceConfig{
			Debounce: 500 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			EnableTracing:  false,
			EnableMetrics:  true,
			TraceExporter:  "stdout",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
			Environment:    "development",
		},
	}
}

// DelimiterRune returns the configured delimiter as a rune
func (c IngestionConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ';'
}
