package core

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the storefront web client.
//
// Configuration is resolved in three layers, lowest priority first:
//  1. Defaults (DefaultConfig)
//  2. Environment variables (STOREFRONT_*, plus API_URL / NEXT_PUBLIC_API_URL)
//  3. Functional options passed to NewConfig, including WithConfigFile
//
// Call Validate after the last layer has been applied.
type Config struct {
	Name    string `json:"name" yaml:"name" env:"STOREFRONT_NAME" default:"storefront"`
	Address string `json:"address" yaml:"address" env:"STOREFRONT_ADDRESS" default:""`
	Port    int    `json:"port" yaml:"port" env:"STOREFRONT_PORT" default:"3000"`

	API         APIConfig         `json:"api" yaml:"api"`
	HTTP        HTTPConfig        `json:"http" yaml:"http"`
	Session     SessionConfig     `json:"session" yaml:"session"`
	Payment     PaymentConfig     `json:"payment" yaml:"payment"`
	Logging     LoggingConfig     `json:"logging" yaml:"logging"`
	Telemetry   TelemetryConfig   `json:"telemetry" yaml:"telemetry"`
	Development DevelopmentConfig `json:"development" yaml:"development"`
}

// APIConfig points the client at the remote commerce REST API.
type APIConfig struct {
	// URL is the origin every request path is appended to.
	URL string `json:"url" yaml:"url" env:"STOREFRONT_API_URL,API_URL,NEXT_PUBLIC_API_URL" default:"http://localhost:8000"`
	// Timeout bounds a single request. Zero means no client-side timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" env:"STOREFRONT_API_TIMEOUT" default:"0"`
}

// HTTPConfig contains the browser-facing server settings
type HTTPConfig struct {
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" env:"STOREFRONT_HTTP_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" env:"STOREFRONT_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `json:"idle_timeout" yaml:"idle_timeout" env:"STOREFRONT_HTTP_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" env:"STOREFRONT_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	HealthCheckPath string        `json:"health_check_path" yaml:"health_check_path" env:"STOREFRONT_HEALTH_PATH" default:"/health"`
}

// SessionConfig selects and tunes the session store
type SessionConfig struct {
	Provider        string        `json:"provider" yaml:"provider" env:"STOREFRONT_SESSION_PROVIDER" default:"memory"` // "memory" or "redis"
	RedisURL        string        `json:"redis_url" yaml:"redis_url" env:"STOREFRONT_REDIS_URL,REDIS_URL"`
	TTL             time.Duration `json:"ttl" yaml:"ttl" env:"STOREFRONT_SESSION_TTL" default:"24h"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" env:"STOREFRONT_SESSION_CLEANUP_INTERVAL" default:"5m"`
	CookieName      string        `json:"cookie_name" yaml:"cookie_name" env:"STOREFRONT_SESSION_COOKIE" default:"storefront_session"`
	CookieSecure    bool          `json:"cookie_secure" yaml:"cookie_secure" env:"STOREFRONT_SESSION_COOKIE_SECURE" default:"false"`
}

// PaymentConfig carries the public half of the payment provider credentials.
// Only the publishable key is ever needed by the browser.
type PaymentConfig struct {
	PublishableKey string `json:"publishable_key" yaml:"publishable_key" env:"STOREFRONT_STRIPE_PUBLISHABLE_KEY,NEXT_PUBLIC_STRIPE_PUBLISHABLE_KEY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" env:"STOREFRONT_LOG_LEVEL" default:"info"`
	Format string `json:"format" yaml:"format" env:"STOREFRONT_LOG_FORMAT" default:"text"` // "text" or "json"
	Output string `json:"output" yaml:"output" env:"STOREFRONT_LOG_OUTPUT" default:"stdout"`
}

// TelemetryConfig contains OpenTelemetry settings
type TelemetryConfig struct {
	Enabled      bool    `json:"enabled" yaml:"enabled" env:"STOREFRONT_TELEMETRY_ENABLED" default:"false"`
	Endpoint     string  `json:"endpoint" yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string  `json:"service_name" yaml:"service_name" env:"OTEL_SERVICE_NAME"`
	Insecure     bool    `json:"insecure" yaml:"insecure" env:"STOREFRONT_TELEMETRY_INSECURE" default:"true"`
	SamplingRate float64 `json:"sampling_rate" yaml:"sampling_rate" env:"STOREFRONT_TELEMETRY_SAMPLING_RATE" default:"1.0"`
}

// DevelopmentConfig contains development mode settings
type DevelopmentConfig struct {
	Enabled       bool `json:"enabled" yaml:"enabled" env:"STOREFRONT_DEV_MODE" default:"false"`
	PrettyLogs    bool `json:"pretty_logs" yaml:"pretty_logs" env:"STOREFRONT_PRETTY_LOGS" default:"false"`
	TraceToStdout bool `json:"trace_to_stdout" yaml:"trace_to_stdout" env:"STOREFRONT_TRACE_STDOUT" default:"false"`
}

// Option is a functional option for configuring the storefront
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{
		Name:    "storefront",
		Address: "",
		Port:    3000,
		API: APIConfig{
			URL: "http://localhost:8000",
		},
		HTTP: HTTPConfig{
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			HealthCheckPath: "/health",
		},
		Session: SessionConfig{
			Provider:        "memory",
			TTL:             24 * time.Hour,
			CleanupInterval: 5 * time.Minute,
			CookieName:      "storefront_session",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Telemetry: TelemetryConfig{
			Insecure:     true,
			SamplingRate: 1.0,
		},
	}

	cfg.DetectEnvironment()
	return cfg
}

// DetectEnvironment adjusts defaults for the runtime environment.
// Inside Kubernetes the server binds all interfaces and logs JSON.
func (c *Config) DetectEnvironment() {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		c.Address = "0.0.0.0"
		c.Logging.Format = "json"
		c.Session.CookieSecure = true
		return
	}
	c.Address = "localhost"
}

// LoadDotEnv reads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return &OpError{
			Op:   "LoadDotEnv",
			Kind: "config",
			Err:  fmt.Errorf("%v: %w", err, ErrInvalidConfiguration),
		}
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables take precedence over defaults but are overridden by functional options.
//
// Returns an error if a variable holds a value that cannot be parsed.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("STOREFRONT_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("STOREFRONT_ADDRESS"); v != "" {
		c.Address = v
	}
	if v := os.Getenv("STOREFRONT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return envError("STOREFRONT_PORT", v, err)
		}
		c.Port = port
	}

	// API origin: the dedicated variable wins, then the names the browser build used
	if v := firstEnv("STOREFRONT_API_URL", "API_URL", "NEXT_PUBLIC_API_URL"); v != "" {
		c.API.URL = v
	}
	if err := durationEnv("STOREFRONT_API_TIMEOUT", &c.API.Timeout); err != nil {
		return err
	}

	// HTTP settings
	for name, dst := range map[string]*time.Duration{
		"STOREFRONT_HTTP_READ_TIMEOUT":     &c.HTTP.ReadTimeout,
		"STOREFRONT_HTTP_WRITE_TIMEOUT":    &c.HTTP.WriteTimeout,
		"STOREFRONT_HTTP_IDLE_TIMEOUT":     &c.HTTP.IdleTimeout,
		"STOREFRONT_HTTP_SHUTDOWN_TIMEOUT": &c.HTTP.ShutdownTimeout,
	} {
		if err := durationEnv(name, dst); err != nil {
			return err
		}
	}
	if v := os.Getenv("STOREFRONT_HEALTH_PATH"); v != "" {
		c.HTTP.HealthCheckPath = v
	}

	// Session settings
	if v := os.Getenv("STOREFRONT_SESSION_PROVIDER"); v != "" {
		c.Session.Provider = strings.ToLower(v)
	}
	if v := firstEnv("STOREFRONT_REDIS_URL", "REDIS_URL"); v != "" {
		c.Session.RedisURL = v
		// A Redis URL on its own is enough to opt into the Redis store
		if os.Getenv("STOREFRONT_SESSION_PROVIDER") == "" {
			c.Session.Provider = "redis"
		}
	}
	if err := durationEnv("STOREFRONT_SESSION_TTL", &c.Session.TTL); err != nil {
		return err
	}
	if err := durationEnv("STOREFRONT_SESSION_CLEANUP_INTERVAL", &c.Session.CleanupInterval); err != nil {
		return err
	}
	if v := os.Getenv("STOREFRONT_SESSION_COOKIE"); v != "" {
		c.Session.CookieName = v
	}
	if v := os.Getenv("STOREFRONT_SESSION_COOKIE_SECURE"); v != "" {
		c.Session.CookieSecure = parseBool(v)
	}

	// Payment
	if v := firstEnv("STOREFRONT_STRIPE_PUBLISHABLE_KEY", "NEXT_PUBLIC_STRIPE_PUBLISHABLE_KEY"); v != "" {
		c.Payment.PublishableKey = v
	}

	// Logging
	if v := os.Getenv("STOREFRONT_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("STOREFRONT_LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	if v := os.Getenv("STOREFRONT_LOG_OUTPUT"); v != "" {
		c.Logging.Output = v
	}

	// Telemetry
	if v := os.Getenv("STOREFRONT_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
		// Auto-enable telemetry if endpoint is provided
		if os.Getenv("STOREFRONT_TELEMETRY_ENABLED") == "" {
			c.Telemetry.Enabled = true
		}
	}
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		c.Telemetry.ServiceName = v
	}
	if v := os.Getenv("STOREFRONT_TELEMETRY_INSECURE"); v != "" {
		c.Telemetry.Insecure = parseBool(v)
	}
	if v := os.Getenv("STOREFRONT_TELEMETRY_SAMPLING_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("STOREFRONT_TELEMETRY_SAMPLING_RATE", v, err)
		}
		c.Telemetry.SamplingRate = rate
	}

	// Development
	if v := os.Getenv("STOREFRONT_DEV_MODE"); v != "" {
		c.Development.Enabled = parseBool(v)
		if c.Development.Enabled {
			c.Development.PrettyLogs = true
			c.Logging.Format = "text"
		}
	}
	if v := os.Getenv("STOREFRONT_PRETTY_LOGS"); v != "" {
		c.Development.PrettyLogs = parseBool(v)
	}
	if v := os.Getenv("STOREFRONT_TRACE_STDOUT"); v != "" {
		c.Development.TraceToStdout = parseBool(v)
	}

	return nil
}

// LoadFromFile merges a JSON or YAML configuration file into the config.
// Only fields present in the file are overwritten.
func (c *Config) LoadFromFile(path string) error {
	cleanPath := filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config file extension %s: %w", ext, ErrInvalidConfiguration)
	}

	data, err := os.ReadFile(cleanPath) // nosec G304 -- operator supplied path
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %v: %w", err, ErrInvalidConfiguration)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %v: %w", err, ErrInvalidConfiguration)
		}
	}

	return nil
}

// Validate checks the final configuration
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &OpError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: fmt.Sprintf("invalid port: %d", c.Port),
			Err:     ErrInvalidConfiguration,
		}
	}

	if c.API.URL == "" {
		return &OpError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: "API URL is required",
			Err:     ErrMissingConfiguration,
		}
	}
	if u, err := url.Parse(c.API.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return &OpError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: fmt.Sprintf("invalid API URL: %q", c.API.URL),
			Err:     ErrInvalidConfiguration,
		}
	}
	if c.API.Timeout < 0 {
		return &OpError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: "API timeout cannot be negative",
			Err:     ErrInvalidConfiguration,
		}
	}

	switch c.Session.Provider {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return &OpError{
				Op:      "Config.Validate",
				Kind:    "config",
				Message: "redis URL is required for the Redis session provider",
				Err:     ErrMissingConfiguration,
			}
		}
	default:
		return &OpError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: fmt.Sprintf("unknown session provider: %q", c.Session.Provider),
			Err:     ErrInvalidConfiguration,
		}
	}
	if c.Session.TTL <= 0 {
		return &OpError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: "session TTL must be positive",
			Err:     ErrInvalidConfiguration,
		}
	}
	if c.Session.CookieName == "" {
		return &OpError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: "session cookie name is required",
			Err:     ErrMissingConfiguration,
		}
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return &OpError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: fmt.Sprintf("unknown log format: %q", c.Logging.Format),
			Err:     ErrInvalidConfiguration,
		}
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" && !c.Development.TraceToStdout {
		return &OpError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: "telemetry endpoint is required when telemetry is enabled",
			Err:     ErrMissingConfiguration,
		}
	}
	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		return &OpError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: fmt.Sprintf("sampling rate must be within [0, 1]: %v", c.Telemetry.SamplingRate),
			Err:     ErrInvalidConfiguration,
		}
	}

	return nil
}

// ListenAddress returns host:port for the HTTP server
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

// Helper functions

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func durationEnv(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return envError(name, v, err)
	}
	*dst = d
	return nil
}

func envError(name, value string, err error) error {
	return &OpError{
		Op:      "Config.LoadFromEnv",
		Kind:    "config",
		Message: fmt.Sprintf("invalid value %q for %s: %v", value, name, err),
		Err:     ErrInvalidConfiguration,
	}
}

// parseBool accepts the usual truthy spellings
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// Functional options

// WithName sets the service name
func WithName(name string) Option {
	return func(c *Config) error {
		c.Name = name
		return nil
	}
}

// WithPort sets the HTTP listen port
func WithPort(port int) Option {
	return func(c *Config) error {
		c.Port = port
		return nil
	}
}

// WithAddress sets the listen address
func WithAddress(addr string) Option {
	return func(c *Config) error {
		c.Address = addr
		return nil
	}
}

// WithAPIURL points the client at a different API origin
func WithAPIURL(origin string) Option {
	return func(c *Config) error {
		c.API.URL = strings.TrimRight(origin, "/")
		return nil
	}
}

// WithAPITimeout sets the per-request timeout for API calls
func WithAPITimeout(d time.Duration) Option {
	return func(c *Config) error {
		c.API.Timeout = d
		return nil
	}
}

// WithRedisSessions stores sessions in Redis at the given URL
func WithRedisSessions(redisURL string) Option {
	return func(c *Config) error {
		c.Session.Provider = "redis"
		c.Session.RedisURL = redisURL
		return nil
	}
}

// WithSessionTTL sets how long an idle session lives
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Config) error {
		c.Session.TTL = ttl
		return nil
	}
}

// WithPublishableKey sets the payment provider's browser key
func WithPublishableKey(key string) Option {
	return func(c *Config) error {
		c.Payment.PublishableKey = key
		return nil
	}
}

// WithLogLevel sets the minimum level that is written
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.Logging.Level = strings.ToLower(level)
		return nil
	}
}

// WithLogFormat selects "text" or "json" output
func WithLogFormat(format string) Option {
	return func(c *Config) error {
		c.Logging.Format = strings.ToLower(format)
		return nil
	}
}

// WithOTELEndpoint enables tracing to the given OTLP gRPC collector
func WithOTELEndpoint(endpoint string) Option {
	return func(c *Config) error {
		c.Telemetry.Enabled = true
		c.Telemetry.Endpoint = endpoint
		return nil
	}
}

// WithConfigFile merges a JSON or YAML file
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		return c.LoadFromFile(path)
	}
}

// WithDevelopmentMode enables text logs at debug level and stdout traces.
// Never enable in production.
func WithDevelopmentMode(enabled bool) Option {
	return func(c *Config) error {
		c.Development.Enabled = enabled
		if enabled {
			c.Development.PrettyLogs = true
			c.Development.TraceToStdout = true
			c.Logging.Format = "text"
			c.Logging.Level = "debug"
		}
		return nil
	}
}

// NewConfig creates a configuration from defaults, environment and options,
// then validates it.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	// Functional options override env vars
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
