package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Search message policies applied when the AI filters match nothing
const (
	MessagePolicyKeepAI        = "keep_ai"
	MessagePolicyAlwaysGeneric = "always_generic"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Port        string `mapstructure:"PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Database configuration
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	DatabaseHost     string `mapstructure:"DB_HOST"`
	DatabasePort     string `mapstructure:"DB_PORT"`
	DatabaseUser     string `mapstructure:"DB_USER"`
	DatabasePassword string `mapstructure:"DB_PASSWORD"`
	DatabaseName     string `mapstructure:"DB_NAME"`
	DatabaseSSLMode  string `mapstructure:"DB_SSL_MODE"`

	// JWT configuration
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	JWTTTLMinutes int    `mapstructure:"JWT_TTL_MINUTES"`

	// CORS configuration
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	// AI translator configuration
	GeminiAPIURL string `mapstructure:"GEMINI_API_URL"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	AITimeoutMS  int    `mapstructure:"AI_TIMEOUT_MS"`

	// SearchMessagePolicy is either keep_ai or always_generic
	SearchMessagePolicy string `mapstructure:"SEARCH_MESSAGE_POLICY"`

	// Cart store configuration
	RedisURL     string `mapstructure:"REDIS_URL"`
	CartTTLHours int    `mapstructure:"CART_TTL_HOURS"`

	// Bootstrap data
	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	SeedFile      string `mapstructure:"SEED_FILE"`
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Build database URL if not provided
	if config.DatabaseURL == "" {
		config.DatabaseURL = buildDatabaseURL(&config)
	}

	// Validate required fields
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// BindFlags makes the named command-line flags override configuration keys.
// flagKeys maps a flag's long name to the key it sets, e.g. "data" to SEED_FILE.
// Call it before Load; a flag only wins when it was given on the command line.
func BindFlags(flags *pflag.FlagSet, flagKeys map[string]string) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("unknown flag --%s for %s", name, key)
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// Database defaults
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "marketplace")
	viper.SetDefault("DB_SSL_MODE", "disable")

	// JWT defaults
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_TTL_MINUTES", 60)

	// CORS defaults
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"})

	// AI defaults
	viper.SetDefault("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("AI_TIMEOUT_MS", 5000)
	viper.SetDefault("SEARCH_MESSAGE_POLICY", MessagePolicyKeepAI)

	// Cart defaults
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CART_TTL_HOURS", 24)

	// Bootstrap defaults
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("ADMIN_PASSWORD", "admin123")
	viper.SetDefault("SEED_FILE", "")
}

func buildDatabaseURL(config *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseName,
		config.DatabaseSSLMode,
	)
}

func validate(config *Config) error {
	if config.Environment == "production" {
		if config.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	if config.DatabaseName == "" {
		return fmt.Errorf("database name is required")
	}

	switch config.SearchMessagePolicy {
	case MessagePolicyKeepAI, MessagePolicyAlwaysGeneric:
	default:
		return fmt.Errorf("unknown SEARCH_MESSAGE_POLICY %q", config.SearchMessagePolicy)
	}

	if config.AITimeoutMS <= 0 {
		return fmt.Errorf("AI_TIMEOUT_MS must be positive")
	}

	return nil
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AITimeout is the deadline applied to a single translator call
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutMS) * time.Millisecond
}

// JWTTTL is the lifetime of issued access tokens
func (c *Config) JWTTTL() time.Duration {
	if c.JWTTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

// CartTTL is how long an untouched cart is kept
func (c *Config) CartTTL() time.Duration {
	if c.CartTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.CartTTLHours) * time.Hour
}
