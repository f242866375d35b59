package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	JWT     JWTConfig
	Term    TermConfig `mapstructure:"schoolTerm"`
	Log     LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	Debug          bool
	CookieSecure   bool
	CookieDomain   string
}

// MongoDBConfig holds MongoDB-specific configuration.
// Database is the fixed "original" database; term databases are named TermPrefix + "<sem><year>".
type MongoDBConfig struct {
	URI        string
	Database   string
	TermPrefix string
	Timeout    time.Duration
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TermConfig is the school term used when a request does not name one.
type TermConfig struct {
	Semester int
	Year     int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// LoadConfig loads configuration from <path>/.env, an optional config.yaml and environment variables
func LoadConfig(path string) (*Config, error) {
	envFile := filepath.Join(path, GetEnv("APP_ENV_FILE", ".env"))
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(filepath.Join(path, "config"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// A "term" section would be shadowed by the shell's TERM variable
	_ = v.BindEnv("schoolTerm.semester", "TERM_SEMESTER")
	_ = v.BindEnv("schoolTerm.year", "TERM_YEAR")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("JWT_ACCESSSECRET and JWT_REFRESHSECRET must be set")
	}
	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be set")
	}
	if c.Term.Semester < 1 || c.Term.Semester > 3 {
		return errors.New("TERM_SEMESTER must be between 1 and 3")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	semester, year := defaultTerm(time.Now())

	v.SetDefault("server.port", "4000")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("server.debug", false)
	v.SetDefault("server.cookieSecure", false)
	v.SetDefault("server.cookieDomain", "")
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "orgfees")
	v.SetDefault("mongodb.termPrefix", "orgfees_")
	v.SetDefault("mongodb.timeout", 10*time.Second)
	v.SetDefault("jwt.accessSecret", "")
	v.SetDefault("jwt.refreshSecret", "")
	v.SetDefault("jwt.accessTTL", 15*time.Minute)
	v.SetDefault("jwt.refreshTTL", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "orgfees")
	v.SetDefault("schoolTerm.semester", semester)
	v.SetDefault("schoolTerm.year", year)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
}

// defaultTerm maps a date onto the school term (1: Aug-Dec, 2: Jan-May, 3: summer).
// The year is the one the school year started in.
func defaultTerm(now time.Time) (semester, year int) {
	switch m := now.Month(); {
	case m >= time.August:
		return 1, now.Year()
	case m <= time.May:
		return 2, now.Year() - 1
	default:
		return 3, now.Year() - 1
	}
}

// GetEnv retrieves an environment variable or returns a default value if not found
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
