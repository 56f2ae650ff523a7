package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"gopkg.in/yaml.v3"

	"github.com/teamspace/teamspace-server/pkg/crypto"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Tenancy  TenancyConfig  `yaml:"tenancy"`
	JWT      JWTConfig      `yaml:"jwt"`
	Mail     MailConfig     `yaml:"mail"`
	NATS     NATSConfig     `yaml:"nats"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// APIConfig represents API configuration
type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// TenancyConfig represents multi-tenant routing configuration
type TenancyConfig struct {
	// BaseDomain is the suffix under which tenant subdomains are
	// registered, e.g. "app.example.com".
	BaseDomain string `yaml:"base_domain"`
	// PublicSchema holds tenant and domain records shared by all tenants.
	PublicSchema string `yaml:"public_schema"`
}

// JWTConfig represents JWT configuration
type JWTConfig struct {
	Secret          string        `yaml:"secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
}

// MailConfig represents SMTP transport configuration
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// NATSConfig represents NATS configuration
type NATSConfig struct {
	URL               string        `yaml:"url"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	MaxReconnects     int           `yaml:"max_reconnects"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from file
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Database.DSN = dsn
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		c.JWT.Secret = jwtSecret
	}

	if host := os.Getenv("SMTP_HOST"); host != "" {
		c.Mail.Host = host
	}

	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Mail.Port = p
		}
	}

	if user := os.Getenv("SMTP_USERNAME"); user != "" {
		c.Mail.Username = user
	}

	if pass := os.Getenv("SMTP_PASSWORD"); pass != "" {
		c.Mail.Password = pass
	}

	if from := os.Getenv("MAIL_FROM"); from != "" {
		c.Mail.From = from
	}

	if baseDomain := os.Getenv("BASE_DOMAIN"); baseDomain != "" {
		c.Tenancy.BaseDomain = baseDomain
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		c.NATS.URL = natsURL
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Log.Level = logLevel
	}
}

// setDefaults fills values the file and environment left empty
func (c *Config) setDefaults() {
	if c.Tenancy.PublicSchema == "" {
		c.Tenancy.PublicSchema = "public"
	}
	if c.Tenancy.BaseDomain == "" {
		c.Tenancy.BaseDomain = "localhost"
	}
	if c.JWT.AccessTokenTTL == 0 {
		c.JWT.AccessTokenTTL = 15 * time.Minute
	}
	if c.JWT.RefreshTokenTTL == 0 {
		c.JWT.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.JWT.Secret == "" {
		secret, err := crypto.GenerateRandomString(32)
		if err == nil {
			c.JWT.Secret = secret
			log.Warn().Msg("JWT secret not configured, generated an ephemeral one; tokens will not survive a restart")
		}
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 25
	}
	if c.Mail.From == "" {
		c.Mail.From = "no-reply@" + c.Tenancy.BaseDomain
	}
}
