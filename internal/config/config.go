// Package config provides application configuration management using Viper.
// It loads configuration from an optional YAML file and environment variables,
// with validation split per section and stricter rules in production.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "dev-only-jwt-secret-change-me-in-production"

// Config holds all application configuration / Contient toute la configuration de l'application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Environment string            `mapstructure:"environment"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Backup      BackupConfig      `mapstructure:"backup"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Security    SecurityConfig    `mapstructure:"security"`
	Cors        CorsConfig        `mapstructure:"cors"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Production  ProductionConfig  `mapstructure:"production"`
	Jobs        JobsConfig        `mapstructure:"jobs"`
	Bootstrap   BootstrapConfig   `mapstructure:"bootstrap"`
}

// ServerConfig holds server configuration / Configuration serveur
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	FrontendURL    string        `mapstructure:"frontend_url"`
}

// DatabaseConfig holds database-specific configuration / Configuration de la base de données
type DatabaseConfig struct {
	Type         string `mapstructure:"type"`           // "mysql" or "sqlite"
	DSN          string `mapstructure:"dsn"`            // MySQL DSN needs parseTime=true&loc=UTC&multiStatements=true
	MaxOpenConns int    `mapstructure:"max_open_conns"` // default: 25
	MaxIdleConns int    `mapstructure:"max_idle_conns"` // default: 5
}

// BackupConfig holds SQLite backup configuration / Configuration des sauvegardes SQLite
type BackupConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Schedule      string `mapstructure:"schedule"` // cron expression / expression cron
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// AuthConfig holds JWT and cookie configuration / Configuration JWT et cookies
type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	CookieDomain         string        `mapstructure:"cookie_domain"`
	CookiePath           string        `mapstructure:"cookie_path"`
	CookieSecure         bool          `mapstructure:"cookie_secure"`
}

// SecurityConfig holds security settings / Paramètres de sécurité
type SecurityConfig struct {
	MaxFailedAttempts int           `mapstructure:"max_failed_attempts"`
	LockoutDuration   time.Duration `mapstructure:"lockout_duration"`
	BcryptCost        int           `mapstructure:"bcrypt_cost"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
}

// CorsConfig holds CORS configuration / Configuration CORS
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimiterConfig holds rate limiter configuration / Configuration limiteur de débit
type RateLimiterConfig struct {
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
	Enabled bool    `mapstructure:"enabled"`
}

// LoggingConfig holds logging configuration / Configuration logging
type LoggingConfig struct {
	Level         string            `mapstructure:"level"`
	Format        string            `mapstructure:"format"`
	LokiEnabled   bool              `mapstructure:"loki_enabled"`
	LokiURL       string            `mapstructure:"loki_url"`
	LokiLabels    map[string]string `mapstructure:"loki_labels"`
	LokiBatchSize int               `mapstructure:"loki_batch_size"`
}

// ProductionConfig holds plant business rules / Règles métier de l'usine
type ProductionConfig struct {
	// DeltaTolerance is the allowed gap between the 7M total and |deltaProd|.
	DeltaTolerance int64 `mapstructure:"delta_tolerance"`
	// MaxHeuresJour caps the hours a worker can be planned or report per day.
	MaxHeuresJour float64 `mapstructure:"max_heures_jour"`
}

// JobsConfig holds scheduled job settings. An empty schedule disables the job.
// Paramètres des tâches planifiées. Un planning vide désactive la tâche.
type JobsConfig struct {
	TokenPurgeSchedule    string        `mapstructure:"token_purge_schedule"`
	ActivityPurgeSchedule string        `mapstructure:"activity_purge_schedule"`
	ActivityRetention     time.Duration `mapstructure:"activity_retention"`
}

// BootstrapConfig describes the admin created on an empty users table.
// Décrit l'admin créé quand la table des utilisateurs est vide.
type BootstrapConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminNom      string `mapstructure:"admin_nom"`
	AdminPrenom   string `mapstructure:"admin_prenom"`
}

// IsProduction checks if environment is production / Vérifie si l'environnement est production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment checks if environment is development / Vérifie si l'environnement est development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig loads configuration from YAML and env vars / Charge la config depuis YAML et variables d'env
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "25s")
	v.SetDefault("server.frontend_url", "http://localhost:4200")
	v.SetDefault("environment", "development")
	v.SetDefault("database.type", "mysql")
	v.SetDefault("database.dsn", "prodtrack:prodtrack@tcp(localhost:3306)/prodtrack?parseTime=true&loc=UTC&multiStatements=true")
	v.SetDefault("auth.jwt_secret", defaultJWTSecret)
	v.SetDefault("auth.access_token_duration", "15m")
	v.SetDefault("auth.refresh_token_duration", "168h")
	v.SetDefault("auth.cookie_domain", "localhost")
	v.SetDefault("auth.cookie_path", "/")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("security.max_failed_attempts", 5)
	v.SetDefault("security.lockout_duration", "15m")
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.trusted_proxies", []string{}) // don't trust proxy headers unless configured
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:4200"})

	v.SetDefault("rate_limiter.rps", 20)
	v.SetDefault("rate_limiter.burst", 40)
	v.SetDefault("rate_limiter.enabled", true)

	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.schedule", "@daily")
	v.SetDefault("backup.path", "./backups")
	v.SetDefault("backup.retention_days", 7)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.loki_enabled", false)
	v.SetDefault("logging.loki_url", "http://localhost:3100")
	v.SetDefault("logging.loki_labels", map[string]string{
		"app":         "go-prodtrack",
		"environment": "development",
	})
	v.SetDefault("logging.loki_batch_size", 10)

	v.SetDefault("production.delta_tolerance", 1)
	v.SetDefault("production.max_heures_jour", 8)

	v.SetDefault("jobs.token_purge_schedule", "0 3 * * *")
	v.SetDefault("jobs.activity_purge_schedule", "30 3 * * *")
	v.SetDefault("jobs.activity_retention", "2160h") // 90 days

	v.SetDefault("bootstrap.admin_email", "")
	v.SetDefault("bootstrap.admin_password", "")
	v.SetDefault("bootstrap.admin_nom", "Admin")
	v.SetDefault("bootstrap.admin_prenom", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("database.dsn", "DATABASE_DSN")
	v.BindEnv("bootstrap.admin_password", "BOOTSTRAP_ADMIN_PASSWORD")

	var cfg Config
	err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates configuration / Valide la configuration
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateAuth,
		c.validateRateLimiter,
		c.validateProduction,
		c.validateJobs,
		c.validateBootstrap,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	validDBTypes := []string{"mysql", "sqlite", "sqlite3", ""}
	dbType := strings.ToLower(c.Database.Type)

	if !slices.Contains(validDBTypes, dbType) {
		return errors.New("database.type must be one of: mysql, sqlite")
	}

	if c.IsProduction() && c.Database.DSN == "" {
		return errors.New("database.dsn is required in production")
	}

	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}

	if c.IsProduction() {
		if len(c.Auth.JWTSecret) < 32 {
			return errors.New("auth.jwt_secret must be ≥32 chars in production")
		}
		if c.Auth.JWTSecret == defaultJWTSecret {
			return errors.New("auth.jwt_secret cannot use default value in production - set JWT_SECRET environment variable")
		}
		if !c.Auth.CookieSecure {
			return errors.New("auth.cookie_secure must be true in production")
		}
	}

	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("auth.access_token_duration must be positive")
	}
	if c.Auth.RefreshTokenDuration <= 0 {
		return errors.New("auth.refresh_token_duration must be positive")
	}

	return nil
}

func (c *Config) validateRateLimiter() error {
	if !c.RateLimiter.Enabled {
		return nil
	}
	if c.RateLimiter.RPS <= 0 {
		return errors.New("rate_limiter.rps must be positive when enabled")
	}
	if c.RateLimiter.Burst <= 0 {
		return errors.New("rate_limiter.burst must be positive when enabled")
	}
	return nil
}

func (c *Config) validateProduction() error {
	if c.Production.DeltaTolerance < 0 {
		return errors.New("production.delta_tolerance must be >= 0")
	}
	if c.Production.MaxHeuresJour <= 0 || c.Production.MaxHeuresJour > 24 {
		return errors.New("production.max_heures_jour must be in (0, 24]")
	}
	return nil
}

func (c *Config) validateJobs() error {
	schedules := map[string]string{
		"jobs.token_purge_schedule":    c.Jobs.TokenPurgeSchedule,
		"jobs.activity_purge_schedule": c.Jobs.ActivityPurgeSchedule,
	}
	if c.Backup.Enabled {
		schedules["backup.schedule"] = c.Backup.Schedule
	}
	for key, expr := range schedules {
		if expr == "" {
			continue
		}
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("%s is not a valid cron expression: %w", key, err)
		}
	}
	if c.Jobs.ActivityPurgeSchedule != "" && c.Jobs.ActivityRetention <= 0 {
		return errors.New("jobs.activity_retention must be positive when activity purge is scheduled")
	}
	return nil
}

func (c *Config) validateBootstrap() error {
	if (c.Bootstrap.AdminEmail == "") != (c.Bootstrap.AdminPassword == "") {
		return errors.New("bootstrap.admin_email and bootstrap.admin_password must be set together")
	}
	return nil
}
