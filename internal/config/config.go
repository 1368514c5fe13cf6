package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for our application
type Config struct {
	Port               string         `envconfig:"PORT" default:"5000"`
	Origins            []string       `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:5174"`
	Environment        string         `envconfig:"APP_ENV" default:"development"`
	LogLevel           string         `envconfig:"LOG_LEVEL" default:"info"`
	JWTSecret          string         `envconfig:"JWT_SECRET" default:"default_jwt_secret"`
	JWTExpirationHours int            `envconfig:"JWT_EXPIRATION_HOURS" default:"168"` // 7 days
	ReconcileInterval  time.Duration  `envconfig:"RECONCILE_INTERVAL" default:"1m"`
	Admin              AdminConfig    `envconfig:"ADMIN"`
	Database           DatabaseConfig `envconfig:"DB"`
	Audit              AuditConfig    `envconfig:"AUDIT"`
}

// AdminConfig holds the credentials of the single built-in administrator.
type AdminConfig struct {
	Email    string `envconfig:"EMAIL" default:"admin@hms.com"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME" default:"Administrator"`
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string `envconfig:"DRIVER" default:"mysql"`
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"3306"`
	Username string `envconfig:"USERNAME" default:"root"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME" default:"medisys"`
	DSN      string `envconfig:"DSN"`
}

// AuditConfig sizes the asynchronous activity log writer.
type AuditConfig struct {
	QueueSize int `envconfig:"QUEUE_SIZE" default:"256"`
	Workers   int `envconfig:"WORKERS" default:"2"`
}

// LoadConfig loads configuration from an optional .env file and the environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if cfg.Database.DSN == "" {
		dsn, err := cfg.Database.BuildDSN()
		if err != nil {
			return nil, err
		}
		cfg.Database.DSN = dsn
	}
	if cfg.Audit.Workers < 1 {
		cfg.Audit.Workers = 1
	}
	if cfg.Audit.QueueSize < 1 {
		return nil, fmt.Errorf("invalid AUDIT_QUEUE_SIZE: %d", cfg.Audit.QueueSize)
	}
	if cfg.ReconcileInterval <= 0 {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %s", cfg.ReconcileInterval)
	}
	if cfg.JWTExpirationHours < 1 {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %d", cfg.JWTExpirationHours)
	}

	return &cfg, nil
}

// BuildDSN builds the Data Source Name for the configured driver.
func (d DatabaseConfig) BuildDSN() (string, error) {
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.Username, d.Password, d.Host, d.Port, d.Name), nil
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			d.Host, d.Port, d.Username, d.Password, d.Name), nil
	case "sqlite":
		return d.Name + ".db", nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
}
