package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName      string        `env:"DB_NAME,required,notEmpty"`
	Port        string        `env:"PORT" envDefault:"8080"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	LockTimeout time.Duration `env:"LOCK_TIMEOUT" envDefault:"2s"`
	ProjectID   string        `env:"GCP_PROJECT"`
	Turso       TursoConfig
}

type TursoConfig struct {
	PrimaryURL string `env:"TURSO_PRIMARY_URL"`
	AuthToken  string `env:"TURSO_AUTH_TOKEN"`
}
