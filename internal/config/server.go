package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	RemoteBaseURL     string        `env:"REMOTE_BASE_URL,required,notEmpty"`
	RemoteAPIKey      string        `env:"REMOTE_API_KEY"`
	RemoteSiteKey     string        `env:"REMOTE_SITE_KEY"`
	RemoteCallTimeout time.Duration `env:"REMOTE_CALL_TIMEOUT" envDefault:"30s"`

	EventTokenSecret string        `env:"EVENT_TOKEN_SECRET,required,notEmpty"`
	EventTokenTTL    time.Duration `env:"EVENT_TOKEN_TTL" envDefault:"168h"`

	DefaultProfile string `env:"DEFAULT_PROFILE" envDefault:"default"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
