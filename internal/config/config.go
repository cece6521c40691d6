package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza a configuração do serviço.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	EngineAPIKey  string `env:"ENGINE_API_KEY,required"`
	EngineBaseURL string `env:"ENGINE_BASE_URL"`
	EngineModel   string `env:"ENGINE_MODEL" envDefault:"gpt-4o-mini"`
	// Timeout por chamada ao motor; estouro vira falha dura.
	EngineTimeoutSeconds int `env:"ENGINE_TIMEOUT_SECONDS" envDefault:"30"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carrega a configuração a partir de variáveis de ambiente.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EngineTimeout devolve o timeout do motor como duração.
func (c *Config) EngineTimeout() time.Duration {
	return time.Duration(c.EngineTimeoutSeconds) * time.Second
}
