package config

import (
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(func() Config {
		// Missing .env is fine outside local development.
		_ = godotenv.Load()
		return Load()
	}),
)
