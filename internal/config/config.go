package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppCfg struct{ Env, Port string }

type DBCfg struct {
	DSN            string
	MigrationsPath string
}

type RedisCfg struct{ Addr string }

type SecurityCfg struct {
	AdminToken string // guards the admin payout API; empty disables it
}

type PayoutCfg struct {
	QueueSize int
}

type Cfg struct {
	App    AppCfg
	DB     DBCfg
	Redis  RedisCfg
	Sec    SecurityCfg
	Payout PayoutCfg
}

// Load reads configuration from the environment, with .env as a convenience
// overlay for local development. Fails fast on missing required settings.
func Load() Cfg {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("DB_MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("PAYOUT_QUEUE_SIZE", 16)
	viper.SetDefault("ADMIN_TOKEN", "")

	cfg := Cfg{
		App: AppCfg{
			Env:  viper.GetString("APP_ENV"),
			Port: viper.GetString("APP_PORT"),
		},
		DB: DBCfg{
			DSN:            viper.GetString("DB_DSN"),
			MigrationsPath: viper.GetString("DB_MIGRATIONS_PATH"),
		},
		Redis: RedisCfg{Addr: viper.GetString("REDIS_ADDR")},
		Sec: SecurityCfg{
			AdminToken: strings.TrimSpace(viper.GetString("ADMIN_TOKEN")),
		},
		Payout: PayoutCfg{QueueSize: viper.GetInt("PAYOUT_QUEUE_SIZE")},
	}

	if cfg.DB.DSN == "" {
		log.Fatal().Msg("DB_DSN is required")
	}
	return cfg
}
