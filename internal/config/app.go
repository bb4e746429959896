package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/bidbot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"BIDBOT_RUNTIME_PATH" envDefault:".bidbot"`

	// Web app origin; telegram turns relative navigate actions into links here
	AppBaseURL string `env:"BIDBOT_APP_BASE_URL" envDefault:"https://app.bidbot.dev"`

	// Transport Flags
	EnableHTTP     bool   `env:"ENABLE_HTTP" envDefault:"true"`
	EnableTelegram bool   `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableMCP      bool   `env:"ENABLE_MCP" envDefault:"false"`
	HTTPAddr       string `env:"BIDBOT_HTTP_ADDR" envDefault:":8080"`

	// Engine bounds
	HistoryLimit  int           `env:"BIDBOT_HISTORY_LIMIT" envDefault:"10"`
	RateLimit     int           `env:"BIDBOT_RATE_LIMIT" envDefault:"50"`
	RateWindow    time.Duration `env:"BIDBOT_RATE_WINDOW" envDefault:"1h"`
	ContextWindow int           `env:"BIDBOT_CONTEXT_WINDOW" envDefault:"5"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "bidbot.db")
}
