package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/bidbot/pkg/log"
)

type AssistConfig struct {
	BaseURL string        `env:"ASSIST_API_URL,required,notEmpty"`
	APIKey  string        `env:"ASSIST_API_KEY,required,notEmpty"`
	Timeout time.Duration `env:"ASSIST_TIMEOUT" envDefault:"30s"`

	// ContextTokenBudget bounds the estimated token size of history sent
	// along with a fallback request; 0 disables sizing.
	ContextTokenBudget int `env:"ASSIST_CONTEXT_TOKEN_BUDGET" envDefault:"2000"`
}

func NewAssistConfig(ctx context.Context) *AssistConfig {
	c := &AssistConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Assist config")
	}
	return c
}
