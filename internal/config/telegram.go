package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/bidbot/pkg/log"
)

type TelegramConfig struct {
	Token   string `env:"TELEGRAM_TOKEN,required,notEmpty"`
	OwnerID int64  `env:"TELEGRAM_OWNER_ID,required"`

	// AccountID is the business account the bot chats on behalf of.
	AccountID string `env:"TELEGRAM_ACCOUNT_ID,required,notEmpty"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}
