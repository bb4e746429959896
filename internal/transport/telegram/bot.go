package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/bidbot/internal/assistant"
	"github.com/sandevgo/bidbot/internal/config"
	"github.com/sandevgo/bidbot/internal/core"
	"github.com/sandevgo/bidbot/pkg/log"
)

const baseContextKey = "base_context"

// EngineFactory builds a fresh engine bound to an account. Each chat
// gets its own instance.
type EngineFactory func(accountID string) *assistant.Engine

type Bot struct {
	bot        *tele.Bot
	cfg        *config.TelegramConfig
	factory    EngineFactory
	appBaseURL string
	sender     *sender
	ownerID    int64

	mu      sync.Mutex
	engines map[int64]*assistant.Engine
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	appBaseURL string,
	factory EngineFactory,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:        b,
		cfg:        cfg,
		factory:    factory,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		sender:     newSender(b),
		ownerID:    cfg.OwnerID,
		engines:    make(map[int64]*assistant.Engine),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender().ID != bot.ownerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)
	b.Handle("/reset", bot.handleReset)
	b.Handle(&btnFunction, bot.handleFunctionCallback)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

// engine returns the per-chat engine, creating it on first use. Telegram
// handlers run on a single dispatch goroutine per chat, the map itself
// still needs the lock.
func (b *Bot) engine(chatID int64) *assistant.Engine {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.engines[chatID]; ok {
		return e
	}
	e := b.factory(b.cfg.AccountID)
	b.engines[chatID] = e
	return e
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)

	_ = c.Notify(tele.Typing)

	msg := b.engine(c.Chat().ID).HandleMessage(ctx, c.Text())

	markup := b.buildMarkup(msg)
	if err := b.sender.sendMarkdown(ctx, c.Chat(), msg.Content, markup); err != nil {
		logger.Error().Err(err).Msg("failed to send assistant reply")
	}
	return nil
}

func (b *Bot) handleReset(c tele.Context) error {
	b.engine(c.Chat().ID).Reset()
	return c.Send("Conversation cleared. What can I help you with?")
}

var btnFunction = tele.Btn{Unique: "assistant_fn"}

// handleFunctionCallback acknowledges taps on function buttons. The
// actual work runs on the platform side; here we just confirm receipt.
func (b *Bot) handleFunctionCallback(c tele.Context) error {
	return c.Respond(&tele.CallbackResponse{Text: "On it 👍"})
}

// buildMarkup turns assistant actions into an inline keyboard, or quick
// replies into a one-time reply keyboard when there are no actions.
func (b *Bot) buildMarkup(msg core.Message) *tele.ReplyMarkup {
	if len(msg.Actions) > 0 {
		markup := &tele.ReplyMarkup{}
		rows := make([]tele.Row, 0, len(msg.Actions))
		for _, action := range msg.Actions {
			switch action.Type {
			case core.ActionNavigate:
				rows = append(rows, markup.Row(markup.URL(action.Label, b.appBaseURL+action.Value)))
			case core.ActionExternal:
				rows = append(rows, markup.Row(markup.URL(action.Label, action.Value)))
			case core.ActionFunction:
				btn := btnFunction
				btn.Text = action.Label
				btn.Data = action.Value
				rows = append(rows, markup.Row(btn))
			}
		}
		markup.Inline(rows...)
		return markup
	}

	if len(msg.QuickReplies) > 0 {
		markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
		rows := make([]tele.Row, 0, len(msg.QuickReplies))
		for _, qr := range msg.QuickReplies {
			rows = append(rows, markup.Row(markup.Text(qr)))
		}
		markup.Reply(rows...)
		return markup
	}

	return nil
}
