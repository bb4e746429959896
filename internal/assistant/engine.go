package assistant

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/bidbot/internal/core"
	"github.com/sandevgo/bidbot/pkg/log"
)

// Config bounds a single engine instance. Zero values fall back to defaults.
type Config struct {
	// HistoryLimit caps retained messages; oldest entries are evicted first.
	HistoryLimit int
	// RateLimit is the maximum number of messages processed per RateWindow.
	RateLimit int
	// RateWindow is the rolling window length. The window resets only by
	// elapsed time, never by count.
	RateWindow time.Duration
	// ContextWindow is how many prior history entries accompany an AI
	// fallback request.
	ContextWindow int
}

func DefaultConfig() Config {
	return Config{
		HistoryLimit:  10,
		RateLimit:     50,
		RateWindow:    time.Hour,
		ContextWindow: 5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.RateLimit <= 0 {
		c.RateLimit = d.RateLimit
	}
	if c.RateWindow <= 0 {
		c.RateWindow = d.RateWindow
	}
	if c.ContextWindow <= 0 {
		c.ContextWindow = d.ContextWindow
	}
	return c
}

// Engine turns user utterances into assistant responses for one chat
// session. It owns the session's bounded history and rate window, so every
// session (browser tab, telegram chat, REPL) gets its own instance. The
// engine itself does no locking; callers serving concurrent requests for the
// same session must serialize access.
type Engine struct {
	cfg       Config
	accountID string
	store     core.BusinessStore
	reader    core.ContextReader
	completer core.Completer

	history   []core.Message
	rateCount int
	rateStart time.Time

	// injectable for deterministic tests
	now  func() time.Time
	pick func(n int) int
}

func NewEngine(cfg Config, accountID string, store core.BusinessStore, reader core.ContextReader, completer core.Completer) *Engine {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Engine{
		cfg:       cfg.withDefaults(),
		accountID: accountID,
		store:     store,
		reader:    reader,
		completer: completer,
		now:       time.Now,
		pick:      rnd.Intn,
		rateStart: time.Now(),
	}
}

// response is the partial result a handler produces before it is wrapped
// into a full assistant Message.
type response struct {
	content      string
	actions      []core.Action
	quickReplies []string
	source       string
}

// HandleMessage processes one user turn and always returns a well-formed
// assistant message. Collaborator failures degrade into generic content and
// are never propagated.
func (e *Engine) HandleMessage(ctx context.Context, text string) core.Message {
	logger := log.FromCtx(ctx)

	now := e.now()
	if now.Sub(e.rateStart) > e.cfg.RateWindow {
		e.rateCount = 0
		e.rateStart = now
	}
	if e.rateCount >= e.cfg.RateLimit {
		logger.Warn().Int("count", e.rateCount).Msg("rate limit reached, rejecting message")
		return core.Message{
			ID:           uuid.NewString(),
			Role:         core.RoleAssistant,
			Content:      rateLimitedText,
			QuickReplies: standardQuickReplies,
			Source:       core.SourceRule,
			CreatedAt:    now,
		}
	}
	e.rateCount++

	e.append(core.Message{
		ID:        uuid.NewString(),
		Role:      core.RoleUser,
		Content:   text,
		CreatedAt: now,
	})

	intent := ClassifyIntent(text)
	logger.Debug().
		Str("intent", intent.Name).
		Str("confidence", intent.Confidence).
		Msg("classified message")

	var resp response
	if intent.Name != IntentUnknown {
		resp = e.dispatch(ctx, intent, text)
	} else {
		resp = e.completeWithAI(ctx, text)
	}

	msg := core.Message{
		ID:           uuid.NewString(),
		Role:         core.RoleAssistant,
		Content:      resp.content,
		Intent:       intent.Name,
		Actions:      resp.actions,
		QuickReplies: resp.quickReplies,
		Source:       resp.source,
		CreatedAt:    e.now(),
	}
	e.append(msg)
	return msg
}

// completeWithAI forwards the utterance plus a fresh account snapshot and
// recent history to the remote model. Any failure degrades to the fixed
// fallback with rule provenance.
func (e *Engine) completeWithAI(ctx context.Context, text string) response {
	logger := log.FromCtx(ctx)

	userCtx, err := e.reader.AccountContext(ctx, e.accountID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load account context")
		userCtx = core.UserContext{BusinessName: "your business"}
	}

	result, err := e.completer.Complete(ctx, core.CompletionRequest{
		Message: text,
		Context: userCtx,
		History: e.recentHistory(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("completion request failed")
		return response{
			content:      aiFallbackText,
			quickReplies: standardQuickReplies,
			source:       core.SourceRule,
		}
	}

	quickReplies := result.QuickReplies
	if len(quickReplies) == 0 {
		quickReplies = standardQuickReplies
	}
	return response{
		content:      result.Response,
		quickReplies: quickReplies,
		source:       core.SourceAI,
	}
}

// recentHistory returns up to ContextWindow messages preceding the current
// user turn, oldest first.
func (e *Engine) recentHistory() []core.Message {
	if len(e.history) == 0 {
		return nil
	}
	prior := e.history[:len(e.history)-1]
	if len(prior) > e.cfg.ContextWindow {
		prior = prior[len(prior)-e.cfg.ContextWindow:]
	}
	out := make([]core.Message, len(prior))
	copy(out, prior)
	return out
}

func (e *Engine) append(msg core.Message) {
	e.history = append(e.history, msg)
	if len(e.history) > e.cfg.HistoryLimit {
		e.history = e.history[len(e.history)-e.cfg.HistoryLimit:]
	}
}

// History returns a copy of the retained conversation, oldest first.
func (e *Engine) History() []core.Message {
	out := make([]core.Message, len(e.history))
	copy(out, e.history)
	return out
}

// Reset clears the conversation. The rate window is left untouched so a
// reset cannot be used to dodge the limit.
func (e *Engine) Reset() {
	e.history = nil
}
