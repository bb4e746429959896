package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/bidbot/internal/config"
	"github.com/sandevgo/bidbot/internal/core"
	"github.com/sandevgo/bidbot/pkg/log"
	"github.com/sandevgo/bidbot/pkg/retry"
)

// Assist talks to the hosted completion endpoint behind the chat
// assistant's AI fallback. Transport failures are retried briefly; HTTP
// error statuses are not, since the engine has its own canned fallback and
// should answer quickly.
type Assist struct {
	baseClient
	retrier     *retry.Retrier
	tokenBudget int
}

func NewAssist(cfg *config.AssistConfig) *Assist {
	retrier := retry.NewRetrier(&retry.Config{
		MaxRetries:    2,
		BackoffFactor: 2,
		InitialDelay:  200 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		Jitter:        50 * time.Millisecond,
	})
	return &Assist{
		baseClient:  newBaseClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		retrier:     retrier,
		tokenBudget: cfg.ContextTokenBudget,
	}
}

func (a *Assist) Complete(ctx context.Context, req core.CompletionRequest) (core.CompletionResult, error) {
	req.History = a.trimHistory(ctx, req.Message, req.History)

	headers := map[string]string{
		"Authorization": "Bearer " + a.apiKey,
		"User-Agent":    core.AppUserAgent,
	}

	var out core.CompletionResult
	var callErr error
	err := a.retrier.Do(ctx, func() error {
		resp, err := a.doRequest(ctx, http.MethodPost, "/v1/assist", req, headers)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			callErr = fmt.Errorf("assist api status %d: %s", resp.StatusCode, snippet(data))
			return nil
		}
		if err := json.Unmarshal(data, &out); err != nil {
			callErr = fmt.Errorf("decode: %w", err)
			return nil
		}
		callErr = nil
		return nil
	})
	if err != nil {
		return core.CompletionResult{}, err
	}
	if callErr != nil {
		return core.CompletionResult{}, callErr
	}
	if out.Response == "" {
		return core.CompletionResult{}, fmt.Errorf("assist api returned an empty response")
	}
	return out, nil
}

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

func getTokenizer(ctx context.Context) *tiktoken.Tiktoken {
	tokenizerOnce.Do(func() {
		tk, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("tokenizer unavailable, skipping context sizing")
			return
		}
		tokenizer = tk
	})
	return tokenizer
}

// trimHistory drops the oldest context entries until the estimated token
// count of message plus history fits the budget. Sizing is best-effort; a
// missing tokenizer leaves the history untouched.
func (a *Assist) trimHistory(ctx context.Context, message string, history []core.Message) []core.Message {
	if a.tokenBudget <= 0 || len(history) == 0 {
		return history
	}
	tk := getTokenizer(ctx)
	if tk == nil {
		return history
	}

	count := func(s string) int { return len(tk.Encode(s, nil, nil)) }
	total := count(message)
	for _, m := range history {
		total += count(m.Content)
	}
	for total > a.tokenBudget && len(history) > 0 {
		total -= count(history[0].Content)
		history = history[1:]
	}

	log.FromCtx(ctx).Debug().
		Int("tokens", total).
		Int("history", len(history)).
		Msg("assist context sized")
	return history
}

func snippet(data []byte) string {
	const max = 200
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
