package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sandevgo/bidbot/internal/assistant"
	"github.com/sandevgo/bidbot/internal/config"
	"github.com/sandevgo/bidbot/internal/core"
	"github.com/sandevgo/bidbot/pkg/conv"
	"github.com/sandevgo/bidbot/pkg/log"
)

type ReadLine struct {
	cfg    *config.AppConfig
	engine *assistant.Engine
	rl     *readline.Instance
}

func NewReadLine(engine *assistant.Engine, cfg *config.AppConfig) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:    cfg,
		engine: engine,
		rl:     rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("ReadLine chat started. Type 'exit' to quit, '/reset' to clear the conversation.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "/reset" {
			r.engine.Reset()
			fmt.Fprintln(r.rl.Stdout(), "Conversation cleared.")
			continue
		}
		if line == "" {
			continue
		}

		r.print(r.engine.HandleMessage(ctx, line))
	}
}

func (r *ReadLine) print(msg core.Message) {
	out := r.rl.Stdout()

	fmt.Fprintf(out, "%s\n", conv.MarkdownToText([]byte(msg.Content)))

	for _, action := range msg.Actions {
		switch action.Type {
		case core.ActionNavigate:
			fmt.Fprintf(out, "  [%s] %s%s\n", action.Label, strings.TrimRight(r.cfg.AppBaseURL, "/"), action.Value)
		case core.ActionExternal:
			fmt.Fprintf(out, "  [%s] %s\n", action.Label, action.Value)
		case core.ActionFunction:
			fmt.Fprintf(out, "  [%s]\n", action.Label)
		}
	}

	if len(msg.QuickReplies) > 0 {
		fmt.Fprintf(out, "\033[38;5;240mTry: %s\033[0m\n", strings.Join(msg.QuickReplies, " · "))
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
