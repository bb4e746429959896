package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sandevgo/bidbot/internal/config"
	"github.com/sandevgo/bidbot/internal/providers/llm"
	"github.com/sandevgo/bidbot/internal/transport/cli"
	"github.com/sandevgo/bidbot/pkg/log"
)

var chatAccountID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		appCfg := config.NewAppConfig(ctx)
		assistCfg := config.NewAssistConfig(ctx)

		repo, cleanup, err := initStorage(ctx, appCfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := cleanup.Shutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("failed to close storage")
			}
		}()

		factory := newEngineFactory(appCfg, repo, llm.NewAssist(assistCfg))

		repl, err := cli.NewReadLine(factory(chatAccountID), appCfg)
		if err != nil {
			return err
		}
		defer repl.Shutdown(ctx)

		return repl.Start(ctx)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatAccountID, "account", os.Getenv("BIDBOT_ACCOUNT_ID"), "business account to chat as")
	rootCmd.AddCommand(chatCmd)
}
