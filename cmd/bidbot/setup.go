package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/bidbot/internal/assistant"
	"github.com/sandevgo/bidbot/internal/config"
	"github.com/sandevgo/bidbot/internal/providers/llm"
	"github.com/sandevgo/bidbot/internal/storage/sqlite"
	"github.com/sandevgo/bidbot/internal/transport/httpapi"
	"github.com/sandevgo/bidbot/internal/transport/mcpsrv"
	"github.com/sandevgo/bidbot/internal/transport/telegram"
	"github.com/sandevgo/bidbot/pkg/log"
	"github.com/sandevgo/bidbot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	assistCfg := config.NewAssistConfig(ctx)

	// 2. Storage
	repo, cleanup, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, cleanup)

	// 3. AI fallback client
	completer := llm.NewAssist(assistCfg)

	// 4. Engine factory shared by all transports
	factory := newEngineFactory(appCfg, repo, completer)

	// 5. Transports
	transports, err := initTransports(ctx, appCfg, factory)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func newEngineFactory(cfg *config.AppConfig, repo *sqlite.BusinessRepo, completer *llm.Assist) func(accountID string) *assistant.Engine {
	engineCfg := assistant.Config{
		HistoryLimit:  cfg.HistoryLimit,
		RateLimit:     cfg.RateLimit,
		RateWindow:    cfg.RateWindow,
		ContextWindow: cfg.ContextWindow,
	}
	return func(accountID string) *assistant.Engine {
		return assistant.NewEngine(engineCfg, accountID, repo, repo, completer)
	}
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sqlite.BusinessRepo, srv.Service, error) {
	if err := os.MkdirAll(cfg.GetRuntimePath(), 0755); err != nil {
		return nil, nil, err
	}
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, err
	}
	return sqlite.NewBusinessRepo(db), srv.NewCleanup(db.Close), nil
}

func initTransports(ctx context.Context, cfg *config.AppConfig, factory func(string) *assistant.Engine) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableHTTP {
		services = append(services, httpapi.NewServer(cfg.HTTPAddr, factory))
	}

	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, cfg.AppBaseURL, factory)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.EnableMCP {
		services = append(services, mcpsrv.NewServer(os.Getenv("BIDBOT_ACCOUNT_ID"), factory))
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
