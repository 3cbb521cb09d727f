package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"telegram-giveaway-bot/internal/application"
	"telegram-giveaway-bot/internal/config"
	"telegram-giveaway-bot/internal/infra/db/postgres"
	"telegram-giveaway-bot/internal/infra/logging"
	"telegram-giveaway-bot/internal/infra/metrics"
	"telegram-giveaway-bot/internal/infra/redis"
	tele "telegram-giveaway-bot/internal/infra/telegram"
	"telegram-giveaway-bot/internal/infra/unisender"
	"telegram-giveaway-bot/internal/infra/web"
	"telegram-giveaway-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// .env is optional; secrets usually come from the real environment.
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode (console logs, unredacted emails)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("postgres migrate failed")
	}

	// ---- Redis ----
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	stateRepo := redis.NewStateRepo(redisClient, cfg.Redis.StateTTL)
	rateLimiter := redis.NewRateLimiter(redisClient)

	// ---- Repositories ----
	participantRepo := postgres.NewParticipantRepo(pool)
	promoRepo := postgres.NewPromoCodeRepo(pool)
	settingRepo := postgres.NewSettingRepo(pool)
	textRepo := postgres.NewBotTextRepo(pool)
	txManager := postgres.NewTxManager(pool)

	// ---- Use cases ----
	textsUC, err := usecase.NewTextsUseCase(textRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("text catalog failed to load")
	}
	verifier := unisender.NewClient(&cfg.Unisender, logger)
	rewardUC := usecase.NewRewardUseCase(participantRepo, promoRepo, settingRepo, cfg.Giveaway)
	giveawayUC := usecase.NewGiveawayUseCase(participantRepo, rewardUC, verifier, txManager, logger, cfg.Runtime.Dev)
	adminUC := usecase.NewAdminUseCase(participantRepo, promoRepo, settingRepo, rewardUC, txManager, logger)

	facade := application.NewBotFacade(giveawayUC, textsUC, adminUC, cfg.Giveaway)

	// ---- Telegram ----
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, stateRepo, rateLimiter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram init failed")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Web ----
	webServer := web.NewServer(adminUC, cfg.Web, !cfg.Runtime.Dev, logger)
	go func() {
		if err := webServer.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("web server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	botAdapter.StopPolling()
}
