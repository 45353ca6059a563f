package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sniper/internal/api/mt5bridge"
	"github.com/Alias1177/Sniper/internal/config"
	"github.com/Alias1177/Sniper/internal/database"
	"github.com/Alias1177/Sniper/internal/engine"
	"github.com/Alias1177/Sniper/internal/notifier"
	"github.com/Alias1177/Sniper/internal/risk"
	"github.com/Alias1177/Sniper/internal/strategy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bridge := mt5bridge.NewClient(mt5bridge.ClientOptions{
		BaseURL:        cfg.BridgeURL,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
	})

	var ledger engine.Ledger
	db, err := database.New(database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable, running without bar cache and trade ledger")
	} else {
		defer db.Close()
		ledger = db
	}

	tg, err := notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telegram notifier")
	}

	riskMgr := risk.NewManager(bridge, bridge, log.Logger, nil)
	if err := riskMgr.UpdateSettings(ctx, cfg.RiskPerTrade, cfg.RiskAllTrades, cfg.DailyRisk); err != nil {
		log.Fatal().Err(err).Msg("invalid risk settings")
	}

	strategies, err := buildStrategies(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build strategies")
	}

	eng, err := engine.New(engine.Options{
		Bars:            bridge,
		Account:         bridge,
		Executor:        bridge,
		Risk:            riskMgr,
		Strategies:      strategies,
		Symbols:         cfg.Symbols,
		Timeframe:       cfg.Timeframe,
		CandleCount:     cfg.CandleCount,
		PollInterval:    time.Duration(cfg.PollInterval) * time.Second,
		Ledger:          ledger,
		Notifier:        tg,
		SummarySchedule: cfg.SummarySchedule,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build engine")
	}

	if err := eng.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("trading loop failed")
	}
}

func buildStrategies(cfg *config.Config) ([]strategy.Strategy, error) {
	sniper, err := strategy.NewSniper(log.Logger)
	if err != nil {
		return nil, err
	}
	smartSniper, err := strategy.NewSmartSniper(log.Logger)
	if err != nil {
		return nil, err
	}
	smartMoney, err := strategy.NewSmartMoney(log.Logger)
	if err != nil {
		return nil, err
	}

	if cfg.EnableSniper {
		sniper.Enable()
	}
	if cfg.EnableSmartSniper {
		smartSniper.Enable()
	}
	if cfg.EnableSmartMoney {
		smartMoney.Enable()
	}

	return []strategy.Strategy{sniper, smartSniper, smartMoney}, nil
}
