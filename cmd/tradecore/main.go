// Command tradecore wires every collaborator package into a single
// process and runs the orchestrator's tick loop until an interrupt or
// terminate signal arrives, mirroring the teacher's main.go wiring
// style but scoped down to this system's components.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"tradecore/config"
	"tradecore/internal/auth"
	"tradecore/internal/cache"
	"tradecore/internal/circuit"
	"tradecore/internal/events"
	"tradecore/internal/exchange"
	"tradecore/internal/journal"
	"tradecore/internal/killswitch"
	"tradecore/internal/logging"
	"tradecore/internal/ohlcv"
	"tradecore/internal/orchestrator"
	"tradecore/internal/position"
	"tradecore/internal/repository"
	"tradecore/internal/safety"
)

func main() {
	bootLogger := logging.Default()
	cfg := config.Load(bootLogger)

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logging.Configure(level, os.Stdout, cfg.Logging.Pretty)
	logger := logging.Component("main")

	var verifier auth.Verifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewJWTManager(cfg.Auth.JWTSecret)
	}

	bus := events.New()

	ks := killswitch.New(verifier)
	breaker := circuit.New(circuit.DefaultConfig(), verifier)
	breaker.OnTrip(func(reason circuit.TripReason, at time.Time) {
		logger.Warn().Str("reason", string(reason)).Time("at", at).Msg("circuit breaker tripped")
		bus.Publish(events.NewEvent(events.CircuitBreakerTripped, "circuit", map[string]any{
			"reason": string(reason),
			"at":     at,
		}))
	})
	breaker.OnReset(func() {
		bus.Publish(events.NewEvent(events.CircuitBreakerReset, "circuit", nil))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var candleRepo repository.CandleRepository
	var auditLog repository.AuditLogger
	var tradeRepo journal.TradeRepository
	if cfg.Postgres.DSN != "" {
		db, err := repository.NewDB(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer db.Close()
		if err := db.RunMigrations(ctx, logger); err != nil {
			log.Fatalf("run migrations: %v", err)
		}
		candleRepo = repository.NewPostgresCandleRepository(db)
		auditLog = repository.NewPostgresAuditLogger(db)
		tradeRepo = repository.NewPostgresTradeRepository(db)
	} else {
		logger.Info().Msg("POSTGRES_DSN not set, running without durable trade/candle storage")
	}

	var candleCache *cache.CandleCache
	if cfg.Redis.Enabled {
		candleCache = cache.New(cache.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}, 10*time.Minute)
	}

	journalPath := getEnvString("JOURNAL_STATE_PATH", "trade_state.json")
	store, err := journal.NewFileStore(journalPath)
	if err != nil {
		log.Fatalf("open journal store: %v", err)
	}
	j := journal.New(store, tradeRepo, func() time.Time { return time.Now().UTC() })

	candles1h, err := ohlcv.NewBuffer(200)
	if err != nil {
		log.Fatalf("create 1h buffer: %v", err)
	}
	candles5m, err := ohlcv.NewBuffer(100)
	if err != nil {
		log.Fatalf("create 5m buffer: %v", err)
	}

	symbol := getEnvString("TRADING_SYMBOL", "BTCUSDT")

	var adapter exchange.Adapter
	if cfg.PaperTrading {
		startBalance := getEnvFloat("PAPER_STARTING_BALANCE", 10000)
		paper := exchange.NewPaperExchange(exchange.PaperExchangeConfig{
			FeeRatePercent: getEnvFloat("PAPER_FEE_RATE_PERCENT", 0),
		}, func() time.Time { return time.Now().UTC() }, map[string]exchange.AssetBalance{
			"USDT": {Free: startBalance, Total: startBalance},
		})
		adapter = paper
		logger.Info().Float64("starting_balance", startBalance).Msg("paper trading adapter active")
	} else {
		log.Fatalf("live exchange adapter not configured: PAPER_TRADING=false requires a real Adapter implementation")
	}

	orchCfg := orchestrator.Config{
		Symbol:               symbol,
		IntervalSeconds:      cfg.Loop.IntervalSeconds,
		EMAFast:              cfg.Signal.EMAFast,
		EMASlow:              cfg.Signal.EMASlow,
		EMAPullback:          cfg.Signal.EMAPullback,
		RSIPeriod:            cfg.Signal.RSIPeriod,
		ATRPeriod:            cfg.Signal.ATRPeriod,
		ATRStopMultiplier:    cfg.Signal.ATRStopMultiplier,
		MaxPositionHoldHours: cfg.Loop.MaxPositionHoldHours,
		RiskLimits:           cfg.HardRiskLimits(),
	}

	safetyCfg := safety.DefaultConfig()
	safetyCfg.MinTimeBetweenTrades = time.Duration(cfg.Safety.MinTimeBetweenTradesSeconds) * time.Second
	safetyChecker := safety.New(safetyCfg, func() time.Time { return time.Now().UTC() })

	orch := orchestrator.New(
		orchCfg,
		adapter,
		candles1h, candles5m,
		candleRepo,
		candleCache,
		position.NewManager(),
		breaker,
		ks,
		safetyChecker,
		j,
		bus,
		func() time.Time { return time.Now().UTC() },
		"USDT",
	)

	if auditLog != nil {
		subscribeAuditTrail(bus, auditLog, logger)
	}

	logger.Info().
		Str("symbol", symbol).
		Int("interval_seconds", orchCfg.IntervalSeconds).
		Bool("paper_trading", cfg.PaperTrading).
		Msg("starting tradecore")

	go orch.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, draining")
	cancel()
	time.Sleep(time.Second)
	logger.Info().Msg("shutdown complete")
}

// subscribeAuditTrail persists events of the topics listed below to the
// audit log, the durable counterpart of the in-memory event bus.
func subscribeAuditTrail(bus *events.Bus, auditLog repository.AuditLogger, logger zerolog.Logger) {
	topics := []events.Type{
		events.TrendDetected,
		events.CandleReceived,
		events.AIAdvisory,
		events.ExitSignal,
		events.PositionClosed,
		events.RiskValidation,
		events.TradeRejected,
		events.TradeExecuted,
		events.PositionOpened,
	}
	for _, topic := range topics {
		bus.Subscribe(topic, func(e events.Event) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := auditLog.Log(ctx, e.Source, string(e.Type), "", e.Payload); err != nil {
				logger.Warn().Err(err).Str("event_type", string(e.Type)).Msg("audit log write failed")
			}
		})
	}
}

func getEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
