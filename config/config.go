// Package config loads the environment-sourced configuration surface,
// trimmed from the teacher's multi-tenant SaaS-wide config.Config down
// to the knobs this system actually reads, following the teacher's
// getEnv-with-default idiom (each key is read from the environment and
// falls back to a built-in default; no config file is read).
package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"tradecore/internal/risk"
)

// Config is the full process configuration, env-sourced per spec.md §6.
type Config struct {
	Risk       RiskConfig
	Signal     SignalConfig
	Loop       LoopConfig
	Safety     SafetyConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Logging    LoggingConfig
	PaperTrading bool
}

// RiskConfig mirrors risk.HardRiskLimits, loaded and clamped from
// environment before being handed to the risk package.
type RiskConfig struct {
	MaxRiskPerTradePercent float64
	DailyLossCapPercent    float64
	MaxDrawdownPercent     float64
	MaxConsecutiveLosses   int
	MaxOpenPositions       int
	MaxTradesPerDay        int
}

// SignalConfig holds indicator periods and exit multipliers.
type SignalConfig struct {
	EMAFast            int
	EMASlow            int
	EMAPullback        int
	RSIPeriod          int
	ATRPeriod          int
	ATRStopMultiplier  float64
}

// LoopConfig controls the orchestrator's tick cadence and hold limits.
type LoopConfig struct {
	IntervalSeconds      int
	MaxPositionHoldHours float64
}

// SafetyConfig holds the secondary-invariant knobs not already covered
// by RiskConfig.
type SafetyConfig struct {
	MinTimeBetweenTradesSeconds int
	EmergencyStopEnabled        bool
}

// PostgresConfig holds the DSN for the trade/audit repositories.
type PostgresConfig struct {
	DSN string
}

// RedisConfig holds the candle read-through cache connection.
type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	PoolSize int
}

// AuthConfig holds the admin-token verification secret for circuit
// breaker reset and emergency stop release.
type AuthConfig struct {
	JWTSecret string
}

// LoggingConfig controls the zerolog sink.
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// absolute caps: HardRiskLimits per spec.md §3 is itself the upper bound
// configuration loading must clamp to, not a looser operational ceiling
// above it — a deployment cannot widen max_risk_per_trade_percent past
// 1.0, daily_loss_cap_percent past 3.0, and so on, no matter what the
// environment requests.
var (
	capMaxRiskPerTradePercent      = 1.0
	capDailyLossCapPercent         = 3.0
	capMaxDrawdownPercent          = 10.0
	capMaxConsecutiveLosses        = 5
	capMaxOpenPositions            = 2
	capMaxTradesPerDay             = 6
	capMinTimeBetweenTradesSeconds = 300
	capMaxPositionHoldHours        = 72.0
)

// Load reads the configuration from the environment, applying
// spec-defined defaults and clamping anything over its absolute cap.
func Load(logger zerolog.Logger) Config {
	defaults := risk.DefaultHardRiskLimits()

	cfg := Config{
		Risk: RiskConfig{
			MaxRiskPerTradePercent: clampFloat(logger, "MAX_RISK_PER_TRADE", getEnvFloat("MAX_RISK_PER_TRADE", defaults.MaxRiskPerTradePercent), capMaxRiskPerTradePercent),
			DailyLossCapPercent:    clampFloat(logger, "MAX_DAILY_LOSS", getEnvFloat("MAX_DAILY_LOSS", defaults.DailyLossCapPercent), capDailyLossCapPercent),
			MaxDrawdownPercent:     clampFloat(logger, "MAX_DRAWDOWN", getEnvFloat("MAX_DRAWDOWN", defaults.MaxDrawdownPercent), capMaxDrawdownPercent),
			MaxConsecutiveLosses:   clampInt(logger, "MAX_CONSECUTIVE_LOSSES", getEnvInt("MAX_CONSECUTIVE_LOSSES", defaults.MaxConsecutiveLosses), capMaxConsecutiveLosses),
			MaxOpenPositions:       clampInt(logger, "MAX_OPEN_POSITIONS", getEnvInt("MAX_OPEN_POSITIONS", defaults.MaxOpenPositions), capMaxOpenPositions),
			MaxTradesPerDay:        clampInt(logger, "MAX_TRADES_PER_DAY", getEnvInt("MAX_TRADES_PER_DAY", defaults.MaxTradesPerDay), capMaxTradesPerDay),
		},
		Signal: SignalConfig{
			EMAFast:           getEnvInt("EMA_FAST", 50),
			EMASlow:           getEnvInt("EMA_SLOW", 200),
			EMAPullback:       getEnvInt("EMA_PULLBACK", 20),
			RSIPeriod:         getEnvInt("RSI_PERIOD", 14),
			ATRPeriod:         getEnvInt("ATR_PERIOD", 14),
			ATRStopMultiplier: getEnvFloat("ATR_STOP_MULTIPLIER", 1.5),
		},
		Loop: LoopConfig{
			IntervalSeconds:      getEnvInt("LOOP_INTERVAL_SECONDS", 60),
			MaxPositionHoldHours: clampFloat(logger, "MAX_POSITION_HOLD_HOURS", getEnvFloat("MAX_POSITION_HOLD_HOURS", capMaxPositionHoldHours), capMaxPositionHoldHours),
		},
		Safety: SafetyConfig{
			MinTimeBetweenTradesSeconds: clampIntMin(logger, "MIN_TIME_BETWEEN_TRADES", getEnvInt("MIN_TIME_BETWEEN_TRADES", capMinTimeBetweenTradesSeconds), capMinTimeBetweenTradesSeconds),
			EmergencyStopEnabled:        getEnvBool("EMERGENCY_STOP_ENABLED", true),
		},
		Postgres: PostgresConfig{
			DSN: getEnvString("POSTGRES_DSN", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Address:  getEnvString("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		Auth: AuthConfig{
			JWTSecret: getEnvString("AUTH_JWT_SECRET", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
		PaperTrading: getEnvBool("PAPER_TRADING", true),
	}

	return cfg
}

// HardRiskLimits converts the loaded RiskConfig into the risk
// package's limits type.
func (c Config) HardRiskLimits() risk.HardRiskLimits {
	defaults := risk.DefaultHardRiskLimits()
	return risk.HardRiskLimits{
		MaxRiskPerTradePercent: c.Risk.MaxRiskPerTradePercent,
		MinRiskPerTradePercent: defaults.MinRiskPerTradePercent,
		DailyLossCapPercent:    c.Risk.DailyLossCapPercent,
		MaxDrawdownPercent:     c.Risk.MaxDrawdownPercent,
		MaxConsecutiveLosses:   c.Risk.MaxConsecutiveLosses,
		MaxOpenPositions:       c.Risk.MaxOpenPositions,
		MaxTradesPerDay:        c.Risk.MaxTradesPerDay,
	}
}

func clampFloat(logger zerolog.Logger, key string, value, cap float64) float64 {
	if value > cap {
		logger.Warn().Str("key", key).Float64("value", value).Float64("cap", cap).Msg("config value clamped to absolute cap")
		return cap
	}
	return value
}

func clampInt(logger zerolog.Logger, key string, value, cap int) int {
	if value > cap {
		logger.Warn().Str("key", key).Int("value", value).Int("cap", cap).Msg("config value clamped to absolute cap")
		return cap
	}
	return value
}

// clampIntMin enforces a floor rather than a ceiling: unlike the other
// HardRiskLimits fields, min_time_between_trades_s is riskier the
// *lower* it goes (more frequent trading), so a deployment may only
// raise it above the spec's 300s floor, never lower it.
func clampIntMin(logger zerolog.Logger, key string, value, min int) int {
	if value < min {
		logger.Warn().Str("key", key).Int("value", value).Int("min", min).Msg("config value clamped to absolute floor")
		return min
	}
	return value
}

func getEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
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

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
