package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultAddr         = "127.0.0.1:8094"
	defaultTickInterval = time.Second
	defaultSeed         = int64(0)
)

type Config struct {
	DBPath       string
	Addr         string
	TickInterval time.Duration
	RedisAddr    string
	Seed         int64
	Vehicles     int
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	defaultDBPath := filepath.Join(cwd, "smoglight.db")

	dbPath := envOrDefault("SMOGLIGHT_DB_PATH", defaultDBPath)
	addr := addrFromEnv(defaultAddr)
	redisAddr := os.Getenv("SMOGLIGHT_REDIS_ADDR")

	tickInterval := defaultTickInterval
	if tickIntervalEnv := os.Getenv("SMOGLIGHT_TICK_INTERVAL"); tickIntervalEnv != "" {
		parsed, err := time.ParseDuration(tickIntervalEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SMOGLIGHT_TICK_INTERVAL: %w", err)
		}
		if parsed <= 0 {
			return Config{}, errors.New("SMOGLIGHT_TICK_INTERVAL must be positive")
		}
		tickInterval = parsed
	}

	flagSet := flag.NewFlagSet("smoglight-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagDB := flagSet.String("db", dbPath, "path to SQLite snapshot database")
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagTickInterval := flagSet.String("tick-interval", tickInterval.String(), "auto-refresh tick interval")
	flagRedis := flagSet.String("redis", redisAddr, "Redis address for reading mirror (empty = in-memory)")
	flagSeed := flagSet.Int64("seed", defaultSeed, "decay jitter seed (0 = from clock)")
	flagVehicles := flagSet.Int("vehicles", 12, "initial vehicle count")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	tickIntervalParsed, err := time.ParseDuration(*flagTickInterval)
	if err != nil {
		return Config{}, fmt.Errorf("invalid tick interval: %w", err)
	}
	if tickIntervalParsed <= 0 {
		return Config{}, errors.New("tick interval must be positive")
	}

	config := Config{
		DBPath:       resolvePath(*flagDB, cwd),
		Addr:         strings.TrimSpace(*flagAddr),
		TickInterval: tickIntervalParsed,
		RedisAddr:    strings.TrimSpace(*flagRedis),
		Seed:         *flagSeed,
		Vehicles:     *flagVehicles,
	}

	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}
	if config.Vehicles < 0 {
		return Config{}, errors.New("vehicles must be non-negative")
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func addrFromEnv(fallback string) string {
	if value := os.Getenv("SMOGLIGHT_ADDR"); value != "" {
		return value
	}
	if port := os.Getenv("SMOGLIGHT_PORT"); port != "" {
		return fmt.Sprintf("127.0.0.1:%s", port)
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}
