package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rmax-ai/smoglight/pkg/api"
	"github.com/rmax-ai/smoglight/pkg/session"
	sessionredis "github.com/rmax-ai/smoglight/pkg/session/redis"
	"github.com/rmax-ai/smoglight/pkg/sim"
	"github.com/rmax-ai/smoglight/pkg/store"
)

func main() {
	fmt.Println(`{"level":"info","msg":"system_started","component":"smoglight-d"}`)

	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Printf(`{"level":"fatal","msg":"failed_to_load_config","error":"%v"}`+"\n", err)
		os.Exit(1)
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		fmt.Printf(`{"level":"fatal","msg":"failed_to_init_store","error":"%v"}`+"\n", err)
		os.Exit(1)
	}
	fmt.Printf(`{"level":"info","msg":"store_initialized","path":"%s"}`+"\n", cfg.DBPath)

	// Reading mirror: Redis when configured, in-memory otherwise.
	var readings session.ReadingStore
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		readings = sessionredis.NewRedisReadingStore(client)
		fmt.Printf(`{"level":"info","msg":"redis_mirror_enabled","addr":"%s"}`+"\n", cfg.RedisAddr)
	} else {
		readings = session.NewMemoryReadingStore()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	simCfg := sim.DefaultConfig()
	simCfg.Vehicles = cfg.Vehicles

	simulator, err := session.NewSimulator(simCfg, sim.NewConfigSource(seed, simCfg), readings)
	if err != nil {
		fmt.Printf(`{"level":"fatal","msg":"failed_to_init_simulator","error":"%v"}`+"\n", err)
		os.Exit(1)
	}

	// Resume the previous session if a snapshot exists.
	if snap, err := st.LoadSnapshot(context.Background()); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_load_snapshot","error":"%v"}`+"\n", err)
	} else if snap != nil {
		if err := simulator.Restore(*snap); err != nil {
			fmt.Printf(`{"level":"error","msg":"failed_to_restore_snapshot","error":"%v"}`+"\n", err)
		} else {
			fmt.Printf(`{"level":"info","msg":"session_restored","tick":%d,"phase":"%s"}`+"\n", snap.Tick, snap.Phase)
		}
	}

	server := api.NewServer(simulator, readings, cfg.Addr)

	go func() {
		if err := server.Start(); err != nil {
			fmt.Printf(`{"level":"fatal","msg":"server_failed","error":"%v"}`+"\n", err)
			os.Exit(1)
		}
	}()

	// Auto-refresh loop: each tick completes before the next fires, so
	// steps never overlap.
	stopTicker := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()
		dt := cfg.TickInterval.Seconds()
		for {
			select {
			case <-stopTicker:
				return
			case <-ticker.C:
				if !simulator.Running() {
					continue
				}
				if _, err := simulator.Step(dt); err != nil {
					fmt.Printf(`{"level":"error","msg":"tick_failed","error":"%v"}`+"\n", err)
				}
			}
		}
	}()
	fmt.Printf(`{"level":"info","msg":"ticker_started","interval":"%s"}`+"\n", cfg.TickInterval)

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigs
	fmt.Printf(`{"level":"info","msg":"shutdown_initiated","signal":"%s"}`+"\n", sig)

	close(stopTicker)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_stop_server","error":"%v"}`+"\n", err)
	}

	snap := simulator.Snapshot()
	if err := st.SaveSnapshot(shutdownCtx, &snap); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_save_snapshot","error":"%v"}`+"\n", err)
	} else {
		fmt.Printf(`{"level":"info","msg":"snapshot_saved","tick":%d}`+"\n", snap.Tick)
	}

	if err := st.Close(); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_close_store","error":"%v"}`+"\n", err)
	} else {
		fmt.Println(`{"level":"info","msg":"store_closed"}`)
	}

	fmt.Println(`{"level":"info","msg":"shutdown_complete"}`)
}
