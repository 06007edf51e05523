package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gadsdencode/roboscan/internal/app"
	"github.com/gadsdencode/roboscan/internal/cli"
	"github.com/gadsdencode/roboscan/internal/cooldown"
	"github.com/gadsdencode/roboscan/internal/history"
	"github.com/gadsdencode/roboscan/internal/logging"
	"github.com/gadsdencode/roboscan/internal/monitoring"
	"github.com/gadsdencode/roboscan/internal/scanner"
	"github.com/gadsdencode/roboscan/internal/server"
	"github.com/gadsdencode/roboscan/internal/webclient"
)

func main() {
	logger := logging.NewStdoutLogger("roboscan")

	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "argument error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := app.LoadConfig(args.ConfigPath)
	if err != nil {
		logger.Error("loading config", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	if args.Listen != "" {
		cfg.ListenAddr = args.Listen
	}

	wc, err := webclient.NewNetHTTPClient(cfg.WebClientCfg, logger, nil)
	if err != nil {
		logger.Error("creating webclient", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
	defer wc.Close()

	metrics := monitoring.NewMetrics()
	sc := scanner.New(cfg.ScannerCfg, wc, logger, metrics)

	hist, err := history.Open(cfg.HistoryPath, logger)
	if err != nil {
		logger.Error("opening history store", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	var cd cooldown.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cd = cooldown.NewRedisStore(client)
		logger.Info("using redis cooldown store", logging.Field{Key: "addr", Value: cfg.RedisAddr})
	} else {
		cd = cooldown.NewMemoryStore()
	}

	orch := app.NewOrchestrator(cfg, sc, hist, cd, logger)
	defer orch.Close()

	if args.ScanURL != "" {
		runOneShot(orch, args.ScanURL, logger)
		return
	}

	srv := server.NewServer(server.Config{ListenAddr: cfg.ListenAddr, Logger: logger}, orch, wc)

	logger.Info("listening", logging.Field{Key: "addr", Value: cfg.ListenAddr})
	if err := srv.HTTPServer().ListenAndServe(); err != nil {
		logger.Error("server stopped", logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}

// runOneShot scans one URL and prints the outcome as indented JSON.
func runOneShot(orch *app.Orchestrator, url string, logger logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	outcome, err := orch.RunScan(ctx, "", url)
	if err != nil {
		logger.Error("scan failed",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(outcome)
}
