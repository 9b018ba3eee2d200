package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	debugpkg "runtime/debug"
	"os"
	"strings"
	"syscall"
	"os/signal"
	"time"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			path := "panic.log"
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				defer f.Close()
				ts := time.Now().UTC().Format(time.RFC3339)
				fmt.Fprintf(f, "[%s] panic: %v\n%s\n\n", ts, r, debugpkg.Stack())
			}
			logger.Stop()
			os.Exit(1)
		}
	}()

	configPath := flag.String("config", "config.toml", "path to config.toml")
	networkFlag := flag.String("network", "", "override network: main, test, regtest")
	logLevelFlag := flag.String("log-level", "", "override log level (debug/info/warn/error)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal("load config", err)
	}
	if *networkFlag != "" {
		cfg.Network = strings.ToLower(*networkFlag)
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}

	setLogLevel(parseLogLevel(cfg.Log.Level))
	configureFileLogging(cfg.Log.Dir, cfg.Log.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	params := chainParamsForNetwork(cfg.Network)

	rpcUser, rpcPass, err := cfg.rpcCredentials()
	if err != nil {
		fatal("rpc credentials", err)
	}
	rpcClient := NewRPCClient(cfg.RPC.URL, rpcUser, rpcPass, cfg.rpcTimeout())

	startupCtx, cancelStartup := context.WithTimeout(ctx, cfg.rpcTimeout())
	_, err = rpcClient.GetBlockTemplate(startupCtx)
	cancelStartup()
	var nodeErr *rpcError
	if err != nil && !errors.As(err, &nodeErr) {
		fatal("node unreachable at startup", err)
	}

	store, err := OpenStore(cfg.Storage.SqlitePath)
	if err != nil {
		fatal("open store", err)
	}
	defer store.Close()

	notifier, err := NewNotifier(cfg.Notify.DiscordWebhook)
	if err != nil {
		logger.Warn("discord notifier disabled", "error", err)
		notifier = &Notifier{}
	}

	metrics := NewMetrics()
	go metrics.Run(ctx)

	pool := NewWorkerPool(8)
	registry := NewSessionRegistry(pool)
	jobs := NewJobManager()
	jobBuilderCoinbaseTag = cfg.Stratum.CoinbaseTag

	submitter := NewBlockSubmitter(rpcClient, store, notifier, metrics)
	validator := NewShareValidator(jobs, submitter)

	coordinator := &Coordinator{
		jobs:                      jobs,
		registry:                  registry,
		validator:                 validator,
		store:                     store,
		metrics:                   metrics,
		params:                    params,
		defaultDifficulty:         cfg.Stratum.Difficulty,
		acceptSuggestedDifficulty: cfg.Stratum.AcceptSuggestedDifficulty,
		serverVersionMask:         cfg.versionRollingMask(),
	}

	templateSource := NewTemplateSource(rpcClient, jobs, registry, metrics)
	zmqNotify := make(chan struct{}, 4)
	zmqWatcher := NewZMQWatcher(cfg.ZMQ.Endpoint, zmqNotify, metrics)

	go zmqWatcher.Run(ctx)
	go templateSource.Run(ctx, zmqNotify)

	server := NewServer(cfg.listenAddr(), cfg.Stratum.MaxConnections, registry, coordinator)

	logger.Info("solopool starting", "network", cfg.Network, "listen", cfg.listenAddr())
	if err := server.Run(ctx); err != nil {
		fatal("stratum server", err)
	}

	logger.Info("solopool stopped")
	logger.Stop()
}
