// Package main wires the migration scoring pipeline together: the upstream
// Migration Source, the provider clients the Enrichment Orchestrator fans
// out to, the Scoring Engine configuration, the Token Monitor, and the HTTP
// surface (JSON API + SSE gateway) that serves it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"migration-scorer/internal/api"
	"migration-scorer/internal/gateway"
	"migration-scorer/internal/migration"
	"migration-scorer/internal/monitor"
	"migration-scorer/internal/orchestrator"
	"migration-scorer/internal/priceoracle"
	"migration-scorer/internal/providers"
	"migration-scorer/internal/scoring"
	"migration-scorer/pkg/config"
	"migration-scorer/pkg/logger"
)

const shutdownDrainTimeout = 5 * time.Second

func main() {
	config.LoadEnvFile(".env")
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		panic(err)
	}

	scoreCfg := scoringConfig(cfg.Scoring)
	priceOracle := priceoracle.New(log.With("priceoracle"))
	source := migration.New(cfg.Migration.WSURL, priceOracle, log)

	pairs := newPairIndex(cfg.Providers.PairIndex, log)
	holders := newHolderRegistry(cfg.Providers.HolderRegistry, log)
	swaps := newSwaps(cfg.Providers.Swaps, log)
	chain := newChainRPC(cfg.Providers.ChainRPC, log)
	graduated := newGraduatedTokenIndex(cfg.Providers.GraduatedTokenIndex, log)

	orch := orchestrator.New(pairs, holders, swaps, chain, scoreCfg, log)
	mon := monitor.New(orch, source, graduated, log)
	gw := gateway.New(mon, log)
	a := api.New(mon, gw, log)

	server := api.NewServer(":"+cfg.HTTP.Port, a, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mon.EnsureStarted(ctx)

	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start() }()

	select {
	case <-ctx.Done():
		stop() // restore default signal handling: a second signal exits immediately
		log.Info("shutdown signal received, draining")
	case err := <-serverErr:
		if err != nil {
			log.Error("http server exited unexpectedly", logger.Err(err))
			os.Exit(1)
		}
	}

	drain := cfg.HTTP.ShutdownTimeout
	if drain <= 0 {
		drain = shutdownDrainTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown error", logger.Err(err))
	}

	drained := make(chan struct{})
	go func() {
		mon.Stop()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		log.Warn("drain window elapsed with enrichments still in flight")
	}

	log.Info("shutdown complete")
}

func scoringConfig(c config.ScoringConfig) scoring.Config {
	cfg := scoring.DefaultConfig()
	cfg.MinScore = c.MinScore
	cfg.MaxDevHoldings = c.MaxDevHoldings
	cfg.MinHolders = c.MinHolders
	return cfg
}

func newPairIndex(c config.CredentialSet, log *logger.Logger) *providers.PairIndex {
	if c.BaseURL == "" {
		return nil
	}
	return providers.NewPairIndex(c.BaseURL, c.Keys, providers.WithLogger(log.With("pair_index")))
}

func newHolderRegistry(c config.CredentialSet, log *logger.Logger) *providers.HolderRegistry {
	if c.BaseURL == "" {
		return nil
	}
	return providers.NewHolderRegistry(c.BaseURL, c.Keys, providers.WithLogger(log.With("holder_registry")))
}

func newSwaps(c config.CredentialSet, log *logger.Logger) *providers.Swaps {
	if c.BaseURL == "" {
		return nil
	}
	return providers.NewSwaps(c.BaseURL, c.Keys, providers.WithLogger(log.With("swaps")))
}

func newChainRPC(c config.CredentialSet, log *logger.Logger) *providers.ChainRPC {
	if c.BaseURL == "" {
		return nil
	}
	return providers.NewChainRPC(c.BaseURL, c.Keys, providers.WithLogger(log.With("chain_rpc")))
}

func newGraduatedTokenIndex(c config.CredentialSet, log *logger.Logger) *providers.GraduatedTokenIndex {
	if c.BaseURL == "" {
		return nil
	}
	return providers.NewGraduatedTokenIndex(c.BaseURL, c.Keys, providers.WithLogger(log.With("graduated_index")))
}
