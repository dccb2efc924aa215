package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/config"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/handler"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/store"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)

	s, err := openStore(cfg)
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	r := handler.NewRouter(cfg, s)

	slog.Info("server starting", "addr", cfg.Addr(), "public_url", cfg.Server.PublicURL, "pdf", cfg.Print.PDF)
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}

// openStore uses MySQL when a database host is configured and keeps
// everything in memory otherwise.
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.InMemory() {
		slog.Warn("no database host configured, records are kept in memory")
		return store.NewMemoryStore(), nil
	}
	db, err := cfg.OpenGormDB()
	if err != nil {
		return nil, err
	}
	gs := store.NewGormStore(db)
	if err := gs.Migrate(); err != nil {
		return nil, err
	}
	return gs, nil
}
