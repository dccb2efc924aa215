package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/config"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/service"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/store"
)

type seedFile struct {
	Accounts []struct {
		Email string `yaml:"email"`
		Name  string `yaml:"name"`
		IC    string `yaml:"ic"`
		Role  string `yaml:"role"`
		Club  string `yaml:"club"`
	} `yaml:"accounts"`
}

func main() {
	configFile := flag.String("config", "etc/config-dev.yaml", "config file")
	seedPath := flag.String("accounts", "etc/seed.yaml", "staff accounts to create")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)
	if cfg.InMemory() {
		log.Fatal("seed needs database.host; an in-memory store would be lost on exit")
	}

	db, err := cfg.OpenGormDB()
	if err != nil {
		log.Fatal(err)
	}
	gs := store.NewGormStore(db)

	// Step 1: tables
	if err := gs.Migrate(); err != nil {
		log.Fatal("migrate failed:", err)
	}

	// Step 2: staff accounts
	raw, err := os.ReadFile(*seedPath)
	if err != nil {
		log.Fatal(err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		log.Fatal("parse seed file:", err)
	}
	auth := service.NewAuthService(gs, cfg.Auth.EmailDomain)
	ctx := context.Background()
	for _, a := range sf.Accounts {
		created, err := auth.Seed(ctx, model.Account{Email: a.Email, Name: a.Name, IC: a.IC, Role: a.Role, Club: a.Club})
		if err != nil {
			log.Fatal(err)
		}
		if created {
			logger.Info("seed: account created", "email", a.Email, "role", a.Role)
		} else {
			logger.Info("seed: account exists, skipped", "email", a.Email)
		}
	}

	logger.Info("=== all done ===", "accounts", len(sf.Accounts))
}
