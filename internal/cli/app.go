package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rvachev/qforge/internal/bank"
	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/match"
	"github.com/rvachev/qforge/internal/model"
)

// loadConfig merges the config file and environment over defaults.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid configuration, using defaults: %v\n", err)
		cfg = model.DefaultConfig()
	}
	return cfg
}

// newLogger builds the CLI logger: human-readable under --verbose,
// terse JSON otherwise.
func newLogger() *zap.Logger {
	if verbose {
		log, err := zap.NewDevelopment()
		if err == nil {
			return log
		}
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// openStore opens the answer bank database from config, creating the
// qforge home directory on first use.
func openStore(cfg *model.Config, log *zap.Logger) (*bank.Store, *sqlx.DB, error) {
	path := cfg.Store.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("find home directory: %w", err)
		}
		dir := filepath.Join(home, ".qforge")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create qforge directory: %w", err)
		}
		path = filepath.Join(dir, "bank.db")
	}

	db, err := bank.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return bank.NewStore(db, log), db, nil
}

// newEngine builds the matching engine with the configured token
// cache.
func newEngine(cfg *model.Config) *match.Engine {
	var cache *match.TokenCache
	if cfg.Match.CacheEnabled {
		ttl := time.Duration(cfg.Match.CacheTTLHours) * time.Hour
		if ttl <= 0 {
			ttl = time.Hour
		}
		cache = match.NewTokenCache(ttl)
	}
	return match.NewEngine(cache)
}

// printIssues renders field-tagged validation issues for terminal
// feedback.
func printIssues(issues []errs.Issue) {
	for _, is := range issues {
		if is.Field != "" {
			fmt.Printf("  ✗ [%s] %s: %s\n", is.Code, is.Field, is.Message)
		} else {
			fmt.Printf("  ✗ [%s] %s\n", is.Code, is.Message)
		}
	}
}
