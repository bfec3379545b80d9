package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cognicore/autotag/internal/api"
	"github.com/cognicore/autotag/internal/auth"
	"github.com/cognicore/autotag/internal/logging"
	"github.com/cognicore/autotag/pkg/autotag"
	"github.com/cognicore/autotag/pkg/autotag/config"
	"github.com/cognicore/autotag/pkg/autotag/inference"
	"github.com/cognicore/autotag/pkg/autotag/store/sqlite"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (optional, AUTOTAG_CONFIG also works)")
		issueFor   = flag.String("issue-token", "", "Print a token for this user ID and exit")
		tokenTTL   = flag.Duration("token-ttl", 24*time.Hour, "Lifetime of tokens printed by -issue-token")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	mgr, err := auth.NewManager(cfg.Auth.JWTSecret, *tokenTTL)
	if err != nil {
		log.Fatalf("auth: %v (set AUTOTAG_JWT_SECRET)", err)
	}

	if *issueFor != "" {
		tok, err := mgr.Issue(*issueFor)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(tok)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := buildCatalog(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("startup failed")
		os.Exit(1)
	}
	defer catalog.Close()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewRouter(api.Options{
			Catalog:     catalog,
			Auth:        mgr,
			CORSOrigins: cfg.Server.CORSOrigins,
			RateLimit:   cfg.Server.RateLimit,
			RateWindow:  cfg.Server.RateWindow,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("shutdown")
	}
}

// buildCatalog loads the artifact and opens the store. An eager artifact
// load failure is fatal; a lazy one surfaces on the first request instead.
func buildCatalog(ctx context.Context, cfg *config.Config) (*autotag.Catalog, error) {
	var tagger inference.Tagger
	if cfg.Artifact.Lazy {
		tagger = inference.LazyPath(cfg.Artifact.Path)
	} else {
		svc, err := inference.Open(cfg.Artifact.Path)
		if err != nil {
			return nil, err
		}
		tagger = svc
	}

	st, err := sqlite.OpenSQLite(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return autotag.New(autotag.Options{Store: st, Tagger: tagger}), nil
}
