package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/clinic-local-store/internal/api"
	"github.com/hackgods/clinic-local-store/internal/app"
	"github.com/hackgods/clinic-local-store/internal/config"
)

var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s store=%s seed=%s", cfg.Env, cfg.HTTPPort, cfg.StoreDriver, cfg.SeedMode)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(rootCtx, cfg)
	if err != nil {
		log.Fatalf("open stores: %v", err)
	}
	defer a.Close()

	seedCtx, cancelSeed := context.WithTimeout(rootCtx, 30*time.Second)
	err = a.Bootstrap(seedCtx, cfg.SeedMode)
	cancelSeed()
	if err != nil {
		log.Fatalf("seed error: %v", err)
	}

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Clinic:       a.Clinic,
			Session:      a.Session,
			Preferences:  a.Preferences,
			Dependencies: a.Dependencies,
			Env:          cfg.Env,
			Version:      version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-errCh:
		if err != nil {
			log.Printf("http server error: %v", err)
		}
	}

	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
