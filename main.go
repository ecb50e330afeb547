package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"pblstudio/internal/config"
	"pblstudio/internal/docstore"
	"pblstudio/internal/web"
	"pblstudio/internal/webtoons"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("pblstudio config: %v", err)
	}

	store, err := docstore.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("pblstudio open store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("pblstudio close store: %v", err)
		}
	}()

	repo, err := webtoons.NewRepository(store)
	if err != nil {
		log.Fatalf("pblstudio repository: %v", err)
	}

	handler, err := web.NewHandler(cfg, webtoons.NewService(repo))
	if err != nil {
		log.Fatalf("pblstudio handler setup failed: %v", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("pblstudio listening on %s", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Printf("pblstudio server stopped: %v", err)
		}
		return
	case <-ctx.Done():
	}

	log.Printf("pblstudio shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("pblstudio shutdown: %v", err)
	}
}
