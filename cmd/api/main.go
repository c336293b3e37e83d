package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/whimsylab/couplescourt/internal/config"
	"github.com/whimsylab/couplescourt/internal/handler"
	"github.com/whimsylab/couplescourt/internal/service/ai"
	messageservice "github.com/whimsylab/couplescourt/internal/service/message"
	resolveservice "github.com/whimsylab/couplescourt/internal/service/resolve"
	sessionservice "github.com/whimsylab/couplescourt/internal/service/session"
	"github.com/whimsylab/couplescourt/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var st store.Store
	if cfg.Store.Path != "" {
		sqliteStore, err := store.OpenSQLite(cfg.Store.Path)
		if err != nil {
			log.Fatalf("failed to open store at %s: %v", cfg.Store.Path, err)
		}
		defer sqliteStore.Close()
		st = sqliteStore
		log.Printf("using sqlite store at %s", cfg.Store.Path)
	} else {
		st = store.NewMemory()
		log.Println("DB_PATH not set, using in-memory store")
	}

	var analyzer resolveservice.Analyzer
	if cfg.AI.Enabled() {
		client, err := ai.NewClient(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize analysis client: %v", err)
			log.Println("continuing without resolution analysis")
		} else {
			analyzer = client
			log.Println("analysis client initialized successfully")
		}
	} else {
		log.Println("analysis model credentials not configured, resolution analysis disabled")
	}

	sessionSvc := sessionservice.NewService(st, cfg.Session.TTL)
	messageSvc := messageservice.NewService(st, cfg.Session.TurnPolicy, cfg.Session.MessageMaxLen)
	resolveSvc := resolveservice.NewService(st, analyzer)

	router := handler.NewRouter(sessionSvc, messageSvc, resolveSvc, cfg.Session.AppURL)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Couples Court backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
