package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/draftview/backend-go/internal/api"
	"github.com/inamate/draftview/backend-go/internal/asset"
	"github.com/inamate/draftview/backend-go/internal/config"
	"github.com/inamate/draftview/backend-go/internal/engine"
	mw "github.com/inamate/draftview/backend-go/internal/middleware"
	"github.com/inamate/draftview/backend-go/internal/session"
	"github.com/inamate/draftview/backend-go/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var docs store.Store
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, documents are kept in memory")
		docs = store.NewMemory()
	} else {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		docs = pg
	}

	assets, err := asset.NewStore(cfg.AssetDir, logger)
	if err != nil {
		slog.Error("open asset store", "error", err)
		os.Exit(1)
	}

	newEngine := func() *engine.Engine {
		return engine.NewEngine(engine.Config{
			ArcSegments:    cfg.ArcSegments,
			CircleSegments: cfg.CircleSegments,
			WidePolylines:  cfg.WidePolylines,
			ByLayerColors:  cfg.ByLayerColors,
			Sources:        assets,
			Loader:         assets,
			Logger:         logger.With("component", "engine"),
		})
	}

	hub := session.NewHub(session.HubConfig{
		Load:      docs.Get,
		Save:      docs.Put,
		NewEngine: newEngine,
		Logger:    logger.With("component", "session"),
	})
	go hub.Run()

	apiHandler := api.NewHandler(docs, hub)
	assetHandler := asset.NewHandler(assets)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.HandleFunc("/assets/{source}/info", assetHandler.Info).Methods("GET")
	r.HandleFunc("/assets/{source}", assetHandler.Delete).Methods("DELETE")
	r.PathPrefix(asset.URLPrefix).Handler(assetHandler.Serve()).Methods("GET")

	apiHandler.Routes(r.PathPrefix("/api").Subrouter())

	r.HandleFunc("/ws/documents/{id}", hub.ServeWS(cfg.OriginPatterns()))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first so live rooms are saved
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "assets", assets.Dir())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
