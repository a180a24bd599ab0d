package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"campusnet/internal/config"
	"campusnet/internal/handler"
	"campusnet/internal/hub"
	"campusnet/internal/metrics"
	"campusnet/internal/repository/sqlite"
	"campusnet/internal/service"
	"campusnet/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr  string
	serveDB    string
	serveWatch string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite database path (overrides database.path)")
	serveCmd.Flags().StringVar(&serveWatch, "watch", "", "Graph file to import and re-import on change (overrides watch.path)")
}

// loadConfig reads the config named by --config, or searches the default
// locations. Explicit flags win over file values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if configPath != "" {
		cfg, path, err = config.LoadFromPath(configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if path != "" {
		log.Printf("Config loaded: %s", path)
	}

	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("db") {
		cfg.Database.Path = serveDB
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch.Path = serveWatch
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log.Println("Starting campusnet server...")
	log.Printf("Configuration:\n%s", cfg.Summary())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	eventBus := service.NewEventBus(m)

	eventHub := hub.New(cfg.Server.CORSOrigin)
	go eventHub.Run(ctx)
	eventHub.Attach(ctx, eventBus)

	graphSvc, err := service.NewGraphService(ctx, repo, eventBus, m)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}

	if cfg.Watch.Path != "" {
		onChange := watcher.ImportOnChange(ctx, graphSvc, cfg.Watch.Strategy)
		onChange(cfg.Watch.Path)

		w := watcher.New(onChange, cfg.Watch.Path).WithDebounce(cfg.Watch.Debounce.Duration())
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Watcher stopped: %v", err)
			}
		}()
	}

	h, err := buildHandler(cfg, graphSvc, eventHub, m)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}

// buildHandler wires the routes and middleware. m may be nil.
func buildHandler(cfg *config.Config, graphSvc *service.GraphService, eventHub *hub.Hub, m *metrics.Metrics) (http.Handler, error) {
	mux := http.NewServeMux()

	handler.NewOptimizeHandler(service.NewOptimizer(m, "api"), cfg.Server.MaxBodyBytes).Register(mux)
	handler.NewGraphHandler(graphSvc, cfg.Server.MaxBodyBytes).Register(mux)

	mux.Handle("GET /events", eventHub)
	mux.HandleFunc("GET /ws", eventHub.ServeWS)
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "ok")
	})

	gzip, err := handler.Gzip()
	if err != nil {
		return nil, err
	}

	return handler.Chain(mux,
		handler.Recover,
		handler.Logger,
		handler.Metrics(m),
		handler.CORS(cfg.Server.CORSOrigin),
		gzip,
	), nil
}
