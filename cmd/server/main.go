package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"palmietopia/handlers"
	"palmietopia/internal/session"
	"palmietopia/internal/snapshot"
	"palmietopia/pkg/config"
	"palmietopia/pkg/logger"
)

var (
	addr         = flag.String("addr", "", "http service address (overrides config)")
	configFile   = flag.String("config", "config.yml", "path to config file")
	logLevel     = flag.String("log-level", "info", "log level: debug, info, warn, error")
	showCaller   = flag.Bool("show-caller", false, "show caller information in logs")
	snapshotPath = flag.String("snapshot-db", "", "path to the SQLite snapshot database (overrides config; disabled if empty)")
)

func homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"name": "Palmietopia Session Server", "status": "running"}`)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy"}`)
}

func main() {
	flag.Parse()

	var level logger.LogLevel
	switch *logLevel {
	case "debug":
		level = logger.DEBUG
	case "warn":
		level = logger.WARN
	case "error":
		level = logger.ERROR
	default:
		level = logger.INFO
	}
	logger.InitLoggers(level, *showCaller)
	serverLogger := logger.ServerLogger

	cfg, err := config.Load(*configFile)
	if err != nil {
		serverLogger.Warn("could not load config file %s: %v", *configFile, err)
		serverLogger.Info("using default configuration")
		cfg = config.Default()
	} else {
		serverLogger.Info("loaded configuration from %s", *configFile)
	}

	serverAddr := cfg.Server.BindAddress
	if *addr != "" {
		serverAddr = *addr
	}
	dbPath := cfg.Snapshot.DBPath
	if *snapshotPath != "" {
		dbPath = *snapshotPath
	}

	var sink session.SnapshotSink
	if dbPath != "" {
		store, err := snapshot.Open(dbPath)
		if err != nil {
			serverLogger.Fatal("failed to open snapshot database: %v", err)
		}
		defer store.Close()
		sink = store
		serverLogger.Info("snapshotting enabled at %s", dbPath)
	} else {
		serverLogger.Info("snapshotting disabled (no snapshot.db_path configured)")
	}

	mgr := session.NewManager(sink)
	wsHandler := handlers.NewWebSocketHandler(mgr, cfg.WebSocket)

	router := mux.NewRouter()
	router.HandleFunc("/", homeHandler)
	router.HandleFunc("/health", healthHandler)
	router.HandleFunc(cfg.Server.EndpointPath, wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  cfg.WebSocket.ReadTimeout,
		WriteTimeout: cfg.WebSocket.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		serverLogger.Info("server listening on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverLogger.Fatal("server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	serverLogger.Info("received shutdown signal: %v", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	serverLogger.Info("shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		serverLogger.Warn("server forced to shutdown: %v", err)
	}
	serverLogger.Info("server gracefully stopped")
}
