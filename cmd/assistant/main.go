package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gradhub/assistant/internal/api"
	"gradhub/assistant/internal/assistant"
	"gradhub/assistant/internal/clientws"
	"gradhub/assistant/internal/config"
	"gradhub/assistant/internal/dispatch"
	"gradhub/assistant/internal/events"
	"gradhub/assistant/internal/health"
	"gradhub/assistant/internal/idle"
	"gradhub/assistant/internal/kvstore"
	"gradhub/assistant/internal/position"
	"gradhub/assistant/internal/route"
	"gradhub/assistant/internal/speech"
	"gradhub/assistant/internal/tour"
)

func main() {
	// Load .env file if present (ignored if missing)
	_ = godotenv.Load()

	cfg := config.Load()

	var store kvstore.Store
	sq, err := kvstore.OpenSQLite(cfg.Store.Path)
	if err != nil {
		// Degraded mode: settings and tour progress won't survive restarts.
		log.Printf("open sqlite store at %s: %v; falling back to in-memory", cfg.Store.Path, err)
		store = kvstore.NewMemory()
	} else {
		store = sq
	}

	elog := events.NewLog()
	ctrl := assistant.New(store, elog, assistant.Config{
		GreetingPulse: time.Duration(cfg.Assistant.GreetingPulseMs) * time.Millisecond,
	})

	reg := clientws.NewRegistry()
	transport := clientws.NewTransport(reg)

	remote := speech.NewRemote(speech.RemoteConfig{
		APIKey:   cfg.Speech.APIKey,
		FolderID: cfg.Speech.FolderID,
		Endpoint: cfg.Speech.Endpoint,
		Format:   cfg.Speech.Format,
	})
	bridge := speech.NewBridge(remote, transport, transport, elog)

	positions := position.NewManager(store, cfg.Assistant.DragThresholdPx)
	positions.SetOnLive(transport.PushPosition)
	ctrl.SetOnCornerChange(func(assistant.Corner) {
		// Picking a new default corner drops any dragged override.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		positions.ResetPosition(ctx)
	})

	monitor := idle.NewMonitor(ctrl)
	ctrl.SetOnChange(func(snap assistant.Snapshot) {
		transport.PushState(snap)
		monitor.SetEnabled(snap.Settings.Enabled)
	})

	tours := tour.New(ctrl, bridge, transport, store, elog, tour.Config{
		StartDelay: time.Duration(cfg.Tour.StartDelayMs) * time.Millisecond,
		Voice:      cfg.Speech.Voice,
		Emotion:    cfg.Speech.Emotion,
		Lang:       cfg.Speech.Lang,
		Speed:      cfg.Speech.Speed,
	})
	mapper := route.NewMapper(ctrl, tours.Active, nil)

	checker := health.NewChecker(store, remote)
	h := api.NewHandlers(cfg, ctrl, monitor, positions, bridge, tours, checker, elog)

	mux := http.NewServeMux()
	mux.Handle("/", api.NewRouter(h))
	// WS client route
	wss := clientws.NewServer(reg, ctrl, elog)
	disp := dispatch.New(ctrl, monitor, positions, mapper, tours, transport, elog)
	wss.OnMessage = disp.OnMessage
	mux.HandleFunc("/ws/client", wss.HandleClientWS)
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Printf("shutdown signal received; stopping server...")
		bridge.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Printf("server starting on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println("server error:", err)
		os.Exit(1)
	}

	ctrl.Close()
	if err := store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
