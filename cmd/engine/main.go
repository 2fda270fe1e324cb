package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"contactpilot-engine/internal/backend"
	"contactpilot-engine/internal/config"
	"contactpilot-engine/internal/events"
	"contactpilot-engine/internal/httpapi"
	"contactpilot-engine/internal/ingest"
	"contactpilot-engine/internal/review"
	"contactpilot-engine/internal/scheduler"
	"contactpilot-engine/internal/store"
)

func main() {
	// Optional .env for development overrides; absence is fine.
	_ = godotenv.Load()

	// Engine data dir: use env if provided (the desktop shell passes one),
	// else local folder.
	dataDir := os.Getenv("CONTACTPILOT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir. A second instance would race the sqlite file
	// and double-fire review timers.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("instance lock: %v", err)
	}
	if !locked {
		log.Fatalf("another engine is already running for %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		if err := config.OverlayExclusions(&cfg, filepath.Join(dataDir, "exclusions.yml")); err != nil {
			log.Printf("[config] exclusions overlay: %v", err)
		}
		normalized, vr := config.NormalizeAndValidate(cfg)
		for _, warn := range vr.Warnings {
			log.Printf("[config] warning: %s", warn)
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)
	cfgSnapshot := func() config.Config { return cfgVal.Load().(config.Config) }

	dbPath := filepath.Join(dataDir, "contactpilot.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	contacts := store.Contacts{DB: db.Pool}
	rejected := store.Rejected{DB: db.Pool}

	hub := events.NewHub()

	engine := review.New(review.Options{
		Cfg:      cfgSnapshot,
		Contacts: contacts,
		Rejected: rejected,
		Notify: func(n review.Notification) {
			hub.Publish(events.MakeEvent("", n.Type, 1, n.Message, n.Data))
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pusher *backend.Pusher
	if cfg.Backend.Enabled {
		pusher = &backend.Pusher{
			Client:   backend.NewClient(cfg.Backend.BaseURL),
			Contacts: contacts,
		}
		pushEvery := time.Duration(cfg.Backend.PushSeconds) * time.Second
		if pushEvery <= 0 {
			pushEvery = 5 * time.Minute
		}
		go scheduler.Every(ctx, pushEvery, "backend", func(ctx context.Context) error {
			_, err := pusher.PushOnce(ctx)
			return err
		})
	}

	go ingest.Loop(ctx, cfgSnapshot, engine)

	mux := httpapi.NewMux(httpapi.Deps{
		Engine:      engine,
		Contacts:    contacts,
		Rejected:    rejected,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		Pusher:      pusher,
	})

	port := cfg.App.Port
	if port == 0 {
		port = 38515
	}
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.Recover,
			httpapi.RequestID,
			httpapi.AccessLog,
			httpapi.Cors,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownToken, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	writeRuntimeInfo(dataDir, addr, shutdownToken)
	mux.HandleFunc("/shutdown", shutdownHandler(&shutdownToken, srv))

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
