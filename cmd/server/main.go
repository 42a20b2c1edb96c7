package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	affiliationClient "badgecreator/internal/adapters/affiliation"
	"badgecreator/internal/adapters/badgeapi"
	emailPkg "badgecreator/internal/adapters/email"
	web "badgecreator/internal/adapters/http"
	"badgecreator/internal/adapters/http/perf"
	"badgecreator/internal/adapters/storage"
	submissionStore "badgecreator/internal/adapters/storage/submission"
	"badgecreator/internal/config"
	"badgecreator/internal/domain/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Submission log database: WAL mode and busy timeout
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: one collector for requests, queries and upstream calls
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, float64(cfg.SlowQueryMs))
	httpClient := perf.NewClient(cfg.HTTPTimeout, collector)

	submissions := submissionStore.NewSQLiteStore(timedDB)
	backend := badgeapi.NewClient(cfg.BackendURL, cfg.BulkURL, cfg.PersonURL, httpClient)
	deps := &web.Deps{
		Affiliations: affiliationClient.NewClient(cfg.VendorURL, cfg.EntertainmentURL, httpClient),
		Badges:       backend,
		Bulk:         backend,
		Persons:      backend,
		Log:          submissions,
		Submissions:  submissions,
		Collector:    collector,
	}

	if cfg.ResendKey != "" {
		deps.Mailer = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom)
		log.Println("Bulk confirmations enabled (Resend)")
	} else {
		deps.Mailer = emailPkg.NewNoopSender()
		log.Println("Bulk confirmations logged only (set BADGE_RESEND_KEY for delivery)")
	}

	csrfKey, _ := cfg.CSRFKey() // validated by config.Load
	page, _ := session.ParsePage(cfg.DefaultPage)
	handler, err := web.NewMux(deps, web.Options{
		Title:          cfg.Title,
		LogoURL:        cfg.LogoURL,
		Intro:          cfg.Intro,
		PublicURL:      cfg.PublicURL,
		DefaultPage:    page,
		CSRFKey:        csrfKey,
		Production:     cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins,
		SlowRequestMs:  float64(cfg.SlowRequestMs),
	})
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go web.RunSessionJanitor(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Badge creator %s starting on %s (env=%s, schema=%d)", version, cfg.Addr, cfg.Env, storage.LatestSchemaVersion())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
