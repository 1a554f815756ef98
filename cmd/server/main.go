package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"gatehouse/internal/appuser"
	appuserhandler "gatehouse/internal/appuser/handler"
	"gatehouse/internal/audit"
	audithandler "gatehouse/internal/audit/handler"
	"gatehouse/internal/errorlog"
	errorloghandler "gatehouse/internal/errorlog/handler"
	"gatehouse/internal/platform/config"
	"gatehouse/internal/platform/database"
	"gatehouse/internal/platform/httpserver"
	"gatehouse/internal/platform/logger"
	"gatehouse/internal/platform/metrics"
	platformredis "gatehouse/internal/platform/redis"
	"gatehouse/internal/report"
	selfservicehandler "gatehouse/internal/selfservice/handler"
	"gatehouse/internal/selfservice/tokenindex"
	"gatehouse/internal/settings"
	settingshandler "gatehouse/internal/settings/handler"
	httptransport "gatehouse/internal/transport/http"
	"gatehouse/internal/visitor"
	visitorhandler "gatehouse/internal/visitor/handler"
)

// main wires the stores, services and HTTP surface. Business logic lives in
// the internal service packages; failures here are boot failures.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		visitorStore  visitor.Store
		userStore     appuser.Store
		settingsStore settings.Store
		auditStore    audit.Store
		errlogStore   errorlog.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database connection failed", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Error("schema setup failed", "error", err.Error())
			os.Exit(1)
		}
		visitorStore = visitor.NewPostgresStore(db)
		userStore = appuser.NewPostgresStore(db)
		settingsStore = settings.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		errlogStore = errorlog.NewPostgresStore(db)
		log.Info("using postgres stores")
	} else {
		visitorStore = visitor.NewInMemoryStore()
		userStore = appuser.NewInMemoryStore()
		settingsStore = settings.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		errlogStore = errorlog.NewInMemoryStore()
		log.Warn("no DATABASE_URL configured, using in-memory stores")
	}

	if err := appuser.SeedBootstrapAdmin(ctx, userStore, cfg.BootstrapAdminUser, cfg.BootstrapAdminCredential, log); err != nil {
		log.Error("bootstrap admin seed failed", "error", err.Error())
		os.Exit(1)
	}

	var tokens visitor.TokenIndex
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		tokens = tokenindex.NewRedisIndex(redisClient.Client)
		log.Info("using redis token index")
	} else {
		tokens = tokenindex.NewMemoryIndex()
	}

	auditSvc := audit.NewService(auditStore, log, m)
	errlogSvc := errorlog.NewService(errlogStore, log)
	auditSvc.SetFailureRecorder(errlogSvc)
	userSvc := appuser.NewService(userStore, auditSvc, log, m)
	settingsSvc := settings.NewService(settingsStore, auditSvc, log)
	visitorSvc := visitor.NewService(visitorStore, auditSvc, log, m, cfg.RecordIDPrefix,
		visitor.WithTokenIndex(tokens))

	router := httptransport.NewRouter(log, m,
		appuserhandler.New(userSvc, log),
		visitorhandler.New(visitorSvc, log),
		selfservicehandler.New(visitorSvc, settingsSvc, log),
		settingshandler.New(settingsSvc, log),
		audithandler.New(auditSvc, log),
		errorloghandler.New(errlogSvc, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	scheduler := report.NewScheduler(visitorSvc, settingsSvc,
		report.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom), errlogSvc, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gatehouse", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := scheduler.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}
