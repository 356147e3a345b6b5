package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/adamanr/shift_console/internal/api"
	"github.com/adamanr/shift_console/internal/config"
	"github.com/adamanr/shift_console/internal/controllers"
	"github.com/adamanr/shift_console/internal/database"
	"github.com/adamanr/shift_console/internal/gateway"
	"github.com/adamanr/shift_console/internal/refdata"
	logging "github.com/adamanr/shift_console/internal/utils"
	"github.com/adamanr/shift_console/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	configPath  = flag.String("config", config.DefaultPath, "Path to the TOML config file")
	showVersion = flag.Bool("version", false, "Print version information and exit")
	migrateOnly = flag.Bool("migrate", false, "Apply the database schema and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info().String())
		return
	}

	cfg, err := config.GetConfig(*configPath, slog.Default())
	if err != nil {
		log.Fatal("Failed to load config:", err)
		return
	}

	logger := logging.SetupLogger(cfg.Server.LogFile, slog.LevelInfo)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dbErr := database.NewPool(ctx, cfg, logger)
	if dbErr != nil {
		log.Fatal("Failed to connect to database:", dbErr)
		return
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, logger); err != nil {
		log.Fatal("Failed to migrate database:", err)
		return
	}
	if *migrateOnly {
		return
	}

	rdb, redisErr := database.NewRedisConn(ctx, cfg, logger)
	if redisErr != nil {
		log.Fatal("Failed to connect to Redis:", redisErr)
		return
	}
	defer rdb.Close()

	httpRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	prometheus.MustRegister(httpRequestsTotal)

	backend, err := gateway.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger, gateway.NewMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		log.Fatal("Failed to create backend client:", err)
		return
	}

	deps := &controllers.Dependens{
		DB:     db,
		Redis:  rdb,
		Logger: logger,
		Config: cfg,
	}
	ctrls := controllers.New(deps)

	server := api.NewServer(api.Deps{
		Config:      cfg,
		Logger:      logger,
		Backend:     backend,
		RefData:     refdata.NewRegistry(backend, rdb, cfg.Redis.SnapshotTTL, cfg.Redis.SessionTTL, logger),
		Sessions:    ctrls.SessionController,
		SwapConfigs: ctrls.SwapConfigController,
		Audit:       ctrls.AuditController,
	})

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Use(logging.Middleware(logger))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(ww.Status())).Inc()
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", server.Routes)

	s := &http.Server{
		Handler:           r,
		Addr:              cfg.Server.Host,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Server is starting", slog.String("address", cfg.Server.Host), slog.String("version", version.Version))
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
