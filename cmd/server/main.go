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

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"infinite-experiment/gazetteer/internal/api"
	"infinite-experiment/gazetteer/internal/common"
	"infinite-experiment/gazetteer/internal/config"
	"infinite-experiment/gazetteer/internal/db"
	"infinite-experiment/gazetteer/internal/logging"
	"infinite-experiment/gazetteer/internal/metrics"
	"infinite-experiment/gazetteer/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Gazetteer starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	gdb, err := db.InitORM(cfg.Database)
	if err != nil {
		logging.Fatal("Failed to connect to destination database", "error", err.Error())
	}
	if err := db.Migrate(gdb); err != nil {
		logging.Fatal("Failed to migrate destination database", "error", err.Error())
	}

	healthDB, err := openHealthDB(cfg, gdb)
	if err != nil {
		logging.Fatal("Failed to open health check connection", "error", err.Error())
	}

	var redisClient common.RedisClientProvider
	if cfg.Cache.Backend == "redis" {
		redisClient = common.NewRedisClient(cfg.Redis)
	}
	cache := common.NewCache(cfg.Cache.Backend, redisClient, cfg.Cache.TTLSeconds)
	defer cache.Close()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(gdb, cfg, cache, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err.Error())
	}

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, healthDB, cfg, upSince)

	// metrics endpoint lives outside the chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "port", cfg.HTTPPort, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server stopped unexpectedly", "error", err.Error())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err.Error())
	}
	logging.Info("Server stopped")
}

// openHealthDB returns the sqlx handle pinged by /healthCheck. Postgres gets
// its own pool; sqlite shares the GORM one.
func openHealthDB(cfg *config.Configuration, gdb *gorm.DB) (*sqlx.DB, error) {
	if cfg.Database.Driver == "postgres" {
		if err := db.InitPostgres(cfg.Database); err != nil {
			return nil, err
		}
		logging.Info("Connected to Postgres (sqlx)")
		return db.DB, nil
	}
	return db.SQLXFromORM(gdb, "sqlite3")
}
