package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jmtembo/ordersys-backend/internal/modules/catalog"
	"github.com/jmtembo/ordersys-backend/internal/modules/order"
	"github.com/jmtembo/ordersys-backend/internal/observability"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on process environment")
	}

	logger := newLogger()
	defer logger.Sync()

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("ping database", zap.Error(err))
	}
	logger.Info("successfully connected to the database")

	// ── Schema bootstrap ────────────────────────────────────
	ctx := context.Background()
	if err := catalog.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("ensure products schema", zap.Error(err))
	}
	if err := order.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("ensure orders schema", zap.Error(err))
	}

	// ── Router ──────────────────────────────────────────────
	metrics := observability.NewHTTPMetrics("api")
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	router.Method(http.MethodGet, "/metrics", observability.Handler())

	// ── Product Catalog ─────────────────────────────────────
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	// ── Order Workflow ──────────────────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, catalogService, logger)
	order.NewHandler(orderService).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("order management API starting", zap.String("port", port))
	log.Fatal(http.ListenAndServe(":"+port, router))
}

func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if os.Getenv("APP_ENV") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatal(err)
	}
	return logger
}
