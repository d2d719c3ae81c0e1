package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"example.com/lifetrack/internal/accounts"
	"example.com/lifetrack/internal/api"
	"example.com/lifetrack/internal/auth"
	"example.com/lifetrack/internal/cache"
	"example.com/lifetrack/internal/config"
	"example.com/lifetrack/internal/events"
	"example.com/lifetrack/internal/logger"
	"example.com/lifetrack/internal/observability"
	"example.com/lifetrack/internal/persistence/memory"
	persistence "example.com/lifetrack/internal/persistence/postgres"
	httptransport "example.com/lifetrack/internal/transport/http"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	cfg := config.LoadServer()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.TokenTTL}
	var opts []accounts.Option
	opts = append(opts, accounts.WithLogger(log))

	var repo accounts.Repository
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatal("failed to connect to postgres", "error", err)
		}
		defer pool.Close()
		pg := persistence.NewRepository(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal("failed to apply schema", "error", err)
		}
		repo = pg
	} else {
		log.Warn("POSTGRES_URL not set, using in-memory storage")
		repo = memory.NewRepository()
	}

	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.CacheTTL, log)
		if err != nil {
			log.Fatal("failed to connect to redis", "error", err)
		}
		defer rc.Close()
		opts = append(opts, accounts.WithCache(rc))
	}

	var dispatcher *events.Dispatcher
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()
		dispatcher = events.NewDispatcher(producer, cfg.EventsTopic, cfg.EventsFlush, cfg.EventsBatch, log)
		go dispatcher.Start(context.Background())
		opts = append(opts, accounts.WithPublisher(dispatcher))
	}

	service := accounts.NewService(repo, tokens, opts...)

	router := mux.NewRouter()
	router.Use(api.RequestLogger(log), observability.Instrument)
	api.NewHandler(service, tokens, cfg.AdminKey, log).RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", auth.AdminKeyHeader},
		AllowCredentials: true,
	})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, corsHandler.Handler(router))

	ln, err := net.Listen("tcp", cfg.HTTPAddress)
	if err != nil {
		log.Fatal("listen failed", "address", cfg.HTTPAddress, "error", err)
	}
	if err := httptransport.Serve(ctx, server, ln, cfg.ShutdownGrace, log); err != nil {
		log.Error("server error", "error", err)
	}

	if dispatcher != nil {
		dispatcher.Close()
		dispatcher.Wait()
	}
	log.Info("shutdown complete")
}
