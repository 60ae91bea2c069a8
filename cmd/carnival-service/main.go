package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"

	"carnival-tracker/internal/auth"
	"carnival-tracker/internal/config"
	"carnival-tracker/internal/logger"
	"carnival-tracker/internal/sheets"
	"carnival-tracker/internal/stream"
	"carnival-tracker/internal/txn"
	"carnival-tracker/internal/txn/db"
	"carnival-tracker/internal/txn/txn_api"
)

func openDatabase(url string) (*bun.DB, error) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}
	sqldb, err := sql.Open(sqliteshim.ShimName, url)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (auth.Store, error) {
	if cfg.Session.Store != "redis" {
		return auth.NewMemoryStore(cfg.Session.TTL), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Session.RedisAddr,
		PoolSize: 10,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("AUTH", "Using Redis session store at "+cfg.Session.RedisAddr)
	return auth.NewRedisStore(client, cfg.Session.TTL), nil
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	ctx := context.Background()

	bunDB, err := openDatabase(cfg.Database.URL)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open database: %v", err))
	}
	defer bunDB.Close()
	if err := bunDB.PingContext(ctx); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to database: %v", err))
	}
	if err := db.Migrate(ctx, bunDB); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}
	log.Info("DATABASE", "Connected and migrated")

	store, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("AUTH", fmt.Sprintf("Failed to set up session store: %v", err))
	}

	txnDB := &db.DB{Bun: bunDB}

	var mirror *sheets.Mirror
	var mirrorPub txn.MirrorPublisher
	if cfg.Sheets.Enabled && cfg.Sheets.SpreadsheetID != "" {
		client, err := sheets.NewClient(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName)
		if err != nil {
			log.Fatal("SHEETS", fmt.Sprintf("Failed to set up sheets client: %v", err))
		}
		mirror = sheets.NewMirror(client, log)
		mirrorPub = mirror
		defer mirror.Close()
		log.Info("SHEETS", "Mirroring to sheet "+cfg.Sheets.SheetName)
	} else {
		log.Warn("SHEETS", "Spreadsheet mirroring disabled")
	}

	var streamPub txn.StreamPublisher
	if cfg.Kafka.Enabled {
		producer := stream.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		streamPub = producer
		log.Info("KAFKA", "Streaming transaction events to "+cfg.Kafka.Topic)
	}

	handler := &txn_api.Handler{
		TxnService:  txn.NewService(txnDB, mirrorPub, streamPub, log),
		AuthService: auth.NewService(txnDB, store, log),
		Logger:      log,
		Secret:      cfg.Session.Secret,
		TTL:         cfg.Session.TTL,
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", "Carnival tracker on "+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("SERVER", "Shutdown signal received")

	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("SERVER", fmt.Sprintf("Forced shutdown: %v", err))
	}
	log.Info("SERVER", "Shutdown complete")
}
