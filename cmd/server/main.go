package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chatterbox/internal/api"
	"chatterbox/internal/avatar"
	"chatterbox/internal/chat"
	"chatterbox/internal/config"
	"chatterbox/internal/database"
	"chatterbox/internal/events"
	"chatterbox/internal/presence"
	"chatterbox/internal/server"
	"chatterbox/internal/stats"
)

const defaultSigningKey = "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	allowedOrigins stringSliceFlag
	redisAddr      string
	redisPassword  string
	amqpURL        string
	amqpExchange   string
	minioEndpoint  string
	minioAccess    string
	minioSecret    string
	minioBucket    string
	minioSSL       bool
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "database connection string")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.StringVar(&redisAddr, "redis-addr", "", "redis address for presence tracking (empty disables presence)")
	flag.StringVar(&redisPassword, "redis-password", "", "redis password")
	flag.StringVar(&amqpURL, "amqp-url", "", "rabbitmq URL for event publishing (empty disables events)")
	flag.StringVar(&amqpExchange, "amqp-exchange", "chatterbox.events", "rabbitmq exchange for chat events")
	flag.StringVar(&minioEndpoint, "minio-endpoint", "", "minio endpoint for avatar storage (empty disables uploads)")
	flag.StringVar(&minioAccess, "minio-access-key", "", "minio access key")
	flag.StringVar(&minioSecret, "minio-secret-key", "", "minio secret key")
	flag.StringVar(&minioBucket, "minio-bucket", "avatars", "minio bucket for avatars")
	flag.BoolVar(&minioSSL, "minio-ssl", false, "use TLS for minio")
	flag.Parse()

	logger := log.New(os.Stderr, "[chatterbox] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins)
	if err != nil {
		logger.Fatal("config: ", err)
	}
	cfg.RedisAddr = redisAddr
	cfg.RedisPassword = redisPassword
	cfg.AmqpURL = amqpURL
	cfg.AmqpExchange = amqpExchange
	cfg.MinioEndpoint = minioEndpoint
	cfg.MinioAccess = minioAccess
	cfg.MinioSecret = minioSecret
	cfg.MinioBucket = minioBucket
	cfg.MinioSSL = minioSSL

	db, err := database.NewPgChatRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Println("db close:", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("db migrate: ", err)
	}

	var tracker *presence.Tracker
	if cfg.RedisAddr != "" {
		tracker = presence.NewTracker(cfg.RedisAddr, cfg.RedisPassword)
		defer tracker.Close()
	}

	publisher := events.NewPublisher(logger, cfg.AmqpURL, cfg.AmqpExchange)
	defer publisher.Close()

	var avatars avatar.Store
	if cfg.MinioEndpoint != "" {
		avatars, err = avatar.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccess, cfg.MinioSecret, cfg.MinioBucket, cfg.MinioSSL)
		if err != nil {
			logger.Fatal("avatar store: ", err)
		}
	}

	st := stats.NewPromStats()

	// The service and the broker reference each other: the service
	// publishes through the broker, the broker authorizes subscribes
	// through the service. Construct the service first, bind last.
	var svcPresence chat.PresenceTracker
	var csPresence server.PresenceStore
	if tracker != nil {
		svcPresence = tracker
		csPresence = tracker
	}

	svc, err := chat.NewRoomService(logger, db, nil, svcPresence, publisher)
	if err != nil {
		logger.Fatal("chat service: ", err)
	}

	chatServer := server.NewChatServer(logger, svc, csPresence, st)
	svc.SetBroker(chatServer)

	mux := http.NewServeMux()
	srv := api.NewChatApp(mux, logger, svc, db, chatServer, avatars, st, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down chat server...")
	chatServer.Shutdown()

	logger.Println("shutdown complete")
}
