package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "realtime_chat_service/docs"
	"realtime_chat_service/internal/chat/app"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/internal/chat/router"
	"realtime_chat_service/pkg/config"
	"realtime_chat_service/pkg/database"
	"realtime_chat_service/pkg/logger"
	testtool "realtime_chat_service/pkg/test_tool"
	"realtime_chat_service/pkg/token"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	defer logger.Log.Sync()
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)
	token.SetSecret(cfg.JWTSecret)
	testtool.StartPprof()

	ctx := context.Background()

	// 1. Mongo 連線 (存訊息)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    database.MongoURI(cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port),
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval) * time.Second,
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal("Unable to connect to mongoDB database after retries", zap.Error(err))
	}
	defer mongo.Close(ctx)

	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	if err := msgRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal("create message indexes", zap.Error(err))
	}

	// 2. PostgreSQL 連線 (member profile)
	pgPool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    database.PostgresURI(cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database),
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database after retries", zap.Error(err))
	}
	defer pgPool.Close()

	// 3. MinIO (avatar)
	var avatars repository.AvatarResolver = repository.PassthroughAvatars{}
	if cfg.MinIO.Enabled() {
		minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
			Endpoint:      cfg.MinIO.Endpoint,
			User:          cfg.MinIO.User,
			Password:      cfg.MinIO.Password,
			BucketName:    cfg.MinIO.BucketName,
			UseSSL:        cfg.MinIO.UseSSL,
			RetryCount:    cfg.MinIO.RetryCount,
			RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
		})
		if err != nil {
			logger.Log.Warn("minio unavailable, avatars served as stored", zap.Error(err))
		} else {
			avatars = repository.NewMinIOAvatarResolver(minioClient, cfg.MinIO.PresignExpiry)
		}
	}
	profileRepo := repository.NewProfileRepository(pgPool, avatars)

	// 4. message event stream
	stream := newEventStream(cfg.EventStream)
	defer stream.Close()

	// 5. websocket transport
	var relay app.Relay
	if cfg.Transport == "redis" {
		redisClient := newRedisClient(cfg.Redis)
		defer redisClient.Close()
		relay = repository.NewRedisPubSub(redisClient)
	}

	// 6. 初始化 UseCases
	registry := app.NewPresenceRegistry()
	recorder := app.NewPresenceRecorder(profileRepo, registry, cfg.Presence.SyncTimeout)
	messageUC := app.NewMessageUseCase(msgRepo, profileRepo, registry, stream, 0)
	conversationUC := app.NewConversationUseCase(msgRepo, profileRepo, registry, cfg.Paging)
	typing := app.NewTypingChannel(registry)

	// 7. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r,
		app.NewConnectionGate(),
		app.NewChatWebsocketHandler(registry, recorder, messageUC, typing, relay, cfg.Presence.PingInterval),
		app.NewChatRestHandler(conversationUC),
	)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("shutting down chat service")
		_ = r.ShutdownWithTimeout(10 * time.Second)
	}()

	port := ":" + cfg.Port
	logger.Log.Info("Chat Service listening", zap.String("port", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Error("Failed to start Fiber", zap.Error(err))
	}
}

func newRedisClient(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr != "" {
		client, err := database.NewRedisStandaloneClient(cfg.Addr, cfg.RedisDB)
		if err != nil {
			logger.Log.Fatal("connect redis", zap.Error(err))
		}
		return client
	}

	masterName, sentinel := config.GetRedisSetting()
	client, err := database.NewRedisClient(masterName, sentinel, cfg.RedisDB)
	if err != nil {
		logger.Log.Fatal("connect redis sentinel", zap.Error(err))
	}
	return client
}

func newEventStream(cfg config.EventStreamConfig) repository.EventStream {
	switch cfg.Driver {
	case "kafka":
		writer, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       cfg.Brokers,
			Topic:         cfg.Topic,
			RetryCount:    cfg.RetryCount,
			RetryInterval: time.Duration(cfg.RetryInterval),
		})
		if err != nil {
			logger.Log.Fatal("connect kafka", zap.Error(err))
		}
		return repository.NewKafkaEventStream(writer)

	case "rabbitmq":
		conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
			ConnectStr:    cfg.AMQPURL,
			RetryCount:    cfg.RetryCount,
			RetryInterval: time.Duration(cfg.RetryInterval),
		})
		if err != nil {
			logger.Log.Fatal("connect rabbitmq", zap.Error(err))
		}
		ch, err := database.GetRabbitMQChannelWithRetry(conn, cfg.RetryCount, time.Duration(cfg.RetryInterval))
		if err != nil {
			logger.Log.Fatal("open rabbitmq channel", zap.Error(err))
		}
		stream, err := repository.NewRabbitEventStream(ch, cfg.Exchange)
		if err != nil {
			logger.Log.Fatal("declare rabbitmq exchange", zap.Error(err))
		}
		return stream

	default:
		logger.Log.Info("message event stream disabled", zap.String("driver", cfg.Driver))
		return repository.NewNopEventStream()
	}
}
