package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"vanish-chat/internal/config"
	"vanish-chat/internal/db"
	"vanish-chat/internal/handlers"
	"vanish-chat/internal/identity"
	"vanish-chat/internal/middleware"
	"vanish-chat/internal/observability"
	"vanish-chat/internal/rabbitmq"
	"vanish-chat/internal/repositories"
	"vanish-chat/internal/telemetry"
)

const serviceName = "vanish-chat"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	initLogger(cfg.Env)

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracing")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	emitter := telemetry.NewEventEmitter(publisher, serviceName, cfg.Env)

	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	presenceRepo := repositories.NewPresenceRepo(database)

	ids := identity.NewSeededGenerator(time.Now().UnixNano())

	roomHandler := handlers.NewRoomHandler(roomRepo, presenceRepo, ids, emitter)
	messageHandler := handlers.NewMessageHandler(roomRepo, messageRepo, emitter)
	presenceHandler := handlers.NewPresenceHandler(roomRepo, presenceRepo)
	cleanupHandler := handlers.NewCleanupHandler(roomRepo, messageRepo, emitter)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatal().Err(err).Msg("failed to configure trusted proxies")
	}

	// middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(middleware.RateLimit(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))

	router.POST("/chat/rooms", roomHandler.CreateRoom)
	router.POST("/chat/rooms/join", roomHandler.JoinRoom)
	router.PUT("/chat/rooms/:roomId/theme", roomHandler.UpdateTheme)
	router.POST("/chat/rooms/leave", presenceHandler.LeaveRoom)

	router.POST("/chat/messages", messageHandler.SendMessage)
	router.GET("/chat/rooms/:roomId/messages", messageHandler.GetMessages)
	router.PUT("/chat/messages/:messageId", messageHandler.EditMessage)
	router.DELETE("/chat/messages/:messageId", messageHandler.DeleteMessage)
	router.POST("/chat/messages/:messageId/read", messageHandler.MarkRead)
	router.POST("/chat/messages/:messageId/pin", messageHandler.PinMessage)

	router.POST("/chat/typing", presenceHandler.UpdateTyping)
	router.GET("/chat/rooms/:roomId/typing", presenceHandler.GetTyping)
	router.POST("/chat/participants/activity", presenceHandler.UpdateActivity)

	router.POST("/chat/cleanup", cleanupHandler.Cleanup)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handlers.RegisterDebugRoutes(router, emitter, cfg.DebugRoutes)

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func initLogger(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "dev" {
		cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(cw).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
