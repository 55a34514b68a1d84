package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/jnphilipp/computer/internal/answers"
	"github.com/jnphilipp/computer/internal/api/handlers"
	rediscache "github.com/jnphilipp/computer/internal/cache/redis"
	"github.com/jnphilipp/computer/internal/intents"
	"github.com/jnphilipp/computer/internal/metrics"
	"github.com/jnphilipp/computer/internal/model"
	"github.com/jnphilipp/computer/internal/nlu"
	"github.com/jnphilipp/computer/internal/pipeline"
	"github.com/jnphilipp/computer/internal/storage/sqlite"
	"github.com/jnphilipp/computer/internal/weather"
	"github.com/jnphilipp/computer/pkg/config"
	appLogger "github.com/jnphilipp/computer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting computer NLU API server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	mappings, err := nlu.LoadMappings(cfg.Model.MappingsPath)
	if err != nil {
		appLogger.Fatal("Failed to load mapping artifact", zap.Error(err))
	}

	modelTimeout := time.Duration(cfg.Model.TimeoutSec) * time.Second
	nluPredictor := model.NewClient(cfg.Model.ServingURL, cfg.Model.NLUName, modelTimeout)

	var chatPredictor nlu.Predictor
	if cfg.Model.ChatEnabled {
		chatPredictor = model.NewClient(cfg.Model.ServingURL, cfg.Model.ChatName, modelTimeout)
		appLogger.Info("Chat continuation enabled", zap.String("model", cfg.Model.ChatName))
	}

	var forecastCache weather.Cache
	if cfg.Redis.Enabled {
		redisClient, err := rediscache.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Failed to create Redis client, forecast caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			forecastCache = redisClient
		}
	}

	weatherClient := weather.NewClient(
		cfg.Weather.BaseURL,
		cfg.Weather.APIKey,
		cfg.Weather.CityID,
		time.Duration(cfg.Weather.TimeoutSec)*time.Second,
		forecastCache,
		time.Duration(cfg.Weather.CacheTTLSec)*time.Second,
	)

	registry := intents.NewRegistry(sqliteClient, weatherClient)
	selector := answers.NewSelector(sqliteClient)

	engine := pipeline.NewEngine(
		mappings,
		nluPredictor,
		chatPredictor,
		cfg.Model.MaxSteps,
		registry,
		selector,
		sqliteClient,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	nluHandler := handlers.NewNLUHandler(engine)
	chatHandler := handlers.NewChatHandler(engine)

	api := app.Group("/api/v1")

	api.Post("/nlu", nluHandler.HandleNLU)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(chatHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
