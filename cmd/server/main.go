package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/adapter/asr"
	"github.com/seu-repo/voxmart/internal/adapter/audiostore"
	"github.com/seu-repo/voxmart/internal/adapter/cache"
	"github.com/seu-repo/voxmart/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/voxmart/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/voxmart/internal/adapter/nlu"
	"github.com/seu-repo/voxmart/internal/adapter/queue"
	"github.com/seu-repo/voxmart/internal/adapter/storage/postgres"
	"github.com/seu-repo/voxmart/internal/adapter/tts"
	wsAdapter "github.com/seu-repo/voxmart/internal/adapter/websocket"
	"github.com/seu-repo/voxmart/internal/observability/telemetry"
	"github.com/seu-repo/voxmart/internal/ports"
	"github.com/seu-repo/voxmart/internal/service/auth"
	"github.com/seu-repo/voxmart/internal/service/cart"
	"github.com/seu-repo/voxmart/internal/service/catalog"
	"github.com/seu-repo/voxmart/internal/service/health"
	"github.com/seu-repo/voxmart/internal/service/voice"
	"github.com/seu-repo/voxmart/pkg/config"
)

const (
	serviceName    = "voxmart-voice-api"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting VoxMart voice commerce API",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, serviceVersion, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 5. Initialize Cache (Redis, with in-process fallback for dev)
	var appCache ports.Cache
	appCache, err = cache.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to local cache", zap.Error(err))
		appCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer appCache.Close()

	// 6. Initialize Message Queue
	var messageQueue queue.MessageQueue
	switch cfg.Queue.Driver {
	case "rabbitmq":
		messageQueue, err = queue.NewRabbitMQQueue(cfg.Queue.RabbitMQ.URL, logger)
	default:
		messageQueue, err = queue.NewNATSQueue(cfg.Queue.NATS.URL, logger)
	}
	if err != nil {
		logger.Fatal("Failed to connect to message queue",
			zap.String("driver", cfg.Queue.Driver),
			zap.Error(err),
		)
	}
	defer messageQueue.Close()

	// 7. Initialize Repositories
	userRepo := postgres.NewUserRepository(db, logger)
	productRepo := postgres.NewProductRepository(db, logger)
	cartRepo := postgres.NewCartRepository(db, logger)
	orderRepo := postgres.NewOrderRepository(db, logger)

	// 8. Initialize Speech Engine Adapters
	transcriber := asr.NewWhisperClient(cfg.Voice.ASRURL, logger)
	parser := nlu.NewRasaClient(cfg.Voice.NLUURL, logger)
	synthesizer := tts.NewCoquiClient(cfg.Voice.TTSURL, cfg.Voice.SpeakerID, logger)
	audioStore, err := audiostore.NewLocalStore(cfg.Voice.AudioDir, logger)
	if err != nil {
		logger.Fatal("Failed to open audio store", zap.Error(err))
	}

	// 9. Initialize Services (Business Logic Layer)
	authService := auth.NewService(userRepo, appCache, cfg.JWT.Secret, logger)
	catalogService := catalog.NewService(productRepo, logger)
	cartService := cart.NewService(cartRepo, orderRepo, productRepo, logger)
	voiceService := voice.NewService(
		transcriber, parser, synthesizer, audioStore,
		catalogService, cartService, appCache, messageQueue, logger,
	)

	// 10. Initialize Health Checks
	healthService := health.NewService(&health.Config{
		Version: serviceVersion,
		DB:      sqlDB,
		NatsURL: cfg.Queue.NATS.URL,
	}, logger)
	healthService.RegisterChecker("cache", func(ctx context.Context) health.CheckResult {
		start := time.Now()
		result := health.CheckResult{Name: "cache", Timestamp: time.Now()}
		if err := appCache.Ping(); err != nil {
			result.Status = health.StatusUnhealthy
			result.Message = err.Error()
		} else {
			result.Status = health.StatusHealthy
			result.Message = "connection ok"
		}
		result.Duration = time.Since(start)
		return result
	})
	healthService.RegisterChecker("asr", health.NewHTTPChecker("asr", cfg.Voice.ASRURL, nil))
	healthService.RegisterChecker("nlu", health.NewHTTPChecker("nlu", cfg.Voice.NLUURL, nil))
	healthService.RegisterChecker("tts", health.NewHTTPChecker("tts", cfg.Voice.TTSURL, nil))

	// 11. Initialize WebSocket Hub (for real-time cart/order updates)
	wsHub := wsAdapter.NewHub()
	go wsHub.Run()

	voiceStreamHandler := wsAdapter.NewVoiceStreamHandler(voiceService, logger)

	// 12. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		BodyLimit:             cfg.HTTP.BodyLimit,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	} else {
		app.Use(middleware.DefaultCORS())
	}
	if cfg.CircuitBreaker.Enabled {
		app.Use(middleware.CircuitBreaker(logger))
	}

	// Health and metrics endpoints
	health.NewFiberHandler(healthService).RegisterRoutes(app)
	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	// API v1 Routes
	v1 := app.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(authService, logger)
	v1.Post("/auth/login", authHandler.Login)
	v1.Post("/auth/register", authHandler.Register)
	v1.Post("/auth/refresh", authHandler.RefreshToken)

	authRequired := middleware.AuthRequired(authService)
	protected := v1.Group("", authRequired)
	protected.Get("/auth/me", authHandler.Me)

	voiceHandler := handlers.NewVoiceHandler(voiceService, logger)
	protected.Post("/voice/process", voiceHandler.ProcessCommand)
	protected.Get("/voice/audio/:filename", voiceHandler.ResponseAudio)

	shopHandler := handlers.NewShopHandler(catalogService, cartService, logger)
	protected.Get("/products", shopHandler.SearchProducts)
	protected.Get("/cart", shopHandler.GetCart)
	protected.Get("/orders", shopHandler.ListOrders)

	// WebSocket routes
	wsAdapter.SetupVoiceRoutes(app, voiceStreamHandler, authRequired)

	app.Use("/ws/updates", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/updates", authRequired, websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("user_id").(string)
		wsHub.AddClient(c, userID)
	}))

	// 13. Start Background Workers
	startCommandEventWorker(messageQueue, wsHub, logger)

	// 14. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 15. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// startCommandEventWorker forwards processed voice commands to connected
// storefront clients so their cart and order views refresh live.
func startCommandEventWorker(mq queue.MessageQueue, hub *wsAdapter.Hub, logger *zap.Logger) {
	err := mq.Subscribe(voice.SubjectVoiceCommands, func(msg []byte) error {
		var event struct {
			UserID string `json:"user_id"`
			Intent string `json:"intent"`
		}
		if err := json.Unmarshal(msg, &event); err != nil {
			logger.Warn("Dropping malformed command event", zap.Error(err))
			return nil
		}
		logger.Info("Voice command processed",
			zap.String("user_id", event.UserID),
			zap.String("intent", event.Intent),
		)
		hub.SendToUser(event.UserID, msg)
		return nil
	})
	if err != nil {
		logger.Error("Failed to subscribe to command events", zap.Error(err))
	}
}
