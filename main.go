package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"dakotahome/config"
	"dakotahome/handlers"
	"dakotahome/middleware"
	"dakotahome/routes"
	"dakotahome/services/agent"
	"dakotahome/services/availability"
	"dakotahome/services/calendar"
	"dakotahome/services/checkout"
	"dakotahome/services/conversation"
	"dakotahome/services/pricing"
	"dakotahome/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.New(corsConfig()))
	stripe.Key = config.AppConfig.StripeKey

	// Conversation store.
	store := newStore(logger)

	// Business services.
	feedCache := calendar.NewFeedCache(config.AppConfig.AirbnbICalURL, logger)
	checker := availability.NewChecker(feedCache, logger)
	calculator := pricing.NewCalculator(pricing.FromApp())
	initiator := checkout.NewInitiator(config.AppConfig.StripeKey, config.AppConfig.SiteDomain, logger)

	// Agent.
	tools := agent.NewTools(checker, calculator, initiator, store, logger)
	var agentService *agent.Service
	if provider := newProvider(logger); provider != nil {
		agentService = agent.NewService(store, provider, tools, logger)
	}

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Chat:    handlers.NewChatHandler(agentService, logger),
		Threads: handlers.NewThreadHandler(store, logger),
		Booking: handlers.NewBookingHandler(checker, calculator, initiator, logger),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	origins := strings.Split(config.AppConfig.CORSOrigins, ",")
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	return cfg
}

// newStore selects the conversation store backend. Memory is the default;
// redis keeps conversations across restarts.
func newStore(logger *zap.Logger) conversation.Store {
	if config.AppConfig.StoreBackend != "redis" {
		return conversation.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisStoreDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Sugar().Fatalf("main: failed to connect to Redis store: %v", err)
	}
	logger.Info("using redis conversation store", zap.String("addr", config.AppConfig.RedisAddr))
	return conversation.NewRedisStore(client)
}

// newProvider selects the model backend. Returns nil when no API key is
// configured; the chat endpoint then reports the agent as unavailable
// while the direct tool endpoints keep working.
func newProvider(logger *zap.Logger) agent.Provider {
	switch config.AppConfig.AIProvider {
	case "gemini":
		provider, err := agent.NewGeminiProvider(config.AppConfig.GeminiAPIKey)
		if err != nil {
			logger.Warn("gemini provider unavailable", zap.Error(err))
			return nil
		}
		return provider
	default:
		provider, err := agent.NewOpenAIProvider(config.AppConfig.OpenAIAPIKey, config.AppConfig.OpenAIModel)
		if err != nil {
			logger.Warn("openai provider unavailable", zap.Error(err))
			return nil
		}
		return provider
	}
}
