package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/plaidlibs/internal/config"
	"github.com/jwebster45206/plaidlibs/internal/handlers"
	"github.com/jwebster45206/plaidlibs/internal/logger"
	"github.com/jwebster45206/plaidlibs/internal/metrics"
	"github.com/jwebster45206/plaidlibs/internal/services"
	"github.com/jwebster45206/plaidlibs/internal/session"
	istorage "github.com/jwebster45206/plaidlibs/internal/storage"
	"github.com/jwebster45206/plaidlibs/pkg/catalog"
	"github.com/jwebster45206/plaidlibs/pkg/chat"
	"github.com/jwebster45206/plaidlibs/pkg/engine"
)

// Model defaults per provider when MODEL_NAME is unset.
var defaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-5",
	"openai":    "gpt-4o-mini",
	"chatgpt":   "gpt-4o-mini",
	"venice":    "llama-3.3-70b",
	"ollama":    "llama3.2",
	"gemini":    services.DefaultGeminiModel,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)
	if cfg.ModelName == "" {
		cfg.ModelName = defaultModels[cfg.LLMProvider]
	}

	log.Info("Starting PlaidLibs API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"content_rating", cfg.ContentRating)

	llmService, images, err := newProvider(context.Background(), cfg, log)
	if err != nil {
		log.Error("Failed to configure LLM provider", "error", err, "provider", cfg.LLMProvider)
		os.Exit(1)
	}
	if images == nil {
		log.Warn("No image generator configured, visual workflows will fail at generation")
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			log.Error("Failed to load catalog", "error", err, "path", cfg.CatalogPath)
			os.Exit(1)
		}
		log.Info("Loaded catalog", "path", cfg.CatalogPath)
	}

	store, err := istorage.NewRedisStorage(cfg.RedisURL, log, istorage.WithTTL(cfg.SessionTTL))
	if err != nil {
		log.Error("Failed to configure storage", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// Initialize the model on startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := llmService.InitModel(ctx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	eng := engine.New(cat,
		engine.WithLogger(log),
		engine.WithContentRating(cfg.ContentRating),
		engine.WithParams(chat.GenerationParams{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens}))

	sessions := session.NewManager(store,
		session.WithLocker(istorage.NewLocker(store.Client(), istorage.DefaultPrefix)),
		session.WithLogger(log))

	m := metrics.New()
	opts := []handlers.SessionOption{
		handlers.WithMetrics(m),
		handlers.WithGenerationTimeout(cfg.GenerationTimeout),
		handlers.WithLister(store),
	}
	if images != nil {
		opts = append(opts, handlers.WithImageGenerator(images))
	}

	router := handlers.NewRouter(handlers.Router{
		Health:    handlers.NewHealthHandler(store, llmService, cfg.ModelName, log),
		Workflows: handlers.NewWorkflowsHandler(cat, log),
		Sessions:  handlers.NewSessionHandler(eng, sessions, llmService, log, opts...),
		Metrics:   m,
		Logger:    log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		// generation can run up to GENERATION_TIMEOUT
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// Close storage connection
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}

// newProvider builds the text service for LLM_PROVIDER and, when the provider
// or an OpenAI key allows it, an image generator.
func newProvider(ctx context.Context, cfg *config.Config, log *slog.Logger) (services.LLMService, services.ImageGenerator, error) {
	var llmService services.LLMService
	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, nil, errMissingKey("ANTHROPIC_API_KEY")
		}
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
	case "openai", "chatgpt":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil, errMissingKey("OPENAI_API_KEY")
		}
		llmService = services.NewChatGPTService(cfg.OpenAIAPIKey, cfg.ModelName, cfg.ImageModelName, log)
	case "venice":
		if cfg.VeniceAPIKey == "" {
			return nil, nil, errMissingKey("VENICE_API_KEY")
		}
		llmService = services.NewVeniceService(cfg.VeniceAPIKey, cfg.ModelName, cfg.ImageModelName, log)
	case "gemini":
		g, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelName, cfg.ImageModelName, "", log)
		if err != nil {
			return nil, nil, err
		}
		llmService = g
	case "ollama":
		llmService = services.NewOllamaService(cfg.OllamaURL, cfg.ModelName, log)
	default:
		return nil, nil, &unsupportedProviderError{provider: cfg.LLMProvider}
	}
	log.Info("Using LLM provider", "provider", cfg.LLMProvider)

	if images, ok := llmService.(services.ImageGenerator); ok {
		return llmService, images, nil
	}
	if cfg.OpenAIAPIKey != "" {
		log.Info("Using OpenAI for image generation")
		return llmService, services.NewChatGPTService(cfg.OpenAIAPIKey, "", cfg.ImageModelName, log), nil
	}
	return llmService, nil, nil
}
