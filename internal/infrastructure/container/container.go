package container

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/moai-app/moai-backend/internal/config"
	"github.com/moai-app/moai-backend/internal/delivery/http"
	"github.com/moai-app/moai-backend/internal/delivery/http/handler"
	"github.com/moai-app/moai-backend/internal/delivery/http/middleware"
	"github.com/moai-app/moai-backend/internal/infrastructure/database"
	"github.com/moai-app/moai-backend/internal/infrastructure/gemini"
	"github.com/moai-app/moai-backend/internal/infrastructure/server"
	"github.com/moai-app/moai-backend/internal/repository"
	"github.com/moai-app/moai-backend/internal/repository/postgres"
	"github.com/moai-app/moai-backend/internal/usecase/batch"
	"github.com/moai-app/moai-backend/internal/usecase/consent"
	"github.com/moai-app/moai-backend/internal/usecase/conversation"
	"github.com/moai-app/moai-backend/internal/usecase/profile"
	"github.com/moai-app/moai-backend/internal/usecase/query"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
	Gemini *gemini.GeminiClient

	ProfileRepo   repository.ProfileRepository
	CandidateRepo repository.CandidateRepository

	BatchUseCase *batch.BatchUseCase
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	// Initialize database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Redis is an optimization only; run without it when unavailable.
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize Redis, continuing without run markers: %v\n", err)
		redisClient = nil
	}

	// Initialize Gemini Client
	geminiClient, err := gemini.NewGeminiClient(cfg.Gemini.APIKey)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize Gemini client: %v\n", err)
		// Don't fail, openers fall back to the canned text
	}

	// Initialize repositories
	profileRepo := postgres.NewProfileRepository(db)
	candidateRepo := postgres.NewCandidateRepository(db)
	consentRepo := postgres.NewConsentRepository(db)
	conversationRepo := postgres.NewConversationRepository(db)

	// Initialize use cases
	batchUseCase := batch.NewBatchUseCase(
		profileRepo,
		candidateRepo,
		redisClient,
		cfg.Matching,
	)

	var opener consent.OpenerGenerator
	if geminiClient != nil {
		opener = geminiClient
	}
	consentUseCase := consent.NewConsentUseCase(
		candidateRepo,
		consentRepo,
		conversationRepo,
		opener,
		cfg.Gemini.Timeout,
	)

	queryUseCase := query.NewQueryUseCase(
		candidateRepo,
		consentRepo,
	)

	conversationUseCase := conversation.NewConversationUseCase(
		conversationRepo,
	)

	profileUseCase := profile.NewProfileUseCase(
		profileRepo,
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg.JWT.AccessSecret, cfg.Server.Env)
	profileHandler := handler.NewProfileHandler(profileUseCase)
	matchHandler := handler.NewMatchHandler(batchUseCase, consentUseCase, queryUseCase)
	conversationHandler := handler.NewConversationHandler(conversationUseCase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.AccessSecret)

	// Initialize router
	router := http.NewRouter(
		authHandler,
		profileHandler,
		matchHandler,
		conversationHandler,
		authMiddleware,
	)

	// Setup routes
	ginRouter := router.Setup()

	// Initialize server
	srv := server.NewServer(&cfg.Server, ginRouter)

	return &Container{
		Config:        cfg,
		DB:            db,
		Redis:         redisClient,
		Server:        srv,
		Gemini:        geminiClient,
		ProfileRepo:   profileRepo,
		CandidateRepo: candidateRepo,
		BatchUseCase:  batchUseCase,
	}, nil
}

// Close closes all connections
func (c *Container) Close() error {
	// Close Redis
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			fmt.Printf("Error closing Redis: %v\n", err)
		}
	}

	// Close database
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
