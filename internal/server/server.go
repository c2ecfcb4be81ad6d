package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nautia-api/internal/auth"
	"nautia-api/internal/config"
	"nautia-api/internal/database"
	custommiddleware "nautia-api/internal/middleware"
	"nautia-api/internal/realtime"
	"nautia-api/internal/repository"
	"nautia-api/internal/service"
	"nautia-api/internal/storage"
	"nautia-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// publicWriteLimit throttles the visitor-facing mutation surface
// (appointments, leads, chat) against form spam.
var publicWriteLimit = custommiddleware.RateLimitConfig{
	RequestsPerWindow: 30,
	Window:            time.Minute,
	KeyPrefix:         "ratelimit:public",
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	dbService *database.Service,
	redisClient *redis.Client,
	objectStore storage.ObjectStore,
) *Server {
	db := dbService.DB()

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.WithIdentity(cfg.Auth.JWTSecret, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(dbService.Health())
	})

	// The single authorization policy: one allow-list, one wrapper,
	// applied to every privileged route.
	gate := auth.NewGate(cfg.Auth.AdminEmails)
	requireAdmin := custommiddleware.RequireAdmin(gate, logger)
	rateLimit := custommiddleware.RateLimitMiddleware(redisClient, publicWriteLimit, logger)

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	eventRepo := repository.NewEventRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	chatRepo := repository.NewChatRepository(db)

	// Initialize services
	broker := realtime.NewRedisBroker(redisClient, logger)
	mediaService := service.NewMediaService(objectStore, cfg.Media, logger)
	statsService := service.NewStatsService(productRepo, categoryRepo, leadRepo, appointmentRepo, eventRepo)
	responder := service.NewBotResponder(categoryRepo, logger)
	chatService := service.NewChatService(chatRepo, gate, responder, broker, logger)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productRepo, mediaService, logger)
	categoryHandler := transport.NewCategoryHandler(categoryRepo, logger)
	blogHandler := transport.NewBlogHandler(blogRepo, mediaService, logger)
	eventHandler := transport.NewEventHandler(eventRepo, mediaService, logger)
	appointmentHandler := transport.NewAppointmentHandler(appointmentRepo, logger)
	leadHandler := transport.NewLeadHandler(leadRepo, logger)
	chatHandler := transport.NewChatHandler(chatService, broker, logger)
	adminHandler := transport.NewAdminHandler(statsService, mediaService, logger)

	// Register routes
	productHandler.RegisterRoutes(router, requireAdmin)
	categoryHandler.RegisterRoutes(router, requireAdmin)
	blogHandler.RegisterRoutes(router, requireAdmin)
	eventHandler.RegisterRoutes(router, requireAdmin)
	appointmentHandler.RegisterRoutes(router, requireAdmin, rateLimit)
	leadHandler.RegisterRoutes(router, requireAdmin, rateLimit)
	chatHandler.RegisterRoutes(router, requireAdmin, rateLimit)
	adminHandler.RegisterRoutes(router, requireAdmin)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			// The SSE chat stream holds its response open; no write
			// timeout here, the client context bounds each stream.
			WriteTimeout: 0,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
