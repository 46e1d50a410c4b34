package server

import (
	"net/http"

	"backend/internal/config"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/notifier"
	"backend/internal/repository"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router   *gin.Engine
	db       *sqlx.DB
	cfg      *config.Config
	logger   *zap.Logger
	notifier *notifier.Notifier
}

func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger, notifier *notifier.Notifier) *Server {
	router := gin.Default()

	handler.RegisterValidatorTagNames()

	s := &Server{
		router:   router,
		db:       db,
		cfg:      cfg,
		logger:   logger,
		notifier: notifier,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Auth components use logrus, the rest of the API logs through zap.
	authLog := logrus.New()
	authRepo := repository.NewAuthRepository(s.db, s.logger)
	authService := service.NewAuthService(authRepo, s.logger)
	authHandler := handler.NewAuthHandler(authService, authLog)

	messageRepo := repository.NewMessageRepository(s.db, s.logger)
	leadRepo := repository.NewLeadRepository(s.db, s.logger)
	botRepo := repository.NewBotRepository(s.db, s.logger)

	messageHandler := handler.NewMessageHandler(messageRepo, s.notifier, s.logger)
	leadHandler := handler.NewLeadHandler(leadRepo, s.logger)
	botHandler := handler.NewBotHandler(botRepo, s.logger)
	dashboardHandler := handler.NewDashboardHandler(messageRepo, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// Message ingestion and feed. Bots post here directly, so this
	// group stays outside the JWT gate.
	messages := s.router.Group("/api/messages")
	messages.POST("", messageHandler.CreateMessage)
	messages.GET("", messageHandler.ListMessages)

	// Dashboard routes require a valid token
	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(s.logger))
	{
		authRequired.POST("/auth/logout", authHandler.Logout)

		authRequired.GET("/leads", leadHandler.ListLeads)
		authRequired.POST("/leads", leadHandler.CreateLead)
		authRequired.PUT("/leads/:id/status", leadHandler.UpdateLeadStatus)

		authRequired.GET("/bots", botHandler.ListBots)
		authRequired.POST("/bots/:id/heartbeat", botHandler.Heartbeat)
		authRequired.GET("/bots/:id/tests", botHandler.ListTestRuns)
		authRequired.POST("/bots/:id/tests", botHandler.RecordTestRun)

		authRequired.GET("/dashboard", dashboardHandler.GetDashboard)
	}
}

func (s *Server) Run(addr string) {
	s.logger.Info("Server starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.logger.Fatal("Server failed to start", zap.Error(err))
	}
}
