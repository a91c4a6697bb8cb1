package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"telegramdw/internal/handler"
	"telegramdw/internal/repository"
)

// Server is the analytical HTTP API over the warehouse.
type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	logger *zap.Logger
}

// NewServer creates a new Server and registers its routes.
func NewServer(db *sqlx.DB, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		db:     db,
		logger: logger,
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	analyticsRepo := repository.NewAnalyticsRepository(s.db, s.logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsRepo, s.logger)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		api.GET("/reports/top-products", analyticsHandler.TopProducts)
		api.GET("/channels/:name/activity", analyticsHandler.ChannelActivity)
		api.GET("/search/messages", analyticsHandler.SearchMessages)
	}
}

// Run starts the HTTP server on the given address and blocks.
func (s *Server) Run(addr string) error {
	s.logger.Info("API server starting", zap.String("addr", addr))
	return s.router.Run(addr)
}
