// Package server assembles repositories, services, handlers and middleware
// into a gin engine.
package server

import (
	"github.com/crowdfund-api/internal/config"
	"github.com/crowdfund-api/internal/handler"
	"github.com/crowdfund-api/internal/middleware"
	"github.com/crowdfund-api/internal/repository"
	"github.com/crowdfund-api/internal/service"
	"github.com/crowdfund-api/internal/validation"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Server holds the router and the services behind it
type Server struct {
	Router         *gin.Engine
	AuthService    *service.AuthService
	AccountService *service.AccountService
	ProjectService *service.ProjectService
}

// New wires the application on top of db
func New(db *gorm.DB, jwtConfig config.JWTConfig, build handler.BuildInfo) *Server {
	validation.Register()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtConfig)
	accountService := service.NewAccountService(userRepo, authService)
	projectService := service.NewProjectService(projectRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, accountService)
	accountHandler := handler.NewAccountHandler(accountService)
	projectHandler := handler.NewProjectHandler(projectService)
	healthHandler := handler.NewHealthHandler(db, build)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLoggerMiddleware(),
		middleware.MetricsMiddleware(),
		middleware.CORS(),
		middleware.ErrorHandler(),
	)

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", middleware.MetricsHandler())

	root := router.Group("")
	{
		authMiddleware := middleware.AuthMiddleware(authService)

		// Account routes (register and login are public)
		authHandler.RegisterRoutes(root)
		accountHandler.RegisterRoutes(root, authMiddleware)

		// Project routes (protected)
		projectHandler.RegisterRoutes(root, authMiddleware)
	}

	return &Server{
		Router:         router,
		AuthService:    authService,
		AccountService: accountService,
		ProjectService: projectService,
	}
}
