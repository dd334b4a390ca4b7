package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/buinguyet/kobizo-code-challenge/internal/config"
	"github.com/buinguyet/kobizo-code-challenge/internal/handlers"
	"github.com/buinguyet/kobizo-code-challenge/internal/middleware"
	"github.com/buinguyet/kobizo-code-challenge/internal/models"
	"github.com/buinguyet/kobizo-code-challenge/internal/services"
)

// New assembles the API surface. Authentication runs before role checks on
// every protected route; mutation routes are admin-only, reads are open to
// any authenticated caller.
func New(cfg *config.Config, verifier middleware.TokenVerifier, authService services.AuthService, taskService services.TaskService) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(cors.Default())
	engine.Use(middleware.RateLimit(cfg.RateLimit))

	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)

	authenticated := middleware.Authentication(verifier)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	v1 := engine.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/exchange-token", authHandler.ExchangeToken)
		auth.GET("/profile", authenticated, authHandler.Profile)
	}

	tasks := v1.Group("/tasks", authenticated)
	{
		tasks.POST("", adminOnly, taskHandler.CreateTask)
		tasks.GET("", taskHandler.GetTasks)
		tasks.GET("/:id", taskHandler.GetTaskByID)
		tasks.GET("/:id/subtasks", taskHandler.GetSubtasks)
		tasks.PUT("/:id", adminOnly, taskHandler.UpdateTask)
		tasks.DELETE("/:id", adminOnly, taskHandler.DeleteTask)
	}

	return engine
}
