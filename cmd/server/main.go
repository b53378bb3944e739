package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/database"
	"github.com/taskflow/taskflow-api/internal/handlers"
	"github.com/taskflow/taskflow-api/internal/logger"
	"github.com/taskflow/taskflow-api/internal/mailer"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/ratelimit"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger.Init(cfg.Env)
	defer logger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis backs the auth-endpoint rate limits
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	limiter := ratelimit.NewLimiter(redisClient)

	// Outbound email: real sender when an API key is configured,
	// otherwise codes go to the log
	var otpMailer mailer.Mailer
	if cfg.BrevoAPIKey != "" {
		otpMailer = mailer.NewBrevoMailer(cfg.BrevoAPIKey, cfg.SenderName, cfg.SenderEmail)
	} else {
		logger.Log.Warn("no email API key configured, OTP codes will be logged")
		otpMailer = mailer.LogMailer{}
	}

	tokenSvc := auth.NewTokenService(cfg.JWTSecret, constants.TokenTTL)

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// Services
	otpService := services.NewOTPService(userRepo, otpMailer, cfg.IsProduction())
	authService := services.NewAuthService(userRepo, otpService)
	userService := services.NewUserService(userRepo)
	projectService := services.NewProjectService(projectRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo)
	teamService := services.NewTeamService(teamRepo, projectRepo)
	dashboardService := services.NewDashboardService(analyticsRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokenSvc, cfg.IsProduction())
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	teamHandler := handlers.NewTeamHandler(teamService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "TaskFlow API is running",
		})
	})

	requireAuth := middleware.RequireAuth(tokenSvc)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public except change-password)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/verify-email", authHandler.VerifyEmail)
			authRoutes.POST("/resend-verification",
				middleware.RateLimit(limiter, ratelimit.OTPResend), authHandler.ResendVerification)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/forgot-password",
				middleware.RateLimit(limiter, ratelimit.PasswordReset), authHandler.ForgotPassword)
			authRoutes.POST("/verify-reset-otp", authHandler.VerifyResetOTP)
			authRoutes.POST("/reset-password", authHandler.ResetPassword)
			authRoutes.POST("/change-password", requireAuth, authHandler.ChangePassword)
		}

		// User routes
		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/me", userHandler.Me)
			users.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), userHandler.List)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Delete)
		}

		// Project routes (visibility enforced in the service layer)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.List)
			projects.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), projectHandler.Create)
			projects.GET("/:id", projectHandler.Get)
			projects.PUT("/:id", projectHandler.Update)
			projects.DELETE("/:id", projectHandler.Delete)
		}

		// Task routes
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.List)
			tasks.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), taskHandler.Create)
			tasks.GET("/:id", taskHandler.Get)
			tasks.PUT("/:id", taskHandler.Update)
			tasks.DELETE("/:id", taskHandler.Delete)
			tasks.POST("/:id/comments", taskHandler.AddComment)
		}

		// Team routes
		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teams.GET("", teamHandler.List)
			teams.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), teamHandler.Create)
			teams.GET("/:id", teamHandler.Get)
			teams.PUT("/:id", teamHandler.Update)
			teams.DELETE("/:id", teamHandler.Delete)
		}

		// Dashboard routes
		dashboard := api.Group("/dashboard")
		dashboard.Use(requireAuth)
		{
			dashboard.GET("/overview", middleware.RequireRoles(models.RoleAdmin), dashboardHandler.Overview)
			dashboard.GET("/member", dashboardHandler.Member)
		}
	}

	logger.Log.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
