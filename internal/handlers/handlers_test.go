package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/mailer"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// captureMailer records outbound codes instead of sending them.
type captureMailer struct {
	codes []string
}

func (m *captureMailer) SendOTP(to, code string, purpose mailer.Purpose) error {
	m.codes = append(m.codes, code)
	return nil
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.codes)
	return m.codes[len(m.codes)-1]
}

type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	mailer   *captureMailer
	tokenSvc *auth.TokenService
}

// setupTestEnv wires the full router against an in-memory database,
// mirroring the server wiring minus redis.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.TaskAssignee{},
		&models.TaskComment{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	m := &captureMailer{}
	tokenSvc := auth.NewTokenService("test-secret", time.Hour)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	otpService := services.NewOTPService(userRepo, m, false)
	authService := services.NewAuthService(userRepo, otpService)
	userService := services.NewUserService(userRepo)
	projectService := services.NewProjectService(projectRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo)
	teamService := services.NewTeamService(teamRepo, projectRepo)
	dashboardService := services.NewDashboardService(analyticsRepo)

	authHandler := NewAuthHandler(authService, tokenSvc, false)
	userHandler := NewUserHandler(userService)
	projectHandler := NewProjectHandler(projectService)
	taskHandler := NewTaskHandler(taskService)
	teamHandler := NewTeamHandler(teamService)
	dashboardHandler := NewDashboardHandler(dashboardService)

	requireAuth := middleware.RequireAuth(tokenSvc)

	r := gin.New()
	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/verify-email", authHandler.VerifyEmail)
			authRoutes.POST("/resend-verification", authHandler.ResendVerification)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
			authRoutes.POST("/verify-reset-otp", authHandler.VerifyResetOTP)
			authRoutes.POST("/reset-password", authHandler.ResetPassword)
			authRoutes.POST("/change-password", requireAuth, authHandler.ChangePassword)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/me", userHandler.Me)
			users.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), userHandler.List)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Delete)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.List)
			projects.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), projectHandler.Create)
			projects.GET("/:id", projectHandler.Get)
			projects.PUT("/:id", projectHandler.Update)
			projects.DELETE("/:id", projectHandler.Delete)
		}

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

		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teams.GET("", teamHandler.List)
			teams.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleManager), teamHandler.Create)
			teams.GET("/:id", teamHandler.Get)
			teams.PUT("/:id", teamHandler.Update)
			teams.DELETE("/:id", teamHandler.Delete)
		}

		dashboard := api.Group("/dashboard")
		dashboard.Use(requireAuth)
		{
			dashboard.GET("/overview", middleware.RequireRoles(models.RoleAdmin), dashboardHandler.Overview)
			dashboard.GET("/member", dashboardHandler.Member)
		}
	}

	return &testEnv{db: db, router: r, mailer: m, tokenSvc: tokenSvc}
}

// request performs a JSON request against the test router, with a
// bearer token when one is given.
func (env *testEnv) request(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) createUser(t *testing.T, email string, role models.Role) (*models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsVerified:   true,
		Availability: true,
	}
	require.NoError(t, env.db.Create(user).Error)

	token, err := env.tokenSvc.Generate(user)
	require.NoError(t, err)
	return user, token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	body := decodeBody(t, w)
	require.Equal(t, true, body["success"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object")
	return data
}
