package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/mailer"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
)

// captureMailer records outbound codes instead of sending them.
type captureMailer struct {
	sent []capturedOTP
	err  error
}

type capturedOTP struct {
	To      string
	Code    string
	Purpose mailer.Purpose
}

func (m *captureMailer) SendOTP(to, code string, purpose mailer.Purpose) error {
	m.sent = append(m.sent, capturedOTP{To: to, Code: code, Purpose: purpose})
	return m.err
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1].Code
}

func openTestDB(t *testing.T) *gorm.DB {
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
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
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
	require.NoError(t, db.Create(user).Error)
	return user
}

func identityFor(user *models.User) *auth.Identity {
	return &auth.Identity{ID: user.ID, Email: user.Email, Role: user.Role}
}

func createTestProject(t *testing.T, db *gorm.DB, managerID uint64, memberIDs ...uint64) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:      "Test Project",
		Status:    models.ProjectStatusPlanning,
		StartDate: time.Now(),
		ManagerID: managerID,
	}
	require.NoError(t, db.Create(project).Error)
	for _, id := range memberIDs {
		require.NoError(t, db.Create(&models.ProjectMember{ProjectID: project.ID, UserID: id}).Error)
	}
	return project
}

func createTestTask(t *testing.T, db *gorm.DB, projectID, assignerID uint64, assigneeIDs ...uint64) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:       "Test Task",
		Description: "something to do",
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		ProjectID:   projectID,
		AssignerID:  assignerID,
	}
	require.NoError(t, db.Create(task).Error)
	for _, id := range assigneeIDs {
		require.NoError(t, db.Create(&models.TaskAssignee{TaskID: task.ID, UserID: id}).Error)
	}
	return task
}

func newTestAuthService(t *testing.T, db *gorm.DB) (*AuthService, *captureMailer) {
	t.Helper()

	userRepo := repository.NewUserRepository(db)
	m := &captureMailer{}
	otp := NewOTPService(userRepo, m, false)
	return NewAuthService(userRepo, otp), m
}
