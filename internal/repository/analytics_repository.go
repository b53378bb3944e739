package repository

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormAnalyticsRepository is a GORM implementation of AnalyticsRepository
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

func (r *GormAnalyticsRepository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountUsersCreatedBetween(start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("users.created_at >= ? AND users.created_at <= ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) UsersByRole() (map[models.Role]int64, error) {
	var rows []struct {
		Role  models.Role
		Count int64
	}
	err := r.db.Model(&models.User{}).
		Select("role, count(*) as count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

func (r *GormAnalyticsRepository) CountProjects() (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountProjectsCreatedBetween(start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).
		Where("projects.created_at >= ? AND projects.created_at <= ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) ProjectsByStatus() (map[models.ProjectStatus]int64, error) {
	var rows []struct {
		Status models.ProjectStatus
		Count  int64
	}
	err := r.db.Model(&models.Project{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ProjectStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *GormAnalyticsRepository) CountCompletedProjects() (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).
		Where("projects.status = ?", models.ProjectStatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountOverdueProjects(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).
		Where("projects.end_date IS NOT NULL AND projects.end_date < ?", now).
		Where("projects.status <> ?", models.ProjectStatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CompletedProjectDurations() ([]ProjectDuration, error) {
	var rows []ProjectDuration
	err := r.db.Model(&models.Project{}).
		Select("start_date, end_date").
		Where("projects.status = ?", models.ProjectStatusCompleted).
		Where("projects.end_date IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormAnalyticsRepository) CountTasks() (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountTasksCreatedBetween(start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("tasks.created_at >= ? AND tasks.created_at <= ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) TasksByStatus() (map[models.TaskStatus]int64, error) {
	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}
	err := r.db.Model(&models.Task{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *GormAnalyticsRepository) TasksByPriority() (map[models.TaskPriority]int64, error) {
	var rows []struct {
		Priority models.TaskPriority
		Count    int64
	}
	err := r.db.Model(&models.Task{}).
		Select("priority, count(*) as count").
		Group("priority").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskPriority]int64, len(rows))
	for _, row := range rows {
		counts[row.Priority] = row.Count
	}
	return counts, nil
}

func (r *GormAnalyticsRepository) CountCompletedTasks() (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("tasks.status = ?", models.TaskStatusDone).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountOverdueTasks(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("tasks.due_date IS NOT NULL AND tasks.due_date < ?", now).
		Where("tasks.status <> ?", models.TaskStatusDone).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountUnassignedTasks() (int64, error) {
	assigneeSubQuery := r.db.Model(&models.TaskAssignee{}).
		Select("1").
		Where("task_assignees.task_id = tasks.id")

	var count int64
	err := r.db.Model(&models.Task{}).
		Where("NOT EXISTS (?)", assigneeSubQuery).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountTeams() (int64, error) {
	var count int64
	err := r.db.Model(&models.Team{}).Count(&count).Error
	return count, err
}

// MemberTaskStats computes the per-caller task facets over tasks
// assigned to the user.
func (r *GormAnalyticsRepository) MemberTaskStats(userID uint64, now time.Time) (*MemberTaskStats, error) {
	assigned := func() *gorm.DB {
		assigneeSubQuery := r.db.Model(&models.TaskAssignee{}).
			Select("1").
			Where("task_assignees.task_id = tasks.id").
			Where("task_assignees.user_id = ?", userID)
		return r.db.Model(&models.Task{}).Where("EXISTS (?)", assigneeSubQuery)
	}

	stats := &MemberTaskStats{}

	if err := assigned().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := assigned().Where("tasks.status = ?", models.TaskStatusDone).Count(&stats.Completed).Error; err != nil {
		return nil, err
	}
	if err := assigned().
		Where("tasks.due_date IS NOT NULL AND tasks.due_date < ?", now).
		Where("tasks.status <> ?", models.TaskStatusDone).
		Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}
	weekEnd := now.Add(7 * 24 * time.Hour)
	if err := assigned().
		Where("tasks.due_date >= ? AND tasks.due_date <= ?", now, weekEnd).
		Count(&stats.DueThisWeek).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *GormAnalyticsRepository) CountActiveProjectsFor(userID uint64) (int64, error) {
	memberSubQuery := r.db.Model(&models.ProjectMember{}).
		Select("1").
		Where("project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID)

	var count int64
	err := r.db.Model(&models.Project{}).
		Where("projects.status = ?", models.ProjectStatusInProgress).
		Where("projects.manager_id = ? OR EXISTS (?)", userID, memberSubQuery).
		Count(&count).Error
	return count, err
}
