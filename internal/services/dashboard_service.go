package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
)

// Timeframe names accepted by the overview dashboard. Anything else
// falls back to the month rule.
const (
	TimeframeToday   = "today"
	TimeframeWeek    = "week"
	TimeframeMonth   = "month"
	TimeframeQuarter = "quarter"
	TimeframeYear    = "year"
)

// DashboardKPIs is the headline counter block of the admin overview.
type DashboardKPIs struct {
	TotalUsers      int64 `json:"totalUsers"`
	TotalProjects   int64 `json:"totalProjects"`
	TotalTasks      int64 `json:"totalTasks"`
	CompletedTasks  int64 `json:"completedTasks"`
	TotalTeams      int64 `json:"totalTeams"`
	OverdueTasks    int64 `json:"overdueTasks"`
	OverdueProjects int64 `json:"overdueProjects"`
	UnassignedTasks int64 `json:"unassignedTasks"`
}

// UsersByRole breaks user counts down per role, zero-defaulted.
type UsersByRole struct {
	Admin   int64 `json:"admin"`
	Manager int64 `json:"manager"`
	User    int64 `json:"user"`
}

// UserAnalytics is the user facet of the admin overview.
type UserAnalytics struct {
	NewUsers       int64       `json:"newUsers"`
	UserGrowthRate int         `json:"userGrowthRate"`
	UsersByRole    UsersByRole `json:"usersByRole"`
}

// ProjectsByStatus breaks project counts down per status, zero-defaulted.
type ProjectsByStatus struct {
	Planning   int64 `json:"planning"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	OnHold     int64 `json:"onHold"`
}

// ProjectAnalytics is the project facet of the admin overview.
type ProjectAnalytics struct {
	NewProjects        int64            `json:"newProjects"`
	ProjectsByStatus   ProjectsByStatus `json:"projectsByStatus"`
	CompletionRate     int              `json:"completionRate"`
	AvgProjectDuration int              `json:"avgProjectDuration"`
	OverdueProjects    int64            `json:"overdueProjects"`
}

// TasksByStatus breaks task counts down per status, zero-defaulted.
type TasksByStatus struct {
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"inProgress"`
	Review     int64 `json:"review"`
	Done       int64 `json:"done"`
}

// TasksByPriority breaks task counts down per priority, zero-defaulted.
type TasksByPriority struct {
	Low      int64 `json:"low"`
	Medium   int64 `json:"medium"`
	High     int64 `json:"high"`
	Critical int64 `json:"critical"`
}

// TaskAnalytics is the task facet of the admin overview.
type TaskAnalytics struct {
	NewTasks        int64           `json:"newTasks"`
	TasksByStatus   TasksByStatus   `json:"tasksByStatus"`
	TasksByPriority TasksByPriority `json:"tasksByPriority"`
	CompletionRate  int             `json:"completionRate"`
	OverdueTasks    int64           `json:"overdueTasks"`
	UnassignedTasks int64           `json:"unassignedTasks"`
	AvgTasksPerUser int             `json:"avgTasksPerUser"`
}

// DashboardOverview is the admin dashboard response.
type DashboardOverview struct {
	Timeframe        string           `json:"timeframe"`
	KPIs             DashboardKPIs    `json:"kpis"`
	UserAnalytics    UserAnalytics    `json:"userAnalytics"`
	ProjectAnalytics ProjectAnalytics `json:"projectAnalytics"`
	TaskAnalytics    TaskAnalytics    `json:"taskAnalytics"`
}

// MemberOverview is the per-caller dashboard response.
type MemberOverview struct {
	MyProjects       int64 `json:"myProjects"`
	ActiveProjects   int64 `json:"activeProjects"`
	MyTasks          int64 `json:"myTasks"`
	CompletedTasks   int64 `json:"completedTasks"`
	OverdueTasks     int64 `json:"overdueTasks"`
	TasksDueThisWeek int64 `json:"tasksDueThisWeek"`
	CompletionRate   int   `json:"completionRate"`
}

// DashboardService computes the dashboard KPI aggregations.
type DashboardService struct {
	analytics repository.AnalyticsRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(analytics repository.AnalyticsRepository) *DashboardService {
	return &DashboardService{analytics: analytics}
}

// Overview assembles the admin dashboard for a timeframe. The facet
// computations per collection are independent reads and run
// concurrently; only the final assembly waits for all of them.
func (s *DashboardService) Overview(ctx context.Context, timeframe string) (*DashboardOverview, error) {
	now := time.Now()
	start, end := calculateDateRange(timeframe, now, false)
	lastStart, lastEnd := calculateDateRange(timeframe, now, true)

	var (
		totalUsers, newUsers, lastNewUsers int64
		usersByRole                        map[models.Role]int64

		totalProjects, newProjects, completedProjects, overdueProjects int64
		projectsByStatus                                               map[models.ProjectStatus]int64
		durations                                                      []repository.ProjectDuration

		totalTasks, newTasks, completedTasks, overdueTasks, unassignedTasks int64
		tasksByStatus                                                       map[models.TaskStatus]int64
		tasksByPriority                                                     map[models.TaskPriority]int64

		totalTeams int64
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if totalUsers, err = s.analytics.CountUsers(); err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if newUsers, err = s.analytics.CountUsersCreatedBetween(start, end); err != nil {
			return fmt.Errorf("count new users: %w", err)
		}
		if lastNewUsers, err = s.analytics.CountUsersCreatedBetween(lastStart, lastEnd); err != nil {
			return fmt.Errorf("count last period users: %w", err)
		}
		if usersByRole, err = s.analytics.UsersByRole(); err != nil {
			return fmt.Errorf("group users by role: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		if totalProjects, err = s.analytics.CountProjects(); err != nil {
			return fmt.Errorf("count projects: %w", err)
		}
		if newProjects, err = s.analytics.CountProjectsCreatedBetween(start, end); err != nil {
			return fmt.Errorf("count new projects: %w", err)
		}
		if projectsByStatus, err = s.analytics.ProjectsByStatus(); err != nil {
			return fmt.Errorf("group projects by status: %w", err)
		}
		if completedProjects, err = s.analytics.CountCompletedProjects(); err != nil {
			return fmt.Errorf("count completed projects: %w", err)
		}
		if overdueProjects, err = s.analytics.CountOverdueProjects(now); err != nil {
			return fmt.Errorf("count overdue projects: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		if totalTasks, err = s.analytics.CountTasks(); err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}
		if newTasks, err = s.analytics.CountTasksCreatedBetween(start, end); err != nil {
			return fmt.Errorf("count new tasks: %w", err)
		}
		if tasksByStatus, err = s.analytics.TasksByStatus(); err != nil {
			return fmt.Errorf("group tasks by status: %w", err)
		}
		if tasksByPriority, err = s.analytics.TasksByPriority(); err != nil {
			return fmt.Errorf("group tasks by priority: %w", err)
		}
		if completedTasks, err = s.analytics.CountCompletedTasks(); err != nil {
			return fmt.Errorf("count completed tasks: %w", err)
		}
		if overdueTasks, err = s.analytics.CountOverdueTasks(now); err != nil {
			return fmt.Errorf("count overdue tasks: %w", err)
		}
		if unassignedTasks, err = s.analytics.CountUnassignedTasks(); err != nil {
			return fmt.Errorf("count unassigned tasks: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		if totalTeams, err = s.analytics.CountTeams(); err != nil {
			return fmt.Errorf("count teams: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		if durations, err = s.analytics.CompletedProjectDurations(); err != nil {
			return fmt.Errorf("completed project durations: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	normalized := timeframe
	switch normalized {
	case TimeframeToday, TimeframeWeek, TimeframeMonth, TimeframeQuarter, TimeframeYear:
	default:
		normalized = TimeframeMonth
	}

	return &DashboardOverview{
		Timeframe: normalized,
		KPIs: DashboardKPIs{
			TotalUsers:      totalUsers,
			TotalProjects:   totalProjects,
			TotalTasks:      totalTasks,
			CompletedTasks:  completedTasks,
			TotalTeams:      totalTeams,
			OverdueTasks:    overdueTasks,
			OverdueProjects: overdueProjects,
			UnassignedTasks: unassignedTasks,
		},
		UserAnalytics: UserAnalytics{
			NewUsers:       newUsers,
			UserGrowthRate: growthRate(newUsers, lastNewUsers),
			UsersByRole: UsersByRole{
				Admin:   usersByRole[models.RoleAdmin],
				Manager: usersByRole[models.RoleManager],
				User:    usersByRole[models.RoleUser],
			},
		},
		ProjectAnalytics: ProjectAnalytics{
			NewProjects: newProjects,
			ProjectsByStatus: ProjectsByStatus{
				Planning:   projectsByStatus[models.ProjectStatusPlanning],
				InProgress: projectsByStatus[models.ProjectStatusInProgress],
				Completed:  projectsByStatus[models.ProjectStatusCompleted],
				OnHold:     projectsByStatus[models.ProjectStatusOnHold],
			},
			CompletionRate:     completionRate(completedProjects, totalProjects),
			AvgProjectDuration: averageDurationDays(durations),
			OverdueProjects:    overdueProjects,
		},
		TaskAnalytics: TaskAnalytics{
			NewTasks: newTasks,
			TasksByStatus: TasksByStatus{
				Todo:       tasksByStatus[models.TaskStatusTodo],
				InProgress: tasksByStatus[models.TaskStatusInProgress],
				Review:     tasksByStatus[models.TaskStatusReview],
				Done:       tasksByStatus[models.TaskStatusDone],
			},
			TasksByPriority: TasksByPriority{
				Low:      tasksByPriority[models.TaskPriorityLow],
				Medium:   tasksByPriority[models.TaskPriorityMedium],
				High:     tasksByPriority[models.TaskPriorityHigh],
				Critical: tasksByPriority[models.TaskPriorityCritical],
			},
			CompletionRate:  completionRate(completedTasks, totalTasks),
			OverdueTasks:    overdueTasks,
			UnassignedTasks: unassignedTasks,
			AvgTasksPerUser: ratio(totalTasks, totalUsers),
		},
	}, nil
}

// MemberOverview assembles the per-caller dashboard.
func (s *DashboardService) MemberOverview(actor *auth.Identity) (*MemberOverview, error) {
	now := time.Now()

	stats, err := s.analytics.MemberTaskStats(actor.ID, now)
	if err != nil {
		return nil, fmt.Errorf("member task stats: %w", err)
	}

	activeProjects, err := s.analytics.CountActiveProjectsFor(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("count active projects: %w", err)
	}

	return &MemberOverview{
		MyProjects:       activeProjects,
		ActiveProjects:   activeProjects,
		MyTasks:          stats.Total,
		CompletedTasks:   stats.Completed,
		OverdueTasks:     stats.Overdue,
		TasksDueThisWeek: stats.DueThisWeek,
		CompletionRate:   completionRate(stats.Completed, stats.Total),
	}, nil
}

// calculateDateRange maps a timeframe to its [start, end] window. With
// lastPeriod set, the anchor month shifts back by one (rolling the year
// at January) before the rule is applied, which yields the previous
// period for the growth comparison.
func calculateDateRange(timeframe string, now time.Time, lastPeriod bool) (time.Time, time.Time) {
	loc := now.Location()
	year := now.Year()
	month := int(now.Month())
	if lastPeriod {
		month--
		if month < 1 {
			month = 12
			year--
		}
	}

	end := now
	var start time.Time

	switch timeframe {
	case TimeframeToday:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	case TimeframeWeek:
		start = now.Add(-7 * 24 * time.Hour)
	case TimeframeQuarter:
		start = time.Date(year, time.Month(month-3), 1, 0, 0, 0, 0, loc)
	case TimeframeYear:
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	default:
		// month rule, also the fallback for unknown values
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		end = time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, loc)
	}

	return start, end
}

// completionRate is round(completed/total*100), 0 when total is 0.
func completionRate(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// growthRate compares the current period to the previous one: 100 when
// the previous period had nothing and the current has at least one.
func growthRate(current, previous int64) int {
	if previous > 0 {
		return int(math.Round(float64(current-previous) / float64(previous) * 100))
	}
	if current > 0 {
		return 100
	}
	return 0
}

func ratio(numerator, denominator int64) int {
	if denominator == 0 {
		return 0
	}
	return int(math.Round(float64(numerator) / float64(denominator)))
}

// averageDurationDays is the rounded mean of end-start in days across
// completed projects that have both dates, 0 when there are none.
func averageDurationDays(durations []repository.ProjectDuration) int {
	if len(durations) == 0 {
		return 0
	}

	var totalDays float64
	for _, d := range durations {
		totalDays += d.EndDate.Sub(d.StartDate).Hours() / 24
	}
	return int(math.Round(totalDays / float64(len(durations))))
}
