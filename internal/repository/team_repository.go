package repository

import (
	"github.com/taskflow/taskflow-api/internal/database"
	"github.com/taskflow/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a team together with its member rows
func (r *GormTeamRepository) Create(team *models.Team, memberIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}

		members := make([]models.TeamMember, len(memberIDs))
		for i, userID := range memberIDs {
			members[i] = models.TeamMember{
				TeamID: team.ID,
				UserID: userID,
			}
		}
		return tx.Create(&members).Error
	})
}

// FindByID finds a team by ID with optional preloading
func (r *GormTeamRepository) FindByID(id uint64, preload ...string) (*models.Team, error) {
	var team models.Team
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByName finds a team by its unique name
func (r *GormTeamRepository) FindByName(name string) (*models.Team, error) {
	var team models.Team
	if err := r.db.Where("name = ?", name).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// List retrieves teams matching the filter
func (r *GormTeamRepository) List(filter TeamFilter) ([]models.Team, int64, error) {
	var teams []models.Team

	query := r.db.Model(&models.Team{})

	if filter.ManagerID != nil {
		query = query.Where("teams.manager_id = ?", *filter.ManagerID)
	}
	if filter.MemberID != nil {
		memberSubQuery := r.db.Model(&models.TeamMember{}).
			Select("1").
			Where("team_members.team_id = teams.id").
			Where("team_members.user_id = ?", *filter.MemberID)
		query = query.Where("EXISTS (?)", memberSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("teams.created_at DESC").Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Members.User").Find(&teams).Error; err != nil {
		return nil, 0, err
	}

	return teams, total, nil
}

// Update persists changes to a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return r.db.Save(team).Error
}

// ReplaceMembers replaces the team's member set
func (r *GormTeamRepository) ReplaceMembers(teamID uint64, memberIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		members := make([]models.TeamMember, len(memberIDs))
		for i, userID := range memberIDs {
			members[i] = models.TeamMember{
				TeamID: teamID,
				UserID: userID,
			}
		}
		return tx.Create(&members).Error
	})
}

// Delete removes a team with its member rows
func (r *GormTeamRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Team{}, id).Error
	})
}
