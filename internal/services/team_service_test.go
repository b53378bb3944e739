package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
)

type teamTestFixture struct {
	db      *gorm.DB
	admin   *models.User
	manager *models.User
	other   *models.User
	member  *models.User
	project *models.Project
}

func newTestTeamService(t *testing.T) (*TeamService, *teamTestFixture) {
	t.Helper()

	db := openTestDB(t)
	f := &teamTestFixture{
		db:      db,
		admin:   createTestUser(t, db, "admin@x.com", models.RoleAdmin),
		manager: createTestUser(t, db, "manager@x.com", models.RoleManager),
		other:   createTestUser(t, db, "other-manager@x.com", models.RoleManager),
		member:  createTestUser(t, db, "member@x.com", models.RoleUser),
	}
	f.project = createTestProject(t, db, f.manager.ID, f.member.ID)

	svc := NewTeamService(repository.NewTeamRepository(db), repository.NewProjectRepository(db))
	return svc, f
}

func TestTeamService_CreateRequiresProject(t *testing.T) {
	svc, f := newTestTeamService(t)

	_, err := svc.CreateTeam(identityFor(f.member), CreateTeamInput{
		Name:      "Alpha",
		ProjectID: f.project.ID,
		MemberIDs: []uint64{f.member.ID},
	})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateTeam(identityFor(f.manager), CreateTeamInput{
		Name:      "Alpha",
		ProjectID: 9999,
		MemberIDs: []uint64{f.member.ID},
	})
	require.ErrorIs(t, err, ErrProjectNotFound)

	// a manager cannot attach a team to someone else's project
	_, err = svc.CreateTeam(identityFor(f.other), CreateTeamInput{
		Name:      "Alpha",
		ProjectID: f.project.ID,
		MemberIDs: []uint64{f.member.ID},
	})
	require.ErrorIs(t, err, ErrForbidden)

	team, err := svc.CreateTeam(identityFor(f.manager), CreateTeamInput{
		Name:               "Alpha",
		ProjectID:          f.project.ID,
		MemberIDs:          []uint64{f.member.ID},
		AvailableResources: []string{"laptops"},
	})
	require.NoError(t, err)
	require.NotNil(t, team.ManagerID)
	require.Equal(t, f.manager.ID, *team.ManagerID)

	// the project now points at the new team
	var project models.Project
	require.NoError(t, f.db.First(&project, f.project.ID).Error)
	require.NotNil(t, project.TeamID)
	require.Equal(t, team.ID, *project.TeamID)
}

func TestTeamService_CreateRejectsDuplicateName(t *testing.T) {
	svc, f := newTestTeamService(t)

	_, err := svc.CreateTeam(identityFor(f.manager), CreateTeamInput{
		Name:      "Alpha",
		ProjectID: f.project.ID,
		MemberIDs: []uint64{f.member.ID},
	})
	require.NoError(t, err)

	_, err = svc.CreateTeam(identityFor(f.manager), CreateTeamInput{
		Name:      "Alpha",
		ProjectID: f.project.ID,
		MemberIDs: []uint64{f.member.ID},
	})
	require.ErrorIs(t, err, ErrTeamNameTaken)
}

func TestTeamService_VisibilityAndUpdate(t *testing.T) {
	svc, f := newTestTeamService(t)

	team, err := svc.CreateTeam(identityFor(f.manager), CreateTeamInput{
		Name:      "Alpha",
		ProjectID: f.project.ID,
		MemberIDs: []uint64{f.member.ID},
	})
	require.NoError(t, err)

	_, err = svc.GetTeam(identityFor(f.admin), team.ID)
	require.NoError(t, err)

	_, err = svc.GetTeam(identityFor(f.member), team.ID)
	require.NoError(t, err)

	_, err = svc.GetTeam(identityFor(f.other), team.ID)
	require.ErrorIs(t, err, ErrForbidden)

	name := "Bravo"
	_, err = svc.UpdateTeam(identityFor(f.other), team.ID, UpdateTeamInput{Name: &name})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateTeam(identityFor(f.manager), team.ID, UpdateTeamInput{
		Name:               &name,
		AvailableResources: []string{"meeting room"},
	})
	require.NoError(t, err)
	require.Equal(t, "Bravo", updated.Name)
	require.Equal(t, []string{"meeting room"}, updated.AvailableResources)
}

func TestTeamService_UpdateRejectedListLeavesFieldsUntouched(t *testing.T) {
	svc, f := newTestTeamService(t)

	team, err := svc.CreateTeam(identityFor(f.manager), CreateTeamInput{
		Name:      "Alpha",
		ProjectID: f.project.ID,
		MemberIDs: []uint64{f.member.ID},
	})
	require.NoError(t, err)

	// a rejected member list must not let the rename slip through
	name := "Bravo"
	_, err = svc.UpdateTeam(identityFor(f.manager), team.ID, UpdateTeamInput{
		Name:      &name,
		MemberIDs: []uint64{},
	})
	require.ErrorIs(t, err, ErrMembersRequired)

	_, err = svc.UpdateTeam(identityFor(f.manager), team.ID, UpdateTeamInput{
		Name:      &name,
		MemberIDs: []uint64{f.member.ID, 9999},
	})
	require.ErrorIs(t, err, ErrUnknownMembers)

	current, err := svc.GetTeam(identityFor(f.manager), team.ID)
	require.NoError(t, err)
	require.Equal(t, "Alpha", current.Name)
	require.Len(t, current.Members, 1)
	require.Equal(t, f.member.ID, current.Members[0].UserID)
}

func TestTeamService_Delete(t *testing.T) {
	svc, f := newTestTeamService(t)

	team, err := svc.CreateTeam(identityFor(f.manager), CreateTeamInput{
		Name:      "Alpha",
		ProjectID: f.project.ID,
		MemberIDs: []uint64{f.member.ID},
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteTeam(identityFor(f.member), team.ID), ErrForbidden)
	require.ErrorIs(t, svc.DeleteTeam(identityFor(f.other), team.ID), ErrForbidden)
	require.NoError(t, svc.DeleteTeam(identityFor(f.admin), team.ID))

	_, err = svc.GetTeam(identityFor(f.admin), team.ID)
	require.ErrorIs(t, err, ErrTeamNotFound)
}
