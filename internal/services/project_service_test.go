package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
)

func newTestProjectService(t *testing.T) (*ProjectService, *projectTestFixture) {
	t.Helper()

	db := openTestDB(t)
	f := &projectTestFixture{
		admin:   createTestUser(t, db, "admin@x.com", models.RoleAdmin),
		manager: createTestUser(t, db, "manager@x.com", models.RoleManager),
		other:   createTestUser(t, db, "other-manager@x.com", models.RoleManager),
		member:  createTestUser(t, db, "member@x.com", models.RoleUser),
		outside: createTestUser(t, db, "outside@x.com", models.RoleUser),
	}
	f.db = db
	svc := NewProjectService(repository.NewProjectRepository(db))
	return svc, f
}

type projectTestFixture struct {
	db      *gorm.DB
	admin   *models.User
	manager *models.User
	other   *models.User
	member  *models.User
	outside *models.User
}

func TestProjectService_ListScoping(t *testing.T) {
	svc, f := newTestProjectService(t)

	createTestProject(t, f.db, f.manager.ID, f.member.ID)
	createTestProject(t, f.db, f.other.ID, f.outside.ID)

	// admins see everything
	projects, total, err := svc.ListProjects(identityFor(f.admin), 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, projects, 2)

	// managers see only what they manage
	projects, total, err = svc.ListProjects(identityFor(f.manager), 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, f.manager.ID, projects[0].ManagerID)

	// users see only projects they are a member of
	projects, total, err = svc.ListProjects(identityFor(f.member), 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, f.manager.ID, projects[0].ManagerID)
}

func TestProjectService_GetVisibility(t *testing.T) {
	svc, f := newTestProjectService(t)

	project := createTestProject(t, f.db, f.manager.ID, f.member.ID)

	_, err := svc.GetProject(identityFor(f.admin), project.ID)
	require.NoError(t, err)

	_, err = svc.GetProject(identityFor(f.member), project.ID)
	require.NoError(t, err)

	// a manager who does not manage the project is shut out
	_, err = svc.GetProject(identityFor(f.other), project.ID)
	require.ErrorIs(t, err, ErrForbidden)

	// so is a user who is not a member
	_, err = svc.GetProject(identityFor(f.outside), project.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetProject(identityFor(f.admin), 9999)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_CreateValidation(t *testing.T) {
	svc, f := newTestProjectService(t)

	_, err := svc.CreateProject(identityFor(f.member), CreateProjectInput{
		Name:      "New Project",
		MemberIDs: []uint64{f.member.ID},
	})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateProject(identityFor(f.manager), CreateProjectInput{
		Name: "New Project",
	})
	require.ErrorIs(t, err, ErrMembersRequired)

	_, err = svc.CreateProject(identityFor(f.manager), CreateProjectInput{
		Name:      "  ",
		MemberIDs: []uint64{f.member.ID},
	})
	require.ErrorIs(t, err, ErrProjectNameRequired)

	_, err = svc.CreateProject(identityFor(f.manager), CreateProjectInput{
		Name:      "New Project",
		MemberIDs: []uint64{f.member.ID, 9999},
	})
	require.ErrorIs(t, err, ErrUnknownMembers)

	project, err := svc.CreateProject(identityFor(f.manager), CreateProjectInput{
		Name:      "New Project",
		MemberIDs: []uint64{f.member.ID, f.member.ID},
	})
	require.NoError(t, err)
	require.Equal(t, f.manager.ID, project.ManagerID)
	require.Equal(t, models.ProjectStatusPlanning, project.Status)
	require.Len(t, project.Members, 1)
}

func TestProjectService_UpdateOwnership(t *testing.T) {
	svc, f := newTestProjectService(t)

	project := createTestProject(t, f.db, f.manager.ID, f.member.ID)

	name := "Renamed"
	_, err := svc.UpdateProject(identityFor(f.other), project.ID, UpdateProjectInput{Name: &name})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateProject(identityFor(f.member), project.ID, UpdateProjectInput{Name: &name})
	require.ErrorIs(t, err, ErrForbidden)

	status := models.ProjectStatusCompleted
	updated, err := svc.UpdateProject(identityFor(f.manager), project.ID, UpdateProjectInput{
		Name:   &name,
		Status: &status,
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, models.ProjectStatusCompleted, updated.Status)

	// replacing members with an empty list is rejected
	_, err = svc.UpdateProject(identityFor(f.manager), project.ID, UpdateProjectInput{MemberIDs: []uint64{}})
	require.ErrorIs(t, err, ErrMembersRequired)

	updated, err = svc.UpdateProject(identityFor(f.manager), project.ID, UpdateProjectInput{
		MemberIDs: []uint64{f.outside.ID},
	})
	require.NoError(t, err)
	require.Len(t, updated.Members, 1)
	require.Equal(t, f.outside.ID, updated.Members[0].UserID)
}

func TestProjectService_UpdateRejectedListLeavesFieldsUntouched(t *testing.T) {
	svc, f := newTestProjectService(t)

	project := createTestProject(t, f.db, f.manager.ID, f.member.ID)

	// a rejected member list must not let the rename slip through
	name := "Renamed"
	_, err := svc.UpdateProject(identityFor(f.manager), project.ID, UpdateProjectInput{
		Name:      &name,
		MemberIDs: []uint64{},
	})
	require.ErrorIs(t, err, ErrMembersRequired)

	_, err = svc.UpdateProject(identityFor(f.manager), project.ID, UpdateProjectInput{
		Name:      &name,
		MemberIDs: []uint64{f.member.ID, 9999},
	})
	require.ErrorIs(t, err, ErrUnknownMembers)

	current, err := svc.GetProject(identityFor(f.manager), project.ID)
	require.NoError(t, err)
	require.Equal(t, project.Name, current.Name)
	require.Len(t, current.Members, 1)
	require.Equal(t, f.member.ID, current.Members[0].UserID)
}

func TestProjectService_Delete(t *testing.T) {
	svc, f := newTestProjectService(t)

	project := createTestProject(t, f.db, f.manager.ID, f.member.ID)
	createTestTask(t, f.db, project.ID, f.manager.ID, f.member.ID)

	require.ErrorIs(t, svc.DeleteProject(identityFor(f.other), project.ID), ErrForbidden)
	require.NoError(t, svc.DeleteProject(identityFor(f.manager), project.ID))

	_, err := svc.GetProject(identityFor(f.admin), project.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)

	// tasks went with the project
	var taskCount int64
	require.NoError(t, f.db.Model(&models.Task{}).Count(&taskCount).Error)
	require.Zero(t, taskCount)
}
