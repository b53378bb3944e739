package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/models"
)

type taskHandlerFixture struct {
	managerToken  string
	assignee      *models.User
	assigneeToken string
	outsiderToken string
	taskID        any
}

func setupTaskFixture(t *testing.T, env *testEnv) *taskHandlerFixture {
	t.Helper()

	_, managerToken := env.createUser(t, "manager@x.com", models.RoleManager)
	assignee, assigneeToken := env.createUser(t, "assignee@x.com", models.RoleUser)
	_, outsiderToken := env.createUser(t, "outsider@x.com", models.RoleUser)

	w := env.request(t, http.MethodPost, "/api/projects", managerToken, map[string]any{
		"name":    "Website",
		"members": []uint64{assignee.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	projectID := dataField(t, w)["id"]

	w = env.request(t, http.MethodPost, "/api/tasks", managerToken, map[string]any{
		"title":       "Build the landing page",
		"description": "hero section plus pricing",
		"projectId":   projectID,
		"assignees":   []uint64{assignee.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	return &taskHandlerFixture{
		managerToken:  managerToken,
		assignee:      assignee,
		assigneeToken: assigneeToken,
		outsiderToken: outsiderToken,
		taskID:        dataField(t, w)["id"],
	}
}

func TestTaskHandler_CreateDefaults(t *testing.T) {
	env := setupTestEnv(t)
	f := setupTaskFixture(t, env)

	w := env.request(t, http.MethodGet, fmt.Sprintf("/api/tasks/%v", f.taskID), f.managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := dataField(t, w)
	require.Equal(t, "todo", data["status"])
	require.Equal(t, "medium", data["priority"])
}

func TestTaskHandler_UserUpdateAllowList(t *testing.T) {
	env := setupTestEnv(t)
	f := setupTaskFixture(t, env)

	// the assignee can move status and log time, nothing else
	w := env.request(t, http.MethodPut, fmt.Sprintf("/api/tasks/%v", f.taskID), f.assigneeToken, map[string]any{
		"title":     "Hijacked",
		"status":    "inProgress",
		"priority":  "critical",
		"timeSpent": 3.5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := dataField(t, w)
	require.Equal(t, "inProgress", data["status"])
	require.EqualValues(t, 3.5, data["time_spent"])
	require.Equal(t, "Build the landing page", data["title"])
	require.Equal(t, "medium", data["priority"])

	// a non-assignee user gets nothing
	w = env.request(t, http.MethodPut, fmt.Sprintf("/api/tasks/%v", f.taskID), f.outsiderToken, map[string]any{
		"status": "done",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTaskHandler_CreateRoleGate(t *testing.T) {
	env := setupTestEnv(t)
	f := setupTaskFixture(t, env)

	w := env.request(t, http.MethodPost, "/api/tasks", f.assigneeToken, map[string]any{
		"title":       "Sneaky task",
		"description": "should not exist",
		"projectId":   1,
		"assignees":   []uint64{f.assignee.ID},
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTaskHandler_Comments(t *testing.T) {
	env := setupTestEnv(t)
	f := setupTaskFixture(t, env)

	w := env.request(t, http.MethodPost, fmt.Sprintf("/api/tasks/%v/comments", f.taskID), f.assigneeToken, map[string]any{
		"message": "started on this",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := dataField(t, w)
	require.Equal(t, "started on this", data["message"])

	// an outsider cannot comment on a task they cannot see
	w = env.request(t, http.MethodPost, fmt.Sprintf("/api/tasks/%v/comments", f.taskID), f.outsiderToken, map[string]any{
		"message": "drive-by",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTaskHandler_StatusFilter(t *testing.T) {
	env := setupTestEnv(t)
	f := setupTaskFixture(t, env)

	w := env.request(t, http.MethodGet, "/api/tasks?status=done", f.managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 0, dataField(t, w)["total"])

	w = env.request(t, http.MethodGet, "/api/tasks?status=todo", f.managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, dataField(t, w)["total"])

	w = env.request(t, http.MethodGet, "/api/tasks?status=bogus", f.managerToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
