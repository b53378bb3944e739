package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/models"
)

func TestUserHandler_Me(t *testing.T) {
	env := setupTestEnv(t)
	user, token := env.createUser(t, "me@x.com", models.RoleUser)

	w := env.request(t, http.MethodGet, "/api/users/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := dataField(t, w)
	require.EqualValues(t, user.ID, data["id"])
	require.Equal(t, "me@x.com", data["email"])
}

func TestUserHandler_ListRoleGate(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.createUser(t, "admin@x.com", models.RoleAdmin)
	_, managerToken := env.createUser(t, "manager@x.com", models.RoleManager)
	_, userToken := env.createUser(t, "worker@x.com", models.RoleUser)

	w := env.request(t, http.MethodGet, "/api/users", userToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodGet, "/api/users", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := dataField(t, w)
	require.EqualValues(t, 3, data["total"])
	require.EqualValues(t, 1, data["page"])
	require.EqualValues(t, 20, data["limit"])
	require.Len(t, data["users"], 3)

	// out-of-range paging values fall back to the defaults
	w = env.request(t, http.MethodGet, "/api/users?page=0&limit=9999", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = dataField(t, w)
	require.EqualValues(t, 1, data["page"])
	require.EqualValues(t, 20, data["limit"])
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	env := setupTestEnv(t)
	user, token := env.createUser(t, "worker@x.com", models.RoleUser)
	other, _ := env.createUser(t, "other@x.com", models.RoleUser)

	w := env.request(t, http.MethodPut, fmt.Sprintf("/api/users/%d", user.ID), token, map[string]any{
		"firstName":    "Updated",
		"skills":       []string{"go", "sql"},
		"availability": false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := dataField(t, w)
	require.Equal(t, "Updated", data["first_name"])
	require.Equal(t, []any{"go", "sql"}, data["skills"])
	require.Equal(t, false, data["availability"])

	// a user cannot touch someone else's profile
	w = env.request(t, http.MethodPut, fmt.Sprintf("/api/users/%d", other.ID), token, map[string]any{
		"firstName": "Hijack",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// admins can
	_, adminToken := env.createUser(t, "admin@x.com", models.RoleAdmin)
	w = env.request(t, http.MethodPut, fmt.Sprintf("/api/users/%d", other.ID), adminToken, map[string]any{
		"firstName": "ByAdmin",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_DeleteAdminOnly(t *testing.T) {
	env := setupTestEnv(t)
	_, adminToken := env.createUser(t, "admin@x.com", models.RoleAdmin)
	victim, victimToken := env.createUser(t, "victim@x.com", models.RoleUser)

	w := env.request(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", victim.ID), victimToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", victim.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", victim.ID), adminToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
