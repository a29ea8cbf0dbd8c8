package authzhttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-campus/helios/internal/authz"
	authzhttp "github.com/helios-campus/helios/internal/authz/http"
	"github.com/helios-campus/helios/internal/navigation"
	"github.com/helios-campus/helios/internal/shared"
	_ "github.com/helios-campus/helios/internal/testing/guard"
)

type testEnv struct {
	router chi.Router
	engine *authz.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	catalog := authz.NewCatalog()
	shared.RegisterCatalog(catalog)
	engine := authz.NewEngine(catalog, authz.NewMemoryStore())

	resolver, err := navigation.NewResolver(engine, navigation.DefaultManifests())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := authzhttp.NewHandler(logger, engine, resolver, nil, nil)

	router := chi.NewRouter()
	router.Route("/api", handler.MountRoutes)

	// The admin principal used by most tests.
	_, err = engine.AssignPermission(context.Background(), "root", "admin-1", shared.PermAuthzView, authz.Unrestricted())
	require.NoError(t, err)
	_, err = engine.AssignPermission(context.Background(), "root", "admin-1", shared.PermAuthzManage, authz.Unrestricted())
	require.NoError(t, err)

	return &testEnv{router: router, engine: engine}
}

func (env *testEnv) do(t *testing.T, method, path, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if actor != "" {
		req.Header.Set(shared.ActorHeader, actor)
	}
	res := httptest.NewRecorder()
	env.router.ServeHTTP(res, req)
	return res
}

func TestAuthorizeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.AssignPermission(context.Background(), "admin-1", "u-1", shared.PermGradeEdit,
		authz.NewScope(map[string][]string{shared.DimDepartment: {"CS"}}))
	require.NoError(t, err)

	res := env.do(t, http.MethodPost, "/api/authorize", "admin-1", map[string]any{
		"userId":   "u-1",
		"codename": shared.PermGradeEdit,
		"scope":    map[string][]string{shared.DimDepartment: {"CS"}},
	})
	require.Equal(t, http.StatusOK, res.Code)

	var decision struct {
		Allowed         bool     `json:"allowed"`
		Reason          string   `json:"reason"`
		MatchedGrantIDs []string `json:"matchedGrantIds"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &decision))
	assert.True(t, decision.Allowed)
	assert.Equal(t, "allowed", decision.Reason)
	assert.Len(t, decision.MatchedGrantIDs, 1)

	res = env.do(t, http.MethodPost, "/api/authorize", "admin-1", map[string]any{
		"userId":   "u-1",
		"codename": shared.PermGradeEdit,
		"scope":    map[string][]string{shared.DimDepartment: {"MATH"}},
	})
	require.Equal(t, http.StatusOK, res.Code)
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &decision))
	assert.False(t, decision.Allowed)
	assert.Equal(t, "scope_mismatch", decision.Reason)
}

func TestAuthorizeEndpointValidation(t *testing.T) {
	env := newTestEnv(t)
	res := env.do(t, http.MethodPost, "/api/authorize", "admin-1", map[string]any{"codename": "grade.edit"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestAssignAndRevokeFlow(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodPost, "/api/grants", "admin-1", map[string]any{
		"userId":   "u-1",
		"codename": shared.PermGradeEdit,
		"scope":    map[string][]string{shared.DimDepartment: {"CS"}},
	})
	require.Equal(t, http.StatusCreated, res.Code)

	var grant struct {
		ID        string `json:"id"`
		UserID    string `json:"userId"`
		GrantedBy string `json:"grantedBy"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &grant))
	assert.Equal(t, "u-1", grant.UserID)
	assert.Equal(t, "admin-1", grant.GrantedBy)
	require.NotEmpty(t, grant.ID)

	// Exact duplicate is a conflict.
	res = env.do(t, http.MethodPost, "/api/grants", "admin-1", map[string]any{
		"userId":   "u-1",
		"codename": shared.PermGradeEdit,
		"scope":    map[string][]string{shared.DimDepartment: {"CS"}},
	})
	assert.Equal(t, http.StatusConflict, res.Code)

	res = env.do(t, http.MethodDelete, "/api/grants/"+grant.ID, "admin-1", nil)
	assert.Equal(t, http.StatusNoContent, res.Code)

	res = env.do(t, http.MethodDelete, "/api/grants/"+grant.ID, "admin-1", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestAssignRejectsUnknownPermissionAndBadScope(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodPost, "/api/grants", "admin-1", map[string]any{
		"userId":   "u-1",
		"codename": "dorm.assign",
	})
	assert.Equal(t, http.StatusNotFound, res.Code)

	// Empty value set never reaches the store.
	res = env.do(t, http.MethodPost, "/api/grants", "admin-1", map[string]any{
		"userId":   "u-1",
		"codename": shared.PermGradeEdit,
		"scope":    map[string][]string{shared.DimDepartment: {}},
	})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	// Unregistered dimension is rejected.
	res = env.do(t, http.MethodPost, "/api/grants", "admin-1", map[string]any{
		"userId":   "u-1",
		"codename": shared.PermGradeEdit,
		"scope":    map[string][]string{"building": {"B1"}},
	})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestManagementRoutesRequirePermission(t *testing.T) {
	env := newTestEnv(t)

	// No principal at all.
	res := env.do(t, http.MethodPost, "/api/grants", "", map[string]any{
		"userId":   "u-1",
		"codename": shared.PermGradeEdit,
	})
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	// Principal without authz.manage.
	res = env.do(t, http.MethodPost, "/api/grants", "u-9", map[string]any{
		"userId":   "u-1",
		"codename": shared.PermGradeEdit,
	})
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestGrantListing(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.AssignPermission(context.Background(), "admin-1", "u-1", shared.PermGradeView, authz.Unrestricted())
	require.NoError(t, err)

	res := env.do(t, http.MethodGet, "/api/users/u-1/grants", "admin-1", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Grants []struct {
			UserID string `json:"userId"`
		} `json:"grants"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Grants, 1)
	assert.Equal(t, "u-1", payload.Grants[0].UserID)
}

func TestPermissionListing(t *testing.T) {
	env := newTestEnv(t)
	res := env.do(t, http.MethodGet, "/api/permissions", "admin-1", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Permissions []struct {
			Codename string `json:"codename"`
			Category string `json:"category"`
		} `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.Permissions)
}

func TestNavigationEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.AssignPermission(context.Background(), "admin-1", "u-1", shared.PermGradeView,
		authz.NewScope(map[string][]string{shared.DimDepartment: {"CS"}}))
	require.NoError(t, err)

	res := env.do(t, http.MethodGet, "/api/navigation?role=student", "u-1", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Role    string `json:"role"`
		Entries []struct {
			ViewID string `json:"viewId"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, "student", payload.Role)

	ids := make([]string, len(payload.Entries))
	for i, entry := range payload.Entries {
		ids[i] = entry.ViewID
	}
	assert.Equal(t, []string{"dashboard", "courses", "grades"}, ids)

	res = env.do(t, http.MethodGet, "/api/navigation?role=registrar", "u-1", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = env.do(t, http.MethodGet, "/api/navigation?role=student", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}
