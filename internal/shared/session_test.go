package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/helios-campus/helios/internal/shared"
	_ "github.com/helios-campus/helios/internal/testing/guard"
)

func newSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.Empty(t, sess.User())

	sess.SetPrincipal("student-1", "student")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "test_session", cookies[0].Name)
	require.Equal(t, sess.ID, cookies[0].Value)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Equal(t, "student-1", loaded.User())
	require.Equal(t, "student", loaded.Role())
}

func TestSessionDestroy(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetPrincipal("advisor-1", "advisor")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookie := rec.Result().Cookies()[0]

	sm.Destroy(sess)
	rec = httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, -1, cleared[0].MaxAge)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Empty(t, loaded.User())
}

func TestSessionUnknownCookieGetsEmptySession(t *testing.T) {
	sm := newSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "missing-id"})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "missing-id", sess.ID)
	require.Empty(t, sess.User())
}

func TestActorFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, shared.ActorFromRequest(req))

	req.Header.Set(shared.ActorHeader, " svc-registrar ")
	require.Equal(t, "svc-registrar", shared.ActorFromRequest(req))

	sess := &shared.Session{}
	sess.SetPrincipal("admin-1", "admin")
	withSession := req.WithContext(shared.ContextWithSession(req.Context(), sess))
	require.Equal(t, "admin-1", shared.ActorFromRequest(withSession))
}
