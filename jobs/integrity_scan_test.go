package jobs_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/helios-campus/helios/internal/authz"
	_ "github.com/helios-campus/helios/internal/testing/guard"
	"github.com/helios-campus/helios/jobs"
)

func TestIntegrityScanReportsOrphanedGrants(t *testing.T) {
	ctx := context.Background()
	catalog := authz.NewCatalog()
	perm := catalog.MustRegister("grade.view", "View grades", "academics")

	store := authz.NewMemoryStore()
	require.NoError(t, store.Insert(ctx, authz.UserPermissionGrant{
		ID:           uuid.New(),
		UserID:       "student-1",
		PermissionID: perm.ID,
		Scope:        authz.Unrestricted(),
		GrantedAt:    time.Now().UTC(),
	}))

	orphanID := uuid.New()
	removedPermission := uuid.New()
	require.NoError(t, store.Insert(ctx, authz.UserPermissionGrant{
		ID:           orphanID,
		UserID:       "student-2",
		PermissionID: removedPermission,
		Scope:        authz.Unrestricted(),
		GrantedAt:    time.Now().UTC(),
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scanner := jobs.NewIntegrityScanner(catalog, store, logger)

	report, err := scanner.Scan(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, 2, report.UsersScanned)
	require.Equal(t, 2, report.GrantsScanned)
	require.Len(t, report.Orphaned, 1)
	require.Equal(t, orphanID, report.Orphaned[0].GrantID)
	require.Equal(t, "student-2", report.Orphaned[0].UserID)
	require.Equal(t, removedPermission, report.Orphaned[0].PermissionID)
}

func TestIntegrityScanCleanStore(t *testing.T) {
	ctx := context.Background()
	catalog := authz.NewCatalog()
	perm := catalog.MustRegister("course.view", "View courses", "academics")

	store := authz.NewMemoryStore()
	for _, user := range []string{"a", "b", "c"} {
		require.NoError(t, store.Insert(ctx, authz.UserPermissionGrant{
			ID:           uuid.New(),
			UserID:       user,
			PermissionID: perm.ID,
			Scope:        authz.Unrestricted(),
			GrantedAt:    time.Now().UTC(),
		}))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scanner := jobs.NewIntegrityScanner(catalog, store, logger)

	report, err := scanner.Scan(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 3, report.UsersScanned)
	require.Equal(t, 3, report.GrantsScanned)
	require.Empty(t, report.Orphaned)
}

func TestIntegrityScanTaskRoundTrip(t *testing.T) {
	task, err := jobs.NewIntegrityScanTask(jobs.IntegrityScanPayload{Concurrency: 2})
	require.NoError(t, err)
	require.Equal(t, jobs.TaskTypeIntegrityScan, task.Type())

	catalog := authz.NewCatalog()
	store := authz.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scanner := jobs.NewIntegrityScanner(catalog, store, logger)
	require.NoError(t, scanner.HandleTask(context.Background(), task))
}
