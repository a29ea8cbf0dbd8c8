package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/helios-campus/helios/internal/authz"
)

const defaultScanConcurrency = 8

// GrantSource is the store surface the scan needs: every user with a
// grant, and their grants.
type GrantSource interface {
	Users(ctx context.Context) ([]string, error)
	GrantsFor(ctx context.Context, userID string) ([]authz.UserPermissionGrant, error)
}

// OrphanedGrant names a stored grant whose permission is no longer in the
// catalog.
type OrphanedGrant struct {
	GrantID      uuid.UUID
	UserID       string
	PermissionID uuid.UUID
}

// IntegrityReport summarizes one sweep.
type IntegrityReport struct {
	UsersScanned  int
	GrantsScanned int
	Orphaned      []OrphanedGrant
}

// IntegrityScanner checks that every stored grant still references a
// catalog permission. Grants become orphaned when a deploy removes a
// permission from the manifest; the invariant is that they are never
// orphaned silently, so the scanner reports them for an operator to
// revoke. It deletes nothing itself.
type IntegrityScanner struct {
	catalog *authz.Catalog
	source  GrantSource
	logger  *slog.Logger
}

// NewIntegrityScanner constructs a scanner.
func NewIntegrityScanner(catalog *authz.Catalog, source GrantSource, logger *slog.Logger) *IntegrityScanner {
	return &IntegrityScanner{catalog: catalog, source: source, logger: logger}
}

// Scan sweeps all users' grants with bounded concurrency.
func (s *IntegrityScanner) Scan(ctx context.Context, concurrency int) (IntegrityReport, error) {
	if concurrency <= 0 {
		concurrency = defaultScanConcurrency
	}
	users, err := s.source.Users(ctx)
	if err != nil {
		return IntegrityReport{}, err
	}

	var mu sync.Mutex
	report := IntegrityReport{UsersScanned: len(users)}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, userID := range users {
		g.Go(func() error {
			grants, err := s.source.GrantsFor(ctx, userID)
			if err != nil {
				return err
			}
			var orphans []OrphanedGrant
			for _, grant := range grants {
				if _, ok := s.catalog.LookupID(grant.PermissionID); !ok {
					orphans = append(orphans, OrphanedGrant{
						GrantID:      grant.ID,
						UserID:       grant.UserID,
						PermissionID: grant.PermissionID,
					})
				}
			}
			mu.Lock()
			report.GrantsScanned += len(grants)
			report.Orphaned = append(report.Orphaned, orphans...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return IntegrityReport{}, err
	}

	sort.Slice(report.Orphaned, func(i, j int) bool {
		if report.Orphaned[i].UserID != report.Orphaned[j].UserID {
			return report.Orphaned[i].UserID < report.Orphaned[j].UserID
		}
		return report.Orphaned[i].GrantID.String() < report.Orphaned[j].GrantID.String()
	})
	return report, nil
}

// HandleTask adapts Scan to the Asynq handler contract.
func (s *IntegrityScanner) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload IntegrityScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	report, err := s.Scan(ctx, payload.Concurrency)
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("grant integrity scan",
			slog.Int("users", report.UsersScanned),
			slog.Int("grants", report.GrantsScanned),
			slog.Int("orphaned", len(report.Orphaned)))
		for _, orphan := range report.Orphaned {
			s.logger.Warn("orphaned grant",
				slog.String("grant_id", orphan.GrantID.String()),
				slog.String("user_id", orphan.UserID),
				slog.String("permission_id", orphan.PermissionID.String()))
		}
	}
	return nil
}
