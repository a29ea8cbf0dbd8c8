// Package grants provides the PostgreSQL backed GrantStore.
package grants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helios-campus/helios/internal/authz"
)

// pgUniqueViolation is the SQLSTATE raised by the
// (user_id, permission_id, scope) unique index.
const pgUniqueViolation = "23505"

// Repository persists grants in user_permission_grants. Scope is stored as
// jsonb in the Scope wire format ("*" for unrestricted).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GrantsFor returns the user's grants ordered by grant time.
func (r *Repository) GrantsFor(ctx context.Context, userID string) ([]authz.UserPermissionGrant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, permission_id, scope, granted_by, granted_at
		FROM user_permission_grants
		WHERE user_id = $1
		ORDER BY granted_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("grants: query: %w", err)
	}
	defer rows.Close()

	var grants []authz.UserPermissionGrant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("grants: iterate: %w", err)
	}
	return grants, nil
}

// Insert stores a grant, mapping the unique index violation to
// authz.ErrDuplicateGrant.
func (r *Repository) Insert(ctx context.Context, grant authz.UserPermissionGrant) error {
	scope, err := json.Marshal(grant.Scope)
	if err != nil {
		return fmt.Errorf("grants: encode scope: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_permission_grants (id, user_id, permission_id, scope, granted_by, granted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		grant.ID, grant.UserID, grant.PermissionID, scope, grant.GrantedBy, grant.GrantedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: user %s permission %s scope %s",
				authz.ErrDuplicateGrant, grant.UserID, grant.PermissionID, grant.Scope)
		}
		return fmt.Errorf("grants: insert: %w", err)
	}
	return nil
}

// Delete removes exactly the identified grant.
func (r *Repository) Delete(ctx context.Context, grantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_permission_grants WHERE id = $1`, grantID)
	if err != nil {
		return fmt.Errorf("grants: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", authz.ErrGrantNotFound, grantID)
	}
	return nil
}

// FindGrant fetches a grant by id so the engine can serialize revocations
// against the owning user.
func (r *Repository) FindGrant(ctx context.Context, grantID uuid.UUID) (authz.UserPermissionGrant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, permission_id, scope, granted_by, granted_at
		FROM user_permission_grants
		WHERE id = $1`, grantID)
	grant, err := scanGrant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.UserPermissionGrant{}, fmt.Errorf("%w: %s", authz.ErrGrantNotFound, grantID)
		}
		return authz.UserPermissionGrant{}, err
	}
	return grant, nil
}

// Users lists user ids holding at least one grant, for the integrity scan.
func (r *Repository) Users(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM user_permission_grants ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("grants: query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("grants: scan user: %w", err)
		}
		users = append(users, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("grants: iterate users: %w", err)
	}
	return users, nil
}

func scanGrant(row pgx.Row) (authz.UserPermissionGrant, error) {
	var grant authz.UserPermissionGrant
	var scope []byte
	if err := row.Scan(&grant.ID, &grant.UserID, &grant.PermissionID, &scope, &grant.GrantedBy, &grant.GrantedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.UserPermissionGrant{}, err
		}
		return authz.UserPermissionGrant{}, fmt.Errorf("grants: scan: %w", err)
	}
	if err := json.Unmarshal(scope, &grant.Scope); err != nil {
		return authz.UserPermissionGrant{}, fmt.Errorf("grants: decode scope: %w", err)
	}
	return grant, nil
}
