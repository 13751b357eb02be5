package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pxc1984/musicclubbot/club"
)

// PendingRoleRepo persists open, unclaimed positions on songs.
type PendingRoleRepo struct {
	db *sqlx.DB
}

// CreateAll inserts one pending role per entry. Used when a song is created
// with its initial list of open positions.
func (r *PendingRoleRepo) CreateAll(ctx context.Context, songID int64, roles []string) error {
	if len(roles) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pending roles: %w", err)
	}
	defer tx.Rollback()

	const q = `INSERT INTO pending_roles (song_id, role) VALUES ($1, $2)`
	for _, role := range roles {
		if _, err := tx.ExecContext(ctx, q, songID, role); err != nil {
			return fmt.Errorf("insert pending role %q for song %d: %w", role, songID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pending roles: %w", err)
	}
	return nil
}

// ListBySong returns the open positions on a song ordered by id.
func (r *PendingRoleRepo) ListBySong(ctx context.Context, songID int64) ([]club.PendingRole, error) {
	const q = `SELECT id, song_id, role FROM pending_roles WHERE song_id = $1 ORDER BY id`
	var roles []club.PendingRole
	if err := r.db.SelectContext(ctx, &roles, q, songID); err != nil {
		return nil, fmt.Errorf("list pending roles for song %d: %w", songID, err)
	}
	return roles, nil
}

// Claim consumes the pending role and creates the participation in one
// transaction. DELETE ... RETURNING serializes concurrent claims on the same
// row: exactly one transaction sees the row, every other one gets
// ErrNotFound. The paired insert can still hit the uniqueness constraint
// when the person already holds that role on the song.
func (r *PendingRoleRepo) Claim(ctx context.Context, id, personID int64) (club.Participation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return club.Participation{}, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback()

	var songID int64
	var role string
	err = tx.QueryRowxContext(ctx,
		`DELETE FROM pending_roles WHERE id = $1 RETURNING song_id, role`, id,
	).Scan(&songID, &role)
	if err != nil {
		if noRows(err) {
			return club.Participation{}, club.ErrNotFound
		}
		return club.Participation{}, fmt.Errorf("claim pending role %d: %w", id, err)
	}

	p := club.Participation{SongID: songID, PersonID: personID, Role: role}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO song_participations (song_id, person_id, role) VALUES ($1, $2, $3) RETURNING id`,
		songID, personID, role,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return club.Participation{}, club.ErrAlreadyExists
		}
		return club.Participation{}, fmt.Errorf("insert claimed participation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return club.Participation{}, fmt.Errorf("commit claim: %w", err)
	}
	return p, nil
}
