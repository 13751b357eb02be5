package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pxc1984/musicclubbot/club"
)

// ParticipationRepo persists committed role assignments.
type ParticipationRepo struct {
	db *sqlx.DB
}

const participationInfoColumns = `
	p.id, p.song_id, p.person_id, p.role,
	s.title AS song_title,
	COALESCE(s.description, '') AS song_description,
	pe.name AS person_name`

// Insert creates a participation. The uniqueness check and the insert are
// one statement: ON CONFLICT DO NOTHING plus RETURNING yields no row when
// the (song, person, role) triple is already taken, so two concurrent joins
// can never both succeed.
func (r *ParticipationRepo) Insert(ctx context.Context, songID, personID int64, role string) (club.Participation, error) {
	const q = `
		INSERT INTO song_participations (song_id, person_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (song_id, person_id, role) DO NOTHING
		RETURNING id`
	p := club.Participation{SongID: songID, PersonID: personID, Role: role}
	err := r.db.QueryRowxContext(ctx, q, songID, personID, role).Scan(&p.ID)
	if err != nil {
		if noRows(err) {
			return club.Participation{}, club.ErrAlreadyExists
		}
		return club.Participation{}, fmt.Errorf("insert participation: %w", err)
	}
	return p, nil
}

// Get fetches one participation joined with its song and person.
func (r *ParticipationRepo) Get(ctx context.Context, id int64) (club.ParticipationInfo, error) {
	q := `
		SELECT ` + participationInfoColumns + `
		FROM song_participations p
		JOIN songs s ON s.id = p.song_id
		JOIN people pe ON pe.id = p.person_id
		WHERE p.id = $1`
	var info club.ParticipationInfo
	if err := r.db.GetContext(ctx, &info, q, id); err != nil {
		if noRows(err) {
			return club.ParticipationInfo{}, club.ErrNotFound
		}
		return club.ParticipationInfo{}, fmt.Errorf("get participation %d: %w", id, err)
	}
	return info, nil
}

// UpdateRole renames the role of an existing participation.
func (r *ParticipationRepo) UpdateRole(ctx context.Context, id int64, role string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE song_participations SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		if isUniqueViolation(err) {
			return club.ErrAlreadyExists
		}
		return fmt.Errorf("update participation %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return club.ErrNotFound
	}
	return nil
}

// Delete removes the participation.
func (r *ParticipationRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM song_participations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete participation %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return club.ErrNotFound
	}
	return nil
}

// ListBySong returns every participation on a song ordered by id.
func (r *ParticipationRepo) ListBySong(ctx context.Context, songID int64) ([]club.ParticipationInfo, error) {
	q := `
		SELECT ` + participationInfoColumns + `
		FROM song_participations p
		JOIN songs s ON s.id = p.song_id
		JOIN people pe ON pe.id = p.person_id
		WHERE p.song_id = $1
		ORDER BY p.id`
	var infos []club.ParticipationInfo
	if err := r.db.SelectContext(ctx, &infos, q, songID); err != nil {
		return nil, fmt.Errorf("list participations for song %d: %w", songID, err)
	}
	return infos, nil
}

// ListByPerson returns every participation of a person ordered by id.
func (r *ParticipationRepo) ListByPerson(ctx context.Context, personID int64) ([]club.ParticipationInfo, error) {
	q := `
		SELECT ` + participationInfoColumns + `
		FROM song_participations p
		JOIN songs s ON s.id = p.song_id
		JOIN people pe ON pe.id = p.person_id
		WHERE p.person_id = $1
		ORDER BY p.id`
	var infos []club.ParticipationInfo
	if err := r.db.SelectContext(ctx, &infos, q, personID); err != nil {
		return nil, fmt.Errorf("list participations for person %d: %w", personID, err)
	}
	return infos, nil
}
