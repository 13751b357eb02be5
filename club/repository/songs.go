package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pxc1984/musicclubbot/club"
)

// SongRepo persists songs.
type SongRepo struct {
	db *sqlx.DB
}

// Create inserts a song. Empty description/link are stored as NULL.
func (r *SongRepo) Create(ctx context.Context, title, description, link string) (club.Song, error) {
	const q = `
		INSERT INTO songs (title, description, link)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		RETURNING id`
	song := club.Song{Title: title, Description: description, Link: link}
	if err := r.db.QueryRowxContext(ctx, q, title, description, link).Scan(&song.ID); err != nil {
		return club.Song{}, fmt.Errorf("insert song: %w", err)
	}
	return song, nil
}

// Get fetches one song by id.
func (r *SongRepo) Get(ctx context.Context, id int64) (club.Song, error) {
	const q = `
		SELECT id, title, COALESCE(description, '') AS description, COALESCE(link, '') AS link
		FROM songs WHERE id = $1`
	var song club.Song
	if err := r.db.GetContext(ctx, &song, q, id); err != nil {
		if noRows(err) {
			return club.Song{}, club.ErrNotFound
		}
		return club.Song{}, fmt.Errorf("get song %d: %w", id, err)
	}
	return song, nil
}

// List returns all songs ordered by id.
func (r *SongRepo) List(ctx context.Context) ([]club.Song, error) {
	const q = `
		SELECT id, title, COALESCE(description, '') AS description, COALESCE(link, '') AS link
		FROM songs ORDER BY id`
	var songs []club.Song
	if err := r.db.SelectContext(ctx, &songs, q); err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return songs, nil
}

// Update rewrites the song's mutable fields.
func (r *SongRepo) Update(ctx context.Context, song club.Song) error {
	const q = `
		UPDATE songs
		SET title = $2, description = NULLIF($3, ''), link = NULLIF($4, '')
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, song.ID, song.Title, song.Description, song.Link)
	if err != nil {
		return fmt.Errorf("update song %d: %w", song.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return club.ErrNotFound
	}
	return nil
}

// Delete removes the song.
func (r *SongRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete song %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return club.ErrNotFound
	}
	return nil
}
