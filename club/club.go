// Package club defines the music-club domain: songs, people, role
// participations, open pending roles, and the repository contracts the
// dialog flows mutate them through.
package club

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports that the target record vanished between read and
	// write, e.g. it was deleted or claimed by a concurrent request.
	ErrNotFound = errors.New("club: record not found")
	// ErrAlreadyExists reports a uniqueness violation, e.g. inserting a
	// (song, person, role) participation that already exists.
	ErrAlreadyExists = errors.New("club: record already exists")
	// ErrDeliveryFailed reports a best-effort notification that could not be
	// sent. Never propagated into the triggering transaction.
	ErrDeliveryFailed = errors.New("club: notification delivery failed")
)

// Song is a piece the club rehearses. Description and Link are optional.
type Song struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Link        string `db:"link"`
}

// Person is a club member, keyed by their Telegram user id.
type Person struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Participation is a committed person-to-role assignment on a song.
// At most one participation exists per (song, person, role) triple.
type Participation struct {
	ID       int64  `db:"id"`
	SongID   int64  `db:"song_id"`
	PersonID int64  `db:"person_id"`
	Role     string `db:"role"`
}

// ParticipationInfo is a participation joined with its song and person for
// display.
type ParticipationInfo struct {
	Participation
	SongTitle       string `db:"song_title"`
	SongDescription string `db:"song_description"`
	PersonName      string `db:"person_name"`
}

// PendingRole is an open, unclaimed position on a song. It is consumed
// exactly once: claiming deletes it and creates the participation in the
// same transaction.
type PendingRole struct {
	ID     int64  `db:"id"`
	SongID int64  `db:"song_id"`
	Role   string `db:"role"`
}

// Concert is an upcoming club event.
type Concert struct {
	ID   int64     `db:"id"`
	Name string    `db:"name"`
	Date time.Time `db:"date"`
}

// SongRepo stores songs. List is ordered by id so pagination is
// deterministic across repeated reads within one render.
type SongRepo interface {
	Create(ctx context.Context, title, description, link string) (Song, error)
	Get(ctx context.Context, id int64) (Song, error)
	List(ctx context.Context) ([]Song, error)
	Update(ctx context.Context, song Song) error
	Delete(ctx context.Context, id int64) error
}

// PersonRepo stores club members.
type PersonRepo interface {
	// Upsert registers the person on first contact and refreshes the name
	// afterwards. The bool reports whether the person was newly created.
	Upsert(ctx context.Context, id int64, name string) (Person, bool, error)
	Get(ctx context.Context, id int64) (Person, error)
	List(ctx context.Context) ([]Person, error)
}

// ParticipationRepo stores committed role assignments.
type ParticipationRepo interface {
	// Insert creates the participation, failing with ErrAlreadyExists when
	// the (song, person, role) triple is taken. Check and insert are one
	// atomic statement so concurrent joins cannot both succeed.
	Insert(ctx context.Context, songID, personID int64, role string) (Participation, error)
	Get(ctx context.Context, id int64) (ParticipationInfo, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	Delete(ctx context.Context, id int64) error
	ListBySong(ctx context.Context, songID int64) ([]ParticipationInfo, error)
	ListByPerson(ctx context.Context, personID int64) ([]ParticipationInfo, error)
}

// PendingRoleRepo stores open positions.
type PendingRoleRepo interface {
	CreateAll(ctx context.Context, songID int64, roles []string) error
	ListBySong(ctx context.Context, songID int64) ([]PendingRole, error)
	// Claim atomically deletes the pending role and inserts the
	// corresponding participation. A concurrent claim already consumed the
	// row when ErrNotFound comes back; it is never silently double-applied.
	Claim(ctx context.Context, id, personID int64) (Participation, error)
}

// ConcertRepo stores upcoming events.
type ConcertRepo interface {
	Create(ctx context.Context, name string, date time.Time) (Concert, error)
	List(ctx context.Context) ([]Concert, error)
}

// Notifier delivers a best-effort personal message. Implementations report
// ErrDeliveryFailed; callers log and move on.
type Notifier interface {
	Notify(ctx context.Context, personID int64, text string) error
}
