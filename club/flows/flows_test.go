package flows_test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pxc1984/musicclubbot/club"
	"github.com/pxc1984/musicclubbot/club/flows"
	"github.com/pxc1984/musicclubbot/core/dialog"
)

const (
	adminID  int64 = 1
	memberID int64 = 2
	otherID  int64 = 3
)

// fakeDB backs every fake repository with the same uniqueness semantics the
// Postgres layer enforces: one participation per (song, person, role), and
// a pending role that can be claimed exactly once.
type fakeDB struct {
	mu       sync.Mutex
	nextID   int64
	songs    map[int64]club.Song
	people   map[int64]club.Person
	parts    map[int64]club.Participation
	pending  map[int64]club.PendingRole
	concerts []club.Concert
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		songs:   make(map[int64]club.Song),
		people:  make(map[int64]club.Person),
		parts:   make(map[int64]club.Participation),
		pending: make(map[int64]club.PendingRole),
	}
}

func (db *fakeDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *fakeDB) tripleTaken(songID, personID int64, role string) bool {
	for _, p := range db.parts {
		if p.SongID == songID && p.PersonID == personID && p.Role == role {
			return true
		}
	}
	return false
}

func (db *fakeDB) info(p club.Participation) club.ParticipationInfo {
	return club.ParticipationInfo{
		Participation:   p,
		SongTitle:       db.songs[p.SongID].Title,
		SongDescription: db.songs[p.SongID].Description,
		PersonName:      db.people[p.PersonID].Name,
	}
}

type fakeSongs struct{ db *fakeDB }

func (f *fakeSongs) Create(_ context.Context, title, description, link string) (club.Song, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s := club.Song{ID: f.db.id(), Title: title, Description: description, Link: link}
	f.db.songs[s.ID] = s
	return s, nil
}

func (f *fakeSongs) Get(_ context.Context, id int64) (club.Song, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.songs[id]
	if !ok {
		return club.Song{}, club.ErrNotFound
	}
	return s, nil
}

func (f *fakeSongs) List(_ context.Context) ([]club.Song, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := make([]club.Song, 0, len(f.db.songs))
	for _, s := range f.db.songs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSongs) Update(_ context.Context, song club.Song) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.songs[song.ID]; !ok {
		return club.ErrNotFound
	}
	f.db.songs[song.ID] = song
	return nil
}

func (f *fakeSongs) Delete(_ context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.songs[id]; !ok {
		return club.ErrNotFound
	}
	delete(f.db.songs, id)
	return nil
}

type fakePeople struct{ db *fakeDB }

func (f *fakePeople) Upsert(_ context.Context, id int64, name string) (club.Person, bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	_, existed := f.db.people[id]
	p := club.Person{ID: id, Name: name}
	f.db.people[id] = p
	return p, !existed, nil
}

func (f *fakePeople) Get(_ context.Context, id int64) (club.Person, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.people[id]
	if !ok {
		return club.Person{}, club.ErrNotFound
	}
	return p, nil
}

func (f *fakePeople) List(_ context.Context) ([]club.Person, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := make([]club.Person, 0, len(f.db.people))
	for _, p := range f.db.people {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeParts struct{ db *fakeDB }

func (f *fakeParts) Insert(_ context.Context, songID, personID int64, role string) (club.Participation, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.tripleTaken(songID, personID, role) {
		return club.Participation{}, club.ErrAlreadyExists
	}
	p := club.Participation{ID: f.db.id(), SongID: songID, PersonID: personID, Role: role}
	f.db.parts[p.ID] = p
	return p, nil
}

func (f *fakeParts) Get(_ context.Context, id int64) (club.ParticipationInfo, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.parts[id]
	if !ok {
		return club.ParticipationInfo{}, club.ErrNotFound
	}
	return f.db.info(p), nil
}

func (f *fakeParts) UpdateRole(_ context.Context, id int64, role string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.parts[id]
	if !ok {
		return club.ErrNotFound
	}
	if p.Role != role && f.db.tripleTaken(p.SongID, p.PersonID, role) {
		return club.ErrAlreadyExists
	}
	p.Role = role
	f.db.parts[id] = p
	return nil
}

func (f *fakeParts) Delete(_ context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.parts[id]; !ok {
		return club.ErrNotFound
	}
	delete(f.db.parts, id)
	return nil
}

func (f *fakeParts) list(filter func(club.Participation) bool) []club.ParticipationInfo {
	out := make([]club.ParticipationInfo, 0)
	for _, p := range f.db.parts {
		if filter(p) {
			out = append(out, f.db.info(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeParts) ListBySong(_ context.Context, songID int64) ([]club.ParticipationInfo, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.list(func(p club.Participation) bool { return p.SongID == songID }), nil
}

func (f *fakeParts) ListByPerson(_ context.Context, personID int64) ([]club.ParticipationInfo, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.list(func(p club.Participation) bool { return p.PersonID == personID }), nil
}

type fakePending struct{ db *fakeDB }

func (f *fakePending) CreateAll(_ context.Context, songID int64, roles []string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, role := range roles {
		pr := club.PendingRole{ID: f.db.id(), SongID: songID, Role: role}
		f.db.pending[pr.ID] = pr
	}
	return nil
}

func (f *fakePending) ListBySong(_ context.Context, songID int64) ([]club.PendingRole, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := make([]club.PendingRole, 0)
	for _, pr := range f.db.pending {
		if pr.SongID == songID {
			out = append(out, pr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePending) Claim(_ context.Context, id, personID int64) (club.Participation, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	pr, ok := f.db.pending[id]
	if !ok {
		return club.Participation{}, club.ErrNotFound
	}
	if f.db.tripleTaken(pr.SongID, personID, pr.Role) {
		return club.Participation{}, club.ErrAlreadyExists
	}
	delete(f.db.pending, id)
	p := club.Participation{ID: f.db.id(), SongID: pr.SongID, PersonID: personID, Role: pr.Role}
	f.db.parts[p.ID] = p
	return p, nil
}

type fakeConcerts struct{ db *fakeDB }

func (f *fakeConcerts) Create(_ context.Context, name string, date time.Time) (club.Concert, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c := club.Concert{ID: f.db.id(), Name: name, Date: date}
	f.db.concerts = append(f.db.concerts, c)
	return c, nil
}

func (f *fakeConcerts) List(_ context.Context) ([]club.Concert, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := append([]club.Concert(nil), f.db.concerts...)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type sentMessage struct {
	personID int64
	text     string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *fakeNotifier) Notify(_ context.Context, personID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{personID: personID, text: text})
	return nil
}

type fakeBroadcast struct {
	delivered, total int
	lastText         string
}

func (b *fakeBroadcast) SendAll(_ context.Context, text string) (int, int, error) {
	b.lastText = text
	return b.delivered, b.total, nil
}

type fixture struct {
	db        *fakeDB
	engine    *dialog.Engine
	store     dialog.Store
	notifier  *fakeNotifier
	broadcast *fakeBroadcast
	announced []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		db:        newFakeDB(),
		notifier:  &fakeNotifier{},
		broadcast: &fakeBroadcast{},
	}

	deps := flows.Deps{
		Songs:          &fakeSongs{db: fx.db},
		People:         &fakePeople{db: fx.db},
		Participations: &fakeParts{db: fx.db},
		PendingRoles:   &fakePending{db: fx.db},
		Concerts:       &fakeConcerts{db: fx.db},

		Notifier:  fx.notifier,
		Broadcast: fx.broadcast,

		Announce: func(_ context.Context, html string) error {
			fx.announced = append(fx.announced, html)
			return nil
		},
		SongDeepLink: func(songID int64) string {
			return fmt.Sprintf("https://t.me/clubbot?start=%d", songID)
		},
		InviteLink: func() string { return "https://t.me/+secret" },

		IsAdmin:  func(userID int64) bool { return userID == adminID },
		PageSize: 4,
	}

	fx.store = dialog.NewMemoryStore()
	engine, err := dialog.NewEngine(fx.store, flows.All(deps)...)
	require.NoError(t, err)
	fx.engine = engine
	return fx
}

func (fx *fixture) seedSong(t *testing.T, title string) club.Song {
	t.Helper()
	song, err := (&fakeSongs{db: fx.db}).Create(context.Background(), title, "", "https://example.com/"+title)
	require.NoError(t, err)
	return song
}

func (fx *fixture) seedPerson(t *testing.T, id int64, name string) {
	t.Helper()
	_, _, err := (&fakePeople{db: fx.db}).Upsert(context.Background(), id, name)
	require.NoError(t, err)
}

func (fx *fixture) text(t *testing.T, user int64, text string) *dialog.Render {
	t.Helper()
	render, err := fx.engine.HandleEvent(context.Background(), user, dialog.TextEvent(text))
	require.NoError(t, err)
	return render
}

func (fx *fixture) press(t *testing.T, user int64, action, payload string) *dialog.Render {
	t.Helper()
	render, err := fx.engine.HandleEvent(context.Background(), user, dialog.ButtonEvent(action, payload))
	require.NoError(t, err)
	return render
}

func (fx *fixture) topState(t *testing.T, user int64) string {
	t.Helper()
	sess, err := fx.store.Load(context.Background(), user)
	require.NoError(t, err)
	require.NotNil(t, sess.Top())
	return sess.Top().Dialog + "." + sess.Top().State
}

// buttonPayload finds the payload of the first button whose label contains
// the given substring.
func buttonPayload(t *testing.T, render *dialog.Render, action, labelPart string) string {
	t.Helper()
	for _, row := range render.View.Rows {
		for _, btn := range row {
			if btn.Action == action && strings.Contains(btn.Label, labelPart) {
				return btn.Payload
			}
		}
	}
	t.Fatalf("no %q button with label containing %q in %+v", action, labelPart, render.View.Rows)
	return ""
}

func TestAddSongWalkthrough(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	render, err := fx.engine.Start(ctx, adminID, flows.DialogAddSong, "", nil)
	require.NoError(t, err)
	require.Contains(t, render.View.Text, "What is your song called?")

	render = fx.text(t, adminID, "bad<title>")
	require.Contains(t, render.Notice, "does not look like a song title")
	require.Equal(t, "addsong.title", fx.topState(t, adminID))

	fx.text(t, adminID, "Landslide")
	require.Equal(t, "addsong.description", fx.topState(t, adminID))

	fx.press(t, adminID, "skip", "")
	require.Equal(t, "addsong.link", fx.topState(t, adminID))

	render = fx.text(t, adminID, "not a link")
	require.Contains(t, render.Notice, "plain http(s) link")

	fx.text(t, adminID, "https://youtu.be/abc")
	require.Equal(t, "addsong.add_role", fx.topState(t, adminID))

	fx.text(t, adminID, "vocals")
	fx.text(t, adminID, "kazoo")
	render = fx.press(t, adminID, "pop_last", "")
	require.NotContains(t, render.View.Text, "kazoo")
	fx.text(t, adminID, "drums")

	render = fx.press(t, adminID, "to_verify", "")
	require.Contains(t, render.View.Text, "Landslide")
	require.Contains(t, render.View.Text, "vocals")
	require.Contains(t, render.View.Text, "drums")

	render = fx.press(t, adminID, "confirm", "")
	require.True(t, render.Closed)
	require.Equal(t, "Song created", render.Notice)

	songs, err := (&fakeSongs{db: fx.db}).List(ctx)
	require.NoError(t, err)
	require.Len(t, songs, 1)
	require.Equal(t, "Landslide", songs[0].Title)
	require.Equal(t, "https://youtu.be/abc", songs[0].Link)
	require.Empty(t, songs[0].Description)

	pending, err := (&fakePending{db: fx.db}).ListBySong(ctx, songs[0].ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.Len(t, fx.announced, 1)
	require.Contains(t, fx.announced[0], "Landslide")
	require.Contains(t, fx.announced[0], fmt.Sprintf("start=%d", songs[0].ID))
}

func TestMainMenuPaginationWraps(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		fx.seedSong(t, fmt.Sprintf("song-%02d", i))
	}

	_, err := fx.engine.Start(ctx, memberID, flows.DialogMainMenu, "", nil)
	require.NoError(t, err)

	render := fx.press(t, memberID, "songs", "")
	require.Equal(t, "1/3", pagerLabel(t, render))
	require.Len(t, songButtons(render), 4)

	render = fx.press(t, memberID, "prev", "")
	require.Equal(t, "3/3", pagerLabel(t, render))
	require.Len(t, songButtons(render), 2)

	render = fx.press(t, memberID, "next", "")
	require.Equal(t, "1/3", pagerLabel(t, render))

	render = fx.press(t, memberID, "page", "")
	require.Equal(t, "That one is just a counter", render.Notice)
}

func pagerLabel(t *testing.T, render *dialog.Render) string {
	t.Helper()
	for _, row := range render.View.Rows {
		for _, btn := range row {
			if btn.Action == "page" {
				return btn.Label
			}
		}
	}
	t.Fatal("no pager button")
	return ""
}

func songButtons(render *dialog.Render) []dialog.ViewButton {
	var out []dialog.ViewButton
	for _, row := range render.View.Rows {
		for _, btn := range row {
			if btn.Action == "select" {
				out = append(out, btn)
			}
		}
	}
	return out
}

func TestMainMenuAdminGate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	render, err := fx.engine.Start(ctx, memberID, flows.DialogMainMenu, "", nil)
	require.NoError(t, err)
	require.NotContains(t, render.View.Text, "admin")

	render = fx.press(t, memberID, "admin", "")
	require.Equal(t, "Admins only", render.Notice)
	require.Equal(t, "mainmenu.menu", fx.topState(t, memberID))

	fx.press(t, memberID, "songs", "")
	render = fx.press(t, memberID, "add", "")
	require.Equal(t, "Admins only", render.Notice)
	require.Equal(t, "mainmenu.songs", fx.topState(t, memberID))
}

func TestMainMenuSelectOpensSongCard(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	song := fx.seedSong(t, "Dreams")

	_, err := fx.engine.Start(ctx, memberID, flows.DialogMainMenu, "", nil)
	require.NoError(t, err)
	fx.press(t, memberID, "songs", "")

	render := fx.press(t, memberID, "select", strconv.FormatInt(song.ID, 10))
	require.Contains(t, render.View.Text, "Dreams")
	require.Equal(t, "editsong.menu", fx.topState(t, memberID))

	// Back from the card pops to the song list.
	render = fx.press(t, memberID, "back", "")
	require.Equal(t, "mainmenu.songs", fx.topState(t, memberID))
	require.NotNil(t, render.View)
}

func TestClaimRaceHasExactlyOneWinner(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	song := fx.seedSong(t, "Dreams")
	fx.seedPerson(t, memberID, "Mick")
	fx.seedPerson(t, otherID, "John")
	require.NoError(t, (&fakePending{db: fx.db}).CreateAll(ctx, song.ID, []string{"drums"}))

	start := dialog.Data{"song_id": song.ID}
	renderA, err := fx.engine.Start(ctx, memberID, flows.DialogEditSong, "", start)
	require.NoError(t, err)
	_, err = fx.engine.Start(ctx, otherID, flows.DialogEditSong, "", start)
	require.NoError(t, err)

	// Both keyboards show the same pending role id.
	payload := buttonPayload(t, renderA, "claim", "drums")

	render := fx.press(t, memberID, "claim", payload)
	require.Equal(t, "You are in!", render.Notice)

	render = fx.press(t, otherID, "claim", payload)
	require.Equal(t, "Somebody already took this role", render.Notice)

	parts, err := (&fakeParts{db: fx.db}).ListBySong(ctx, song.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	require.Equal(t, memberID, parts[0].PersonID)
	require.Equal(t, "drums", parts[0].Role)

	pending, err := (&fakePending{db: fx.db}).ListBySong(ctx, song.ID)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestJoinWithTypedRole(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	song := fx.seedSong(t, "Dreams")
	fx.seedPerson(t, memberID, "Mick")
	_, err := (&fakeParts{db: fx.db}).Insert(ctx, song.ID, memberID, "vocals")
	require.NoError(t, err)

	_, err = fx.engine.Start(ctx, memberID, flows.DialogEditSong, "", dialog.Data{"song_id": song.ID})
	require.NoError(t, err)
	fx.press(t, memberID, "join", "")
	require.Equal(t, "editsong.join", fx.topState(t, memberID))

	render := fx.text(t, memberID, "vocals")
	require.Equal(t, "You already hold this role here", render.Notice)
	require.Equal(t, "editsong.join", fx.topState(t, memberID))

	render = fx.text(t, memberID, "drums")
	require.Equal(t, "You are in!", render.Notice)
	require.Equal(t, "editsong.menu", fx.topState(t, memberID))

	parts, err := (&fakeParts{db: fx.db}).ListByPerson(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, parts, 2)
}

func TestAdminRenameNotifiesAffectedPerson(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	song := fx.seedSong(t, "Dreams")
	fx.seedPerson(t, memberID, "Mick")
	p, err := (&fakeParts{db: fx.db}).Insert(ctx, song.ID, memberID, "vocals")
	require.NoError(t, err)

	_, err = fx.engine.Start(ctx, adminID, flows.DialogEditSong, "", dialog.Data{"song_id": song.ID})
	require.NoError(t, err)

	render := fx.press(t, adminID, "edit", strconv.FormatInt(p.ID, 10))
	require.Equal(t, "editrole.menu", fx.topState(t, adminID))
	require.Contains(t, render.View.Text, "Mick")

	fx.press(t, adminID, "edit_role", "")
	render = fx.text(t, adminID, "keys")
	require.Equal(t, "Role updated", render.Notice)
	require.Equal(t, "editrole.menu", fx.topState(t, adminID))

	require.Len(t, fx.notifier.sent, 1)
	require.Equal(t, memberID, fx.notifier.sent[0].personID)
	require.Contains(t, fx.notifier.sent[0].text, "keys")

	info, err := (&fakeParts{db: fx.db}).Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "keys", info.Role)
}

func TestOwnEditDoesNotNotify(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	song := fx.seedSong(t, "Dreams")
	fx.seedPerson(t, memberID, "Mick")
	p, err := (&fakeParts{db: fx.db}).Insert(ctx, song.ID, memberID, "vocals")
	require.NoError(t, err)

	_, err = fx.engine.Start(ctx, memberID, flows.DialogEditSong, "", dialog.Data{"song_id": song.ID})
	require.NoError(t, err)
	fx.press(t, memberID, "edit", strconv.FormatInt(p.ID, 10))
	fx.press(t, memberID, "edit_role", "")
	render := fx.text(t, memberID, "drums")
	require.Equal(t, "Role updated", render.Notice)
	require.Empty(t, fx.notifier.sent)
}

func TestMemberCannotEditForeignEntry(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	song := fx.seedSong(t, "Dreams")
	fx.seedPerson(t, otherID, "John")
	p, err := (&fakeParts{db: fx.db}).Insert(ctx, song.ID, otherID, "vocals")
	require.NoError(t, err)

	_, err = fx.engine.Start(ctx, memberID, flows.DialogEditSong, "", dialog.Data{"song_id": song.ID})
	require.NoError(t, err)

	render := fx.press(t, memberID, "edit", strconv.FormatInt(p.ID, 10))
	require.Equal(t, "You can only edit your own entries", render.Notice)
	require.Equal(t, "editsong.menu", fx.topState(t, memberID))
}

func TestRemoveParticipation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	song := fx.seedSong(t, "Dreams")
	fx.seedPerson(t, memberID, "Mick")
	p, err := (&fakeParts{db: fx.db}).Insert(ctx, song.ID, memberID, "vocals")
	require.NoError(t, err)

	_, err = fx.engine.Start(ctx, adminID, flows.DialogEditSong, "", dialog.Data{"song_id": song.ID})
	require.NoError(t, err)
	fx.press(t, adminID, "edit", strconv.FormatInt(p.ID, 10))
	fx.press(t, adminID, "remove", "")
	require.Equal(t, "editrole.remove_confirm", fx.topState(t, adminID))

	render := fx.press(t, adminID, "confirm_remove", "")
	require.Equal(t, "Removed", render.Notice)
	// Popping the editor lands back on the song card.
	require.Equal(t, "editsong.menu", fx.topState(t, adminID))

	parts, err := (&fakeParts{db: fx.db}).ListBySong(ctx, song.ID)
	require.NoError(t, err)
	require.Empty(t, parts)
	require.Len(t, fx.notifier.sent, 1)
	require.Equal(t, memberID, fx.notifier.sent[0].personID)
}

func TestParticipationsEmpty(t *testing.T) {
	fx := newFixture(t)

	render, err := fx.engine.Start(context.Background(), memberID, flows.DialogParticipations, "", nil)
	require.NoError(t, err)
	require.Contains(t, render.View.Text, "not in any songs yet")
}

func TestParticipationsHidesPagerOnSinglePage(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	song := fx.seedSong(t, "Dreams")
	fx.seedPerson(t, memberID, "Mick")
	_, err := (&fakeParts{db: fx.db}).Insert(ctx, song.ID, memberID, "vocals")
	require.NoError(t, err)

	render, err := fx.engine.Start(ctx, memberID, flows.DialogParticipations, "", nil)
	require.NoError(t, err)
	for _, row := range render.View.Rows {
		for _, btn := range row {
			require.NotEqual(t, "page", btn.Action, "pager should be hidden with a single page")
		}
	}
}

func TestAnnouncementReportsDeliveryRatio(t *testing.T) {
	fx := newFixture(t)
	fx.broadcast.delivered = 2
	fx.broadcast.total = 3
	ctx := context.Background()

	_, err := fx.engine.Start(ctx, adminID, flows.DialogAdminPanel, "", nil)
	require.NoError(t, err)
	fx.press(t, adminID, "announcement", "")

	render := fx.text(t, adminID, "Rehearsal moved to Friday")
	require.Equal(t, "Delivered to 2 of 3 people (67%)", render.Notice)
	require.Equal(t, "Rehearsal moved to Friday", fx.broadcast.lastText)
	require.Equal(t, "adminpanel.menu", fx.topState(t, adminID))
}

func TestCreateEventFlow(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.engine.Start(ctx, adminID, flows.DialogAdminPanel, "", nil)
	require.NoError(t, err)
	fx.press(t, adminID, "create", "")
	require.Equal(t, "createevent.title", fx.topState(t, adminID))

	fx.text(t, adminID, "Spring gig")
	render := fx.text(t, adminID, "not a date")
	require.Contains(t, render.Notice, "Send a date")

	render = fx.text(t, adminID, "2026-09-01 19:00")
	require.Contains(t, render.View.Text, "Spring gig")
	require.Contains(t, render.View.Text, "01.09.2026 19:00")

	render = fx.press(t, adminID, "confirm", "")
	require.Equal(t, "Event created", render.Notice)
	// Popping the wizard returns to the admin panel that started it.
	require.Equal(t, "adminpanel.menu", fx.topState(t, adminID))

	concerts, err := (&fakeConcerts{db: fx.db}).List(ctx)
	require.NoError(t, err)
	require.Len(t, concerts, 1)
	require.Equal(t, "Spring gig", concerts[0].Name)
	require.Equal(t, time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local), concerts[0].Date)
}

func TestInviteShowsLink(t *testing.T) {
	fx := newFixture(t)

	render, err := fx.engine.Start(context.Background(), memberID, flows.DialogInvite, "", nil)
	require.NoError(t, err)
	require.Contains(t, render.View.Text, "member of the private club chat")

	var url string
	for _, row := range render.View.Rows {
		for _, btn := range row {
			if btn.URL != "" {
				url = btn.URL
			}
		}
	}
	require.Equal(t, "https://t.me/+secret", url)
}

func TestEventsListShowsDates(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_, err := (&fakeConcerts{db: fx.db}).Create(ctx, "Spring gig", time.Date(2026, 9, 1, 19, 0, 0, 0, time.Local))
	require.NoError(t, err)

	_, err = fx.engine.Start(ctx, memberID, flows.DialogMainMenu, "", nil)
	require.NoError(t, err)
	render := fx.press(t, memberID, "events", "")
	require.Contains(t, render.View.Text, "01.09.2026 19:00")
	require.Contains(t, render.View.Text, "Spring gig")
}
