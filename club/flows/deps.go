// Package flows declares the club's dialog definitions. Each flow is a
// static dialog.Definition built once at startup from closures over Deps;
// per-user position and scratch data live in the session store, never in
// the definitions.
package flows

import (
	"context"

	"github.com/pxc1984/musicclubbot/club"
	"github.com/pxc1984/musicclubbot/core/dialog"
)

// Dialog and state names. Frames reference these by value, so renaming one
// invalidates stored sessions.
const (
	DialogMainMenu       = "mainmenu"
	DialogAddSong        = "addsong"
	DialogEditSong       = "editsong"
	DialogEditRole       = "editrole"
	DialogParticipations = "participations"
	DialogAdminPanel     = "adminpanel"
	DialogCreateEvent    = "createevent"
	DialogInvite         = "invite"
)

const (
	StateMenu          = "menu"
	StateSongs         = "songs"
	StateEvents        = "events"
	StateTitle         = "title"
	StateDescription   = "description"
	StateLink          = "link"
	StateAddRole       = "add_role"
	StateVerify        = "verify"
	StateJoin          = "join"
	StateInputRole     = "input_role"
	StateRemoveConfirm = "remove_confirm"
	StateList          = "list"
	StateAnnouncement  = "announcement"
	StateDate          = "date"
	StateConfirm       = "confirm"
	StateInvite        = "invite"
)

// Broadcaster fans an announcement out to every known person.
type Broadcaster interface {
	SendAll(ctx context.Context, text string) (delivered, total int, err error)
}

// Deps carries everything the flows close over: repositories, messaging,
// and policy knobs. Transport stays behind the function fields so the flows
// remain testable without a bot.
type Deps struct {
	Songs          club.SongRepo
	People         club.PersonRepo
	Participations club.ParticipationRepo
	PendingRoles   club.PendingRoleRepo
	Concerts       club.ConcertRepo

	Notifier  club.Notifier
	Broadcast Broadcaster

	// Announce posts an HTML message to the club chat.
	Announce func(ctx context.Context, html string) error
	// SongDeepLink builds the t.me deep link that opens the song card.
	SongDeepLink func(songID int64) string
	// InviteLink returns the invite link shown to non-members.
	InviteLink func() string

	IsAdmin  func(userID int64) bool
	PageSize int
}

func (d Deps) isAdmin(userID int64) bool {
	return d.IsAdmin != nil && d.IsAdmin(userID)
}

func (d Deps) pageSize() int {
	if d.PageSize > 0 {
		return d.PageSize
	}
	return 4
}

// All builds every dialog definition for engine registration.
func All(d Deps) []*dialog.Definition {
	return []*dialog.Definition{
		MainMenu(d),
		AddSong(d),
		EditSong(d),
		EditRole(d),
		Participations(d),
		AdminPanel(d),
		CreateEvent(d),
		Invite(d),
	}
}
