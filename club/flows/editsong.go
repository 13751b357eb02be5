package flows

import (
	"errors"
	"fmt"
	"html"
	"strconv"

	"github.com/pxc1984/musicclubbot/club"
	"github.com/pxc1984/musicclubbot/club/texts"
	"github.com/pxc1984/musicclubbot/core/dialog"
)

const (
	actClaim = "claim"
	actJoin  = "join"
	actEdit  = "edit"
)

// EditSong shows a song card: open roles to claim, current participations,
// and a self-join entry for a typed role. Started with start data
// {"song_id": id}, either from the song list or a /start deep link.
func EditSong(d Deps) *dialog.Definition {
	return dialog.MustDefinition(DialogEditSong,
		dialog.State{
			Name:   StateMenu,
			Getter: songCardGetter(d),
			Buttons: []dialog.Button{
				{Action: actClaim, OnPress: claimPendingRole(d)},
				{Action: actJoin, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateJoin)
					return nil
				}},
				{Action: actEdit, OnPress: openEditRole(d)},
				{Action: actBack, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Done()
					return nil
				}},
			},
		},
		dialog.State{
			Name:   StateJoin,
			OnText: joinWithTypedRole(d),
			Buttons: []dialog.Button{
				{Action: actBack, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateMenu)
					return nil
				}},
			},
			Getter: staticView("What will you do in this song? Send me a role name",
				dialog.ViewButton{Label: "Back", Action: actBack}),
		},
	)
}

func songCardGetter(d Deps) dialog.Getter {
	return func(rt *dialog.Runtime) (dialog.View, error) {
		songID, ok := rt.StartData().Int64("song_id")
		if !ok {
			return dialog.View{}, fmt.Errorf("editsong: start data has no song_id")
		}

		song, err := d.Songs.Get(rt.Context(), songID)
		if errors.Is(err, club.ErrNotFound) {
			v := dialog.View{Text: "This song no longer exists"}
			v.AddRow(dialog.ViewButton{Label: "Back", Action: actBack})
			return v, nil
		}
		if err != nil {
			return dialog.View{}, err
		}

		v := dialog.View{Text: fmt.Sprintf("ID: %d\nTitle: <b>%s</b>\n", song.ID, html.EscapeString(song.Title))}
		if song.Description != "" {
			v.Text += html.EscapeString(song.Description) + "\n"
		}
		if song.Link != "" {
			v.AddRow(dialog.ViewButton{Label: "Link", URL: song.Link})
		}

		pending, err := d.PendingRoles.ListBySong(rt.Context(), songID)
		if err != nil {
			return dialog.View{}, err
		}
		if len(pending) > 0 {
			v.Text += "\nOpen roles, tap one to take it:"
			for _, pr := range pending {
				v.AddRow(dialog.ViewButton{
					Label:   "🎯 " + pr.Role,
					Action:  actClaim,
					Payload: strconv.FormatInt(pr.ID, 10),
				})
			}
		}

		members, err := d.Participations.ListBySong(rt.Context(), songID)
		if err != nil {
			return dialog.View{}, err
		}
		if len(members) > 0 {
			v.Text += "\n\nWho is in already:"
			for _, p := range members {
				label := fmt.Sprintf("%s — %s", p.PersonName, p.Role)
				if p.PersonID == rt.UserID() || d.isAdmin(rt.UserID()) {
					v.AddRow(dialog.ViewButton{
						Label:   label,
						Action:  actEdit,
						Payload: strconv.FormatInt(p.ID, 10),
					})
				} else {
					v.Text += fmt.Sprintf("\n    %s as %s", html.EscapeString(p.PersonName), html.EscapeString(p.Role))
				}
			}
		}

		v.AddRow(dialog.ViewButton{Label: "Join with my own role", Action: actJoin})
		v.AddRow(dialog.ViewButton{Label: "Back", Action: actBack})
		return v, nil
	}
}

// claimPendingRole consumes an open role. The repository does the delete
// and the insert in one transaction, so when two members race for the same
// role exactly one of them wins.
func claimPendingRole(d Deps) dialog.ButtonHandler {
	return func(rt *dialog.Runtime, payload string) error {
		pendingID, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return fmt.Errorf("editsong: bad pending role payload %q: %w", payload, err)
		}
		_, err = d.PendingRoles.Claim(rt.Context(), pendingID, rt.UserID())
		switch {
		case errors.Is(err, club.ErrNotFound):
			rt.Notify("Somebody already took this role")
		case errors.Is(err, club.ErrAlreadyExists):
			rt.Notify("You already hold this role here")
		case err != nil:
			return fmt.Errorf("editsong: claim role: %w", err)
		default:
			rt.Notify("You are in!")
		}
		return nil
	}
}

func joinWithTypedRole(d Deps) dialog.TextHandler {
	return func(rt *dialog.Runtime, text string) error {
		if !texts.ValidTitle(text) {
			return dialog.Reject("That does not look like a role name, try again")
		}
		songID, ok := rt.StartData().Int64("song_id")
		if !ok {
			return fmt.Errorf("editsong: start data has no song_id")
		}
		_, err := d.Participations.Insert(rt.Context(), songID, rt.UserID(), text)
		if errors.Is(err, club.ErrAlreadyExists) {
			return dialog.Reject("You already hold this role here")
		}
		if err != nil {
			return fmt.Errorf("editsong: join song: %w", err)
		}
		rt.Notify("You are in!")
		rt.SwitchTo(StateMenu)
		return nil
	}
}

// openEditRole starts the participation editor for one's own entry, or any
// entry when the caller is an admin. The notify flag tells the editor to
// message the affected person when someone else changes their entry.
func openEditRole(d Deps) dialog.ButtonHandler {
	return func(rt *dialog.Runtime, payload string) error {
		participationID, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return fmt.Errorf("editsong: bad participation payload %q: %w", payload, err)
		}
		info, err := d.Participations.Get(rt.Context(), participationID)
		if errors.Is(err, club.ErrNotFound) {
			rt.Notify("This entry is already gone")
			return nil
		}
		if err != nil {
			return fmt.Errorf("editsong: load participation: %w", err)
		}
		if info.PersonID != rt.UserID() && !d.isAdmin(rt.UserID()) {
			rt.Notify("You can only edit your own entries")
			return nil
		}
		rt.Start(DialogEditRole, "", dialog.Data{
			"participation_id": participationID,
			"notify":           info.PersonID != rt.UserID(),
		})
		return nil
	}
}
