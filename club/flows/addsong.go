package flows

import (
	"fmt"
	"html"

	"github.com/pxc1984/musicclubbot/club/texts"
	"github.com/pxc1984/musicclubbot/core/dialog"
)

const (
	actCancel   = "cancel"
	actSkip     = "skip"
	actPopLast  = "pop_last"
	actToVerify = "to_verify"
	actConfirm  = "confirm"
	actDeny     = "deny"
)

// AddSong is the admin authoring flow: title, optional description, link,
// a role-collection loop, and a final confirmation that persists the song
// with its open roles and announces it to the club chat.
func AddSong(d Deps) *dialog.Definition {
	cancel := dialog.Button{Action: actCancel, OnPress: func(rt *dialog.Runtime, _ string) error {
		rt.Done()
		return nil
	}}

	return dialog.MustDefinition(DialogAddSong,
		dialog.State{
			Name: StateTitle,
			OnText: func(rt *dialog.Runtime, text string) error {
				if !texts.ValidTitle(text) {
					return dialog.Reject("That does not look like a song title, try again")
				}
				rt.Set("title", text)
				rt.Next()
				return nil
			},
			Buttons: []dialog.Button{cancel},
			Getter: staticView("What is your song called?",
				dialog.ViewButton{Label: "Cancel", Action: actCancel}),
		},
		dialog.State{
			Name: StateDescription,
			OnText: func(rt *dialog.Runtime, text string) error {
				if !texts.ValidTitle(text) {
					return dialog.Reject("Keep the description short and plain, try again")
				}
				rt.Set("description", text)
				rt.Next()
				return nil
			},
			Buttons: []dialog.Button{
				{Action: actSkip, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Set("description", "")
					rt.Next()
					return nil
				}},
				cancel,
			},
			Getter: staticView("Any comments about the song?",
				dialog.ViewButton{Label: "Skip", Action: actSkip},
				dialog.ViewButton{Label: "Cancel", Action: actCancel}),
		},
		dialog.State{
			Name: StateLink,
			OnText: func(rt *dialog.Runtime, text string) error {
				url := texts.ParseURL(text)
				if url == "" {
					return dialog.Reject("Send a plain http(s) link")
				}
				rt.Set("link", url)
				rt.Next()
				return nil
			},
			Buttons: []dialog.Button{cancel},
			Getter: staticView("Send a link to the song",
				dialog.ViewButton{Label: "Cancel", Action: actCancel}),
		},
		dialog.State{
			Name: StateAddRole,
			OnText: func(rt *dialog.Runtime, text string) error {
				if !texts.ValidTitle(text) {
					return dialog.Reject("That does not look like a role name, try again")
				}
				roles := rt.Data().Strings("roles")
				rt.Set("roles", append(roles, text))
				return nil
			},
			Buttons: []dialog.Button{
				{Action: actPopLast, OnPress: func(rt *dialog.Runtime, _ string) error {
					roles := rt.Data().Strings("roles")
					if len(roles) == 0 {
						rt.Notify("Nothing to remove")
						return nil
					}
					rt.Set("roles", roles[:len(roles)-1])
					return nil
				}},
				{Action: actToVerify, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateVerify)
					return nil
				}},
				cancel,
			},
			Getter: func(rt *dialog.Runtime) (dialog.View, error) {
				v := dialog.View{Text: "Now let's go through the people you need. Send me a role name"}
				roles := rt.Data().Strings("roles")
				if len(roles) > 0 {
					v.Text += "\n\n" + texts.RoleLines(roles)
					v.AddRow(dialog.ViewButton{Label: "Remove last role", Action: actPopLast})
				}
				v.AddRow(dialog.ViewButton{Label: "Proceed", Action: actToVerify})
				v.AddRow(dialog.ViewButton{Label: "Cancel", Action: actCancel})
				return v, nil
			},
		},
		dialog.State{
			Name: StateVerify,
			// Typing here re-enters the title, matching the authoring habit of
			// fixing a typo right at the confirmation screen.
			OnText: func(rt *dialog.Runtime, text string) error {
				if !texts.ValidTitle(text) {
					return dialog.Reject("That does not look like a song title, try again")
				}
				rt.Set("title", text)
				return nil
			},
			Buttons: []dialog.Button{
				{Action: actConfirm, OnPress: addSongConfirm(d)},
				{Action: actDeny, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateTitle)
					return nil
				}},
				cancel,
			},
			Getter: func(rt *dialog.Runtime) (dialog.View, error) {
				title, _ := rt.Data().String("title")
				link, _ := rt.Data().String("link")
				roles := rt.Data().Strings("roles")

				v := dialog.View{Text: fmt.Sprintf(
					"Sure you want to add this song? Check the details once more:\n\nTitle: %s\nLink: %s\n",
					html.EscapeString(title), html.EscapeString(link),
				)}
				if len(roles) > 0 {
					v.Text += "\nRoles we are looking for:\n" + texts.RoleLines(roles)
				}
				v.AddRow(
					dialog.ViewButton{Label: "I'm sure", Action: actConfirm},
					dialog.ViewButton{Label: "Not sure", Action: actDeny},
				)
				v.AddRow(dialog.ViewButton{Label: "Cancel", Action: actCancel})
				return v, nil
			},
		},
	)
}

// addSongConfirm persists the song with its pending roles and announces it
// to the club chat with a join deep link. The announcement is best-effort:
// a delivery failure never rolls the song back.
func addSongConfirm(d Deps) dialog.ButtonHandler {
	return func(rt *dialog.Runtime, _ string) error {
		title, _ := rt.Data().String("title")
		description, _ := rt.Data().String("description")
		link, _ := rt.Data().String("link")
		roles := rt.Data().Strings("roles")

		song, err := d.Songs.Create(rt.Context(), title, description, link)
		if err != nil {
			return fmt.Errorf("addsong: create song: %w", err)
		}
		if err := d.PendingRoles.CreateAll(rt.Context(), song.ID, roles); err != nil {
			return fmt.Errorf("addsong: create pending roles: %w", err)
		}

		if d.Announce != nil {
			text := fmt.Sprintf(
				"A new song was added!\n\nTitle: <b>%s</b>\n<a href=%q>Listen here</a>\n",
				html.EscapeString(song.Title), song.Link,
			)
			if len(roles) > 0 {
				text += "\n" + texts.RoleLines(roles) + "\n"
			}
			if d.SongDeepLink != nil {
				text += fmt.Sprintf("\n<b><a href=%q>Join</a></b>", d.SongDeepLink(song.ID))
			}
			// Errors are logged by the announcer itself.
			_ = d.Announce(rt.Context(), text)
		}

		rt.Notify("Song created")
		rt.Done()
		return nil
	}
}

// staticView builds a getter for states whose view does not depend on data.
func staticView(text string, buttons ...dialog.ViewButton) dialog.Getter {
	return func(*dialog.Runtime) (dialog.View, error) {
		v := dialog.View{Text: text}
		for _, b := range buttons {
			v.AddRow(b)
		}
		return v, nil
	}
}
