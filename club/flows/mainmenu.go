package flows

import (
	"fmt"
	"html"
	"strconv"

	"github.com/pxc1984/musicclubbot/core/dialog"
)

const (
	actSongs  = "songs"
	actEvents = "events"
	actMine   = "mine"
	actAdmin  = "admin"
	actSelect = "select"
	actPrev   = "prev"
	actNext   = "next"
	actPage   = "page"
	actAdd    = "add"
	actBack   = "back"
)

// MainMenu is the top-level flow: menu, the cyclic paginated song list, and
// the upcoming events list.
func MainMenu(d Deps) *dialog.Definition {
	return dialog.MustDefinition(DialogMainMenu,
		dialog.State{
			Name:   StateMenu,
			Getter: mainMenuGetter(d),
			Buttons: []dialog.Button{
				{Action: actSongs, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateSongs)
					return nil
				}},
				{Action: actEvents, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateEvents)
					return nil
				}},
				{Action: actMine, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Start(DialogParticipations, "", nil)
					return nil
				}},
				{Action: actAdmin, OnPress: func(rt *dialog.Runtime, _ string) error {
					if !d.isAdmin(rt.UserID()) {
						rt.Notify("Admins only")
						return nil
					}
					rt.Start(DialogAdminPanel, "", nil)
					return nil
				}},
			},
		},
		dialog.State{
			Name:   StateSongs,
			Getter: songsGetter(d),
			Buttons: []dialog.Button{
				{Action: actSelect, OnPress: func(rt *dialog.Runtime, payload string) error {
					songID, err := strconv.ParseInt(payload, 10, 64)
					if err != nil {
						return fmt.Errorf("mainmenu: bad song payload %q: %w", payload, err)
					}
					rt.Start(DialogEditSong, "", dialog.Data{"song_id": songID})
					return nil
				}},
				{Action: actPrev, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Set("page", rt.Data().IntOr("page", 0)-1)
					return nil
				}},
				{Action: actNext, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Set("page", rt.Data().IntOr("page", 0)+1)
					return nil
				}},
				{Action: actPage, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Notify("That one is just a counter")
					return nil
				}},
				{Action: actAdd, OnPress: func(rt *dialog.Runtime, _ string) error {
					if !d.isAdmin(rt.UserID()) {
						rt.Notify("Admins only")
						return nil
					}
					rt.Start(DialogAddSong, "", nil)
					return nil
				}},
				{Action: actBack, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateMenu)
					return nil
				}},
			},
		},
		dialog.State{
			Name:   StateEvents,
			Getter: eventsGetter(d),
			Buttons: []dialog.Button{
				{Action: actBack, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateMenu)
					return nil
				}},
			},
		},
	)
}

func mainMenuGetter(d Deps) dialog.Getter {
	return func(rt *dialog.Runtime) (dialog.View, error) {
		v := dialog.View{Text: "<b>Main menu</b>\n\nWhat would you like to do today?\n"}
		if d.isAdmin(rt.UserID()) {
			v.Text += "\n<b>You are an admin, by the way</b>\n"
		}
		v.AddRow(dialog.ViewButton{Label: "Songs", Action: actSongs})
		v.AddRow(dialog.ViewButton{Label: "Upcoming events", Action: actEvents})
		v.AddRow(dialog.ViewButton{Label: "My participations", Action: actMine})
		if d.isAdmin(rt.UserID()) {
			v.AddRow(dialog.ViewButton{Label: "Admin panel", Action: actAdmin})
		}
		return v, nil
	}
}

// songsGetter renders one page of the song list. The raw page counter in
// scratch may be any integer; Page normalizes it with a modulo wrap, so
// prev on the first page lands on the last one.
func songsGetter(d Deps) dialog.Getter {
	return func(rt *dialog.Runtime) (dialog.View, error) {
		songs, err := d.Songs.List(rt.Context())
		if err != nil {
			return dialog.View{}, err
		}

		window, page, total := dialog.Page(songs, d.pageSize(), rt.Data().IntOr("page", 0))

		v := dialog.View{Text: "<b>Here is the song list</b>\n"}
		for _, song := range window {
			v.AddRow(dialog.ViewButton{
				Label:   song.Title,
				Action:  actSelect,
				Payload: strconv.FormatInt(song.ID, 10),
			})
		}
		v.AddRow(
			dialog.ViewButton{Label: "<", Action: actPrev},
			dialog.ViewButton{Label: fmt.Sprintf("%d/%d", page, total), Action: actPage},
			dialog.ViewButton{Label: ">", Action: actNext},
		)
		if d.isAdmin(rt.UserID()) {
			v.AddRow(dialog.ViewButton{Label: "Add a song", Action: actAdd})
		}
		v.AddRow(dialog.ViewButton{Label: "Back", Action: actBack})
		return v, nil
	}
}

func eventsGetter(d Deps) dialog.Getter {
	return func(rt *dialog.Runtime) (dialog.View, error) {
		concerts, err := d.Concerts.List(rt.Context())
		if err != nil {
			return dialog.View{}, err
		}
		v := dialog.View{}
		if len(concerts) == 0 {
			v.Text = "No upcoming events yet"
		} else {
			v.Text = "<b>Upcoming events</b>\n"
			for _, c := range concerts {
				v.Text += fmt.Sprintf("\n%s — %s", c.Date.Format("02.01.2006 15:04"), html.EscapeString(c.Name))
			}
		}
		v.AddRow(dialog.ViewButton{Label: "Back", Action: actBack})
		return v, nil
	}
}
