package flows

import (
	"fmt"
	"strconv"

	"github.com/pxc1984/musicclubbot/core/dialog"
)

// Participations lists the current user's own entries across all songs,
// paginated like the song list. Selecting one opens the role editor.
func Participations(d Deps) *dialog.Definition {
	return dialog.MustDefinition(DialogParticipations,
		dialog.State{
			Name:   StateList,
			Getter: myParticipationsGetter(d),
			Buttons: []dialog.Button{
				{Action: actSelect, OnPress: func(rt *dialog.Runtime, payload string) error {
					pid, err := strconv.ParseInt(payload, 10, 64)
					if err != nil {
						return fmt.Errorf("participations: bad payload %q: %w", payload, err)
					}
					rt.Start(DialogEditRole, "", dialog.Data{
						"participation_id": pid,
						"notify":           false,
					})
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
				{Action: actBack, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Done()
					return nil
				}},
			},
		},
	)
}

func myParticipationsGetter(d Deps) dialog.Getter {
	return func(rt *dialog.Runtime) (dialog.View, error) {
		mine, err := d.Participations.ListByPerson(rt.Context(), rt.UserID())
		if err != nil {
			return dialog.View{}, err
		}

		if len(mine) == 0 {
			v := dialog.View{Text: "You are not in any songs yet"}
			v.AddRow(dialog.ViewButton{Label: "Back", Action: actBack})
			return v, nil
		}

		window, page, total := dialog.Page(mine, d.pageSize(), rt.Data().IntOr("page", 0))

		v := dialog.View{Text: "<b>Your participations</b>\n"}
		for _, p := range window {
			v.AddRow(dialog.ViewButton{
				Label:   fmt.Sprintf("%s — %s", p.SongTitle, p.Role),
				Action:  actSelect,
				Payload: strconv.FormatInt(p.ID, 10),
			})
		}
		if total > 1 {
			v.AddRow(
				dialog.ViewButton{Label: "<", Action: actPrev},
				dialog.ViewButton{Label: fmt.Sprintf("%d/%d", page, total), Action: actPage},
				dialog.ViewButton{Label: ">", Action: actNext},
			)
		}
		v.AddRow(dialog.ViewButton{Label: "Back", Action: actBack})
		return v, nil
	}
}
