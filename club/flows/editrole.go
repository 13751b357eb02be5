package flows

import (
	"errors"
	"fmt"
	"html"

	"github.com/pxc1984/musicclubbot/club"
	"github.com/pxc1984/musicclubbot/club/texts"
	"github.com/pxc1984/musicclubbot/core/dialog"
)

const (
	actEditRole      = "edit_role"
	actRemove        = "remove"
	actConfirmRemove = "confirm_remove"
)

// EditRole edits one participation: rename the role or remove the entry.
// Start data: {"participation_id": id, "notify": bool} — notify is set when
// an admin edits somebody else's entry, so the affected person gets a
// personal message about the change.
func EditRole(d Deps) *dialog.Definition {
	backToMenu := dialog.Button{Action: actBack, OnPress: func(rt *dialog.Runtime, _ string) error {
		rt.SwitchTo(StateMenu)
		return nil
	}}

	return dialog.MustDefinition(DialogEditRole,
		dialog.State{
			Name:   StateMenu,
			Getter: participationCardGetter(d),
			Buttons: []dialog.Button{
				{Action: actEditRole, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateInputRole)
					return nil
				}},
				{Action: actRemove, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateRemoveConfirm)
					return nil
				}},
				{Action: actBack, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Done()
					return nil
				}},
			},
		},
		dialog.State{
			Name:    StateInputRole,
			OnText:  renameRole(d),
			Buttons: []dialog.Button{backToMenu},
			Getter: staticView("Send the new role name",
				dialog.ViewButton{Label: "Back", Action: actBack}),
		},
		dialog.State{
			Name: StateRemoveConfirm,
			Buttons: []dialog.Button{
				{Action: actConfirmRemove, OnPress: removeParticipation(d)},
				backToMenu,
			},
			Getter: staticView("Remove this entry, are you sure?",
				dialog.ViewButton{Label: "Yes, I am sure", Action: actConfirmRemove},
				dialog.ViewButton{Label: "Back", Action: actBack}),
		},
	)
}

func participationCardGetter(d Deps) dialog.Getter {
	return func(rt *dialog.Runtime) (dialog.View, error) {
		pid, ok := rt.StartData().Int64("participation_id")
		if !ok {
			return dialog.View{}, fmt.Errorf("editrole: start data has no participation_id")
		}
		info, err := d.Participations.Get(rt.Context(), pid)
		if errors.Is(err, club.ErrNotFound) {
			v := dialog.View{Text: "This entry is already gone"}
			v.AddRow(dialog.ViewButton{Label: "Back", Action: actBack})
			return v, nil
		}
		if err != nil {
			return dialog.View{}, err
		}

		v := dialog.View{Text: fmt.Sprintf(
			"<b>%s</b>\nin <b>%s</b>\nas <b>%s</b>",
			html.EscapeString(info.PersonName),
			html.EscapeString(info.SongTitle),
			html.EscapeString(info.Role),
		)}
		v.AddRow(dialog.ViewButton{Label: "Open profile", URL: fmt.Sprintf("tg://user?id=%d", info.PersonID)})
		v.AddRow(dialog.ViewButton{Label: "Rename the role", Action: actEditRole})
		v.AddRow(dialog.ViewButton{Label: "Remove", Action: actRemove})
		v.AddRow(dialog.ViewButton{Label: "Back", Action: actBack})
		return v, nil
	}
}

func renameRole(d Deps) dialog.TextHandler {
	return func(rt *dialog.Runtime, text string) error {
		if !texts.ValidTitle(text) {
			return dialog.Reject("That does not look like a role name, try again")
		}
		pid, ok := rt.StartData().Int64("participation_id")
		if !ok {
			return fmt.Errorf("editrole: start data has no participation_id")
		}

		// Read before write so the notification has the song title even
		// though the update itself needs only the id.
		info, err := d.Participations.Get(rt.Context(), pid)
		if errors.Is(err, club.ErrNotFound) {
			rt.Notify("This entry is already gone")
			rt.Done()
			return nil
		}
		if err != nil {
			return fmt.Errorf("editrole: load participation: %w", err)
		}

		if err := d.Participations.UpdateRole(rt.Context(), pid, text); err != nil {
			if errors.Is(err, club.ErrNotFound) {
				rt.Notify("This entry is already gone")
				rt.Done()
				return nil
			}
			if errors.Is(err, club.ErrAlreadyExists) {
				return dialog.Reject("They already hold that exact role here")
			}
			return fmt.Errorf("editrole: rename: %w", err)
		}

		if rt.StartData().Bool("notify") && d.Notifier != nil {
			// Best effort: the notifier logs its own failures.
			_ = d.Notifier.Notify(rt.Context(), info.PersonID, fmt.Sprintf(
				"Your role in <b>%s</b> was changed to <b>%s</b>",
				html.EscapeString(info.SongTitle), html.EscapeString(text),
			))
		}

		rt.Notify("Role updated")
		rt.SwitchTo(StateMenu)
		return nil
	}
}

func removeParticipation(d Deps) dialog.ButtonHandler {
	return func(rt *dialog.Runtime, _ string) error {
		pid, ok := rt.StartData().Int64("participation_id")
		if !ok {
			return fmt.Errorf("editrole: start data has no participation_id")
		}

		info, err := d.Participations.Get(rt.Context(), pid)
		if errors.Is(err, club.ErrNotFound) {
			rt.Notify("This entry is already gone")
			rt.Done()
			return nil
		}
		if err != nil {
			return fmt.Errorf("editrole: load participation: %w", err)
		}

		if err := d.Participations.Delete(rt.Context(), pid); err != nil {
			if errors.Is(err, club.ErrNotFound) {
				rt.Notify("This entry is already gone")
				rt.Done()
				return nil
			}
			return fmt.Errorf("editrole: delete: %w", err)
		}

		if rt.StartData().Bool("notify") && d.Notifier != nil {
			_ = d.Notifier.Notify(rt.Context(), info.PersonID, fmt.Sprintf(
				"You were removed from <b>%s</b>, position <b>%s</b>",
				html.EscapeString(info.SongTitle), html.EscapeString(info.Role),
			))
		}

		rt.Notify("Removed")
		rt.Done()
		return nil
	}
}
