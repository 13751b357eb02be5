package flows

import (
	"fmt"
	"html"
	"time"

	"github.com/pxc1984/musicclubbot/club/texts"
	"github.com/pxc1984/musicclubbot/core/dialog"
)

// CreateEvent collects an event name and date, then persists the concert
// after confirmation.
func CreateEvent(d Deps) *dialog.Definition {
	cancel := dialog.Button{Action: actCancel, OnPress: func(rt *dialog.Runtime, _ string) error {
		rt.Done()
		return nil
	}}

	return dialog.MustDefinition(DialogCreateEvent,
		dialog.State{
			Name: StateTitle,
			OnText: func(rt *dialog.Runtime, text string) error {
				if !texts.ValidTitle(text) {
					return dialog.Reject("That does not look like an event name, try again")
				}
				rt.Set("name", text)
				rt.Next()
				return nil
			},
			Buttons: []dialog.Button{cancel},
			Getter: staticView("What is the event called?",
				dialog.ViewButton{Label: "Cancel", Action: actCancel}),
		},
		dialog.State{
			Name: StateDate,
			OnText: func(rt *dialog.Runtime, text string) error {
				when, ok := texts.ParseDate(text)
				if !ok {
					return dialog.Reject("Send a date like 2026-09-01 19:00 or 01.09.2026")
				}
				rt.Set("date_unix", when.Unix())
				rt.Next()
				return nil
			},
			Buttons: []dialog.Button{cancel},
			Getter: staticView("When does it happen? Send a date",
				dialog.ViewButton{Label: "Cancel", Action: actCancel}),
		},
		dialog.State{
			Name: StateConfirm,
			Buttons: []dialog.Button{
				{Action: actConfirm, OnPress: createEventConfirm(d)},
				{Action: actDeny, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateTitle)
					return nil
				}},
				cancel,
			},
			Getter: func(rt *dialog.Runtime) (dialog.View, error) {
				name, _ := rt.Data().String("name")
				unix, _ := rt.Data().Int64("date_unix")
				when := time.Unix(unix, 0)

				v := dialog.View{Text: fmt.Sprintf(
					"Create this event?\n\n<b>%s</b>\n%s",
					html.EscapeString(name), when.Format("02.01.2006 15:04"),
				)}
				v.AddRow(
					dialog.ViewButton{Label: "Create", Action: actConfirm},
					dialog.ViewButton{Label: "Start over", Action: actDeny},
				)
				v.AddRow(dialog.ViewButton{Label: "Cancel", Action: actCancel})
				return v, nil
			},
		},
	)
}

func createEventConfirm(d Deps) dialog.ButtonHandler {
	return func(rt *dialog.Runtime, _ string) error {
		name, _ := rt.Data().String("name")
		unix, _ := rt.Data().Int64("date_unix")

		if _, err := d.Concerts.Create(rt.Context(), name, time.Unix(unix, 0)); err != nil {
			return fmt.Errorf("createevent: create concert: %w", err)
		}
		rt.Notify("Event created")
		rt.Done()
		return nil
	}
}
