package flows

import (
	"fmt"

	"github.com/pxc1984/musicclubbot/core/dialog"
)

const (
	actCreateEvent  = "create"
	actAnnouncement = "announcement"
)

// AdminPanel hosts admin-only actions: creating events and broadcasting an
// announcement to every known person. Entry points re-check the admin
// predicate, so reaching these states without it is a wiring defect.
func AdminPanel(d Deps) *dialog.Definition {
	return dialog.MustDefinition(DialogAdminPanel,
		dialog.State{
			Name: StateMenu,
			Buttons: []dialog.Button{
				{Action: actCreateEvent, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Start(DialogCreateEvent, "", nil)
					return nil
				}},
				{Action: actAnnouncement, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateAnnouncement)
					return nil
				}},
				{Action: actBack, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Done()
					return nil
				}},
			},
			Getter: staticView("Admin panel",
				dialog.ViewButton{Label: "Create an event", Action: actCreateEvent},
				dialog.ViewButton{Label: "Make an announcement", Action: actAnnouncement},
				dialog.ViewButton{Label: "Back", Action: actBack}),
		},
		dialog.State{
			Name:   StateAnnouncement,
			OnText: broadcastAnnouncement(d),
			Buttons: []dialog.Button{
				{Action: actBack, OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo(StateMenu)
					return nil
				}},
			},
			Getter: staticView("Make an announcement: send me a message and I will forward it to everyone I know",
				dialog.ViewButton{Label: "Back", Action: actBack}),
		},
	)
}

// broadcastAnnouncement fans the message out through the bounded worker
// pool and reports the delivery ratio. A failed recipient never aborts the
// rest of the broadcast.
func broadcastAnnouncement(d Deps) dialog.TextHandler {
	return func(rt *dialog.Runtime, text string) error {
		if d.Broadcast == nil {
			return fmt.Errorf("adminpanel: no broadcaster wired")
		}
		delivered, total, err := d.Broadcast.SendAll(rt.Context(), text)
		if err != nil {
			return fmt.Errorf("adminpanel: broadcast: %w", err)
		}
		percent := 0.0
		if total > 0 {
			percent = float64(delivered) / float64(total) * 100
		}
		rt.Notify(fmt.Sprintf(
			"Delivered to %d of %d people (%.0f%%)", delivered, total, percent,
		))
		rt.SwitchTo(StateMenu)
		return nil
	}
}
