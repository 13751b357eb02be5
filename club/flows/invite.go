package flows

import "github.com/pxc1984/musicclubbot/core/dialog"

// Invite is shown to people who are not members of the club chat. The only
// way forward is the invite link; the dialog has no other exits because the
// bot is useless to non-members.
func Invite(d Deps) *dialog.Definition {
	return dialog.MustDefinition(DialogInvite,
		dialog.State{
			Name: StateInvite,
			Getter: func(rt *dialog.Runtime) (dialog.View, error) {
				v := dialog.View{Text: "You have to be a member of the private club chat to use this bot"}
				if d.InviteLink != nil {
					if link := d.InviteLink(); link != "" {
						v.AddRow(dialog.ViewButton{Label: "Join the chat", URL: link})
					}
				}
				return v, nil
			},
		},
	)
}
