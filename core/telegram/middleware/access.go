package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions defines how admin-only checks behave.
type AdminOptions struct {
	// IsAdmin reports whether the sender may run admin commands.
	IsAdmin  func(userID int64) bool
	OnReject tele.HandlerFunc
}

// AdminOnly gates downstream handlers behind the admin predicate. With no
// predicate configured everything passes through.
func AdminOnly(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.IsAdmin != nil {
				sender := c.Sender()
				if sender == nil || !opts.IsAdmin(sender.ID) {
					if opts.OnReject != nil {
						return opts.OnReject(c)
					}
					return nil
				}
			}
			return next(c)
		}
	}
}

// PrivateOnly drops updates that do not come from a private chat. Dialog
// flows keep per-user state and are not meant to run inside group chats.
func PrivateOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil || chat.Type != tele.ChatPrivate {
			return nil
		}
		return next(c)
	}
}
