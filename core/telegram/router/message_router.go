// Package router dispatches Telegram updates: free text goes to the active
// dialog when one is open, otherwise to commands or the configured
// fallback; callbacks resolve through the registry.
package router

import (
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/pxc1984/musicclubbot/core/telegram"
	"github.com/pxc1984/musicclubbot/core/telegram/middleware"
)

// Dialogs is the dialog engine surface the text router needs.
type Dialogs interface {
	// InProgress reports whether the user has an open dialog session.
	InProgress(c tele.Context) bool
	// HandleText feeds the message into the active dialog and renders the
	// resulting view.
	HandleText(c tele.Context) error
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the OnText route. Command lookup runs before the active
// dialog so "/start" and "/cancel" always interrupt a flow; everything else
// feeds the dialog when one is open.
func TextRoutes(dialogs Dialogs, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, func() error {
					return cmd.Handler(c)
				})
			}
		}

		if dialogs != nil && dialogs.InProgress(c) {
			return handleWithSummary(c, "dialog", start, func() error {
				return dialogs.HandleText(c)
			})
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.Recover(middleware.Logging(middleware.PrivateOnly(handler))),
		},
	}
}
