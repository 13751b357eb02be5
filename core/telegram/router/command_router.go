package router

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/pxc1984/musicclubbot/core/logger"
	tg "github.com/pxc1984/musicclubbot/core/telegram"
	"github.com/pxc1984/musicclubbot/core/telegram/middleware"
)

// CommandRouteOptions configures how commands are wrapped.
type CommandRouteOptions struct {
	IsAdmin       func(userID int64) bool
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes wraps every registered command with the shared middleware
// chain and returns them as routes.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminOpts := middleware.AdminOptions{
		IsAdmin:  opts.IsAdmin,
		OnReject: opts.OnAdminReject,
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, def := range reg.Commands() {
		h := def.Handler
		h = middleware.PrivateOnly(h)
		if def.AdminOnly {
			h = middleware.AdminOnly(adminOpts)(h)
		}
		h = middleware.Logging(h)
		h = middleware.Recover(h)
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler:  h,
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
