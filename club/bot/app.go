// Package bot assembles the music club application: repositories, dialog
// engine, flows, and the Telegram wiring on top of the shared core.
package bot

import (
	"context"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/pxc1984/musicclubbot/club/broadcast"
	"github.com/pxc1984/musicclubbot/club/flows"
	"github.com/pxc1984/musicclubbot/club/repository"
	"github.com/pxc1984/musicclubbot/core/bootstrap"
	"github.com/pxc1984/musicclubbot/core/dialog"
	coretelegram "github.com/pxc1984/musicclubbot/core/telegram"
	"github.com/pxc1984/musicclubbot/core/telegram/commands"
	"github.com/pxc1984/musicclubbot/core/telegram/helpers"
	"github.com/pxc1984/musicclubbot/core/telegram/middleware"
	"github.com/pxc1984/musicclubbot/core/telegram/router"
)

// App owns the application state between bootstrap and shutdown. The bot
// pointer is set by the run lifecycle; notifier and deep links need it and
// are inert until then.
type App struct {
	cfg    *Config
	infra  *bootstrap.Result
	repos  *repository.Repositories
	engine *dialog.Engine

	bot atomic.Pointer[tele.Bot]
}

// NewApp bootstraps infrastructure and wires the dialog engine over it.
func NewApp(cfg *Config) (*App, error) {
	infra, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:   cfg,
		infra: infra,
		repos: repository.New(infra.DB),
	}

	n := &notifier{app: a}
	deps := flows.Deps{
		Songs:          a.repos.Songs,
		People:         a.repos.People,
		Participations: a.repos.Participations,
		PendingRoles:   a.repos.PendingRoles,
		Concerts:       a.repos.Concerts,

		Notifier:  n,
		Broadcast: broadcast.New(a.repos.People, n, 0),

		Announce:     a.announce,
		SongDeepLink: a.songDeepLink,
		InviteLink:   func() string { return cfg.Core.Telegram.ChatLink },

		IsAdmin:  cfg.Core.Telegram.IsAdmin,
		PageSize: cfg.Core.Dialog.PageSize,
	}

	engine, err := dialog.NewEngine(infra.Sessions, flows.All(deps)...)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	a.engine = engine
	return a, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	return a.infra.Close()
}

// TelegramRunOptions builds the full transport wiring: commands, the dialog
// callback, routers, and middleware.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	cfg := &a.cfg.Core
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Open the main menu",
		Aliases:     []string{"menu"},
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Leave the current dialog",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     a.handleAdmin,
		Description: "Open the admin panel",
		AdminOnly:   true,
		Hidden:      true,
	})

	svc := &dialogService{engine: a.engine}
	if err := reg.RegisterCallback(callbackKey, svc.HandleCallback); err != nil {
		return coretelegram.RunOptions{}, err
	}

	var middlewares []coretelegram.Middleware
	if cfg.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		middlewares = append(middlewares, coretelegram.Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimit(middleware.RateLimitOptions{
				Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:  exclude,
			}),
		})
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin: cfg.Telegram.IsAdmin,
		OnAdminReject: func(c tele.Context) error {
			return helpers.SendText(c, "Admins only")
		},
	})
	routes = append(routes, router.TextRoutes(svc, reg, router.TextOptions{
		UnknownText: func(c tele.Context) error {
			return helpers.SendText(c, closedText)
		},
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: middlewares,
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.bot.Store(rt.Bot)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.bot.Store(nil)
			return a.Close()
		},
	}, nil
}
