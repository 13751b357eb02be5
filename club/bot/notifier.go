package bot

import (
	"context"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/pxc1984/musicclubbot/club"
	"github.com/pxc1984/musicclubbot/core/logger"
)

// notifier delivers personal HTML messages through the live bot. It only
// works while the bot is running; callers treat every failure as best
// effort.
type notifier struct {
	app *App
}

func (n *notifier) Notify(ctx context.Context, personID int64, text string) error {
	b := n.app.bot.Load()
	if b == nil {
		return fmt.Errorf("%w: bot is not running", club.ErrDeliveryFailed)
	}
	if _, err := b.Send(&tele.User{ID: personID}, text, tele.ModeHTML); err != nil {
		logger.Debug(ctx, "bot", "notify.failed",
			slog.Int64("person_id", personID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%w: %v", club.ErrDeliveryFailed, err)
	}
	return nil
}

// announce posts an HTML message to the club chat.
func (a *App) announce(ctx context.Context, html string) error {
	b := a.bot.Load()
	if b == nil {
		return fmt.Errorf("announce: bot is not running")
	}
	if _, err := b.Send(&tele.Chat{ID: a.cfg.Core.Telegram.ClubChatID}, html, tele.ModeHTML); err != nil {
		logger.Warn(ctx, "bot", "announce.failed", slog.String("err", err.Error()))
		return err
	}
	return nil
}

// songDeepLink builds the t.me link that opens the song card via
// "/start <song_id>".
func (a *App) songDeepLink(songID int64) string {
	b := a.bot.Load()
	if b == nil || b.Me == nil || b.Me.Username == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s?start=%d", b.Me.Username, songID)
}
