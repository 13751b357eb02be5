package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/pxc1984/musicclubbot/club/flows"
	"github.com/pxc1984/musicclubbot/core/dialog"
	"github.com/pxc1984/musicclubbot/core/logger"
	"github.com/pxc1984/musicclubbot/core/telegram/helpers"
)

// handleStart is the single entry point: it gates on club chat membership,
// registers the person, and opens either the song card named by the deep
// link or the main menu. Any previous stack is discarded first.
func (a *App) handleStart(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	ctx := helpers.BuildContext(c)

	member, err := a.isClubMember(user.ID)
	if err != nil {
		// No verdict means no access; the user can retry with /start.
		logger.Warn(ctx, "bot", "membership.check_failed",
			slog.Int64("user_id", user.ID),
			slog.String("err", err.Error()),
		)
		member = false
	}

	if err := a.engine.ResetStack(ctx, user.ID); err != nil {
		return err
	}

	if !member {
		render, err := a.engine.Start(ctx, user.ID, flows.DialogInvite, "", nil)
		if err != nil {
			return err
		}
		return sendRender(c, render)
	}

	_, created, err := a.repos.People.Upsert(ctx, user.ID, displayName(user))
	if err != nil {
		return fmt.Errorf("start: upsert person: %w", err)
	}
	if created {
		_ = helpers.SendHTML(c, "Welcome to the club!")
	}

	if songID, ok := deepLinkSongID(c); ok {
		render, err := a.engine.Start(ctx, user.ID, flows.DialogEditSong, "", dialog.Data{"song_id": songID})
		if err != nil {
			return err
		}
		return sendRender(c, render)
	}

	render, err := a.engine.Start(ctx, user.ID, flows.DialogMainMenu, "", nil)
	if err != nil {
		return err
	}
	return sendRender(c, render)
}

// handleCancel pops the current dialog frame, landing on the parent flow or
// closing the session.
func (a *App) handleCancel(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	ctx := helpers.BuildContext(c)
	render, err := a.engine.Cancel(ctx, user.ID)
	if errors.Is(err, dialog.ErrNoActiveSession) {
		return helpers.SendText(c, "Nothing to cancel")
	}
	if err != nil {
		return err
	}
	return sendRender(c, render)
}

// handleAdmin jumps straight into the admin panel. Access control sits in
// the command middleware chain.
func (a *App) handleAdmin(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	ctx := helpers.BuildContext(c)
	if err := a.engine.ResetStack(ctx, user.ID); err != nil {
		return err
	}
	render, err := a.engine.Start(ctx, user.ID, flows.DialogAdminPanel, "", nil)
	if err != nil {
		return err
	}
	return sendRender(c, render)
}

// isClubMember checks the user's status in the club chat. Restricted
// members still count; only left and kicked are outsiders.
func (a *App) isClubMember(userID int64) (bool, error) {
	b := a.bot.Load()
	if b == nil {
		return false, fmt.Errorf("bot is not running")
	}
	member, err := b.ChatMemberOf(&tele.Chat{ID: a.cfg.Core.Telegram.ClubChatID}, &tele.User{ID: userID})
	if err != nil {
		return false, err
	}
	switch member.Role {
	case tele.Left, tele.Kicked:
		return false, nil
	}
	return true, nil
}

func displayName(user *tele.User) string {
	name := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	if name == "" {
		name = user.Username
	}
	if name == "" {
		name = strconv.FormatInt(user.ID, 10)
	}
	return name
}

// deepLinkSongID extracts the song id from "/start <song_id>".
func deepLinkSongID(c tele.Context) (int64, bool) {
	m := c.Message()
	if m == nil {
		return 0, false
	}
	arg := strings.TrimSpace(m.Payload)
	if arg == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
