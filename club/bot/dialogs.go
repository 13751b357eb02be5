package bot

import (
	"errors"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/pxc1984/musicclubbot/core/dialog"
	"github.com/pxc1984/musicclubbot/core/logger"
	"github.com/pxc1984/musicclubbot/core/telegram/callbacks"
	"github.com/pxc1984/musicclubbot/core/telegram/helpers"
)

// dialogService adapts the dialog engine to the transport: it implements
// the text router's Dialogs interface and handles the dlg callback.
type dialogService struct {
	engine *dialog.Engine
}

// InProgress reports whether the sender has an open dialog. A store failure
// is reported as "no dialog": the text falls through to the fallback, which
// is better than dropping the message on the floor.
func (s *dialogService) InProgress(c tele.Context) bool {
	user := c.Sender()
	if user == nil {
		return false
	}
	ctx := helpers.BuildContext(c)
	active, err := s.engine.Active(ctx, user.ID)
	if err != nil {
		logger.Warn(ctx, "bot", "session.check_failed",
			slog.Int64("user_id", user.ID),
			slog.String("err", err.Error()),
		)
		return false
	}
	return active
}

// HandleText feeds a typed message into the active dialog.
func (s *dialogService) HandleText(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	ctx := helpers.BuildContext(c)
	render, err := s.engine.HandleEvent(ctx, user.ID, dialog.TextEvent(c.Text()))
	if errors.Is(err, dialog.ErrNoActiveSession) {
		// The session expired between InProgress and the event.
		return helpers.SendText(c, closedText)
	}
	if err != nil {
		return err
	}
	return sendRender(c, render)
}

// HandleCallback decodes a dlg button press and feeds it into the engine.
// Presses on keyboards that outlived their session or state get a toast
// instead of an error: old messages keep their buttons forever.
func (s *dialogService) HandleCallback(c tele.Context) error {
	user := c.Sender()
	if user == nil {
		return nil
	}

	action, payload := splitButtonData(callbacks.Payload(c))
	if action == "" {
		_ = c.Respond(&tele.CallbackResponse{Text: "This button is broken"})
		return nil
	}

	ctx := helpers.BuildContext(c)
	render, err := s.engine.HandleEvent(ctx, user.ID, dialog.ButtonEvent(action, payload))
	switch {
	case errors.Is(err, dialog.ErrNoActiveSession):
		_ = c.Respond(&tele.CallbackResponse{Text: "This menu has expired"})
		return helpers.EditOrSendHTML(c, closedText)
	case errors.Is(err, dialog.ErrUnknownAction):
		_ = c.Respond(&tele.CallbackResponse{Text: "This button belongs to an older screen"})
		return nil
	case err != nil:
		_ = c.Respond(&tele.CallbackResponse{Text: "Something went wrong"})
		return err
	}
	return sendRender(c, render)
}

// splitButtonData splits "<action>|<payload>"; the payload part is optional.
func splitButtonData(data string) (action, payload string) {
	parts := strings.SplitN(data, "|", 2)
	action = parts[0]
	if len(parts) == 2 {
		payload = parts[1]
	}
	return action, payload
}
