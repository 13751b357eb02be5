package bot

import (
	"html"

	tele "gopkg.in/telebot.v4"

	"github.com/pxc1984/musicclubbot/core/dialog"
	"github.com/pxc1984/musicclubbot/core/telegram/helpers"
	"github.com/pxc1984/musicclubbot/core/telegram/keyboard"
)

// callbackKey is the single callback unique every dialog button goes
// through. The button data carries "<action>|<payload>" after it.
const callbackKey = "dlg"

const closedText = "Send /start to open the menu"

// viewMarkup turns the dialog view rows into an inline keyboard. URL buttons
// stay link buttons; everything else round-trips through the dlg callback.
func viewMarkup(view *dialog.View) *tele.ReplyMarkup {
	if view == nil || len(view.Rows) == 0 {
		return nil
	}
	rows := make([][]keyboard.InlineBtn, len(view.Rows))
	for i, row := range view.Rows {
		r := make([]keyboard.InlineBtn, len(row))
		for j, btn := range row {
			if btn.URL != "" {
				r[j] = keyboard.InlineBtn{Text: btn.Label, URL: btn.URL}
				continue
			}
			data := btn.Action
			if btn.Payload != "" {
				data += "|" + btn.Payload
			}
			r[j] = keyboard.InlineBtn{Text: btn.Label, Unique: callbackKey, Data: data}
		}
		rows[i] = r
	}
	return keyboard.InlineRows(rows...)
}

// sendRender delivers an engine render back to the user. Button presses edit
// the existing message in place and surface the notice as a callback toast;
// text messages get a fresh message with the notice inlined above the view.
func sendRender(c tele.Context, r *dialog.Render) error {
	if r == nil {
		return nil
	}

	fromCallback := c.Callback() != nil
	if fromCallback {
		_ = c.Respond(&tele.CallbackResponse{Text: r.Notice})
	}

	if r.Closed {
		if fromCallback {
			return helpers.EditOrSendHTML(c, closedText)
		}
		return helpers.SendHTML(c, closedText)
	}

	text := r.View.Text
	markup := viewMarkup(r.View)
	if fromCallback {
		return helpers.EditOrSendHTML(c, text, markup)
	}
	if r.Notice != "" {
		text = "<i>" + html.EscapeString(r.Notice) + "</i>\n\n" + text
	}
	return helpers.SendHTML(c, text, markup)
}
