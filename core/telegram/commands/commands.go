package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command describes a slash command: its handler plus the metadata the
// registry needs to build the Telegram command menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
