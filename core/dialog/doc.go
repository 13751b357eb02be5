// Package dialog implements a per-user conversational state machine: named
// flow definitions built once at startup, a stack of active frames per user
// session, and an engine that dispatches incoming events to the active state.
// It is transport-agnostic; the Telegram layer adapts updates into events and
// view-models into messages.
package dialog
