package dialog

import (
	"context"
	"errors"
)

// Rejection is returned by input handlers when the user's input fails
// validation. The engine discards any scratch mutation, keeps the state
// unchanged, and re-renders so the user can retry.
type Rejection struct {
	Notice string
}

func (r *Rejection) Error() string {
	if r.Notice == "" {
		return "dialog: input rejected"
	}
	return "dialog: input rejected: " + r.Notice
}

// Reject builds a validation rejection with an optional user-facing notice.
func Reject(notice string) error {
	return &Rejection{Notice: notice}
}

// IsRejection reports whether err is a validation rejection and extracts the
// notice.
func IsRejection(err error) (string, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Notice, true
	}
	return "", false
}

type opKind int

const (
	opNone opKind = iota
	opNext
	opSwitch
	opStart
	opDone
	opReset
)

type pendingOp struct {
	kind   opKind
	dialog string
	state  string
	start  Data
}

// Runtime is the handle a state handler or getter receives. It exposes the
// active frame's data and records at most one transition request, which the
// engine applies after the handler returns.
type Runtime struct {
	ctx    context.Context
	userID int64
	frame  *Frame
	op     pendingOp
	notice string
}

// Context returns the request context for repository calls.
func (rt *Runtime) Context() context.Context { return rt.ctx }

// UserID returns the session owner.
func (rt *Runtime) UserID() int64 { return rt.userID }

// Data returns the active frame's mutable scratch store.
func (rt *Runtime) Data() Data { return rt.frame.Data }

// StartData returns the immutable data the parent frame passed on Start.
// Callers must treat it as read-only.
func (rt *Runtime) StartData() Data { return rt.frame.Start }

// Set stores a scratch value on the active frame.
func (rt *Runtime) Set(key string, value any) {
	if rt.frame.Data == nil {
		rt.frame.Data = make(Data)
	}
	rt.frame.Data[key] = value
}

// Delete removes a scratch value from the active frame.
func (rt *Runtime) Delete(key string) {
	delete(rt.frame.Data, key)
}

// Notify sets a transient notice shown to the user alongside the render.
func (rt *Runtime) Notify(text string) { rt.notice = text }

// Next requests advancing to the next state in declaration order.
func (rt *Runtime) Next() { rt.op = pendingOp{kind: opNext} }

// SwitchTo requests replacing the current frame's state in place. Scratch
// and start data are untouched, which makes repeated switches idempotent.
func (rt *Runtime) SwitchTo(state string) {
	rt.op = pendingOp{kind: opSwitch, state: state}
}

// Start requests pushing a nested flow with the given immutable start data.
// The pushed frame begins with empty scratch data.
func (rt *Runtime) Start(dialog, state string, start Data) {
	rt.op = pendingOp{kind: opStart, dialog: dialog, state: state, start: start}
}

// Done requests popping the current frame, returning control to the state
// that started it.
func (rt *Runtime) Done() { rt.op = pendingOp{kind: opDone} }

// Reset requests clearing the whole stack.
func (rt *Runtime) Reset() { rt.op = pendingOp{kind: opReset} }
