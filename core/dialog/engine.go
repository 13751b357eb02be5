package dialog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/pxc1984/musicclubbot/core/logger"
)

// Engine drives dialog sessions: it resolves the active frame, dispatches
// events to the state's handlers, applies the requested transition, and
// produces the render for the new state.
//
// Events for one user are processed strictly sequentially; different users
// proceed independently. A session mutation is persisted only after the
// handler and the transition both succeed, so a concurrent reader never
// observes a partial write.
type Engine struct {
	store   Store
	dialogs map[string]*Definition

	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

// NewEngine builds an engine over the given session store and registers the
// definitions. Duplicate names are a wiring defect.
func NewEngine(store Store, defs ...*Definition) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("dialog: nil store provided")
	}
	e := &Engine{
		store:   store,
		dialogs: make(map[string]*Definition, len(defs)),
		users:   make(map[int64]*sync.Mutex),
	}
	for _, d := range defs {
		if d == nil {
			continue
		}
		if _, dup := e.dialogs[d.Name()]; dup {
			return nil, fmt.Errorf("dialog: duplicate definition %q", d.Name())
		}
		e.dialogs[d.Name()] = d
	}
	return e, nil
}

func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.users[userID] = lock
	}
	return lock
}

// Active reports whether the user currently has a frame on the stack.
func (e *Engine) Active(ctx context.Context, userID int64) (bool, error) {
	sess, err := e.store.Load(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("dialog: load session: %w", err)
	}
	return sess.Depth() > 0, nil
}

// HandleEvent dispatches one inbound event for the user and returns the
// resulting render. It fails with ErrNoActiveSession when the stack is
// empty; the caller should then fall back to its top-level entry point.
func (e *Engine) HandleEvent(ctx context.Context, userID int64, ev Event) (*Render, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	sess, err := e.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dialog: load session: %w", err)
	}
	frame := sess.Top()
	if frame == nil {
		return nil, ErrNoActiveSession
	}

	def, st, err := e.resolve(frame)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{ctx: ctx, userID: userID, frame: frame}
	switch ev.Kind {
	case EventText:
		if st.OnText == nil {
			// State accepts no text; keep it rendered as is.
			return e.renderAndSave(ctx, userID, sess, rt.notice)
		}
		err = st.OnText(rt, ev.Text)
	case EventButton:
		handler, ok := st.button(ev.Action)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s has no action %q", ErrUnknownAction, def.Name(), st.Name, ev.Action)
		}
		err = handler(rt, ev.Payload)
	default:
		return nil, fmt.Errorf("dialog: unsupported event kind %d", ev.Kind)
	}

	if err != nil {
		if notice, ok := IsRejection(err); ok {
			// Nothing is saved: reload the untouched session and re-render
			// the same state so the user can retry.
			logger.Debug(ctx, "dialog", "input.rejected",
				slog.Int64("user_id", userID),
				slog.String("state", def.Name()+"."+st.Name),
			)
			fresh, loadErr := e.store.Load(ctx, userID)
			if loadErr != nil {
				return nil, fmt.Errorf("dialog: reload session: %w", loadErr)
			}
			render, renderErr := e.render(ctx, userID, fresh)
			if renderErr != nil {
				return nil, renderErr
			}
			render.Notice = notice
			return render, nil
		}
		return nil, err
	}

	if err := e.apply(sess, rt.op); err != nil {
		return nil, err
	}

	render, err := e.renderAndSave(ctx, userID, sess, rt.notice)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "dialog", "event.handled",
		slog.Int64("user_id", userID),
		slog.String("state", stateLabel(sess)),
		slog.Int("depth", sess.Depth()),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	)
	return render, nil
}

// Start pushes a new frame for the named dialog and state with empty scratch
// data and the given immutable start data, then renders it.
func (e *Engine) Start(ctx context.Context, userID int64, dialog, state string, start Data) (*Render, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dialog: load session: %w", err)
	}
	if err := e.apply(sess, pendingOp{kind: opStart, dialog: dialog, state: state, start: start}); err != nil {
		return nil, err
	}
	return e.renderAndSave(ctx, userID, sess, "")
}

// SwitchTo replaces the current frame's state in place, keeping scratch and
// start data.
func (e *Engine) SwitchTo(ctx context.Context, userID int64, state string) (*Render, error) {
	return e.applyOp(ctx, userID, pendingOp{kind: opSwitch, state: state})
}

// Next advances the current frame to the next declared state.
func (e *Engine) Next(ctx context.Context, userID int64) (*Render, error) {
	return e.applyOp(ctx, userID, pendingOp{kind: opNext})
}

// Done pops the current frame. When the stack becomes empty the session is
// closed and the caller should present its top-level entry point.
func (e *Engine) Done(ctx context.Context, userID int64) (*Render, error) {
	return e.applyOp(ctx, userID, pendingOp{kind: opDone})
}

// Cancel is Done under another name: flows use it for explicit user
// abandonment, the semantics are identical.
func (e *Engine) Cancel(ctx context.Context, userID int64) (*Render, error) {
	return e.applyOp(ctx, userID, pendingOp{kind: opDone})
}

// ResetStack unconditionally clears the user's stack, discarding all frames
// and their scratch data. Used when re-entering from a fresh top-level
// command.
func (e *Engine) ResetStack(ctx context.Context, userID int64) error {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := e.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("dialog: reset session: %w", err)
	}
	logger.Debug(ctx, "dialog", "session.reset", slog.Int64("user_id", userID))
	return nil
}

// Render recomputes the view for the user's current state without
// dispatching any event or mutating the session.
func (e *Engine) Render(ctx context.Context, userID int64) (*Render, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dialog: load session: %w", err)
	}
	if sess.Top() == nil {
		return nil, ErrNoActiveSession
	}
	return e.render(ctx, userID, sess)
}

func (e *Engine) applyOp(ctx context.Context, userID int64, op pendingOp) (*Render, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dialog: load session: %w", err)
	}
	if sess.Top() == nil {
		return nil, ErrNoActiveSession
	}
	if err := e.apply(sess, op); err != nil {
		return nil, err
	}
	return e.renderAndSave(ctx, userID, sess, "")
}

func (e *Engine) resolve(frame *Frame) (*Definition, *State, error) {
	def, ok := e.dialogs[frame.Dialog]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDialog, frame.Dialog)
	}
	st, ok := def.State(frame.State)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownState, frame.Dialog, frame.State)
	}
	return def, st, nil
}

func (e *Engine) apply(sess *Session, op pendingOp) error {
	switch op.kind {
	case opNone:
		return nil
	case opNext:
		frame := sess.Top()
		if frame == nil {
			return ErrNoActiveSession
		}
		def, ok := e.dialogs[frame.Dialog]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownDialog, frame.Dialog)
		}
		next, err := def.Next(frame.State)
		if err != nil {
			return err
		}
		frame.State = next
		return nil
	case opSwitch:
		frame := sess.Top()
		if frame == nil {
			return ErrNoActiveSession
		}
		def, ok := e.dialogs[frame.Dialog]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownDialog, frame.Dialog)
		}
		if _, ok := def.State(op.state); !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownState, frame.Dialog, op.state)
		}
		frame.State = op.state
		return nil
	case opStart:
		def, ok := e.dialogs[op.dialog]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownDialog, op.dialog)
		}
		state := op.state
		if state == "" {
			state = def.First()
		}
		if _, ok := def.State(state); !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownState, op.dialog, state)
		}
		sess.push(Frame{
			Dialog: op.dialog,
			State:  state,
			Data:   make(Data),
			Start:  op.start.Clone(),
		})
		return nil
	case opDone:
		sess.pop()
		return nil
	case opReset:
		sess.Frames = sess.Frames[:0]
		return nil
	}
	return fmt.Errorf("dialog: unsupported transition %d", op.kind)
}

// renderAndSave persists the mutated session and renders the (possibly new)
// top state. An empty stack is saved as a deletion and reported as Closed.
func (e *Engine) renderAndSave(ctx context.Context, userID int64, sess *Session, notice string) (*Render, error) {
	if sess.Depth() == 0 {
		if err := e.store.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("dialog: close session: %w", err)
		}
		return &Render{Closed: true, Notice: notice}, nil
	}
	render, err := e.render(ctx, userID, sess)
	if err != nil {
		return nil, err
	}
	if err := e.store.Save(ctx, userID, sess); err != nil {
		return nil, fmt.Errorf("dialog: save session: %w", err)
	}
	render.Notice = notice
	return render, nil
}

// render runs the getter of the top state. Getters are pure with respect to
// scratch data; a getter error aborts the whole event so nothing is saved.
func (e *Engine) render(ctx context.Context, userID int64, sess *Session) (*Render, error) {
	frame := sess.Top()
	if frame == nil {
		return &Render{Closed: true}, nil
	}
	def, st, err := e.resolve(frame)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{ctx: ctx, userID: userID, frame: frame}
	if st.Getter == nil {
		return &Render{View: &View{}}, nil
	}
	view, err := st.Getter(rt)
	if err != nil {
		return nil, fmt.Errorf("dialog: getter for %s.%s: %w", def.Name(), st.Name, err)
	}
	return &Render{View: &view}, nil
}

func stateLabel(sess *Session) string {
	if frame := sess.Top(); frame != nil {
		return frame.Dialog + "." + frame.State
	}
	return "closed"
}
