package dialog

import "context"

// Store persists per-user sessions. Implementations must return an empty
// session (not an error) for users without one, and must hand out isolated
// copies: mutations of a loaded session become visible only through Save.
//
// Sessions never expire on a timer; they are removed only by Delete, which
// the engine calls on Done-to-empty and ResetStack.
type Store interface {
	Load(ctx context.Context, userID int64) (*Session, error)
	Save(ctx context.Context, userID int64, sess *Session) error
	Delete(ctx context.Context, userID int64) error
}
