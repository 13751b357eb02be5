package dialog

// Frame is one active instance of a dialog flow on the session stack.
// Data is the frame's mutable scratch store, discarded when the frame is
// popped. Start carries the immutable values the parent passed when it
// started this flow.
type Frame struct {
	Dialog string `json:"dialog"`
	State  string `json:"state"`
	Data   Data   `json:"data"`
	Start  Data   `json:"start,omitempty"`
}

// Session holds the per-user frame stack. The last element is the active
// frame. An empty stack means the user is outside any flow.
type Session struct {
	Frames []Frame `json:"frames"`
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Top returns the active frame, or nil when the stack is empty.
func (s *Session) Top() *Frame {
	if s == nil || len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}

// Depth reports the number of frames on the stack.
func (s *Session) Depth() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

func (s *Session) push(f Frame) {
	s.Frames = append(s.Frames, f)
}

// pop removes the active frame. Popping an empty stack is a no-op so the
// stack depth can never go negative.
func (s *Session) pop() {
	if len(s.Frames) == 0 {
		return
	}
	s.Frames = s.Frames[:len(s.Frames)-1]
}

// Clone returns a deep copy of the session so in-memory stores can hand out
// isolated snapshots.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{Frames: make([]Frame, len(s.Frames))}
	for i, f := range s.Frames {
		out.Frames[i] = Frame{
			Dialog: f.Dialog,
			State:  f.State,
			Data:   f.Data.Clone(),
			Start:  f.Start.Clone(),
		}
	}
	return out
}
