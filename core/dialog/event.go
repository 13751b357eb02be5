package dialog

// EventKind discriminates the two inputs a state can receive.
type EventKind int

const (
	// EventText is a plain text message typed by the user.
	EventText EventKind = iota
	// EventButton is a press of an inline keyboard button.
	EventButton
)

// Event is one inbound user interaction, already stripped of transport
// detail.
type Event struct {
	Kind    EventKind
	Text    string
	Action  string
	Payload string
}

// TextEvent builds a text event.
func TextEvent(text string) Event {
	return Event{Kind: EventText, Text: text}
}

// ButtonEvent builds a button-press event.
func ButtonEvent(action, payload string) Event {
	return Event{Kind: EventButton, Action: action, Payload: payload}
}

// ViewButton is a rendered inline button. Action/Payload buttons round-trip
// through the callback channel; URL buttons open a link and produce no event.
type ViewButton struct {
	Label   string
	Action  string
	Payload string
	URL     string
}

// View is the render view-model a getter produces: message text plus inline
// keyboard rows.
type View struct {
	Text string
	Rows [][]ViewButton
}

// AddRow appends one keyboard row.
func (v *View) AddRow(buttons ...ViewButton) {
	v.Rows = append(v.Rows, buttons)
}

// Render is the engine's answer to one event: what to show and a transient
// notice (callback toast). Closed reports that the stack became empty and
// the transport should fall back to its top-level entry point.
type Render struct {
	View   *View
	Notice string
	Closed bool
}
