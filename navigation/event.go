package navigation

import "fmt"

// EventKind names a user action.
type EventKind string

const (
	EventSearch EventKind = "search"
	EventClick  EventKind = "click"
	EventHover  EventKind = "hover"
	EventBack   EventKind = "back"
	EventJump   EventKind = "jump"
	EventReset  EventKind = "reset"
)

// Event is a user action as delivered by a presentation layer. Text is used
// by search, Index by click, hover and jump.
type Event struct {
	Kind  EventKind `json:"kind"`
	Text  string    `json:"text,omitempty"`
	Index int       `json:"index,omitempty"`
}

// Apply performs exactly one transition for ev.
func (n *Navigator) Apply(ev Event) error {
	switch ev.Kind {
	case EventSearch:
		n.Search(ev.Text)
	case EventClick:
		_, err := n.Click(ev.Index)
		return err
	case EventHover:
		n.Hover(ev.Index)
	case EventBack:
		n.Back()
	case EventJump:
		return n.Jump(ev.Index)
	case EventReset:
		n.Reset()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	return nil
}
