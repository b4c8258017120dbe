package wobbly

// EventType identifies a group lifecycle transition.
type EventType uint8

const (
	// EventGroupFounded fires when the first handle of a new group is built.
	EventGroupFounded EventType = iota

	// EventHandleJoined fires when a handle is cloned into an existing group.
	EventHandleJoined

	// EventPinReleased fires after the group's pinned strong reference has
	// been dropped. At most one per group.
	EventPinReleased

	// EventHandleDropped fires when a member handle is destroyed.
	EventHandleDropped

	// EventGroupReclaimed fires when the last member leaves and the group
	// record is torn down. Exactly one per group.
	EventGroupReclaimed
)

func (t EventType) String() string {
	switch t {
	case EventGroupFounded:
		return "group_founded"
	case EventHandleJoined:
		return "handle_joined"
	case EventPinReleased:
		return "pin_released"
	case EventHandleDropped:
		return "handle_dropped"
	case EventGroupReclaimed:
		return "group_reclaimed"
	default:
		return "unknown"
	}
}

// Variant names used in events, one per variant package.
const (
	VariantRC  = "rc"
	VariantARC = "arc"
)

// Event describes one group lifecycle transition.
type Event struct {
	Variant string    // VariantRC or VariantARC
	Type    EventType // the transition
	Group   uint64    // process-unique group id
	Members int       // membership after the transition
}

// Observer receives group lifecycle events.
//
// Callbacks run synchronously on the goroutine performing the operation, after
// the bookkeeping for the transition they describe has completed. They must
// not call back into handles of the group named by the event.
type Observer interface {
	OnGroupEvent(Event)
}

// Dropper is optionally implemented by payload values that need cleanup.
// Both variants call Drop when the last strong reference to the payload is
// gone and no explicit drop function was given at construction.
type Dropper interface {
	Drop()
}
