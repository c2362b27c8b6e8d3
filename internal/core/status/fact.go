package status

// Unknown is the sentinel value every snapshot field holds until the
// corresponding pattern has been observed at least once.
const Unknown = "unknown"

// Call status values as forwarded to the hub.
const (
	CallInCall    = "In a call"
	CallNotInCall = "Not in a call"
)

// FactKind identifies which snapshot field a fact updates.
type FactKind int

const (
	FactAvailability FactKind = iota
	FactNotificationCount
	FactCallState
)

// Fact is a single status observation extracted from one log line.
type Fact struct {
	Kind  FactKind
	Value string
}

func (k FactKind) String() string {
	switch k {
	case FactAvailability:
		return "availability"
	case FactNotificationCount:
		return "notification_count"
	case FactCallState:
		return "call_state"
	default:
		return "unknown"
	}
}
