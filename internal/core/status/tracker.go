package status

// Snapshot is the aggregate of all last-known status fields. It is the unit
// of change detection and the unit forwarded to the hub.
type Snapshot struct {
	Availability      string
	NotificationCount string
	CallStatus        string
}

// NewSnapshot returns a snapshot with every field at the sentinel value.
func NewSnapshot() Snapshot {
	return Snapshot{
		Availability:      Unknown,
		NotificationCount: Unknown,
		CallStatus:        Unknown,
	}
}

func (s Snapshot) apply(f Fact) Snapshot {
	switch f.Kind {
	case FactAvailability:
		s.Availability = f.Value
	case FactNotificationCount:
		s.NotificationCount = f.Value
	case FactCallState:
		s.CallStatus = f.Value
	}
	return s
}

// Tracker holds the current snapshot and applies extracted facts to it.
// It has a single writer (the watch loop) and is not safe for concurrent use.
type Tracker struct {
	current Snapshot
}

// NewTracker creates a tracker at the sentinel baseline.
func NewTracker() *Tracker {
	return &Tracker{current: NewSnapshot()}
}

// Current returns the last-known snapshot.
func (t *Tracker) Current() Snapshot {
	return t.current
}

// Apply applies facts from one incremental pass in order and reports whether
// any field changed relative to the snapshot before the pass. Applying the
// same facts twice in a row reports no change the second time.
func (t *Tracker) Apply(facts []Fact) (Snapshot, bool) {
	next := t.current
	for _, f := range facts {
		next = next.apply(f)
	}
	changed := next != t.current
	t.current = next
	return next, changed
}

// ApplyFullScan rebuilds the snapshot from the facts of a whole-file scan.
// The result reflects only the file: fields with no match in the file keep
// the sentinel, except call status which defaults to "Not in a call". The
// change decision compares against the snapshot before the scan, so startup
// against the sentinel baseline always reports a change.
func (t *Tracker) ApplyFullScan(facts []Fact) (Snapshot, bool) {
	next := NewSnapshot()
	next.CallStatus = CallNotInCall
	for _, f := range facts {
		next = next.apply(f)
	}
	changed := next != t.current
	t.current = next
	return next, changed
}
