package status

import (
	"regexp"
)

// Extractor turns raw log lines into status facts by testing three
// independent patterns per line.
type Extractor struct {
	availabilityPattern *regexp.Regexp
	callStartPattern    *regexp.Regexp
	callEndPattern      *regexp.Regexp
}

// NewExtractor creates an Extractor with the patterns emitted by the Teams
// client logs.
func NewExtractor() *Extractor {
	return &Extractor{
		// Availability and unread count always appear together on one line.
		availabilityPattern: regexp.MustCompile(`availability: (\w+), unread notification count: (\d+)`),
		// A call window becoming visible marks the start of a call.
		callStartPattern: regexp.MustCompile(`WebViewWindowWin:.*tags=Call.*Window previously was visible = false`),
		// A device-watcher restart is used as a proxy for call teardown.
		// There is no direct "call ended" marker in the logs; this is a
		// known approximation and may fire outside of calls.
		callEndPattern: regexp.MustCompile(`BluetoothRadioManager: Device watcher is Started\.`),
	}
}

// Extract returns the facts a single line yields, in pattern order. A
// non-matching line yields none; the availability pattern yields two.
func (e *Extractor) Extract(line string) []Fact {
	var facts []Fact

	if m := e.availabilityPattern.FindStringSubmatch(line); m != nil {
		facts = append(facts,
			Fact{Kind: FactAvailability, Value: m[1]},
			Fact{Kind: FactNotificationCount, Value: m[2]},
		)
	}
	if e.callStartPattern.MatchString(line) {
		facts = append(facts, Fact{Kind: FactCallState, Value: CallInCall})
	} else if e.callEndPattern.MatchString(line) {
		facts = append(facts, Fact{Kind: FactCallState, Value: CallNotInCall})
	}

	return facts
}

// ExtractAll scans every line in order and returns all facts found. Used for
// full-file passes where the last fact of each kind wins.
func (e *Extractor) ExtractAll(lines []string) []Fact {
	var facts []Fact
	for _, line := range lines {
		facts = append(facts, e.Extract(line)...)
	}
	return facts
}

// ExtractLatest scans lines most-recent-first and returns the facts of the
// first line that yields any. Used for incremental tailing, where only the
// newest event in a batch matters.
func (e *Extractor) ExtractLatest(lines []string) []Fact {
	for i := len(lines) - 1; i >= 0; i-- {
		if facts := e.Extract(lines[i]); len(facts) > 0 {
			return facts
		}
	}
	return nil
}
