package pipeline

// Event describes one external occurrence that may start a run.
// Immutable; created once per event.
type Event struct {
	Kind   string            // push, pull_request, ...
	Branch string            // Target branch, may be empty
	Meta   map[string]string // Arbitrary metadata, opaque to the orchestrator
}

// ShouldRun reports whether the event is admitted by any trigger.
// A trigger without a branch filter matches the event regardless of
// branch; a trigger with a filter matches only the named branches.
// Pure function: an event matching nothing simply yields false.
func ShouldRun(ev Event, triggers []Trigger) bool {
	for _, t := range triggers {
		if t.Kind != ev.Kind {
			continue
		}
		if len(t.Branches) == 0 {
			return true
		}
		for _, b := range t.Branches {
			if b == ev.Branch {
				return true
			}
		}
	}
	return false
}

// Match reports whether the event is admitted by this pipeline's triggers.
func (p *Pipeline) Match(ev Event) bool {
	return ShouldRun(ev, p.Triggers)
}
