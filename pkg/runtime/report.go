package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// OutcomeState is the terminal state of one action.
type OutcomeState string

const (
	StateOK   OutcomeState = "ok"
	StateFail OutcomeState = "fail"
)

// ActionOutcome is the uniform record produced per action.
type ActionOutcome struct {
	Key         string       `json:"key"`
	DisplayName string       `json:"display_name"`
	State       OutcomeState `json:"state"`
	Link        string       `json:"link,omitempty"`
}

// Status accumulates one ActionOutcome per visited action across a
// whole run. Safe for concurrent use; parallel stage fan-out records
// outcomes from multiple goroutines.
type Status struct {
	mu       sync.Mutex
	outcomes map[string]*ActionOutcome
}

// NewStatus creates an empty status report.
func NewStatus() *Status {
	return &Status{outcomes: make(map[string]*ActionOutcome)}
}

// Record merges one outcome under its key.
func (s *Status) Record(o *ActionOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[o.Key] = o
}

// Get returns the outcome recorded under key, or nil.
func (s *Status) Get(key string) *ActionOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcomes[key]
}

// Outcomes returns a copy of the outcome map.
func (s *Status) Outcomes() map[string]*ActionOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*ActionOutcome, len(s.outcomes))
	for k, v := range s.outcomes {
		out[k] = v
	}
	return out
}

// Keys returns the outcome keys in declaration order for stable
// display. Keys are compared on their parsed stage/action indices, not
// lexically, so stage-10 sorts after stage-2.
func (s *Status) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.outcomes))
	for k := range s.outcomes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		as, aa, aok := parseActionKey(keys[a])
		bs, ba, bok := parseActionKey(keys[b])
		if aok && bok {
			if as != bs {
				return as < bs
			}
			return aa < ba
		}
		return keys[a] < keys[b]
	})
	return keys
}

// parseActionKey recovers the stage/action indices from a key produced
// by actionKey.String.
func parseActionKey(key string) (stage, action int, ok bool) {
	if n, err := fmt.Sscanf(key, "stage-%d-action-%d", &stage, &action); err != nil || n != 2 {
		return 0, 0, false
	}
	return stage, action, true
}

// AllPassed combines every recorded state with logical AND.
func (s *Status) AllPassed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.outcomes {
		if o.State != StateOK {
			return false
		}
	}
	return true
}

// Summary counts outcomes by state.
func (s *Status) Summary() ActionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := ActionSummary{Total: len(s.outcomes)}
	for _, o := range s.outcomes {
		if o.State == StateOK {
			sum.Passed++
		} else {
			sum.Failed++
		}
	}
	return sum
}
