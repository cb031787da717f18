package gate

// State of the anonymous usage gate.
type State string

const (
	StateAnonymousUncapped State = "ANONYMOUS_UNCAPPED"
	StateAnonymousCapped   State = "ANONYMOUS_CAPPED"
	StateAuthenticated     State = "AUTHENTICATED"
)

// Status is the gate snapshot returned to the client after each question.
type Status struct {
	State       State `json:"state"`
	Used        int   `json:"used"`
	Limit       int   `json:"limit"`
	RequireAuth bool  `json:"require_auth"`
}

// Machine decides gate state from the question count. It holds no mutable
// state itself; the counter lives in a CounterStore.
type Machine struct {
	limit int
}

func NewMachine(limit int) *Machine {
	if limit <= 0 {
		limit = 3
	}
	return &Machine{limit: limit}
}

func (m *Machine) Limit() int {
	return m.limit
}

// StatusFor maps an identity and counter value onto the state machine.
// Authentication wins over any counter value: the counter is only
// meaningful while the caller is anonymous.
func (m *Machine) StatusFor(authenticated bool, used int) Status {
	if authenticated {
		return Status{State: StateAuthenticated, Used: 0, Limit: m.limit}
	}
	if used >= m.limit {
		return Status{
			State:       StateAnonymousCapped,
			Used:        used,
			Limit:       m.limit,
			RequireAuth: true,
		}
	}
	return Status{State: StateAnonymousUncapped, Used: used, Limit: m.limit}
}
