package gate

import "testing"

func TestStatusFor(t *testing.T) {
	m := NewMachine(3)

	tests := []struct {
		name            string
		authenticated   bool
		used            int
		wantState       State
		wantRequireAuth bool
	}{
		{
			name:          "authenticated ignores counter",
			authenticated: true,
			used:          99,
			wantState:     StateAuthenticated,
		},
		{
			name:      "fresh guest",
			used:      0,
			wantState: StateAnonymousUncapped,
		},
		{
			name:      "guest under limit",
			used:      2,
			wantState: StateAnonymousUncapped,
		},
		{
			name:            "guest at limit",
			used:            3,
			wantState:       StateAnonymousCapped,
			wantRequireAuth: true,
		},
		{
			name:            "guest over limit",
			used:            7,
			wantState:       StateAnonymousCapped,
			wantRequireAuth: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := m.StatusFor(tt.authenticated, tt.used)
			if status.State != tt.wantState {
				t.Errorf("State = %q, want %q", status.State, tt.wantState)
			}
			if status.RequireAuth != tt.wantRequireAuth {
				t.Errorf("RequireAuth = %v, want %v", status.RequireAuth, tt.wantRequireAuth)
			}
			if !tt.authenticated && status.Limit != 3 {
				t.Errorf("Limit = %d, want 3", status.Limit)
			}
		})
	}
}

func TestNewMachineDefaultsLimit(t *testing.T) {
	for _, limit := range []int{0, -5} {
		m := NewMachine(limit)
		if m.Limit() != 3 {
			t.Errorf("NewMachine(%d).Limit() = %d, want 3", limit, m.Limit())
		}
	}
}
