package checkout

// State is the progress of a single checkout attempt.
type State string

const (
	StateIdle            State = "idle"
	StateCartLoaded      State = "cart_loaded"
	StatePromoValidated  State = "promo_validated"
	StatePromoSkipped    State = "promo_skipped"
	StateTotalComputed   State = "total_computed"
	StateIntentRequested State = "intent_requested"
	StateIntentCreated   State = "intent_created"
	StateIntentFailed    State = "intent_failed"
)

var transitions = map[State][]State{
	StateIdle:            {StateCartLoaded},
	StateCartLoaded:      {StatePromoValidated, StatePromoSkipped},
	StatePromoValidated:  {StateTotalComputed},
	StatePromoSkipped:    {StateTotalComputed},
	StateTotalComputed:   {StateIntentRequested},
	StateIntentRequested: {StateIntentCreated, StateIntentFailed},
}

// CanTransition reports whether next may follow s.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}
