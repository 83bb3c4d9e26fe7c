package poller

// State — состояние опрашивающей задачи.
// Created → Subscribed → {Idle ⇄ Polling ⇄ Dispatching} → Cancelled.
type State int32

const (
	StateCreated State = iota
	StateSubscribed
	StateIdle
	StatePolling
	StateDispatching
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSubscribed:
		return "subscribed"
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateDispatching:
		return "dispatching"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
