package axis

// Outcome is how a go-to request ended. Timeouts and supersession are
// normal outcomes, not errors.
type Outcome int

const (
	Arrived Outcome = iota
	TimedOut
	Superseded
	Canceled
)

func (o Outcome) String() string {
	switch o {
	case Arrived:
		return "arrived"
	case TimedOut:
		return "timed out"
	case Superseded:
		return "superseded"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}
