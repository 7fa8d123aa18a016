package outcome

type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
	Error   Outcome = "error"
)

// Inverse flips success and failure. Anything else inverts to success.
func Inverse(o Outcome) Outcome {
	switch o {
	case Success:
		return Failure
	case Failure:
		return Success
	}
	return Success
}

func (o Outcome) Valid() bool {
	switch o {
	case Success, Failure, Error:
		return true
	}
	return false
}

// Event is the normalized result of one delivery attempt. It always holds
// "outcome" and usually "price", plus whatever the response carried.
type Event map[string]any

func (e Event) Outcome() Outcome {
	o, _ := e["outcome"].(string)
	return Outcome(o)
}

func (e Event) Reason() string {
	r, _ := e["reason"].(string)
	return r
}

func serverError() Event {
	return Event{"outcome": string(Error), "reason": "Server error"}
}
