package format

import "fmt"

// State is a step of the per-call lifecycle.
type State uint8

// Call states. A call starts in Received and ends in Formatted.
const (
	Received State = iota
	Validating
	Rejected
	Validated
	Dispatching
	Succeeded
	ClientFailed
	TransportFailed
	Formatted
)

var stateNames = [...]string{
	Received:        "received",
	Validating:      "validating",
	Rejected:        "rejected",
	Validated:       "validated",
	Dispatching:     "dispatching",
	Succeeded:       "succeeded",
	ClientFailed:    "client_failed",
	TransportFailed: "transport_failed",
	Formatted:       "formatted",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", s)
}

// Dispatching may still end in Rejected: the client refuses a call whose
// project key cannot be resolved before it sends anything.
var transitions = map[State][]State{
	Received:        {Validating},
	Validating:      {Rejected, Validated},
	Validated:       {Dispatching},
	Dispatching:     {Succeeded, ClientFailed, TransportFailed, Rejected},
	Rejected:        {Formatted},
	Succeeded:       {Formatted},
	ClientFailed:    {Formatted},
	TransportFailed: {Formatted},
}

// call records the lifecycle of one invocation. Each state is entered at
// most once.
type call struct {
	trail []State
}

func newCall() *call {
	return &call{trail: []State{Received}}
}

func (c *call) current() State { return c.trail[len(c.trail)-1] }

func (c *call) to(next State) {
	from := c.current()
	for _, allowed := range transitions[from] {
		if allowed == next {
			c.trail = append(c.trail, next)
			return
		}
	}
	panic(fmt.Sprintf("format: illegal transition %s -> %s", from, next))
}
