package attempt

import "errors"

var (
	ErrAlreadySubmitted   = errors.New("quiz already submitted")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrLocked             = errors.New("answers are locked")
	ErrClosed             = errors.New("attempt closed")
	ErrNotMultiSelect     = errors.New("question does not allow multiple selections")
	ErrMultiSelect        = errors.New("question allows multiple selections; toggle options instead")
	ErrUnknownOption      = errors.New("option not offered by question")
)

// Phase is the submission state of an attempt. Exactly one submission may be in
// flight and at most one may succeed.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInFlight
	PhaseCommitted
)

func (p Phase) String() string {
	switch p {
	case PhaseInFlight:
		return "submitting"
	case PhaseCommitted:
		return "submitted"
	default:
		return "in progress"
	}
}

type Event int

const (
	EventBegin Event = iota
	EventSucceed
	EventFail
)

// Next returns the phase reached from p on ev. ok is false when ev is not
// permitted in p, in which case p is returned unchanged.
func Next(p Phase, ev Event) (Phase, bool) {
	switch {
	case p == PhaseIdle && ev == EventBegin:
		return PhaseInFlight, true
	case p == PhaseInFlight && ev == EventSucceed:
		return PhaseCommitted, true
	case p == PhaseInFlight && ev == EventFail:
		return PhaseIdle, true
	default:
		return p, false
	}
}

// rejection explains why a submit request was turned away in phase p.
func rejection(p Phase) error {
	if p == PhaseCommitted {
		return ErrAlreadySubmitted
	}
	return ErrSubmissionInFlight
}
