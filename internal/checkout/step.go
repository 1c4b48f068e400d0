package checkout

type Step string

const (
	StepClosed       Step = "CLOSED"
	StepDelivery     Step = "DELIVERY"
	StepPayment      Step = "PAYMENT"
	StepReview       Step = "REVIEW"
	StepConfirmation Step = "CONFIRMATION"
)

// String representation (for logging)
func (s Step) String() string {
	return string(s)
}

func (s Step) IsTerminal() bool {
	return s == StepConfirmation
}

var transitions = map[Step][]Step{
	StepClosed:       {StepDelivery},
	StepDelivery:     {StepPayment, StepClosed},
	StepPayment:      {StepReview, StepDelivery, StepClosed},
	StepReview:       {StepConfirmation, StepPayment, StepClosed},
	StepConfirmation: {StepClosed},
}

func CanTransitionTo(from, to Step) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// next returns the forward step, or "" from review and beyond; submission,
// not Next, reaches the confirmation.
func (s Step) next() Step {
	switch s {
	case StepDelivery:
		return StepPayment
	case StepPayment:
		return StepReview
	}
	return ""
}

// back returns the regress step. From the first step it exits to Closed.
func (s Step) back() Step {
	switch s {
	case StepDelivery:
		return StepClosed
	case StepPayment:
		return StepDelivery
	case StepReview:
		return StepPayment
	}
	return ""
}
