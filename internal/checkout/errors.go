package checkout

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition  = errors.New("illegal transition of checkout step")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrCheckoutNotOpen    = errors.New("checkout is not open")
)
