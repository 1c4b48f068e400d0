package checkout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/apexfit/storefront/internal/cart"
	"github.com/apexfit/storefront/internal/payment"
	"github.com/apexfit/storefront/internal/schedule"
)

// Order is the ephemeral result of a successful submission. It lives until
// the confirmation closes and is never persisted.
type Order struct {
	OrderID     string    `json:"order_id"`
	Summary     Summary   `json:"summary"`
	CompletedAt time.Time `json:"completed_at"`
}

// Wizard drives the linear checkout flow: Delivery → Payment → Review →
// Confirmation, with an implicit Closed state. It exclusively owns the Form.
type Wizard struct {
	mu   sync.Mutex
	step Step
	form Form

	cartStore *cart.Store
	gateway   payment.Gateway
	sched     *schedule.Scheduler
	log       *slog.Logger

	deliveryFee  float64
	confirmClose time.Duration

	sessionID   string
	loading     bool
	errMsg      string
	stageMsg    string
	order       *Order
	confirmTask *schedule.Task
}

func NewWizard(sessionID string, cartStore *cart.Store, gateway payment.Gateway, sched *schedule.Scheduler, log *slog.Logger, deliveryFee float64, confirmClose time.Duration) *Wizard {
	return &Wizard{
		step:         StepClosed,
		cartStore:    cartStore,
		gateway:      gateway,
		sched:        sched,
		log:          log,
		deliveryFee:  deliveryFee,
		confirmClose: confirmClose,
		sessionID:    sessionID,
	}
}

// Open starts a fresh checkout at the delivery step. Opening over an empty
// cart is deliberately not blocked here; that gate belongs to the caller.
func (w *Wizard) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepClosed {
		return ErrIllegalTransition
	}
	w.resetLocked()
	w.step = StepDelivery
	return nil
}

// Next validates the current step's fields and advances. Validation errors
// keep the wizard where it is.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := w.step.next()
	if next == "" || !CanTransitionTo(w.step, next) {
		return ErrIllegalTransition
	}
	if err := w.form.ValidateStep(w.step); err != nil {
		return err
	}
	w.step = next
	return nil
}

// Back regresses one step. From the delivery step it exits the checkout.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	back := w.step.back()
	if back == "" || !CanTransitionTo(w.step, back) {
		return ErrIllegalTransition
	}
	if back == StepClosed {
		w.closeLocked()
		return nil
	}
	w.step = back
	return nil
}

// Close exits from any state, discarding the form. Ignored while a
// submission is in flight, matching the escape-key rule.
func (w *Wizard) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepClosed {
		return nil
	}
	if w.loading {
		return ErrSubmissionInFlight
	}
	w.closeLocked()
	return nil
}

func (w *Wizard) closeLocked() {
	if w.confirmTask != nil {
		w.confirmTask.Cancel()
		w.confirmTask = nil
	}
	w.resetLocked()
	w.step = StepClosed
}

func (w *Wizard) resetLocked() {
	w.form = Form{}
	w.errMsg = ""
	w.stageMsg = ""
	w.order = nil
	w.loading = false
}

// SetForm replaces the accumulated form while the checkout is open.
func (w *Wizard) SetForm(f Form) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepClosed {
		return ErrCheckoutNotOpen
	}
	if w.loading {
		return ErrSubmissionInFlight
	}
	w.form = f
	return nil
}

// Submit runs the simulated payment from the review step. On success the
// cart is cleared, the wizard lands on the confirmation and schedules its
// auto-close. On failure the wizard stays on review with the error message
// set and the form intact; the user may resubmit.
func (w *Wizard) Submit(ctx context.Context) (*Order, error) {
	w.mu.Lock()
	if w.step != StepReview {
		w.mu.Unlock()
		return nil, ErrIllegalTransition
	}
	if w.loading {
		w.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if len(w.cartStore.Lines()) == 0 {
		w.mu.Unlock()
		return nil, ErrEmptyCart
	}

	summary := Summarize(w.cartStore.Total(), w.form.DeliveryMethod, w.deliveryFee)
	req := payment.ChargeRequest{
		SessionID: w.sessionID,
		Method:    w.form.PaymentMethod,
		Amount:    summary.Total,
		Progress:  w.setStage,
	}
	w.loading = true
	w.errMsg = ""
	w.mu.Unlock()

	// The charge runs outside the lock: reads (step, summary, stage) stay
	// responsive while the simulation sleeps.
	res, err := w.gateway.Charge(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	w.stageMsg = ""

	if err != nil {
		w.errMsg = err.Error()
		w.log.Info("order submission failed", "session_id", w.sessionID, "error", err)
		return nil, err
	}

	if !CanTransitionTo(w.step, StepConfirmation) {
		// Closed out from under us while charging; drop the result.
		return nil, ErrIllegalTransition
	}

	if clearErr := w.cartStore.Clear(ctx); clearErr != nil {
		w.log.Error("failed to clear cart after order", "session_id", w.sessionID, "error", clearErr)
	}

	order := &Order{
		OrderID:     res.OrderID,
		Summary:     summary,
		CompletedAt: time.Now(),
	}
	w.order = order
	w.step = StepConfirmation
	w.log.Info("order completed", "session_id", w.sessionID, "order_id", order.OrderID, "total", summary.Total)

	w.confirmTask = w.sched.After(w.confirmClose, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.confirmTask = nil
		if w.step == StepConfirmation {
			w.closeLocked()
		}
	})

	return order, nil
}

func (w *Wizard) setStage(stage string) {
	w.mu.Lock()
	w.stageMsg = stage
	w.mu.Unlock()
}

// State is a point-in-time view for the presentation layer.
type State struct {
	Step    Step    `json:"step"`
	Form    Form    `json:"form"`
	Summary Summary `json:"summary"`
	Loading bool    `json:"loading"`
	Stage   string  `json:"stage,omitempty"`
	Error   string  `json:"error,omitempty"`
	Order   *Order  `json:"order,omitempty"`
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return State{
		Step:    w.step,
		Form:    w.form,
		Summary: Summarize(w.cartStore.Total(), w.form.DeliveryMethod, w.deliveryFee),
		Loading: w.loading,
		Stage:   w.stageMsg,
		Error:   w.errMsg,
		Order:   w.order,
	}
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Teardown cancels the pending confirmation task.
func (w *Wizard) Teardown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.confirmTask != nil {
		w.confirmTask.Cancel()
		w.confirmTask = nil
	}
}
