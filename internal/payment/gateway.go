// Package payment fabricates the payment gateway round trip: staged delays,
// a randomized outcome, and per-method decline messages. A real gateway never
// appears anywhere in this codebase.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

type Method string

const (
	MethodCard  Method = "card"
	MethodMpesa Method = "mpesa"
)

func (m Method) Valid() bool {
	return m == MethodCard || m == MethodMpesa
}

type ChargeRequest struct {
	SessionID string
	Method    Method
	Amount    float64

	// Progress receives each human-readable stage as it starts. Optional.
	Progress func(stage string)
}

type ChargeResult struct {
	OrderID string
	Amount  float64
}

// DeclineError is the recoverable simulated failure. The user may retry
// without limit; the message is what the checkout surfaces inline.
type DeclineError struct {
	Method Method
}

func (e *DeclineError) Error() string {
	switch e.Method {
	case MethodCard:
		return "Payment declined. Please check your card details and try again."
	case MethodMpesa:
		return "M-Pesa payment failed. Please confirm the prompt on your phone and try again."
	default:
		return "Payment failed. Please try again."
	}
}

// Gateway is the contract the checkout wizard submits orders through.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// OutcomeSource decides whether a charge goes through. Injectable so tests
// can force deterministic outcomes instead of sampling.
type OutcomeSource interface {
	Approve() bool
}

// RandomOutcome approves with probability 1 - FailureRate.
type RandomOutcome struct {
	FailureRate float64
}

func (r RandomOutcome) Approve() bool {
	return rand.Float64() >= r.FailureRate
}

// Stage messages shown while the simulation "processes" the payment.
var stages = []string{
	"Validating payment information...",
	"Processing payment...",
	"Confirming order...",
	"Finalizing...",
}

type Simulator struct {
	outcome OutcomeSource
	delays  []time.Duration
	log     *slog.Logger
}

// NewSimulator builds the gateway simulation. delays holds one hold time per
// stage; missing entries mean the stage passes immediately.
func NewSimulator(outcome OutcomeSource, delays []time.Duration, log *slog.Logger) *Simulator {
	return &Simulator{
		outcome: outcome,
		delays:  delays,
		log:     log,
	}
}

// Charge walks the progress stages, then draws one outcome sample. Single
// attempt; retries are the caller's business.
func (s *Simulator) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	for i, stage := range stages {
		if req.Progress != nil {
			req.Progress(stage)
		}
		if err := s.hold(ctx, i); err != nil {
			return nil, err
		}
	}

	if !s.outcome.Approve() {
		s.log.Info("simulated charge declined", "session_id", req.SessionID, "method", req.Method)
		return nil, &DeclineError{Method: req.Method}
	}

	res := &ChargeResult{
		OrderID: newOrderID(),
		Amount:  req.Amount,
	}
	s.log.Info("simulated charge approved", "session_id", req.SessionID, "order_id", res.OrderID, "amount", req.Amount)
	return res, nil
}

func (s *Simulator) hold(ctx context.Context, stage int) error {
	if stage >= len(s.delays) || s.delays[stage] <= 0 {
		return nil
	}

	t := time.NewTimer(s.delays[stage])
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newOrderID() string {
	return fmt.Sprintf("ORD-%06d", rand.Intn(1000000))
}
