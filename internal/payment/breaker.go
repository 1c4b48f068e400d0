package payment

import (
	"context"
	"errors"

	"github.com/sony/gobreaker/v2"
)

// ErrGatewayUnavailable is surfaced while the breaker is open. Retryable,
// like a decline.
var ErrGatewayUnavailable = errors.New("Payment service is temporarily unavailable. Please try again shortly.")

// BreakerGateway trips after a run of consecutive failures so a (simulated)
// gateway outage stops burning submissions.
type BreakerGateway struct {
	inner Gateway
	cb    *gobreaker.CircuitBreaker[*ChargeResult]
}

func NewBreakerGateway(inner Gateway, settings gobreaker.Settings) *BreakerGateway {
	return &BreakerGateway{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[*ChargeResult](settings),
	}
}

func (b *BreakerGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	res, err := b.cb.Execute(func() (*ChargeResult, error) {
		return b.inner.Charge(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrGatewayUnavailable
	}
	return res, err
}
