package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexfit/storefront/internal/cart"
	"github.com/apexfit/storefront/internal/catalog"
	"github.com/apexfit/storefront/internal/payment"
	"github.com/apexfit/storefront/internal/schedule"
	"github.com/apexfit/storefront/pkg/logger"
)

var testLog = logger.New(logger.Options{Service: "checkout-test", Env: "test", Level: "error"})

type mockGateway struct {
	mu    sync.Mutex
	res   *payment.ChargeResult
	err   error
	block chan struct{}
	calls int
}

func (m *mockGateway) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	m.mu.Lock()
	m.calls++
	block := m.block
	res, err := m.res, m.err
	m.mu.Unlock()

	if req.Progress != nil {
		req.Progress("Processing payment...")
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return res, err
}

func (m *mockGateway) set(res *payment.ChargeResult, err error) {
	m.mu.Lock()
	m.res, m.err = res, err
	m.mu.Unlock()
}

type fixture struct {
	wizard  *Wizard
	cart    *cart.Store
	gateway *mockGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sched := schedule.NewScheduler()
	t.Cleanup(sched.StopAll)

	store := cart.NewStore(context.Background(), "sess-1", cart.NewMemoryRepository(), sched, testLog, time.Minute)
	gw := &mockGateway{res: &payment.ChargeResult{OrderID: "ORD-123456", Amount: 65.98}}

	w := NewWizard("sess-1", store, gw, sched, testLog, 5.99, 25*time.Millisecond)
	return &fixture{wizard: w, cart: store, gateway: gw}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	p := catalog.Product{ID: 1, Name: "Whey Protein Isolate", Price: 59.99}
	require.NoError(t, f.cart.Add(context.Background(), p, 1, "default"))
	f.cart.SetDrawerOpen(false)
}

func validForm() Form {
	return Form{
		Name:           "Jordan Kamau",
		Email:          "jordan@example.com",
		Phone:          "+254700000000",
		DeliveryMethod: DeliveryMethodDelivery,
		Address:        "12 Riverside Dr",
		City:           "Nairobi",
		Zip:            "00100",
		PaymentMethod:  payment.MethodCard,
		CardNumber:     "4111111111111111",
		CardName:       "Jordan Kamau",
		CardExpiry:     "12/27",
		CardCVV:        "123",
	}
}

func (f *fixture) openAtReview(t *testing.T) {
	t.Helper()
	require.NoError(t, f.wizard.Open())
	require.NoError(t, f.wizard.SetForm(validForm()))
	require.NoError(t, f.wizard.Next())
	require.NoError(t, f.wizard.Next())
	require.Equal(t, StepReview, f.wizard.Step())
}

func TestOpen_StartsAtDelivery(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.wizard.Open())
	assert.Equal(t, StepDelivery, f.wizard.Step())
}

func TestOpen_Twice(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.wizard.Open())
	assert.ErrorIs(t, f.wizard.Open(), ErrIllegalTransition)
}

func TestNext_BlockedByMissingFields(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.wizard.Open())

	err := f.wizard.Next()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, StepDelivery, f.wizard.Step(), "wizard advanced past invalid step")

	fields := make(map[string]bool)
	for _, fe := range verrs {
		fields[fe.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["delivery_method"])
}

func TestNext_AdvancesThroughSteps(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.wizard.Open())
	require.NoError(t, f.wizard.SetForm(validForm()))

	require.NoError(t, f.wizard.Next())
	assert.Equal(t, StepPayment, f.wizard.Step())

	require.NoError(t, f.wizard.Next())
	assert.Equal(t, StepReview, f.wizard.Step())

	assert.ErrorIs(t, f.wizard.Next(), ErrIllegalTransition, "review advances only through Submit")
}

func TestNext_PaymentStepValidation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.wizard.Open())

	form := validForm()
	form.PaymentMethod = payment.MethodMpesa
	form.MpesaPhone = ""
	require.NoError(t, f.wizard.SetForm(form))

	require.NoError(t, f.wizard.Next())

	err := f.wizard.Next()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "mpesa_phone", verrs[0].Field)
	assert.Equal(t, StepPayment, f.wizard.Step())
}

func TestBack_FromDeliveryExits(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.wizard.Open())
	require.NoError(t, f.wizard.SetForm(validForm()))

	require.NoError(t, f.wizard.Back())
	assert.Equal(t, StepClosed, f.wizard.Step())
	assert.Equal(t, Form{}, f.wizard.State().Form, "exit must discard the form")
}

func TestBack_Regresses(t *testing.T) {
	f := newFixture(t)
	f.openAtReview(t)

	require.NoError(t, f.wizard.Back())
	assert.Equal(t, StepPayment, f.wizard.Step())
	require.NoError(t, f.wizard.Back())
	assert.Equal(t, StepDelivery, f.wizard.Step())
}

func TestClose_ResetsForm(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.wizard.Open())
	require.NoError(t, f.wizard.SetForm(validForm()))

	require.NoError(t, f.wizard.Close())
	assert.Equal(t, StepClosed, f.wizard.Step())

	require.NoError(t, f.wizard.Open())
	assert.Equal(t, Form{}, f.wizard.State().Form)
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.openAtReview(t)

	order, err := f.wizard.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORD-123456", order.OrderID)
	assert.InDelta(t, 59.99, order.Summary.Subtotal, 0.001)
	assert.InDelta(t, 5.99, order.Summary.DeliveryFee, 0.001)
	assert.InDelta(t, 65.98, order.Summary.Total, 0.001)

	assert.Equal(t, StepConfirmation, f.wizard.Step())
	assert.Empty(t, f.cart.Lines(), "cart must be cleared on success")

	// Confirmation auto-closes after the configured delay.
	require.Eventually(t, func() bool {
		return f.wizard.Step() == StepClosed
	}, time.Second, 5*time.Millisecond, "confirmation did not auto-close")
}

func TestSubmit_FailureKeepsStateForRetry(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.openAtReview(t)
	f.gateway.set(nil, &payment.DeclineError{Method: payment.MethodCard})

	order, err := f.wizard.Submit(context.Background())
	require.Error(t, err)
	assert.Nil(t, order)

	state := f.wizard.State()
	assert.Equal(t, StepReview, state.Step, "failed submission must stay on review")
	assert.Contains(t, state.Error, "Payment declined")
	assert.Equal(t, validForm(), state.Form, "form data must survive a failure")
	assert.Len(t, f.cart.Lines(), 1, "cart must be unchanged on failure")
	assert.False(t, state.Loading)

	// Retry with a working gateway succeeds.
	f.gateway.set(&payment.ChargeResult{OrderID: "ORD-654321"}, nil)
	order, err = f.wizard.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORD-654321", order.OrderID)
}

func TestSubmit_EmptyCart(t *testing.T) {
	f := newFixture(t)
	f.openAtReview(t)

	_, err := f.wizard.Submit(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmit_NotOnReview(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	require.NoError(t, f.wizard.Open())

	_, err := f.wizard.Submit(context.Background())
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestSubmit_ReentrantGuard(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.openAtReview(t)

	release := make(chan struct{})
	f.gateway.mu.Lock()
	f.gateway.block = release
	f.gateway.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.wizard.Submit(context.Background())
	}()

	require.Eventually(t, func() bool {
		return f.wizard.State().Loading
	}, time.Second, time.Millisecond)

	_, err := f.wizard.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	assert.ErrorIs(t, f.wizard.Close(), ErrSubmissionInFlight, "close is ignored while loading")

	close(release)
	<-done
}

func TestSubmit_ProgressVisibleWhileLoading(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.openAtReview(t)

	release := make(chan struct{})
	f.gateway.mu.Lock()
	f.gateway.block = release
	f.gateway.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = f.wizard.Submit(context.Background())
	}()

	require.Eventually(t, func() bool {
		return f.wizard.State().Stage == "Processing payment..."
	}, time.Second, time.Millisecond, "stage message not surfaced")

	close(release)
	<-done
	assert.Empty(t, f.wizard.State().Stage)
}

func TestSummarize(t *testing.T) {
	pickup := Summarize(100.00, DeliveryMethodPickup, 5.99)
	assert.Equal(t, Summary{Subtotal: 100.00, DeliveryFee: 0, Total: 100.00}, pickup)

	delivery := Summarize(100.00, DeliveryMethodDelivery, 5.99)
	assert.Equal(t, Summary{Subtotal: 100.00, DeliveryFee: 5.99, Total: 105.99}, delivery)
}

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, CanTransitionTo(StepClosed, StepDelivery))
	assert.True(t, CanTransitionTo(StepReview, StepConfirmation))
	assert.True(t, CanTransitionTo(StepConfirmation, StepClosed))
	assert.False(t, CanTransitionTo(StepClosed, StepReview))
	assert.False(t, CanTransitionTo(StepDelivery, StepReview))
	assert.False(t, CanTransitionTo(StepConfirmation, StepDelivery))
}

func TestStep_IsTerminal(t *testing.T) {
	assert.True(t, StepConfirmation.IsTerminal())
	assert.False(t, StepReview.IsTerminal())
}
