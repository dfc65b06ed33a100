package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lingua-daily/internal/chain"
	"lingua-daily/internal/config"
	"lingua-daily/internal/dto"
	"lingua-daily/internal/model"
	"lingua-daily/internal/repository"
)

type fakeVerifier struct {
	receipt *chain.Receipt
	err     error
	calls   int
}

func (f *fakeVerifier) Verify(_ context.Context, _ *model.Order, _ chain.Proof) (*chain.Receipt, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.receipt, nil
}

type fakeSentences struct{}

func (fakeSentences) Daily(_ context.Context, _, _ string) *model.Sentence {
	return model.FallbackSentence()
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendSentence(_ context.Context, to, _ string, _ *model.Sentence) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type paymentFixture struct {
	svc    *paymentServiceImpl
	orders repository.OrderRepository
	subs   repository.SubscriberRepository
	mailer *fakeMailer
	now    time.Time
}

func newPaymentFixture(t *testing.T, verifiers map[string]chain.Verifier) *paymentFixture {
	t.Helper()
	dir := t.TempDir()

	orders, err := repository.NewOrderRepository(filepath.Join(dir, "orders.json"))
	require.NoError(t, err)
	subs, err := repository.NewSubscriberRepository(filepath.Join(dir, "subscribers.json"))
	require.NoError(t, err)

	mailer := &fakeMailer{}
	languages := config.Languages{Target: "english", Source: "japanese"}
	svc := NewPaymentService(zap.NewNop(), languages, orders, subs, verifiers, nil, fakeSentences{}, mailer).(*paymentServiceImpl)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &paymentFixture{svc: svc, orders: orders, subs: subs, mailer: mailer, now: now}
}

func (f *paymentFixture) startOrder(t *testing.T, req *dto.StartOrderRequest) *dto.StartOrderResponse {
	t.Helper()
	resp, err := f.svc.StartOrder(context.Background(), req)
	require.NoError(t, err)
	return resp
}

func TestStartOrderDefaults(t *testing.T) {
	f := newPaymentFixture(t, nil)

	resp := f.startOrder(t, &dto.StartOrderRequest{Email: "User@Example.com"})
	assert.NotEmpty(t, resp.OrderID)
	assert.NotEmpty(t, resp.Reference)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(2)), "month plan costs 2 USDC")

	order, err := f.orders.FindByReference(resp.Reference)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", order.Email)
	assert.Equal(t, "month", order.Plan)
	assert.Equal(t, model.ChainSolana, order.Chain)
	assert.Equal(t, "english", order.Language)
	assert.Equal(t, "japanese", order.Native)
	assert.Equal(t, model.StatusPending, order.Status)
}

func TestStartOrderYearPlanAndChain(t *testing.T) {
	f := newPaymentFixture(t, nil)

	resp := f.startOrder(t, &dto.StartOrderRequest{Email: "user@example.com", Plan: "year", Chain: model.ChainBase})
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(12)))

	order, err := f.orders.FindByReference(resp.Reference)
	require.NoError(t, err)
	assert.Equal(t, model.ChainBase, order.Chain)
}

func TestStartOrderUniqueReferences(t *testing.T) {
	f := newPaymentFixture(t, nil)

	a := f.startOrder(t, &dto.StartOrderRequest{Email: "a@example.com"})
	b := f.startOrder(t, &dto.StartOrderRequest{Email: "b@example.com"})
	assert.NotEqual(t, a.Reference, b.Reference)
	assert.NotEqual(t, a.OrderID, b.OrderID)
}

func TestStartOrderInvalidPlan(t *testing.T) {
	f := newPaymentFixture(t, nil)

	_, err := f.svc.StartOrder(context.Background(), &dto.StartOrderRequest{Email: "a@example.com", Plan: "weekly"})
	assert.Error(t, err)
}

func TestCheckSolanaStatusReconcilesOnce(t *testing.T) {
	verifier := &fakeVerifier{receipt: &chain.Receipt{Paid: true, Signature: "sig-1"}}
	f := newPaymentFixture(t, map[string]chain.Verifier{model.ChainSolana: verifier})

	resp := f.startOrder(t, &dto.StartOrderRequest{Email: "user@example.com"})

	status, err := f.svc.CheckSolanaStatus(context.Background(), resp.Reference)
	require.NoError(t, err)
	assert.True(t, status.Paid)
	assert.True(t, status.Updated)
	assert.Equal(t, "sig-1", status.Signature)

	order, err := f.orders.FindByReference(resp.Reference)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, order.Status)
	assert.Equal(t, "sig-1", order.TransactionHash)

	sub, err := f.subs.FindByEmail("user@example.com")
	require.NoError(t, err)
	assert.True(t, sub.IsSubscribed)
	require.NotNil(t, sub.ExpiresAt)
	assert.True(t, sub.ExpiresAt.Equal(f.now.Add(30*24*time.Hour)))

	require.Len(t, f.mailer.sent, 1, "exactly one welcome email")

	// a later poll of the same paid reference must not credit twice
	again, err := f.svc.CheckSolanaStatus(context.Background(), resp.Reference)
	require.NoError(t, err)
	assert.True(t, again.Paid)
	assert.False(t, again.Updated)

	sub, err = f.subs.FindByEmail("user@example.com")
	require.NoError(t, err)
	assert.True(t, sub.ExpiresAt.Equal(f.now.Add(30*24*time.Hour)), "expiry unchanged on repeat poll")
	assert.Len(t, f.mailer.sent, 1)
}

func TestCheckSolanaStatusCachesUnpaid(t *testing.T) {
	verifier := &fakeVerifier{receipt: &chain.Receipt{}}
	f := newPaymentFixture(t, map[string]chain.Verifier{model.ChainSolana: verifier})

	resp := f.startOrder(t, &dto.StartOrderRequest{Email: "user@example.com"})

	for i := 0; i < 3; i++ {
		status, err := f.svc.CheckSolanaStatus(context.Background(), resp.Reference)
		require.NoError(t, err)
		assert.False(t, status.Paid)
	}
	assert.Equal(t, 1, verifier.calls, "rapid polls share one chain lookup")

	order, err := f.orders.FindByReference(resp.Reference)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)
}

func TestCheckSolanaStatusUnconfigured(t *testing.T) {
	f := newPaymentFixture(t, map[string]chain.Verifier{})

	_, err := f.svc.CheckSolanaStatus(context.Background(), "some-ref")
	assert.ErrorIs(t, err, chain.ErrNotConfigured)
}

func TestCheckSolanaStatusUnknownReferenceStillAnswers(t *testing.T) {
	verifier := &fakeVerifier{receipt: &chain.Receipt{Paid: true, Signature: "sig"}}
	f := newPaymentFixture(t, map[string]chain.Verifier{model.ChainSolana: verifier})

	status, err := f.svc.CheckSolanaStatus(context.Background(), "never-created")
	require.NoError(t, err)
	assert.True(t, status.Paid)
	assert.False(t, status.Updated, "no order, nothing to reconcile")
}

func TestExtendSubscriptionStacksOnFutureExpiry(t *testing.T) {
	verifier := &fakeVerifier{receipt: &chain.Receipt{Paid: true}}
	f := newPaymentFixture(t, map[string]chain.Verifier{model.ChainSolana: verifier})

	future := f.now.Add(10 * 24 * time.Hour)
	require.NoError(t, f.subs.Upsert(&model.Subscriber{
		Email:        "user@example.com",
		IsSubscribed: true,
		ExpiresAt:    &future,
		Language:     "thai",
	}))

	resp := f.startOrder(t, &dto.StartOrderRequest{Email: "user@example.com"})
	_, err := f.svc.CheckSolanaStatus(context.Background(), resp.Reference)
	require.NoError(t, err)

	sub, err := f.subs.FindByEmail("user@example.com")
	require.NoError(t, err)
	assert.True(t, sub.ExpiresAt.Equal(future.Add(30*24*time.Hour)),
		"renewal before expiry extends from the old expiry, not from now")
}

func TestExtendSubscriptionRestartsFromNowWhenLapsed(t *testing.T) {
	verifier := &fakeVerifier{receipt: &chain.Receipt{Paid: true}}
	f := newPaymentFixture(t, map[string]chain.Verifier{model.ChainSolana: verifier})

	past := f.now.Add(-5 * 24 * time.Hour)
	require.NoError(t, f.subs.Upsert(&model.Subscriber{
		Email:     "user@example.com",
		ExpiresAt: &past,
	}))

	resp := f.startOrder(t, &dto.StartOrderRequest{Email: "user@example.com"})
	_, err := f.svc.CheckSolanaStatus(context.Background(), resp.Reference)
	require.NoError(t, err)

	sub, err := f.subs.FindByEmail("user@example.com")
	require.NoError(t, err)
	assert.True(t, sub.IsSubscribed)
	assert.True(t, sub.ExpiresAt.Equal(f.now.Add(30*24*time.Hour)))
}

func TestCheckEVMStatusPaid(t *testing.T) {
	verifier := &fakeVerifier{receipt: &chain.Receipt{Paid: true, TxHash: "0xfeed"}}
	f := newPaymentFixture(t, map[string]chain.Verifier{model.ChainBase: verifier})

	resp := f.startOrder(t, &dto.StartOrderRequest{Email: "user@example.com", Chain: model.ChainBase})

	status, err := f.svc.CheckEVMStatus(context.Background(), resp.Reference, model.ChainBase)
	require.NoError(t, err)
	assert.True(t, status.Paid)
	assert.True(t, status.Updated)
	assert.Equal(t, "0xfeed", status.TransactionHash)

	order, err := f.orders.FindByReference(resp.Reference)
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", order.TransactionHash)
}

func TestVerifyManualFlow(t *testing.T) {
	verifier := &fakeVerifier{receipt: &chain.Receipt{Paid: true, TxHash: "digest"}}
	f := newPaymentFixture(t, map[string]chain.Verifier{model.ChainSui: verifier})

	resp := f.startOrder(t, &dto.StartOrderRequest{Email: "user@example.com", Chain: model.ChainSui})

	out, err := f.svc.VerifyManual(context.Background(), model.ChainSui, "digest", resp.Reference)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.True(t, out.Paid)
	assert.Equal(t, 1, verifier.calls)

	// already-paid orders short-circuit without another chain call
	out, err = f.svc.VerifyManual(context.Background(), model.ChainSui, "digest", resp.Reference)
	require.NoError(t, err)
	assert.True(t, out.Paid)
	assert.Equal(t, 1, verifier.calls)
}

func TestVerifyManualUnknownOrder(t *testing.T) {
	f := newPaymentFixture(t, map[string]chain.Verifier{model.ChainSui: &fakeVerifier{}})

	_, err := f.svc.VerifyManual(context.Background(), model.ChainSui, "digest", "missing-ref")
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestVerifyManualUnconfiguredChain(t *testing.T) {
	f := newPaymentFixture(t, map[string]chain.Verifier{})

	_, err := f.svc.VerifyManual(context.Background(), model.ChainAptos, "0xabc", "ref")
	assert.ErrorIs(t, err, chain.ErrNotConfigured)
}

func TestVerifyManualUnpaidLeavesOrderPending(t *testing.T) {
	verifier := &fakeVerifier{receipt: &chain.Receipt{}}
	f := newPaymentFixture(t, map[string]chain.Verifier{model.ChainAptos: verifier})

	resp := f.startOrder(t, &dto.StartOrderRequest{Email: "user@example.com", Chain: model.ChainAptos})

	out, err := f.svc.VerifyManual(context.Background(), model.ChainAptos, "0xabc", resp.Reference)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.False(t, out.Paid)

	order, err := f.orders.FindByReference(resp.Reference)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Empty(t, f.mailer.sent)
}

func TestReconcileSurvivesMailerFailure(t *testing.T) {
	verifier := &fakeVerifier{receipt: &chain.Receipt{Paid: true}}
	f := newPaymentFixture(t, map[string]chain.Verifier{model.ChainSolana: verifier})
	f.mailer.err = assert.AnError

	resp := f.startOrder(t, &dto.StartOrderRequest{Email: "user@example.com"})

	status, err := f.svc.CheckSolanaStatus(context.Background(), resp.Reference)
	require.NoError(t, err, "welcome email is best-effort")
	assert.True(t, status.Updated)

	sub, err := f.subs.FindByEmail("user@example.com")
	require.NoError(t, err)
	assert.True(t, sub.IsSubscribed)
}
