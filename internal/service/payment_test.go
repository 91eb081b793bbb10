package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paystream/ledger/internal/host"
	"github.com/paystream/ledger/internal/models"
	"github.com/paystream/ledger/internal/storage"
)

const (
	customer = models.Address("GCUSTOMER")
	merchant = models.Address("GMERCHANT")
	admin    = models.Address("GADMIN")
	token    = models.Address("CTOKEN")
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type paymentFixture struct {
	svc    *PaymentService
	store  *storage.MemoryStore
	clock  *host.ManualClock
	events *host.MemoryPublisher
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		store:  storage.NewMemoryStore(),
		clock:  host.NewManualClock(1000),
		events: host.NewMemoryPublisher(),
	}
	f.svc = NewPaymentService(f.store, f.clock, host.OpenAuth{}, f.events, testLogger())
	return f
}

func (f *paymentFixture) create(t *testing.T, amount int64, duration uint64) uint64 {
	t.Helper()
	id, err := f.svc.CreatePayment(context.Background(), customer, merchant, models.NewAmount(amount), token, duration)
	require.NoError(t, err)
	return id
}

// requireCode asserts err is a ServiceError carrying the given code.
func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, code, svcErr.Code)
}

func TestCreatePayment_Success(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	id := f.create(t, 1000, 600)
	assert.Equal(t, uint64(1), id)

	payment, err := f.svc.GetPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, customer, payment.Customer)
	assert.Equal(t, merchant, payment.Merchant)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, uint64(1600), payment.ExpiresAt)
	assert.Equal(t, "1000", payment.Amount.String())

	last, ok := f.events.Last()
	require.True(t, ok)
	created, ok := last.Event.(models.PaymentCreated)
	require.True(t, ok)
	assert.Equal(t, id, created.PaymentID)
	assert.Equal(t, uint64(1600), created.ExpiresAt)

	count, err := f.svc.GetPaymentCountByStatus(ctx, models.PaymentStatusPending)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestCreatePayment_IDsAreSequential(t *testing.T) {
	f := newPaymentFixture(t)
	assert.Equal(t, uint64(1), f.create(t, 100, 0))
	assert.Equal(t, uint64(2), f.create(t, 100, 0))
	assert.Equal(t, uint64(3), f.create(t, 100, 0))
}

func TestCreatePayment_RejectsNonPositiveAmount(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePayment(ctx, customer, merchant, models.NewAmount(0), token, 0)
	requireCode(t, err, ErrCodeInvalidAmount)

	_, err = f.svc.CreatePayment(ctx, customer, merchant, models.NewAmount(-5), token, 0)
	requireCode(t, err, ErrCodeInvalidAmount)

	// Nothing was written.
	count, err := f.svc.GetPaymentCountByStatus(ctx, models.PaymentStatusPending)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestCreatePayment_RequiresCustomerAuth(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewPaymentService(store, host.NewManualClock(1000), host.ContextAuth{}, host.NewMemoryPublisher(), testLogger())

	// Caller on the context is not the customer.
	ctx := host.WithCaller(context.Background(), merchant)
	_, err := svc.CreatePayment(ctx, customer, merchant, models.NewAmount(100), token, 0)
	requireCode(t, err, ErrCodeUnauthorized)

	ctx = host.WithCaller(context.Background(), customer)
	id, err := svc.CreatePayment(ctx, customer, merchant, models.NewAmount(100), token, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestGetPayment_NotFound(t *testing.T) {
	f := newPaymentFixture(t)
	_, err := f.svc.GetPayment(context.Background(), 99)
	requireCode(t, err, ErrCodePaymentNotFound)
}

func TestCompletePayment_Success(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	id := f.create(t, 1000, 0)

	require.NoError(t, f.svc.CompletePayment(ctx, admin, id))

	payment, err := f.svc.GetPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)

	pending, err := f.svc.GetPaymentCountByStatus(ctx, models.PaymentStatusPending)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pending)

	completed, err := f.svc.GetPaymentCountByStatus(ctx, models.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), completed)
}

func TestCompletePayment_NotPending(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	id := f.create(t, 1000, 0)

	require.NoError(t, f.svc.CompletePayment(ctx, admin, id))
	requireCode(t, f.svc.CompletePayment(ctx, admin, id), ErrCodeInvalidStatus)
	requireCode(t, f.svc.RefundPayment(ctx, admin, id), ErrCodeInvalidStatus)
	requireCode(t, f.svc.CancelPayment(ctx, customer, id), ErrCodeInvalidStatus)
}

func TestCompletePayment_Expired(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	id := f.create(t, 1000, 10)

	f.clock.Advance(11)
	requireCode(t, f.svc.CompletePayment(ctx, admin, id), ErrCodePaymentExpired)
	requireCode(t, f.svc.RefundPayment(ctx, admin, id), ErrCodePaymentExpired)

	payment, err := f.svc.GetPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
}

// The payment ledger stores no admin identity, so settlement accepts any
// authenticated address.
func TestSettlePayment_AnyAuthenticatedAddress(t *testing.T) {
	store := storage.NewMemoryStore()
	events := host.NewMemoryPublisher()
	svc := NewPaymentService(store, host.NewManualClock(1000), host.ContextAuth{}, events, testLogger())

	ctx := host.WithCaller(context.Background(), customer)
	id, err := svc.CreatePayment(ctx, customer, merchant, models.NewAmount(100), token, 0)
	require.NoError(t, err)

	stranger := models.Address("GSTRANGER")
	require.NoError(t, svc.CompletePayment(host.WithCaller(context.Background(), stranger), stranger, id))

	payment, err := svc.GetPayment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
}

func TestRefundPayment_Success(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	id := f.create(t, 1000, 0)

	require.NoError(t, f.svc.RefundPayment(ctx, admin, id))

	payment, err := f.svc.GetPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, payment.Status)
}

func TestCancelPayment_ByCustomerAndMerchant(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	first := f.create(t, 1000, 0)
	second := f.create(t, 1000, 0)

	require.NoError(t, f.svc.CancelPayment(ctx, customer, first))
	require.NoError(t, f.svc.CancelPayment(ctx, merchant, second))

	for _, id := range []uint64{first, second} {
		payment, err := f.svc.GetPayment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusCancelled, payment.Status)
	}

	last, ok := f.events.Last()
	require.True(t, ok)
	cancelled, ok := last.Event.(models.PaymentCancelled)
	require.True(t, ok)
	assert.Equal(t, second, cancelled.PaymentID)
	assert.Equal(t, merchant, cancelled.CancelledBy)
}

func TestCancelPayment_RejectsThirdParty(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	id := f.create(t, 1000, 0)

	requireCode(t, f.svc.CancelPayment(ctx, models.Address("GSTRANGER"), id), ErrCodeUnauthorized)

	payment, err := f.svc.GetPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
}

func TestIsPaymentExpired(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	never := f.create(t, 1000, 0)
	deadline := f.create(t, 1000, 10)

	expired, err := f.svc.IsPaymentExpired(ctx, deadline)
	require.NoError(t, err)
	assert.False(t, expired)

	// The deadline itself is not yet expired; expiry is strict.
	f.clock.Set(1010)
	expired, err = f.svc.IsPaymentExpired(ctx, deadline)
	require.NoError(t, err)
	assert.False(t, expired)

	f.clock.Set(1011)
	expired, err = f.svc.IsPaymentExpired(ctx, deadline)
	require.NoError(t, err)
	assert.True(t, expired)

	// A zero deadline never expires, no matter how far the clock moves.
	f.clock.Advance(1_000_000)
	expired, err = f.svc.IsPaymentExpired(ctx, never)
	require.NoError(t, err)
	assert.False(t, expired)

	// Unknown payments read as not expired rather than erroring.
	expired, err = f.svc.IsPaymentExpired(ctx, 99)
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestExpirePayment_Success(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	id := f.create(t, 1000, 10)

	f.clock.Advance(11)
	require.NoError(t, f.svc.ExpirePayment(ctx, id))

	payment, err := f.svc.GetPayment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCancelled, payment.Status)

	last, ok := f.events.Last()
	require.True(t, ok)
	expired, ok := last.Event.(models.PaymentExpired)
	require.True(t, ok)
	assert.Equal(t, id, expired.PaymentID)
	assert.Equal(t, uint64(1010), expired.ExpiresAt)
	assert.Equal(t, uint64(1011), expired.ExpiredAt)

	// Already cancelled; a second expiration is a status error.
	requireCode(t, f.svc.ExpirePayment(ctx, id), ErrCodeInvalidStatus)
}

func TestExpirePayment_NotYetExpired(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	withDeadline := f.create(t, 1000, 10)
	requireCode(t, f.svc.ExpirePayment(ctx, withDeadline), ErrCodePaymentNotExpired)

	noDeadline := f.create(t, 1000, 0)
	f.clock.Advance(1_000_000)
	requireCode(t, f.svc.ExpirePayment(ctx, noDeadline), ErrCodePaymentNotExpired)

	requireCode(t, f.svc.ExpirePayment(ctx, 99), ErrCodePaymentNotFound)
}

func TestGetPaymentsByCustomer_CreationOrder(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	var ids []uint64
	for i := 0; i < 5; i++ {
		ids = append(ids, f.create(t, 100, 0))
	}

	payments, err := f.svc.GetPaymentsByCustomer(ctx, customer, 10, 0)
	require.NoError(t, err)
	require.Len(t, payments, 5)
	for i, p := range payments {
		assert.Equal(t, ids[i], p.ID)
	}

	// Ownership order survives status changes.
	require.NoError(t, f.svc.CompletePayment(ctx, admin, ids[2]))
	payments, err = f.svc.GetPaymentsByCustomer(ctx, customer, 10, 0)
	require.NoError(t, err)
	require.Len(t, payments, 5)
	assert.Equal(t, ids[2], payments[2].ID)

	page, err := f.svc.GetPaymentsByCustomer(ctx, customer, 2, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[4], page[1].ID)

	empty, err := f.svc.GetPaymentsByCustomer(ctx, customer, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	count, err := f.svc.GetCustomerPaymentCount(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)
}

func TestGetPaymentsByMerchant(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	other := models.Address("GOTHERMERCHANT")
	first := f.create(t, 100, 0)
	_, err := f.svc.CreatePayment(ctx, customer, other, models.NewAmount(100), token, 0)
	require.NoError(t, err)
	third := f.create(t, 100, 0)

	payments, err := f.svc.GetPaymentsByMerchant(ctx, merchant, 10, 0)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, first, payments[0].ID)
	assert.Equal(t, third, payments[1].ID)

	count, err := f.svc.GetMerchantPaymentCount(ctx, merchant)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	otherCount, err := f.svc.GetMerchantPaymentCount(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), otherCount)
}

func TestGetPaymentsByStatus(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	first := f.create(t, 100, 0)
	second := f.create(t, 100, 0)
	third := f.create(t, 100, 0)

	require.NoError(t, f.svc.CompletePayment(ctx, admin, second))

	pending, err := f.svc.GetPaymentsByStatus(ctx, models.PaymentStatusPending, 10, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	// Removal swap-filled second's slot with the last pending id.
	assert.Equal(t, first, pending[0].ID)
	assert.Equal(t, third, pending[1].ID)

	completed, err := f.svc.GetPaymentsByStatus(ctx, models.PaymentStatusCompleted, 10, 0)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, second, completed[0].ID)
}
