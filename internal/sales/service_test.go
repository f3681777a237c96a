package sales

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comercia-pos/comercia-pos/internal/shared"
	"github.com/comercia-pos/comercia-pos/internal/trade"
)

type memoryRepo struct {
	sales map[string]Sale
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sales: make(map[string]Sale)}
}

func (r *memoryRepo) List(ctx context.Context) ([]Sale, error) {
	var out []Sale
	for _, s := range r.sales {
		out = append(out, s)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return Sale{}, ErrSaleNotFound
	}
	return s, nil
}

func (r *memoryRepo) Create(ctx context.Context, s Sale) error {
	r.sales[s.ID] = s
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, s Sale) error {
	if _, ok := r.sales[s.ID]; !ok {
		return ErrSaleNotFound
	}
	r.sales[s.ID] = s
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.sales[id]; !ok {
		return ErrSaleNotFound
	}
	delete(r.sales, id)
	return nil
}

type memoryCounter struct {
	counters map[string]int
}

func (c *memoryCounter) Next(ctx context.Context, kind string) (int, error) {
	if c.counters == nil {
		c.counters = make(map[string]int)
	}
	c.counters[kind]++
	return c.counters[kind], nil
}

type fakeBilling struct {
	state  string
	err    error
	calls  int
	saleID string
}

func (b *fakeBilling) SubmitForSale(ctx context.Context, saleID, docType string) (string, error) {
	b.calls++
	b.saleID = saleID
	return b.state, b.err
}

type fakeAudit struct {
	logs []shared.AuditLog
}

func (a *fakeAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

// detail and payment fakes reuse the trade package's port shapes

type stubDetailRepo struct {
	details map[string]trade.Detail
}

func (r *stubDetailRepo) ListByParent(ctx context.Context, p trade.ParentRef) ([]trade.Detail, error) {
	return nil, nil
}

func (r *stubDetailRepo) PreviousIDs(ctx context.Context, p trade.ParentRef) ([]string, error) {
	var ids []string
	for id, d := range r.details {
		if d.Parent() == p {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *stubDetailRepo) Create(ctx context.Context, d trade.Detail) error {
	if r.details == nil {
		r.details = make(map[string]trade.Detail)
	}
	r.details[d.ID] = d
	return nil
}

func (r *stubDetailRepo) Update(ctx context.Context, id string, upd trade.DetailUpdate) error {
	d, ok := r.details[id]
	if !ok {
		return trade.ErrDetailNotFound
	}
	d.Quantity = upd.Quantity
	r.details[id] = d
	return nil
}

func (r *stubDetailRepo) Delete(ctx context.Context, id string) error {
	delete(r.details, id)
	return nil
}

func (r *stubDetailRepo) UpdateStatus(ctx context.Context, id string, st trade.DetailStatus) error {
	return nil
}

type stubPaymentRepo struct {
	payments map[string]trade.Payment
	failAll  bool
}

func (r *stubPaymentRepo) ListByParent(ctx context.Context, p trade.ParentRef) ([]trade.Payment, error) {
	return nil, nil
}

func (r *stubPaymentRepo) List(ctx context.Context, f trade.PaymentFilter) ([]trade.Payment, error) {
	return nil, nil
}

func (r *stubPaymentRepo) PreviousIDs(ctx context.Context, p trade.ParentRef) ([]string, error) {
	var ids []string
	for id, pay := range r.payments {
		if pay.Parent() == p {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *stubPaymentRepo) Create(ctx context.Context, p trade.Payment) error {
	if r.failAll {
		return errors.New("insert failed")
	}
	if r.payments == nil {
		r.payments = make(map[string]trade.Payment)
	}
	r.payments[p.ID] = p
	return nil
}

func (r *stubPaymentRepo) Update(ctx context.Context, id string, upd trade.PaymentUpdate) error {
	return nil
}

func (r *stubPaymentRepo) Delete(ctx context.Context, id string) error {
	delete(r.payments, id)
	return nil
}

type fakeMetrics struct {
	invalidations int
}

func (m *fakeMetrics) Invalidate(ctx context.Context) { m.invalidations++ }

type fixture struct {
	svc      *Service
	repo     *memoryRepo
	counter  *memoryCounter
	billing  *fakeBilling
	audit    *fakeAudit
	metrics  *fakeMetrics
	details  *stubDetailRepo
	payments *stubPaymentRepo
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		repo:     newMemoryRepo(),
		counter:  &memoryCounter{},
		billing:  &fakeBilling{state: "ACEPTADO"},
		audit:    &fakeAudit{},
		metrics:  &fakeMetrics{},
		details:  &stubDetailRepo{},
		payments: &stubPaymentRepo{},
	}
	tradeSvc := trade.NewService(logger, f.details, f.payments)
	f.svc = NewService(logger, f.repo, f.counter, tradeSvc, f.billing, f.audit, f.metrics)
	return f
}

func validInput() SaveInput {
	return SaveInput{
		ClientID: "c1",
		UserID:   "u1",
		Date:     time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		State:    StateDebt,
		Details: []trade.DetailInput{
			{ID: "d1", ProductID: "p1", Quantity: 2, UnitPrice: 10, NameProduct: "x"},
		},
		Payments: []trade.PaymentInput{
			{ID: "t1", UserID: "u1", Date: time.Now(), PaymentMethod: trade.MethodCash, Amount: 20},
		},
		TotalAmount: 20,
		ReceiptType: "Ninguno",
	}
}

func TestSaveGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := validInput()
	in.ClientID = ""
	_, err := f.svc.Save(ctx, in)
	require.ErrorIs(t, err, ErrNoClient)

	in = validInput()
	in.Details = nil
	_, err = f.svc.Save(ctx, in)
	require.ErrorIs(t, err, ErrNoItems)

	in = validInput()
	in.State = State("OTRO")
	_, err = f.svc.Save(ctx, in)
	require.ErrorIs(t, err, ErrInvalidState)

	require.Empty(t, f.repo.sales)
}

func TestSaveCreatesSaleWithSequentialNumbers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var numbers []int
	for i := 0; i < 3; i++ {
		in := validInput()
		in.Details[0].ID = ""
		in.Payments[0].ID = ""
		res, err := f.svc.Save(ctx, in)
		require.NoError(t, err)
		numbers = append(numbers, res.Sale.Number)
	}
	require.Equal(t, []int{1, 2, 3}, numbers)

	// deleting a sale never frees its number
	for id := range f.repo.sales {
		require.NoError(t, f.svc.Delete(ctx, id))
		break
	}
	in := validInput()
	in.Details[0].ID = ""
	res, err := f.svc.Save(ctx, in)
	require.NoError(t, err)
	require.Equal(t, 4, res.Sale.Number)
}

func TestSaveUpdatesExistingSale(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Save(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.SaleID = res.Sale.ID
	in.State = StatePaid
	in.Details[0].Quantity = 3
	res2, err := f.svc.Save(ctx, in)
	require.NoError(t, err)
	require.Equal(t, res.Sale.Number, res2.Sale.Number)
	require.Equal(t, StatePaid, res2.Sale.State)
	require.InDelta(t, 30.0, f.repo.sales[res.Sale.ID].TotalAmount, 0.0001)
	require.Len(t, f.repo.sales, 1)
}

func TestSaveStoresComputedTotalNotSubmitted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := validInput()
	in.Details = []trade.DetailInput{
		{ID: "d1", ProductID: "p1", Quantity: 1, UnitPrice: 118, ValueTax: 0.18, NameProduct: "x"},
	}
	in.TotalAmount = 999999
	res, err := f.svc.Save(ctx, in)
	require.NoError(t, err)
	require.InDelta(t, 118.0, res.Sale.TotalAmount, 0.0001)
	require.InDelta(t, 118.0, f.repo.sales[res.Sale.ID].TotalAmount, 0.0001)

	// a percent discount comes off the gross total
	in = validInput()
	in.Details[0].ID = ""
	in.Discount = 10
	in.IsPercentageDiscount = true
	res, err = f.svc.Save(ctx, in)
	require.NoError(t, err)
	require.InDelta(t, 18.0, res.Sale.TotalAmount, 0.0001)
}

func TestSaveInvalidatesDashboardCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Save(ctx, validInput())
	require.NoError(t, err)
	require.Equal(t, 1, f.metrics.invalidations)

	require.NoError(t, f.svc.Delete(ctx, res.Sale.ID))
	require.Equal(t, 2, f.metrics.invalidations)
}

func TestSaveSubmitsBillingOnReceiptRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := validInput()
	in.ReceiptType = "boleta"
	res, err := f.svc.Save(ctx, in)
	require.NoError(t, err)
	require.Equal(t, 1, f.billing.calls)
	require.Equal(t, res.Sale.ID, f.billing.saleID)
	require.Equal(t, "ACEPTADO", res.BillingState)

	in = validInput()
	res, err = f.svc.Save(ctx, in)
	require.NoError(t, err)
	require.Equal(t, 1, f.billing.calls)
	require.Empty(t, res.BillingState)
}

func TestSaveBillingFailureDoesNotFailSave(t *testing.T) {
	f := newFixture()
	f.billing.err = errors.New("provider down")
	ctx := context.Background()

	in := validInput()
	in.ReceiptType = "factura"
	res, err := f.svc.Save(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "RECHAZADO", res.BillingState)
	require.Len(t, f.repo.sales, 1)
}

func TestSaveCollectsReconciliationWarnings(t *testing.T) {
	f := newFixture()
	f.payments.failAll = true
	ctx := context.Background()

	res, err := f.svc.Save(ctx, validInput())
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
	// the sale and its details survive the payment failures
	require.Len(t, f.repo.sales, 1)
	require.Contains(t, f.details.details, "d1")
}

func TestSaveRecordsAudit(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Save(context.Background(), validInput())
	require.NoError(t, err)
	require.Len(t, f.audit.logs, 1)
	require.Equal(t, "sale", f.audit.logs[0].Entity)
	require.Equal(t, res.Sale.ID, f.audit.logs[0].EntityID)
	require.Equal(t, "u1", f.audit.logs[0].ActorID)
}

func TestSaveMergesPickedDateWithClock(t *testing.T) {
	f := newFixture()
	f.svc.now = func() time.Time { return time.Date(2024, 5, 9, 16, 45, 12, 0, time.UTC) }

	res, err := f.svc.Save(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, 2, res.Sale.Date.Day())
	require.Equal(t, 16, res.Sale.Date.Hour())
	require.Equal(t, 45, res.Sale.Date.Minute())
}
