package purchases

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comercia-pos/comercia-pos/internal/trade"
)

type memoryRepo struct {
	purchases map[string]Purchase
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{purchases: make(map[string]Purchase)}
}

func (r *memoryRepo) List(ctx context.Context) ([]Purchase, error) {
	var out []Purchase
	for _, p := range r.purchases {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return Purchase{}, ErrPurchaseNotFound
	}
	return p, nil
}

func (r *memoryRepo) Create(ctx context.Context, p Purchase) error {
	r.purchases[p.ID] = p
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, p Purchase) error {
	if _, ok := r.purchases[p.ID]; !ok {
		return ErrPurchaseNotFound
	}
	r.purchases[p.ID] = p
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.purchases[id]; !ok {
		return ErrPurchaseNotFound
	}
	delete(r.purchases, id)
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

type stockDetailRepo struct {
	details map[string]trade.Detail
	stock   map[string]float64
}

func newStockDetailRepo() *stockDetailRepo {
	return &stockDetailRepo{details: make(map[string]trade.Detail), stock: make(map[string]float64)}
}

func (r *stockDetailRepo) ListByParent(ctx context.Context, p trade.ParentRef) ([]trade.Detail, error) {
	return nil, nil
}

func (r *stockDetailRepo) PreviousIDs(ctx context.Context, p trade.ParentRef) ([]string, error) {
	var ids []string
	for id, d := range r.details {
		if d.Parent() == p {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *stockDetailRepo) Create(ctx context.Context, d trade.Detail) error {
	r.details[d.ID] = d
	r.stock[d.ProductID] += d.Parent().Kind().StockEffect() * d.Quantity
	return nil
}

func (r *stockDetailRepo) Update(ctx context.Context, id string, upd trade.DetailUpdate) error {
	d, ok := r.details[id]
	if !ok {
		return trade.ErrDetailNotFound
	}
	r.stock[d.ProductID] += d.Parent().Kind().StockEffect() * (upd.Quantity - d.Quantity)
	d.Quantity = upd.Quantity
	r.details[id] = d
	return nil
}

func (r *stockDetailRepo) Delete(ctx context.Context, id string) error {
	d, ok := r.details[id]
	if !ok {
		return trade.ErrDetailNotFound
	}
	r.stock[d.ProductID] -= d.Parent().Kind().StockEffect() * d.Quantity
	delete(r.details, id)
	return nil
}

func (r *stockDetailRepo) UpdateStatus(ctx context.Context, id string, st trade.DetailStatus) error {
	return nil
}

type nullPaymentRepo struct{}

func (nullPaymentRepo) ListByParent(ctx context.Context, p trade.ParentRef) ([]trade.Payment, error) {
	return nil, nil
}

func (nullPaymentRepo) List(ctx context.Context, f trade.PaymentFilter) ([]trade.Payment, error) {
	return nil, nil
}

func (nullPaymentRepo) PreviousIDs(ctx context.Context, p trade.ParentRef) ([]string, error) {
	return nil, nil
}

func (nullPaymentRepo) Create(ctx context.Context, p trade.Payment) error { return nil }

func (nullPaymentRepo) Update(ctx context.Context, id string, upd trade.PaymentUpdate) error {
	return nil
}

func (nullPaymentRepo) Delete(ctx context.Context, id string) error { return nil }

func newTestService() (*Service, *memoryRepo, *stockDetailRepo) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newMemoryRepo()
	details := newStockDetailRepo()
	tradeSvc := trade.NewService(logger, details, nullPaymentRepo{})
	svc := NewService(logger, repo, &memoryCounter{}, tradeSvc, nil, nil)
	return svc, repo, details
}

func validInput() SaveInput {
	return SaveInput{
		SupplierID:    "sup1",
		UserID:        "u1",
		Date:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		State:         StateDebt,
		BillingNumber: "F001-00001234",
		BillingType:   "Factura",
		Shipping:      10,
		Details: []trade.DetailInput{
			{ID: "d1", ProductID: "p1", Quantity: 6, UnitPrice: 4, NameProduct: "arroz"},
		},
		TotalAmount: 34,
	}
}

func TestSaveGuards(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	in := validInput()
	in.SupplierID = ""
	_, err := svc.Save(ctx, in)
	require.ErrorIs(t, err, ErrNoSupplier)

	in = validInput()
	in.Details = nil
	_, err = svc.Save(ctx, in)
	require.ErrorIs(t, err, ErrNoItems)

	in = validInput()
	in.State = State("OTRO")
	_, err = svc.Save(ctx, in)
	require.ErrorIs(t, err, ErrInvalidState)

	require.Empty(t, repo.purchases)
}

func TestSaveCreatesPurchaseAndRaisesStock(t *testing.T) {
	svc, repo, details := newTestService()

	res, err := svc.Save(context.Background(), validInput())
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	require.Equal(t, 1, res.Purchase.Number)
	require.Equal(t, "F001-00001234", res.Purchase.BillingNumber)
	require.InDelta(t, 6.0, details.stock["p1"], 0.0001)
	require.Len(t, repo.purchases, 1)
}

func TestSaveStoresComputedTotalWithShipping(t *testing.T) {
	svc, repo, _ := newTestService()

	// 6 x 4 = 24 gross, plus 10 shipping; the submitted total is ignored
	in := validInput()
	in.TotalAmount = 999999
	res, err := svc.Save(context.Background(), in)
	require.NoError(t, err)
	require.InDelta(t, 34.0, res.Purchase.TotalAmount, 0.0001)
	require.InDelta(t, 34.0, repo.purchases[res.Purchase.ID].TotalAmount, 0.0001)

	in = validInput()
	in.PurchaseID = res.Purchase.ID
	in.Discount = 4
	res, err = svc.Save(context.Background(), in)
	require.NoError(t, err)
	require.InDelta(t, 30.0, res.Purchase.TotalAmount, 0.0001)
}

func TestSaveNumbersAreSequentialAndNeverRecycled(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	var numbers []int
	var firstID string
	for i := 0; i < 3; i++ {
		in := validInput()
		in.Details[0].ID = ""
		res, err := svc.Save(ctx, in)
		require.NoError(t, err)
		numbers = append(numbers, res.Purchase.Number)
		if i == 0 {
			firstID = res.Purchase.ID
		}
	}
	require.Equal(t, []int{1, 2, 3}, numbers)

	require.NoError(t, svc.Delete(ctx, firstID))
	in := validInput()
	in.Details[0].ID = ""
	res, err := svc.Save(ctx, in)
	require.NoError(t, err)
	require.Equal(t, 4, res.Purchase.Number)
	require.Len(t, repo.purchases, 3)
}

func TestSaveUpdateKeepsNumberAndAppliesStockDelta(t *testing.T) {
	svc, _, details := newTestService()
	ctx := context.Background()

	res, err := svc.Save(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.PurchaseID = res.Purchase.ID
	in.State = StateCancelled
	in.Details[0].Quantity = 2
	res2, err := svc.Save(ctx, in)
	require.NoError(t, err)
	require.Equal(t, res.Purchase.Number, res2.Purchase.Number)
	require.Equal(t, StateCancelled, res2.Purchase.State)
	require.InDelta(t, 2.0, details.stock["p1"], 0.0001)
}
