package loans

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
	loans map[string]Loan
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{loans: make(map[string]Loan)}
}

func (r *memoryRepo) List(ctx context.Context) ([]Loan, error) {
	var out []Loan
	for _, l := range r.loans {
		out = append(out, l)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (Loan, error) {
	l, ok := r.loans[id]
	if !ok {
		return Loan{}, ErrLoanNotFound
	}
	return l, nil
}

func (r *memoryRepo) Create(ctx context.Context, l Loan) error {
	r.loans[l.ID] = l
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, l Loan) error {
	if _, ok := r.loans[l.ID]; !ok {
		return ErrLoanNotFound
	}
	r.loans[l.ID] = l
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.loans[id]; !ok {
		return ErrLoanNotFound
	}
	delete(r.loans, id)
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

type stubDetailRepo struct {
	details map[string]trade.Detail
	stock   map[string]float64
}

func newStubDetailRepo() *stubDetailRepo {
	return &stubDetailRepo{details: make(map[string]trade.Detail), stock: make(map[string]float64)}
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
	r.details[d.ID] = d
	r.stock[d.ProductID] += d.Parent().Kind().StockEffect() * d.Quantity
	return nil
}

func (r *stubDetailRepo) Update(ctx context.Context, id string, upd trade.DetailUpdate) error {
	d, ok := r.details[id]
	if !ok {
		return trade.ErrDetailNotFound
	}
	d.Quantity = upd.Quantity
	d.Status = upd.Status
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

func newTestService() (*Service, *memoryRepo, *stubDetailRepo) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newMemoryRepo()
	details := newStubDetailRepo()
	tradeSvc := trade.NewService(logger, details, nullPaymentRepo{})
	svc := NewService(logger, repo, &memoryCounter{}, tradeSvc, nil, nil)
	return svc, repo, details
}

func TestComputeTotalsPartitionsByStatus(t *testing.T) {
	totals := ComputeTotals([]trade.DetailInput{
		{UnitPrice: 10, Quantity: 2, Status: trade.StatusToReturn}, // 20 still out
		{UnitPrice: 5, Quantity: 3, Status: trade.StatusReturned},  // 15 back
		{UnitPrice: 8, Quantity: 1, Status: trade.StatusSold},      // 8 sold
		{UnitPrice: 4, Quantity: 1},                                // no status: still out
	})
	require.InDelta(t, 15.0, totals.Returned, 0.0001)
	require.InDelta(t, 24.0, totals.Unreturned, 0.0001)
	require.InDelta(t, 8.0, totals.Sold, 0.0001)
	require.InDelta(t, 47.0, totals.Amount(), 0.0001)
	require.Equal(t, StateOutstanding, totals.State())
}

func TestComputeTotalsFullyReturned(t *testing.T) {
	totals := ComputeTotals([]trade.DetailInput{
		{UnitPrice: 10, Quantity: 2, Status: trade.StatusReturned},
		{UnitPrice: 8, Quantity: 1, Status: trade.StatusSold},
	})
	require.Zero(t, totals.Unreturned)
	require.Equal(t, StateReturned, totals.State())
	require.InDelta(t, 28.0, totals.Amount(), 0.0001)
}

func TestSaveDerivesTotalsAndState(t *testing.T) {
	svc, repo, details := newTestService()

	res, err := svc.Save(context.Background(), SaveInput{
		ClientID: "c1",
		UserID:   "u1",
		Date:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Details: []trade.DetailInput{
			{ID: "d1", ProductID: "p1", Quantity: 2, UnitPrice: 10, NameProduct: "x"},
			{ID: "d2", ProductID: "p2", Quantity: 1, UnitPrice: 8, NameProduct: "y", Status: trade.StatusSold},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Loan.Number)
	require.Equal(t, StateOutstanding, res.Loan.State)
	require.InDelta(t, 20.0, res.Loan.TotalLoanedUnreturned, 0.0001)
	require.InDelta(t, 8.0, res.Loan.TotalSold, 0.0001)
	require.InDelta(t, 28.0, res.Loan.TotalAmount, 0.0001)
	require.Len(t, repo.loans, 1)

	// loaned lines leave stock like a sale
	require.InDelta(t, -2.0, details.stock["p1"], 0.0001)
	require.Equal(t, trade.StatusToReturn, details.details["d1"].Status)
	require.Equal(t, trade.StatusSold, details.details["d2"].Status)
}

func TestSaveUpdateMovesLoanToReturned(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	res, err := svc.Save(ctx, SaveInput{
		ClientID: "c1",
		UserID:   "u1",
		Date:     time.Now(),
		Details: []trade.DetailInput{
			{ID: "d1", ProductID: "p1", Quantity: 2, UnitPrice: 10, NameProduct: "x"},
		},
	})
	require.NoError(t, err)

	res2, err := svc.Save(ctx, SaveInput{
		LoanID:   res.Loan.ID,
		ClientID: "c1",
		UserID:   "u1",
		Date:     time.Now(),
		Details: []trade.DetailInput{
			{ID: "d1", ProductID: "p1", Quantity: 2, UnitPrice: 10, NameProduct: "x", Status: trade.StatusReturned},
		},
	})
	require.NoError(t, err)
	require.Equal(t, res.Loan.Number, res2.Loan.Number)
	require.Equal(t, StateReturned, res2.Loan.State)
	require.InDelta(t, 20.0, res2.Loan.TotalLoanedReturned, 0.0001)
	require.Zero(t, res2.Loan.TotalLoanedUnreturned)
	require.Len(t, repo.loans, 1)
}

func TestSaveGuards(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveInput{UserID: "u1", Date: time.Now(), Details: []trade.DetailInput{{ID: "x"}}})
	require.ErrorIs(t, err, ErrNoClient)

	_, err = svc.Save(ctx, SaveInput{ClientID: "c1", UserID: "u1", Date: time.Now()})
	require.ErrorIs(t, err, ErrNoItems)
}
