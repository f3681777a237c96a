package dashboard

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/comercia-pos/comercia-pos/internal/trade"
)

type fakeMetricsRepo struct {
	sales      []DayTotal
	purchases  []DayTotal
	loans      []LoanDayTotal
	byOrigin   map[string][]DayTotal
	queryCount int
}

func (f *fakeMetricsRepo) SalesByDay(ctx context.Context, r Range) ([]DayTotal, error) {
	f.queryCount++
	return f.sales, nil
}

func (f *fakeMetricsRepo) PurchasesByDay(ctx context.Context, r Range) ([]DayTotal, error) {
	f.queryCount++
	return f.purchases, nil
}

func (f *fakeMetricsRepo) LoansByDay(ctx context.Context, r Range) ([]LoanDayTotal, error) {
	f.queryCount++
	return f.loans, nil
}

func (f *fakeMetricsRepo) PaymentsByDay(ctx context.Context, r Range, origin string, paymentType trade.PaymentType) ([]DayTotal, error) {
	f.queryCount++
	key := origin + "/" + string(paymentType)
	return f.byOrigin[key], nil
}

func day(d int, total float64) DayTotal {
	return DayTotal{Date: time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC), Total: total}
}

func testRepo() *fakeMetricsRepo {
	return &fakeMetricsRepo{
		sales:     []DayTotal{day(1, 100), day(2, 150), day(3, 0), day(4, 30)},
		purchases: []DayTotal{day(1, 200), day(2, 100)},
		loans: []LoanDayTotal{
			{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Returned: 15, Unreturned: 24, Sold: 8},
		},
		byOrigin: map[string][]DayTotal{
			"Gasto/":               {day(1, 50), day(2, 100)},
			"Transacción/Depósito": {day(1, 10), day(2, 30)},
			"Transacción/Retiro":   {day(1, 40)},
		},
	}
}

func TestChainChanges(t *testing.T) {
	changes := chainChanges([]DayTotal{day(1, 100), day(2, 150), day(3, 0), day(4, 30)})
	require.Equal(t, []float64{0, 50, -100, 0}, changes)
}

func TestMetricsAssembly(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), testRepo(), nil, 0)

	m, err := svc.Metrics(context.Background(), Range{})
	require.NoError(t, err)

	require.Len(t, m.SalesSummary, 4)
	require.Equal(t, SalesSummary{TotalSold: 150, ChangePercentage: 50, Date: "2024-03-02"}, m.SalesSummary[1])
	require.Equal(t, SalesSummary{TotalSold: 0, ChangePercentage: -100, Date: "2024-03-03"}, m.SalesSummary[2])
	// A day after a zero reports no change.
	require.Equal(t, float64(0), m.SalesSummary[3].ChangePercentage)

	require.Equal(t, PurchaseSummary{TotalPurchased: 100, ChangePercentage: -50, Date: "2024-03-02"}, m.PurchaseSummary[1])

	require.Equal(t, LoanSummary{TotalLoanedReturned: 15, TotalLoanedUnreturned: 24, TotalSold: 8, Date: "2024-03-02"}, m.LoanSummary[0])

	require.Equal(t, 150.0, m.ExpenseSummary.TotalExpense)
	// Changes are 0 and 100, averaged over two days.
	require.Equal(t, 50.0, m.ExpenseSummary.ChangePercentage)

	require.Equal(t, 40.0, m.TransactionSummary.Deposit.Total)
	require.Equal(t, 100.0, m.TransactionSummary.Deposit.ChangePercentage)
	require.Equal(t, 40.0, m.TransactionSummary.Withdrawal.Total)
	require.Equal(t, 0.0, m.TransactionSummary.Withdrawal.ChangePercentage)
}

func TestMetricsEmptyPeriod(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), &fakeMetricsRepo{byOrigin: map[string][]DayTotal{}}, nil, 0)

	m, err := svc.Metrics(context.Background(), Range{})
	require.NoError(t, err)
	require.Empty(t, m.SalesSummary)
	require.Equal(t, ExpenseSummary{}, m.ExpenseSummary)
	require.Equal(t, TransactionSummary{}, m.TransactionSummary)
}

func TestMetricsCaching(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := testRepo()
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, rdb, time.Minute)

	first, err := svc.Metrics(context.Background(), Range{})
	require.NoError(t, err)
	queriesAfterFirst := repo.queryCount

	second, err := svc.Metrics(context.Background(), Range{})
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, queriesAfterFirst, repo.queryCount)

	// Different periods get their own entries.
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Metrics(context.Background(), Range{From: &from})
	require.NoError(t, err)
	require.Greater(t, repo.queryCount, queriesAfterFirst)

	svc.Invalidate(context.Background())
	countBefore := repo.queryCount
	_, err = svc.Metrics(context.Background(), Range{})
	require.NoError(t, err)
	require.Greater(t, repo.queryCount, countBefore)
}
