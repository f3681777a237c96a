package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/comercia-pos/comercia-pos/internal/trade"
)

// MetricsRepositoryPort serves the per-day aggregates behind the dashboard.
type MetricsRepositoryPort interface {
	SalesByDay(ctx context.Context, r Range) ([]DayTotal, error)
	PurchasesByDay(ctx context.Context, r Range) ([]DayTotal, error)
	LoansByDay(ctx context.Context, r Range) ([]LoanDayTotal, error)
	PaymentsByDay(ctx context.Context, r Range, origin string, paymentType trade.PaymentType) ([]DayTotal, error)
}

// Service assembles dashboard metrics, caching assembled payloads in Redis.
// A nil redis client disables caching.
type Service struct {
	logger *slog.Logger
	repo   MetricsRepositoryPort
	rdb    *redis.Client
	ttl    time.Duration
}

// NewService constructs Service.
func NewService(logger *slog.Logger, repo MetricsRepositoryPort, rdb *redis.Client, ttl time.Duration) *Service {
	return &Service{logger: logger, repo: repo, rdb: rdb, ttl: ttl}
}

func cacheKey(r Range) string {
	from, to := "all", "all"
	if r.From != nil {
		from = r.From.Format("2006-01-02")
	}
	if r.To != nil {
		to = r.To.Format("2006-01-02")
	}
	return fmt.Sprintf("dashboard:metrics:%s:%s", from, to)
}

// Metrics computes the dashboard payload for the period. The summary queries
// run concurrently; the assembled result is cached per period.
func (s *Service) Metrics(ctx context.Context, r Range) (Metrics, error) {
	key := cacheKey(r)
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var m Metrics
			if err := json.Unmarshal(raw, &m); err == nil {
				return m, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("dashboard cache read failed", "error", err)
		}
	}

	var (
		sales       []DayTotal
		purchases   []DayTotal
		loans       []LoanDayTotal
		expenses    []DayTotal
		deposits    []DayTotal
		withdrawals []DayTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sales, err = s.repo.SalesByDay(gctx, r)
		return err
	})
	g.Go(func() (err error) {
		purchases, err = s.repo.PurchasesByDay(gctx, r)
		return err
	})
	g.Go(func() (err error) {
		loans, err = s.repo.LoansByDay(gctx, r)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.repo.PaymentsByDay(gctx, r, "Gasto", "")
		return err
	})
	g.Go(func() (err error) {
		deposits, err = s.repo.PaymentsByDay(gctx, r, "Transacción", trade.TypeDeposit)
		return err
	})
	g.Go(func() (err error) {
		withdrawals, err = s.repo.PaymentsByDay(gctx, r, "Transacción", trade.TypeWithdrawal)
		return err
	})
	if err := g.Wait(); err != nil {
		return Metrics{}, err
	}

	m := Metrics{
		SalesSummary:    make([]SalesSummary, 0, len(sales)),
		PurchaseSummary: make([]PurchaseSummary, 0, len(purchases)),
		LoanSummary:     make([]LoanSummary, 0, len(loans)),
	}
	for i, cp := range chainChanges(sales) {
		m.SalesSummary = append(m.SalesSummary, SalesSummary{
			TotalSold:        sales[i].Total,
			ChangePercentage: cp,
			Date:             dayString(sales[i].Date),
		})
	}
	for i, cp := range chainChanges(purchases) {
		m.PurchaseSummary = append(m.PurchaseSummary, PurchaseSummary{
			TotalPurchased:   purchases[i].Total,
			ChangePercentage: cp,
			Date:             dayString(purchases[i].Date),
		})
	}
	for _, l := range loans {
		m.LoanSummary = append(m.LoanSummary, LoanSummary{
			TotalLoanedReturned:   l.Returned,
			TotalLoanedUnreturned: l.Unreturned,
			TotalSold:             l.Sold,
			Date:                  dayString(l.Date),
		})
	}

	total, avg := rollUp(expenses)
	m.ExpenseSummary = ExpenseSummary{TotalExpense: total, ChangePercentage: avg}

	total, avg = rollUp(deposits)
	m.TransactionSummary.Deposit = TransactionTypeSummary{Total: total, ChangePercentage: avg}
	total, avg = rollUp(withdrawals)
	m.TransactionSummary.Withdrawal = TransactionTypeSummary{Total: total, ChangePercentage: avg}

	if s.rdb != nil {
		if raw, err := json.Marshal(m); err == nil {
			if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", "error", err)
			}
		}
	}
	return m, nil
}

// Invalidate drops every cached dashboard payload.
func (s *Service) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	iter := s.rdb.Scan(ctx, 0, "dashboard:metrics:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("dashboard cache scan failed", "error", err)
	}
}

func dayString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// chainChanges computes each day's percentage change against the previous
// day. The first day, or a day after a zero, reports zero.
func chainChanges(days []DayTotal) []float64 {
	out := make([]float64, len(days))
	prev := 0.0
	for i, d := range days {
		if i > 0 && prev != 0 {
			out[i] = (d.Total - prev) / prev * 100
		}
		prev = d.Total
	}
	return out
}

// rollUp sums a series and averages its day-over-day changes.
func rollUp(days []DayTotal) (total, avgChange float64) {
	changes := chainChanges(days)
	for i, d := range days {
		total += d.Total
		avgChange += changes[i]
	}
	if len(days) > 0 {
		avgChange /= float64(len(days))
	}
	return total, avgChange
}
