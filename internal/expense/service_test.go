package expense

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
	expenses map[string]Expense
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{expenses: map[string]Expense{}}
}

func (m *memoryRepo) List(ctx context.Context) ([]Expense, error) {
	var out []Expense
	for _, e := range m.expenses {
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryRepo) Get(ctx context.Context, id string) (Expense, error) {
	e, ok := m.expenses[id]
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	return e, nil
}

func (m *memoryRepo) Create(ctx context.Context, e Expense) error {
	m.expenses[e.ID] = e
	return nil
}

func (m *memoryRepo) Update(ctx context.Context, e Expense) error {
	if _, ok := m.expenses[e.ID]; !ok {
		return ErrExpenseNotFound
	}
	m.expenses[e.ID] = e
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.expenses[id]; !ok {
		return ErrExpenseNotFound
	}
	delete(m.expenses, id)
	return nil
}

type memoryPayments struct {
	payments map[string]trade.Payment
}

func newMemoryPayments() *memoryPayments {
	return &memoryPayments{payments: map[string]trade.Payment{}}
}

func (m *memoryPayments) ListByParent(ctx context.Context, parent trade.ParentRef) ([]trade.Payment, error) {
	var out []trade.Payment
	for _, p := range m.payments {
		if p.ExpenseID == parent.ExpenseID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryPayments) Create(ctx context.Context, p trade.Payment) error {
	m.payments[p.ID] = p
	return nil
}

func (m *memoryPayments) Update(ctx context.Context, id string, upd trade.PaymentUpdate) error {
	p, ok := m.payments[id]
	if !ok {
		return trade.ErrPaymentNotFound
	}
	p.Date = upd.Date
	p.PaymentMethod = upd.PaymentMethod
	p.Amount = upd.Amount
	m.payments[id] = p
	return nil
}

func (m *memoryPayments) Delete(ctx context.Context, id string) error {
	delete(m.payments, id)
	return nil
}

func newTestService(repo *memoryRepo, payments *memoryPayments) *Service {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, payments, nil)
	svc.now = func() time.Time {
		return time.Date(2024, 5, 2, 16, 45, 30, 0, time.UTC)
	}
	return svc
}

func baseInput() SaveInput {
	return SaveInput{
		UserID:        "user-1",
		HasVoucher:    true,
		CompanyName:   "Ferretería Lima",
		RUC:           "20123456789",
		BillingNumber: "F001-00000123",
		BillingType:   "Factura",
		Date:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		PaymentMethod: trade.MethodCash,
		Amount:        80,
		Description:   "Compra de repuestos",
	}
}

func TestSaveCreatesExpenseWithWithdrawal(t *testing.T) {
	repo := newMemoryRepo()
	payments := newMemoryPayments()
	svc := newTestService(repo, payments)

	saved, err := svc.Save(context.Background(), baseInput())
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.True(t, saved.HasVoucher)
	require.Equal(t, "Ferretería Lima", saved.CompanyName)

	p := saved.Transaction
	require.Equal(t, saved.ID, p.ExpenseID)
	require.Equal(t, trade.TypeWithdrawal, p.Type)
	require.Equal(t, "Gasto", p.Origin)
	require.Equal(t, 80.0, p.Amount)
	require.Equal(t, "Compra de repuestos", p.Description)
	// Picked day with the clock's time of day.
	require.Equal(t, time.Date(2024, 5, 1, 16, 45, 30, 0, time.UTC), p.Date)

	require.Len(t, payments.payments, 1)
}

func TestSaveWithoutVoucherDropsVoucherFields(t *testing.T) {
	svc := newTestService(newMemoryRepo(), newMemoryPayments())

	in := baseInput()
	in.HasVoucher = false
	saved, err := svc.Save(context.Background(), in)
	require.NoError(t, err)
	require.False(t, saved.HasVoucher)
	require.Empty(t, saved.CompanyName)
	require.Empty(t, saved.RUC)
	require.Empty(t, saved.BillingNumber)
	require.Empty(t, saved.BillingType)
}

func TestSaveUpdatesExpenseAndWithdrawal(t *testing.T) {
	repo := newMemoryRepo()
	payments := newMemoryPayments()
	svc := newTestService(repo, payments)

	saved, err := svc.Save(context.Background(), baseInput())
	require.NoError(t, err)

	in := baseInput()
	in.ExpenseID = saved.ID
	in.CompanyName = "Distribuidora Sur"
	in.Amount = 120
	in.PaymentMethod = trade.MethodYape

	updated, err := svc.Save(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, saved.ID, updated.ID)
	require.Equal(t, "Distribuidora Sur", updated.CompanyName)
	require.Equal(t, 120.0, updated.Transaction.Amount)
	require.Equal(t, trade.MethodYape, updated.Transaction.PaymentMethod)
	require.Equal(t, saved.Transaction.ID, updated.Transaction.ID)

	require.Len(t, payments.payments, 1)
}

func TestDeleteRemovesWithdrawal(t *testing.T) {
	repo := newMemoryRepo()
	payments := newMemoryPayments()
	svc := newTestService(repo, payments)

	saved, err := svc.Save(context.Background(), baseInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), saved.ID))
	require.Empty(t, repo.expenses)
	require.Empty(t, payments.payments)

	require.ErrorIs(t, svc.Delete(context.Background(), saved.ID), ErrExpenseNotFound)
}
