package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products map[string]Product
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[string]Product)}
}

func (r *memoryRepo) List(ctx context.Context) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) Search(ctx context.Context, query string) ([]Product, error) {
	return r.List(ctx)
}

func (r *memoryRepo) Get(ctx context.Context, id string) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r *memoryRepo) Create(ctx context.Context, p Product) error {
	for _, existing := range r.products {
		if existing.Code != "" && existing.Code == p.Code {
			return ErrDuplicateCode
		}
	}
	r.products[p.ID] = p
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, p Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	r.products[p.ID] = p
	return nil
}

func (r *memoryRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.products[id]; ok {
			delete(r.products, id)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) SalesByProduct(ctx context.Context, productID string) ([]ProductSale, error) {
	return nil, nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo), repo
}

func TestCreateEnforcesCanonicalTaxRate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, ProductInput{Name: "Gaseosa", TypeTax: TaxIGV, ValueTax: 0.10})
	require.ErrorIs(t, err, ErrTaxMismatch)

	_, err = svc.Create(ctx, ProductInput{Name: "Gaseosa", TypeTax: TaxExonerated, ValueTax: 0.18})
	require.ErrorIs(t, err, ErrTaxMismatch)

	_, err = svc.Create(ctx, ProductInput{Name: "Gaseosa", TypeTax: TaxType("Otro"), ValueTax: 0})
	require.ErrorIs(t, err, ErrInvalidTaxType)

	p, err := svc.Create(ctx, ProductInput{Name: " Gaseosa ", Code: "G-01", Price: 3.5, TypeTax: TaxIGV, ValueTax: 0.18})
	require.NoError(t, err)
	require.Equal(t, "Gaseosa", p.Name)
	require.NotEmpty(t, p.ID)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, ProductInput{Name: "A", Code: "SKU-1", TypeTax: TaxIGV, ValueTax: 0.18})
	require.NoError(t, err)

	_, err = svc.Create(ctx, ProductInput{Name: "B", Code: "SKU-1", TypeTax: TaxIGV, ValueTax: 0.18})
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestApplyTaxTypeGrossesUpAndNetsDown(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{Name: "Arroz", Price: 100, TypeTax: TaxExonerated, ValueTax: 0})
	require.NoError(t, err)

	p, err = svc.ApplyTaxType(ctx, p.ID, TaxIGV)
	require.NoError(t, err)
	require.InDelta(t, 118.0, p.Price, 0.0001)
	require.InDelta(t, 0.18, p.ValueTax, 0.0001)

	p, err = svc.ApplyTaxType(ctx, p.ID, TaxUnaffected)
	require.NoError(t, err)
	require.InDelta(t, 100.0, p.Price, 0.0001)
	require.Zero(t, p.ValueTax)

	// moving between zero-rate categories leaves the price alone
	p, err = svc.ApplyTaxType(ctx, p.ID, TaxExport)
	require.NoError(t, err)
	require.InDelta(t, 100.0, p.Price, 0.0001)

	stored := repo.products[p.ID]
	require.Equal(t, TaxExport, stored.TypeTax)

	_, err = svc.ApplyTaxType(ctx, p.ID, TaxType("Otro"))
	require.ErrorIs(t, err, ErrInvalidTaxType)
}

func TestApplyTaxTypeSameCategoryIsStable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{Name: "Leche", Price: 118, TypeTax: TaxIGV, ValueTax: 0.18})
	require.NoError(t, err)

	p, err = svc.ApplyTaxType(ctx, p.ID, TaxIGV)
	require.NoError(t, err)
	require.InDelta(t, 118.0, p.Price, 0.0001)
}

func TestDeleteMany(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, ProductInput{Name: "A", TypeTax: TaxExonerated})
	b, _ := svc.Create(ctx, ProductInput{Name: "B", TypeTax: TaxExonerated})

	_, err := svc.DeleteMany(ctx, nil)
	require.Error(t, err)

	deleted, err := svc.DeleteMany(ctx, []string{a.ID, b.ID, "missing"})
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)
}

func TestUpdateRewritesFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{Name: "Aceite", Price: 10, TypeTax: TaxIGV, ValueTax: 0.18})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, ProductInput{
		Name: "Aceite Premium", Code: "AC-2", Price: 12.5, StockQuantity: 7,
		TypeTax: TaxIGV, ValueTax: 0.18, IncludeTax: true,
	})
	require.NoError(t, err)
	require.Equal(t, "Aceite Premium", updated.Name)
	require.InDelta(t, 12.5, updated.Price, 0.0001)
	require.True(t, updated.IncludeTax)

	_, err = svc.Update(ctx, "missing", ProductInput{Name: "X", TypeTax: TaxIGV, ValueTax: 0.18})
	require.ErrorIs(t, err, ErrProductNotFound)
}
