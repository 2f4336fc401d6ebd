package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-service/internal/model"
	"sales-service/internal/store"
)

const testTenant uint = 1

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedCatalog(t *testing.T, st store.Store) (lipstick, cream model.Product) {
	t.Helper()
	lipstick = model.Product{
		Name:         "Batom Gel Semi-Matte",
		Category:     model.CategoryMakeup,
		SKU:          "MK-1001",
		CostPrice:    dec("25.50"),
		SellingPrice: dec("59.90"),
		Stock:        15,
		TenantID:     testTenant,
	}
	cream = model.Product{
		Name:         "TimeWise 3D",
		Category:     model.CategorySkincare,
		SKU:          "MK-2001",
		CostPrice:    dec("89.90"),
		SellingPrice: dec("199.90"),
		Stock:        8,
		TenantID:     testTenant,
	}
	require.NoError(t, st.CreateProduct(context.Background(), &lipstick))
	require.NoError(t, st.CreateProduct(context.Background(), &cream))
	return lipstick, cream
}

func validRequest(lipstickID, creamID uint) *SaleRequest {
	return &SaleRequest{
		CustomerName:  "Maria Silva",
		CustomerPhone: "(11) 98765-4321",
		PaymentMethod: model.PaymentCredit,
		Items: []SaleItemRequest{
			{ProductID: lipstickID, Quantity: 2, Price: dec("59.90")},
			{ProductID: creamID, Quantity: 1, Price: dec("199.90")},
		},
		TransportCost: dec("10"),
		ExtraCosts:    dec("0"),
		OtherExpenses: dec("5"),
	}
}

func TestRecordComputesTotalAndProfit(t *testing.T) {
	st := store.NewMemoryStore()
	lipstick, cream := seedCatalog(t, st)
	recorder := NewRecorder(st, false)

	sale, err := recorder.Record(context.Background(), testTenant, validRequest(lipstick.ID, cream.ID))
	require.NoError(t, err)

	// total = 2*59.90 + 199.90
	assert.True(t, dec("319.70").Equal(sale.Total), "total = %s", sale.Total)
	// profit = 2*(59.90-25.50) + (199.90-89.90) - (10+0+5)
	assert.True(t, dec("163.80").Equal(sale.Profit), "profit = %s", sale.Profit)
	assert.Len(t, sale.Items, 2)
	assert.False(t, sale.Date.IsZero())

	updatedLipstick, err := st.GetProduct(context.Background(), testTenant, lipstick.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, updatedLipstick.Stock)

	updatedCream, err := st.GetProduct(context.Background(), testTenant, cream.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, updatedCream.Stock)
}

func TestRecordSnapshotsCostAndName(t *testing.T) {
	st := store.NewMemoryStore()
	lipstick, cream := seedCatalog(t, st)
	recorder := NewRecorder(st, false)

	sale, err := recorder.Record(context.Background(), testTenant, validRequest(lipstick.ID, cream.ID))
	require.NoError(t, err)

	// Item names come from the catalog when the request omits them.
	assert.Equal(t, "Batom Gel Semi-Matte", sale.Items[0].ProductName)

	// Raising the cost price afterwards must not change the recorded profit.
	lipstick.CostPrice = dec("40.00")
	require.NoError(t, st.UpdateProduct(context.Background(), testTenant, &lipstick))

	stored, err := st.GetSale(context.Background(), testTenant, sale.ID)
	require.NoError(t, err)
	assert.True(t, dec("163.80").Equal(stored.Profit), "profit = %s", stored.Profit)
}

func TestRecordUnknownProductRollsBackEverything(t *testing.T) {
	st := store.NewMemoryStore()
	lipstick, cream := seedCatalog(t, st)
	recorder := NewRecorder(st, false)

	req := validRequest(lipstick.ID, cream.ID)
	req.Items = append(req.Items, SaleItemRequest{ProductID: 999, Quantity: 1, Price: dec("10.00")})

	_, err := recorder.Record(context.Background(), testTenant, req)
	require.ErrorIs(t, err, store.ErrProductNotFound)
	assert.Contains(t, err.Error(), "999")

	// Earlier items in the request already decremented inside the
	// transaction; the rollback must restore them.
	for _, p := range []model.Product{lipstick, cream} {
		current, err := st.GetProduct(context.Background(), testTenant, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Stock, current.Stock)
	}

	salesList, err := st.ListSales(context.Background(), testTenant, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, salesList)
}

func TestRecordInsufficientStock(t *testing.T) {
	st := store.NewMemoryStore()
	lipstick, cream := seedCatalog(t, st)
	recorder := NewRecorder(st, false)

	req := validRequest(lipstick.ID, cream.ID)
	req.Items[1].Quantity = 9 // cream has 8 in stock

	_, err := recorder.Record(context.Background(), testTenant, req)
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	current, err := st.GetProduct(context.Background(), testTenant, lipstick.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, current.Stock)
}

func TestRecordOversellAllowed(t *testing.T) {
	st := store.NewMemoryStore()
	lipstick, cream := seedCatalog(t, st)
	recorder := NewRecorder(st, true)

	req := validRequest(lipstick.ID, cream.ID)
	req.Items[1].Quantity = 9

	sale, err := recorder.Record(context.Background(), testTenant, req)
	require.NoError(t, err)
	assert.Len(t, sale.Items, 2)

	current, err := st.GetProduct(context.Background(), testTenant, cream.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, current.Stock)
}

func TestRecordTenantIsolation(t *testing.T) {
	st := store.NewMemoryStore()
	lipstick, cream := seedCatalog(t, st)
	recorder := NewRecorder(st, false)

	const otherTenant uint = 2
	_, err := recorder.Record(context.Background(), otherTenant, validRequest(lipstick.ID, cream.ID))
	require.ErrorIs(t, err, store.ErrProductNotFound)

	current, err := st.GetProduct(context.Background(), testTenant, lipstick.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, current.Stock)
}

func TestRecordValidation(t *testing.T) {
	st := store.NewMemoryStore()
	lipstick, cream := seedCatalog(t, st)
	recorder := NewRecorder(st, false)

	tests := []struct {
		name    string
		mutate  func(*SaleRequest)
		wantErr error
	}{
		{"missing customer", func(r *SaleRequest) { r.CustomerName = "  " }, ErrMissingCustomer},
		{"unknown payment method", func(r *SaleRequest) { r.PaymentMethod = "check" }, ErrInvalidPayment},
		{"no items", func(r *SaleRequest) { r.Items = nil }, ErrEmptyItems},
		{"zero quantity", func(r *SaleRequest) { r.Items[0].Quantity = 0 }, ErrInvalidQuantity},
		{"zero price", func(r *SaleRequest) { r.Items[0].Price = decimal.Zero }, ErrInvalidPrice},
		{"negative price", func(r *SaleRequest) { r.Items[0].Price = dec("-1") }, ErrInvalidPrice},
		{"negative transport cost", func(r *SaleRequest) { r.TransportCost = dec("-0.01") }, ErrNegativeCost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(lipstick.ID, cream.ID)
			tt.mutate(req)
			_, err := recorder.Record(context.Background(), testTenant, req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Nothing above may have touched stock.
	current, err := st.GetProduct(context.Background(), testTenant, lipstick.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, current.Stock)
}

func TestConcurrentRecordsSerializeStock(t *testing.T) {
	st := store.NewMemoryStore()
	product := model.Product{
		Name:      "Base Líquida TimeWise",
		Category:  model.CategoryMakeup,
		CostPrice: dec("45.50"),
		Stock:     8,
		TenantID:  testTenant,
	}
	require.NoError(t, st.CreateProduct(context.Background(), &product))
	recorder := NewRecorder(st, false)

	request := func() *SaleRequest {
		return &SaleRequest{
			CustomerName:  "Ana Oliveira",
			PaymentMethod: model.PaymentPix,
			Items:         []SaleItemRequest{{ProductID: product.ID, Quantity: 5, Price: dec("99.90")}},
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := recorder.Record(context.Background(), testTenant, request())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var failures, successes int
	for err := range errs {
		if err != nil {
			require.ErrorIs(t, err, store.ErrInsufficientStock)
			failures++
		} else {
			successes++
		}
	}
	// Stock 8 cannot satisfy two decrements of 5: exactly one sale wins,
	// and the loser must not have read stale stock.
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)

	current, err := st.GetProduct(context.Background(), testTenant, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.Stock)
}

func TestConcurrentRecordsWithOversell(t *testing.T) {
	st := store.NewMemoryStore()
	product := model.Product{
		Name:      "Perfume Thinking of You",
		Category:  model.CategoryFragrance,
		CostPrice: dec("65.00"),
		Stock:     8,
		TenantID:  testTenant,
	}
	require.NoError(t, st.CreateProduct(context.Background(), &product))
	recorder := NewRecorder(st, true)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := recorder.Record(context.Background(), testTenant, &SaleRequest{
				CustomerName:  "Ana Oliveira",
				PaymentMethod: model.PaymentCash,
				Items:         []SaleItemRequest{{ProductID: product.ID, Quantity: 5, Price: dec("149.90")}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Both decrements applied against the serialized value, never a
	// double-read of the same starting stock.
	current, err := st.GetProduct(context.Background(), testTenant, product.ID)
	require.NoError(t, err)
	assert.Equal(t, -2, current.Stock)
}
