package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-service/internal/model"
	"sales-service/internal/sales"
	"sales-service/internal/store"
)

func seedReportSales(t *testing.T) store.Store {
	t.Helper()
	st := store.NewMemoryStore()
	now := time.Now()
	for _, s := range []model.Sale{
		{
			CustomerName:  "Maria Silva",
			PaymentMethod: model.PaymentPix,
			Total:         dec("319.70"),
			Profit:        dec("163.80"),
			TransportCost: dec("10.00"),
			OtherExpenses: dec("5.00"),
			Date:          now,
			TenantID:      handlerTenant,
			Items: []model.SaleItem{
				{ProductID: 1, ProductName: "Batom", Quantity: 2, Price: dec("59.90")},
				{ProductID: 2, ProductName: "Creme", Quantity: 1, Price: dec("199.90")},
			},
		},
		{
			CustomerName:  "Ana Oliveira",
			PaymentMethod: model.PaymentCash,
			Total:         dec("59.90"),
			Profit:        dec("34.40"),
			Date:          now,
			TenantID:      handlerTenant,
			Items:         []model.SaleItem{{ProductID: 1, ProductName: "Batom", Quantity: 1, Price: dec("59.90")}},
		},
	} {
		sale := s
		require.NoError(t, st.CreateSale(context.Background(), &sale))
	}
	return st
}

func TestReportMetrics(t *testing.T) {
	h := NewReportHandler(seedReportSales(t))

	c, rec := newRequestContext(http.MethodGet, "/api/reports/metrics", "", handlerTenant)
	require.NoError(t, h.Metrics(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var m sales.Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 2, m.TotalSales)
	assert.True(t, dec("379.60").Equal(m.TotalRevenue), "revenue = %s", m.TotalRevenue)
	assert.True(t, dec("198.20").Equal(m.NetProfit), "net profit = %s", m.NetProfit)
	assert.True(t, dec("15").Equal(m.TotalExpenses))
}

func TestReportMetricsInvalidPeriod(t *testing.T) {
	h := NewReportHandler(store.NewMemoryStore())

	c, rec := newRequestContext(http.MethodGet, "/api/reports/metrics?period=fortnight", "", handlerTenant)
	require.NoError(t, h.Metrics(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportMetricsNoSales(t *testing.T) {
	h := NewReportHandler(store.NewMemoryStore())

	c, rec := newRequestContext(http.MethodGet, "/api/reports/metrics", "", handlerTenant)
	require.NoError(t, h.Metrics(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var m sales.Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 0, m.TotalSales)
	assert.True(t, m.TotalRevenue.IsZero())
	assert.True(t, m.ProfitMargin.IsZero())
}

func TestReportTopProducts(t *testing.T) {
	h := NewReportHandler(seedReportSales(t))

	c, rec := newRequestContext(http.MethodGet, "/api/reports/top-products", "", handlerTenant)
	require.NoError(t, h.TopProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var ranking []sales.ProductVolume
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranking))
	require.Len(t, ranking, 2)
	assert.Equal(t, "Batom", ranking[0].ProductName)
	assert.Equal(t, 3, ranking[0].Quantity)
}

func TestReportMonthly(t *testing.T) {
	h := NewReportHandler(seedReportSales(t))

	c, rec := newRequestContext(http.MethodGet, "/api/reports/monthly", "", handlerTenant)
	require.NoError(t, h.Monthly(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var series []sales.MonthlyPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	require.Len(t, series, 12)

	current := series[int(time.Now().Month())-1]
	assert.True(t, dec("379.60").Equal(current.Revenue), "revenue = %s", current.Revenue)
}

func TestReportMissingTenant(t *testing.T) {
	h := NewReportHandler(store.NewMemoryStore())

	c, rec := newRequestContext(http.MethodGet, "/api/reports/metrics", "", 0)
	require.NoError(t, h.Metrics(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
