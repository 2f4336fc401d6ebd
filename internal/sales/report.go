package sales

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"sales-service/internal/model"
)

// Reporting periods accepted by the metrics endpoint.
const (
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

var hundred = decimal.NewFromInt(100)

// Metrics aggregates a set of sales into the financial figures shown on the
// dashboard. All values derive from amounts snapshotted at recording time;
// catalog edits after a sale never shift these numbers.
type Metrics struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	ProfitMargin   decimal.Decimal `json:"profit_margin"`
	AverageTicket  decimal.Decimal `json:"average_ticket"`
	TotalSales     int             `json:"total_sales"`
	ProductCosts   decimal.Decimal `json:"product_costs"`
	TransportCosts decimal.Decimal `json:"transport_costs"`
	ExtraCosts     decimal.Decimal `json:"extra_costs"`
	OtherExpenses  decimal.Decimal `json:"other_expenses"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
}

// ComputeMetrics folds the given sales into Metrics. An empty slice yields
// all-zero metrics; the ratio figures guard against division by zero.
func ComputeMetrics(salesList []model.Sale) Metrics {
	m := Metrics{
		TotalRevenue:   decimal.Zero,
		GrossProfit:    decimal.Zero,
		NetProfit:      decimal.Zero,
		ProfitMargin:   decimal.Zero,
		AverageTicket:  decimal.Zero,
		ProductCosts:   decimal.Zero,
		TransportCosts: decimal.Zero,
		ExtraCosts:     decimal.Zero,
		OtherExpenses:  decimal.Zero,
		TotalExpenses:  decimal.Zero,
	}

	for _, sale := range salesList {
		m.TotalRevenue = m.TotalRevenue.Add(sale.Total)
		m.NetProfit = m.NetProfit.Add(sale.Profit)
		m.TransportCosts = m.TransportCosts.Add(sale.TransportCost)
		m.ExtraCosts = m.ExtraCosts.Add(sale.ExtraCosts)
		m.OtherExpenses = m.OtherExpenses.Add(sale.OtherExpenses)
	}
	m.TotalSales = len(salesList)
	m.TotalExpenses = m.TransportCosts.Add(m.ExtraCosts).Add(m.OtherExpenses)
	// Gross profit backs out the ancillary costs that were subtracted from
	// each sale's recorded profit, leaving revenue minus product costs.
	m.GrossProfit = m.NetProfit.Add(m.TotalExpenses)
	m.ProductCosts = m.TotalRevenue.Sub(m.GrossProfit)

	if m.TotalRevenue.IsPositive() {
		m.ProfitMargin = m.NetProfit.Div(m.TotalRevenue).Mul(hundred).Round(2)
	}
	if m.TotalSales > 0 {
		m.AverageTicket = m.TotalRevenue.Div(decimal.NewFromInt(int64(m.TotalSales))).Round(2)
	}
	return m
}

// PeriodStart returns the cutoff date for the named reporting period relative
// to now: start of the current month, quarter or year.
func PeriodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	case PeriodQuarter:
		quarterMonth := time.Month((int(now.Month())-1)/3*3 + 1)
		return time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, now.Location()), nil
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("unknown reporting period %q", period)
}

// ProductVolume is one row of the top-products ranking.
type ProductVolume struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// TopProducts ranks products by total quantity sold across the given sales,
// descending, and returns at most limit rows. Equal quantities are ordered by
// ascending product id so the ranking is stable across runs.
func TopProducts(salesList []model.Sale, limit int) []ProductVolume {
	byProduct := map[uint]*ProductVolume{}
	for _, sale := range salesList {
		for _, item := range sale.Items {
			entry, ok := byProduct[item.ProductID]
			if !ok {
				entry = &ProductVolume{ProductID: item.ProductID, ProductName: item.ProductName}
				byProduct[item.ProductID] = entry
			}
			entry.Quantity += item.Quantity
		}
	}

	ranking := make([]ProductVolume, 0, len(byProduct))
	for _, entry := range byProduct {
		ranking = append(ranking, *entry)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Quantity != ranking[j].Quantity {
			return ranking[i].Quantity > ranking[j].Quantity
		}
		return ranking[i].ProductID < ranking[j].ProductID
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}

// MonthlyPoint is one calendar-month bucket of the sales trend series.
type MonthlyPoint struct {
	Month         string          `json:"month"`
	Revenue       decimal.Decimal `json:"revenue"`
	Profit        decimal.Decimal `json:"profit"`
	ExtraCosts    decimal.Decimal `json:"extra_costs"`
	OtherExpenses decimal.Decimal `json:"other_expenses"`
}

// MonthlySeries buckets the given year's sales into twelve calendar months.
// Months with no sales stay at zero.
func MonthlySeries(salesList []model.Sale, year int) []MonthlyPoint {
	series := make([]MonthlyPoint, 12)
	for i := range series {
		series[i] = MonthlyPoint{
			Month:         time.Month(i + 1).String()[:3],
			Revenue:       decimal.Zero,
			Profit:        decimal.Zero,
			ExtraCosts:    decimal.Zero,
			OtherExpenses: decimal.Zero,
		}
	}
	for _, sale := range salesList {
		if sale.Date.Year() != year {
			continue
		}
		bucket := &series[int(sale.Date.Month())-1]
		bucket.Revenue = bucket.Revenue.Add(sale.Total)
		bucket.Profit = bucket.Profit.Add(sale.Profit)
		bucket.ExtraCosts = bucket.ExtraCosts.Add(sale.ExtraCosts)
		bucket.OtherExpenses = bucket.OtherExpenses.Add(sale.OtherExpenses)
	}
	return series
}
