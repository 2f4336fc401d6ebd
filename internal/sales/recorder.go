package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-service/internal/model"
	"sales-service/internal/store"
)

// SaleItemRequest is one proposed line item. Price is the unit price charged
// to the customer; it is snapshotted into the sale, independent of the
// product's current selling price. ProductName may be left empty, in which
// case the resolved product's name is used.
type SaleItemRequest struct {
	ProductID   uint            `json:"product_id"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ProductName string          `json:"product_name"`
}

// SaleRequest is the boundary shape for recording a sale. All numeric fields
// are parsed by the JSON layer into decimals once; validation rejects
// malformed values before any store call happens.
type SaleRequest struct {
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	PaymentMethod string            `json:"payment_method"`
	Items         []SaleItemRequest `json:"items"`
	TransportCost decimal.Decimal   `json:"transport_cost"`
	ExtraCosts    decimal.Decimal   `json:"extra_costs"`
	OtherExpenses decimal.Decimal   `json:"other_expenses"`
	Date          time.Time         `json:"date"`
}

// Validate checks the request shape and normalizes money fields to two
// decimal places.
func (r *SaleRequest) Validate() error {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	if r.CustomerName == "" {
		return ErrMissingCustomer
	}
	if !model.ValidPaymentMethod(r.PaymentMethod) {
		return fmt.Errorf("%q: %w", r.PaymentMethod, ErrInvalidPayment)
	}
	if len(r.Items) == 0 {
		return ErrEmptyItems
	}
	for i := range r.Items {
		item := &r.Items[i]
		if item.Quantity < 1 {
			return fmt.Errorf("item %d (product %d): %w", i, item.ProductID, ErrInvalidQuantity)
		}
		if !item.Price.IsPositive() {
			return fmt.Errorf("item %d (product %d): %w", i, item.ProductID, ErrInvalidPrice)
		}
		item.Price = item.Price.Round(2)
	}
	if r.TransportCost.IsNegative() || r.ExtraCosts.IsNegative() || r.OtherExpenses.IsNegative() {
		return ErrNegativeCost
	}
	r.TransportCost = r.TransportCost.Round(2)
	r.ExtraCosts = r.ExtraCosts.Round(2)
	r.OtherExpenses = r.OtherExpenses.Round(2)
	return nil
}

// Recorder turns sale requests into persisted sales. Product resolution, stock
// decrements and the sale insert run inside one store transaction: a failure at
// any step leaves stock and sales exactly as they were.
type Recorder struct {
	store         store.Store
	allowOversell bool
}

func NewRecorder(st store.Store, allowOversell bool) *Recorder {
	return &Recorder{store: st, allowOversell: allowOversell}
}

// Record validates the request, decrements stock for every line item and
// persists the sale with its computed total and profit.
//
// Per item, profit contribution is (price - costPrice) * quantity, using the
// product's cost price at this moment. The sale total covers line items only;
// transport, extra costs and other expenses reduce profit but not total.
func (r *Recorder) Record(ctx context.Context, tenantID uint, req *SaleRequest) (*model.Sale, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	var sale *model.Sale
	err := r.store.InTransaction(ctx, func(tx store.Store) error {
		total := decimal.Zero
		profit := decimal.Zero
		items := make([]model.SaleItem, 0, len(req.Items))

		for _, item := range req.Items {
			product, err := tx.GetProduct(ctx, tenantID, item.ProductID)
			if err != nil {
				return err
			}
			if _, err := tx.DecrementStock(ctx, tenantID, item.ProductID, item.Quantity, r.allowOversell); err != nil {
				return err
			}

			qty := decimal.NewFromInt(int64(item.Quantity))
			total = total.Add(item.Price.Mul(qty))
			profit = profit.Add(item.Price.Sub(product.CostPrice).Mul(qty))

			name := item.ProductName
			if name == "" {
				name = product.Name
			}
			items = append(items, model.SaleItem{
				ProductID:   item.ProductID,
				ProductName: name,
				Quantity:    item.Quantity,
				Price:       item.Price,
			})
		}

		profit = profit.Sub(req.TransportCost).Sub(req.ExtraCosts).Sub(req.OtherExpenses)

		sale = &model.Sale{
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			PaymentMethod: req.PaymentMethod,
			Total:         total,
			TransportCost: req.TransportCost,
			ExtraCosts:    req.ExtraCosts,
			OtherExpenses: req.OtherExpenses,
			Profit:        profit,
			Date:          date,
			TenantID:      tenantID,
			Items:         items,
		}
		return tx.CreateSale(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}
