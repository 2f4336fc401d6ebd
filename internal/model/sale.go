package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted when recording a sale.
const (
	PaymentCash     = "cash"
	PaymentCredit   = "credit"
	PaymentDebit    = "debit"
	PaymentPix      = "pix"
	PaymentTransfer = "transfer"
)

// ValidPaymentMethod reports whether the given method is one of the known set.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentCredit, PaymentDebit, PaymentPix, PaymentTransfer:
		return true
	}
	return false
}

// Sale is one recorded sale with its line items. Total covers line items only;
// transport, extra costs and other expenses are subtracted from Profit but never
// added to Total. Profit is derived once at recording time from the cost prices
// in effect at that moment and is not recomputed afterwards.
type Sale struct {
	ID            uint            `json:"id" gorm:"primarykey"`
	CustomerName  string          `json:"customer_name" gorm:"type:varchar(255);not null"`
	CustomerPhone string          `json:"customer_phone,omitempty" gorm:"type:varchar(50)"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(20);not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	TransportCost decimal.Decimal `json:"transport_cost" gorm:"type:decimal(10,2);not null"`
	ExtraCosts    decimal.Decimal `json:"extra_costs" gorm:"type:decimal(10,2);not null"`
	OtherExpenses decimal.Decimal `json:"other_expenses" gorm:"type:decimal(10,2);not null"`
	Profit        decimal.Decimal `json:"profit" gorm:"type:decimal(10,2);not null"`
	Date          time.Time       `json:"date" gorm:"index;not null"`
	TenantID      uint            `json:"tenant_id" gorm:"index;not null"`
	Items         []SaleItem      `json:"items" gorm:"foreignKey:SaleID"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SaleItem is one line of a sale. Price and ProductName are snapshots taken at
// recording time, not live references to the product.
type SaleItem struct {
	ID          uint            `json:"id" gorm:"primarykey"`
	SaleID      uint            `json:"sale_id" gorm:"index;not null"`
	ProductID   uint            `json:"product_id" gorm:"index;not null"`
	ProductName string          `json:"product_name" gorm:"type:varchar(255);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}
