package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product categories carried by the catalog. Category is stored as a plain
// string so reporting queries can group on it directly.
const (
	CategoryMakeup    = "makeup"
	CategorySkincare  = "skincare"
	CategoryFragrance = "fragrance"
	CategoryBody      = "body"
	CategoryOther     = "other"
)

// ValidCategory reports whether the given category is one of the known set.
func ValidCategory(category string) bool {
	switch category {
	case CategoryMakeup, CategorySkincare, CategoryFragrance, CategoryBody, CategoryOther:
		return true
	}
	return false
}

// Product represents one catalog entry owned by a tenant. CostPrice is the
// acquisition cost used for profit computation; SellingPrice is the suggested
// list price. Sale items snapshot their own price, so later edits here never
// change recorded sales.
type Product struct {
	ID           uint            `json:"id" gorm:"primarykey"`
	Name         string          `json:"name" gorm:"type:varchar(255);not null"`
	Category     string          `json:"category" gorm:"type:varchar(50);not null;default:'other'"`
	Description  string          `json:"description" gorm:"type:text"`
	// SKU uniqueness is enforced per tenant by the store; products without a
	// SKU may repeat, which a unique index would not allow.
	SKU          string          `json:"sku" gorm:"type:varchar(100);index"`
	CostPrice    decimal.Decimal `json:"cost_price" gorm:"type:decimal(10,2);not null"`
	SellingPrice decimal.Decimal `json:"selling_price" gorm:"type:decimal(10,2);not null"`
	Stock        int             `json:"stock" gorm:"default:0"`
	TenantID     uint            `json:"tenant_id" gorm:"index;not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}
