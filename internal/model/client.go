package model

import (
	"time"

	"gorm.io/gorm"
)

// Client is a customer record kept per tenant for recurring buyers.
type Client struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Phone       string         `json:"phone,omitempty" gorm:"type:varchar(50)"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
