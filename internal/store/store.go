package store

import (
	"context"
	"time"

	"sales-service/internal/model"
)

// Store is the persistence boundary for tenant-scoped records. Every method
// takes the tenant id explicitly; implementations must never return or mutate
// rows owned by another tenant.
//
// InTransaction runs fn against a Store bound to a single transaction: either
// every mutation made inside fn is persisted, or none is. Concurrent stock
// mutations for the same product are serialized by the implementation, so two
// overlapping decrements can never both apply against the same starting value.
type Store interface {
	// Products
	GetProduct(ctx context.Context, tenantID, id uint) (*model.Product, error)
	ListProducts(ctx context.Context, tenantID uint) ([]model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProduct(ctx context.Context, tenantID uint, product *model.Product) error
	DeleteProduct(ctx context.Context, tenantID, id uint) error
	// DecrementStock atomically subtracts qty from the product's stock.
	// Unless allowOversell is set, a decrement that would push stock below
	// zero fails with ErrInsufficientStock and leaves the row untouched.
	DecrementStock(ctx context.Context, tenantID, id uint, qty int, allowOversell bool) (*model.Product, error)

	// Sales
	CreateSale(ctx context.Context, sale *model.Sale) error
	GetSale(ctx context.Context, tenantID, id uint) (*model.Sale, error)
	// ListSales returns the tenant's sales dated at or after since, newest
	// first. A zero since returns everything.
	ListSales(ctx context.Context, tenantID uint, since time.Time) ([]model.Sale, error)

	// Clients
	CreateClient(ctx context.Context, client *model.Client) error
	ListClients(ctx context.Context, tenantID uint) ([]model.Client, error)
	UpdateClient(ctx context.Context, tenantID uint, client *model.Client) error
	DeleteClient(ctx context.Context, tenantID, id uint) error

	InTransaction(ctx context.Context, fn func(Store) error) error
}
