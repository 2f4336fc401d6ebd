package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sales-service/internal/model"
)

// GormStore is the database-backed Store used in production. Stock decrements
// are issued as a single conditional UPDATE so concurrent sales touching the
// same product are serialized by the database row, never by a read-then-write
// in application code.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetProduct(ctx context.Context, tenantID, id uint) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		return nil, err
	}
	return &product, nil
}

func (s *GormStore) ListProducts(ctx context.Context, tenantID uint) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name").
		Find(&products).Error
	return products, err
}

func (s *GormStore) CreateProduct(ctx context.Context, product *model.Product) error {
	if product.SKU != "" {
		var count int64
		s.db.WithContext(ctx).Model(&model.Product{}).
			Where("tenant_id = ? AND sku = ?", product.TenantID, product.SKU).
			Count(&count)
		if count > 0 {
			return fmt.Errorf("sku %q: %w", product.SKU, ErrDuplicateSKU)
		}
	}
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *GormStore) UpdateProduct(ctx context.Context, tenantID uint, product *model.Product) error {
	var existing model.Product
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&existing, product.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", product.ID, ErrProductNotFound)
		}
		return err
	}
	product.TenantID = tenantID
	product.CreatedAt = existing.CreatedAt
	return s.db.WithContext(ctx).Save(product).Error
}

func (s *GormStore) DeleteProduct(ctx context.Context, tenantID, id uint) error {
	result := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&model.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return nil
}

func (s *GormStore) DecrementStock(ctx context.Context, tenantID, id uint, qty int, allowOversell bool) (*model.Product, error) {
	query := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND tenant_id = ?", id, tenantID)
	if !allowOversell {
		query = query.Where("stock >= ?", qty)
	}
	result := query.Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// The guard and the existence check share one UPDATE, so tell the
		// two failure modes apart after the fact.
		var product model.Product
		err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&product, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
			}
			return nil, err
		}
		return nil, fmt.Errorf("product %d: %w", id, ErrInsufficientStock)
	}

	var product model.Product
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *GormStore) CreateSale(ctx context.Context, sale *model.Sale) error {
	return s.db.WithContext(ctx).Create(sale).Error
}

func (s *GormStore) GetSale(ctx context.Context, tenantID, id uint) (*model.Sale, error) {
	var sale model.Sale
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ?", tenantID).
		First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sale %d: %w", id, ErrSaleNotFound)
		}
		return nil, err
	}
	return &sale, nil
}

func (s *GormStore) ListSales(ctx context.Context, tenantID uint, since time.Time) ([]model.Sale, error) {
	query := s.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ?", tenantID)
	if !since.IsZero() {
		query = query.Where("date >= ?", since)
	}
	var sales []model.Sale
	err := query.Order("date DESC").Find(&sales).Error
	return sales, err
}

func (s *GormStore) CreateClient(ctx context.Context, client *model.Client) error {
	return s.db.WithContext(ctx).Create(client).Error
}

func (s *GormStore) ListClients(ctx context.Context, tenantID uint) ([]model.Client, error) {
	var clients []model.Client
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name").
		Find(&clients).Error
	return clients, err
}

func (s *GormStore) UpdateClient(ctx context.Context, tenantID uint, client *model.Client) error {
	var existing model.Client
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&existing, client.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("client %d: %w", client.ID, ErrClientNotFound)
		}
		return err
	}
	client.TenantID = tenantID
	client.CreatedAt = existing.CreatedAt
	return s.db.WithContext(ctx).Save(client).Error
}

func (s *GormStore) DeleteClient(ctx context.Context, tenantID, id uint) error {
	result := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&model.Client{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client %d: %w", id, ErrClientNotFound)
	}
	return nil
}

func (s *GormStore) InTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
