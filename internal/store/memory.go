package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sales-service/internal/model"
)

// MemoryStore keeps all records in process memory. It backs tests and the
// demo mode (DB_DRIVER=memory) where no Postgres is available. A single mutex
// serializes every call, and InTransaction restores a snapshot on error, which
// gives the same all-or-nothing and no-lost-update guarantees as the database
// store.
type MemoryStore struct {
	mu   sync.Mutex
	data memoryData
}

type memoryData struct {
	products map[uint]model.Product
	sales    map[uint]model.Sale
	clients  map[uint]model.Client

	nextProductID uint
	nextSaleID    uint
	nextItemID    uint
	nextClientID  uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: memoryData{
			products:      map[uint]model.Product{},
			sales:         map[uint]model.Sale{},
			clients:       map[uint]model.Client{},
			nextProductID: 1,
			nextSaleID:    1,
			nextItemID:    1,
			nextClientID:  1,
		},
	}
}

func (d *memoryData) clone() memoryData {
	out := memoryData{
		products:      make(map[uint]model.Product, len(d.products)),
		sales:         make(map[uint]model.Sale, len(d.sales)),
		clients:       make(map[uint]model.Client, len(d.clients)),
		nextProductID: d.nextProductID,
		nextSaleID:    d.nextSaleID,
		nextItemID:    d.nextItemID,
		nextClientID:  d.nextClientID,
	}
	for id, p := range d.products {
		out.products[id] = p
	}
	for id, s := range d.sales {
		items := make([]model.SaleItem, len(s.Items))
		copy(items, s.Items)
		s.Items = items
		out.sales[id] = s
	}
	for id, c := range d.clients {
		out.clients[id] = c
	}
	return out
}

func (m *MemoryStore) GetProduct(ctx context.Context, tenantID, id uint) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.getProduct(tenantID, id)
}

func (m *MemoryStore) ListProducts(ctx context.Context, tenantID uint) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.listProducts(tenantID)
}

func (m *MemoryStore) CreateProduct(ctx context.Context, product *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.createProduct(product)
}

func (m *MemoryStore) UpdateProduct(ctx context.Context, tenantID uint, product *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.updateProduct(tenantID, product)
}

func (m *MemoryStore) DeleteProduct(ctx context.Context, tenantID, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.deleteProduct(tenantID, id)
}

func (m *MemoryStore) DecrementStock(ctx context.Context, tenantID, id uint, qty int, allowOversell bool) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.decrementStock(tenantID, id, qty, allowOversell)
}

func (m *MemoryStore) CreateSale(ctx context.Context, sale *model.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.createSale(sale)
}

func (m *MemoryStore) GetSale(ctx context.Context, tenantID, id uint) (*model.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.getSale(tenantID, id)
}

func (m *MemoryStore) ListSales(ctx context.Context, tenantID uint, since time.Time) ([]model.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.listSales(tenantID, since)
}

func (m *MemoryStore) CreateClient(ctx context.Context, client *model.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.createClient(client)
}

func (m *MemoryStore) ListClients(ctx context.Context, tenantID uint) ([]model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.listClients(tenantID)
}

func (m *MemoryStore) UpdateClient(ctx context.Context, tenantID uint, client *model.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.updateClient(tenantID, client)
}

func (m *MemoryStore) DeleteClient(ctx context.Context, tenantID, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.deleteClient(tenantID, id)
}

// InTransaction holds the store lock for the whole callback and rolls back to
// a snapshot if fn fails, so concurrent callers never observe partial state.
func (m *MemoryStore) InTransaction(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.data.clone()
	if err := fn(&memoryTx{data: &m.data}); err != nil {
		m.data = snapshot
		return err
	}
	return nil
}

// memoryTx exposes the same operations without locking; the transaction holds
// the store lock already.
type memoryTx struct {
	data *memoryData
}

func (t *memoryTx) GetProduct(ctx context.Context, tenantID, id uint) (*model.Product, error) {
	return t.data.getProduct(tenantID, id)
}

func (t *memoryTx) ListProducts(ctx context.Context, tenantID uint) ([]model.Product, error) {
	return t.data.listProducts(tenantID)
}

func (t *memoryTx) CreateProduct(ctx context.Context, product *model.Product) error {
	return t.data.createProduct(product)
}

func (t *memoryTx) UpdateProduct(ctx context.Context, tenantID uint, product *model.Product) error {
	return t.data.updateProduct(tenantID, product)
}

func (t *memoryTx) DeleteProduct(ctx context.Context, tenantID, id uint) error {
	return t.data.deleteProduct(tenantID, id)
}

func (t *memoryTx) DecrementStock(ctx context.Context, tenantID, id uint, qty int, allowOversell bool) (*model.Product, error) {
	return t.data.decrementStock(tenantID, id, qty, allowOversell)
}

func (t *memoryTx) CreateSale(ctx context.Context, sale *model.Sale) error {
	return t.data.createSale(sale)
}

func (t *memoryTx) GetSale(ctx context.Context, tenantID, id uint) (*model.Sale, error) {
	return t.data.getSale(tenantID, id)
}

func (t *memoryTx) ListSales(ctx context.Context, tenantID uint, since time.Time) ([]model.Sale, error) {
	return t.data.listSales(tenantID, since)
}

func (t *memoryTx) CreateClient(ctx context.Context, client *model.Client) error {
	return t.data.createClient(client)
}

func (t *memoryTx) ListClients(ctx context.Context, tenantID uint) ([]model.Client, error) {
	return t.data.listClients(tenantID)
}

func (t *memoryTx) UpdateClient(ctx context.Context, tenantID uint, client *model.Client) error {
	return t.data.updateClient(tenantID, client)
}

func (t *memoryTx) DeleteClient(ctx context.Context, tenantID, id uint) error {
	return t.data.deleteClient(tenantID, id)
}

// Nested transactions just run in the enclosing one.
func (t *memoryTx) InTransaction(ctx context.Context, fn func(Store) error) error {
	return fn(t)
}

func (d *memoryData) getProduct(tenantID, id uint) (*model.Product, error) {
	product, ok := d.products[id]
	if !ok || product.TenantID != tenantID {
		return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	copied := product
	return &copied, nil
}

func (d *memoryData) listProducts(tenantID uint) ([]model.Product, error) {
	products := make([]model.Product, 0, len(d.products))
	for _, p := range d.products {
		if p.TenantID == tenantID {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (d *memoryData) createProduct(product *model.Product) error {
	if product.SKU != "" {
		for _, p := range d.products {
			if p.TenantID == product.TenantID && p.SKU == product.SKU {
				return fmt.Errorf("sku %q: %w", product.SKU, ErrDuplicateSKU)
			}
		}
	}
	now := time.Now()
	product.ID = d.nextProductID
	d.nextProductID++
	product.CreatedAt = now
	product.UpdatedAt = now
	d.products[product.ID] = *product
	return nil
}

func (d *memoryData) updateProduct(tenantID uint, product *model.Product) error {
	existing, ok := d.products[product.ID]
	if !ok || existing.TenantID != tenantID {
		return fmt.Errorf("product %d: %w", product.ID, ErrProductNotFound)
	}
	product.TenantID = tenantID
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	d.products[product.ID] = *product
	return nil
}

func (d *memoryData) deleteProduct(tenantID, id uint) error {
	existing, ok := d.products[id]
	if !ok || existing.TenantID != tenantID {
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	delete(d.products, id)
	return nil
}

func (d *memoryData) decrementStock(tenantID, id uint, qty int, allowOversell bool) (*model.Product, error) {
	product, ok := d.products[id]
	if !ok || product.TenantID != tenantID {
		return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	if !allowOversell && product.Stock < qty {
		return nil, fmt.Errorf("product %d: %w", id, ErrInsufficientStock)
	}
	product.Stock -= qty
	product.UpdatedAt = time.Now()
	d.products[id] = product
	copied := product
	return &copied, nil
}

func (d *memoryData) createSale(sale *model.Sale) error {
	now := time.Now()
	sale.ID = d.nextSaleID
	d.nextSaleID++
	sale.CreatedAt = now
	sale.UpdatedAt = now
	for i := range sale.Items {
		sale.Items[i].ID = d.nextItemID
		d.nextItemID++
		sale.Items[i].SaleID = sale.ID
	}
	stored := *sale
	stored.Items = make([]model.SaleItem, len(sale.Items))
	copy(stored.Items, sale.Items)
	d.sales[sale.ID] = stored
	return nil
}

func (d *memoryData) getSale(tenantID, id uint) (*model.Sale, error) {
	sale, ok := d.sales[id]
	if !ok || sale.TenantID != tenantID {
		return nil, fmt.Errorf("sale %d: %w", id, ErrSaleNotFound)
	}
	copied := sale
	copied.Items = make([]model.SaleItem, len(sale.Items))
	copy(copied.Items, sale.Items)
	return &copied, nil
}

func (d *memoryData) listSales(tenantID uint, since time.Time) ([]model.Sale, error) {
	sales := make([]model.Sale, 0, len(d.sales))
	for _, s := range d.sales {
		if s.TenantID != tenantID {
			continue
		}
		if !since.IsZero() && s.Date.Before(since) {
			continue
		}
		copied := s
		copied.Items = make([]model.SaleItem, len(s.Items))
		copy(copied.Items, s.Items)
		sales = append(sales, copied)
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].Date.After(sales[j].Date) })
	return sales, nil
}

func (d *memoryData) createClient(client *model.Client) error {
	now := time.Now()
	client.ID = d.nextClientID
	d.nextClientID++
	client.CreatedAt = now
	client.UpdatedAt = now
	d.clients[client.ID] = *client
	return nil
}

func (d *memoryData) listClients(tenantID uint) ([]model.Client, error) {
	clients := make([]model.Client, 0, len(d.clients))
	for _, c := range d.clients {
		if c.TenantID == tenantID {
			clients = append(clients, c)
		}
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

func (d *memoryData) updateClient(tenantID uint, client *model.Client) error {
	existing, ok := d.clients[client.ID]
	if !ok || existing.TenantID != tenantID {
		return fmt.Errorf("client %d: %w", client.ID, ErrClientNotFound)
	}
	client.TenantID = tenantID
	client.CreatedAt = existing.CreatedAt
	client.UpdatedAt = time.Now()
	d.clients[client.ID] = *client
	return nil
}

func (d *memoryData) deleteClient(tenantID, id uint) error {
	existing, ok := d.clients[id]
	if !ok || existing.TenantID != tenantID {
		return fmt.Errorf("client %d: %w", id, ErrClientNotFound)
	}
	delete(d.clients, id)
	return nil
}
