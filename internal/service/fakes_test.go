package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*domain.User
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[uuid.UUID]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return domain.ErrEmailAlreadyRegistered
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[strings.ToLower(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserRepo) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	u.UpdatedAt = time.Now()
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = &cp
	return nil
}

type memProductRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]domain.Product
	updates int
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{byID: map[uuid.UUID]domain.Product{}}
}

func (m *memProductRepo) Create(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = *p
	return nil
}

func (m *memProductRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (m *memProductRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range m.byID {
		if p.OwnerID == ownerID {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memProductRepo) ExistsByNameAndSupplierCode(_ context.Context, name, supplierCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.Name == name && p.SupplierCode == supplierCode {
			return true, nil
		}
	}
	return false, nil
}

func (m *memProductRepo) Update(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	m.updates++
	p.UpdatedAt = time.Now()
	m.byID[p.ID] = *p
	return nil
}

func (m *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(m.byID, id)
	return nil
}

type memInventoryRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]domain.Inventory
	updates int
}

func newMemInventoryRepo() *memInventoryRepo {
	return &memInventoryRepo{byID: map[uuid.UUID]domain.Inventory{}}
}

func (m *memInventoryRepo) Create(_ context.Context, inv *domain.Inventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	m.byID[inv.ID] = *inv
	return nil
}

func (m *memInventoryRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrInventoryNotFound
	}
	return &inv, nil
}

func (m *memInventoryRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Inventory{}
	for _, inv := range m.byID {
		if inv.OwnerID == ownerID {
			cp := inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memInventoryRepo) Update(_ context.Context, inv *domain.Inventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[inv.ID]; !ok {
		return domain.ErrInventoryNotFound
	}
	m.updates++
	inv.UpdatedAt = time.Now()
	m.byID[inv.ID] = *inv
	return nil
}

func (m *memInventoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrInventoryNotFound
	}
	delete(m.byID, id)
	return nil
}

// memItemRepo serializes WithItemLock callbacks with a single mutex, which
// is a coarser version of the row lock the Postgres repository takes.
type memItemRepo struct {
	mu          sync.Mutex
	lock        sync.Mutex
	byID        map[uuid.UUID]domain.Item
	updates     int
	held        bool
	products    *memProductRepo
	inventories *memInventoryRepo
}

func newMemItemRepo(products *memProductRepo, inventories *memInventoryRepo) *memItemRepo {
	return &memItemRepo{byID: map[uuid.UUID]domain.Item{}, products: products, inventories: inventories}
}

func (m *memItemRepo) locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

func (m *memItemRepo) Create(_ context.Context, it *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it.CreatedAt = time.Now()
	it.UpdatedAt = it.CreatedAt
	m.byID[it.ID] = *it
	return nil
}

func (m *memItemRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &it, nil
}

func (m *memItemRepo) ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]*domain.Item, error) {
	return m.ListByInventoryIDs(ctx, []uuid.UUID{inventoryID})
}

func (m *memItemRepo) ListByInventoryIDs(_ context.Context, inventoryIDs []uuid.UUID) ([]*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range inventoryIDs {
		want[id] = true
	}
	out := []*domain.Item{}
	for _, it := range m.byID {
		if want[it.InventoryID] {
			cp := it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memItemRepo) Update(_ context.Context, it *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[it.ID]; !ok {
		return domain.ErrItemNotFound
	}
	m.updates++
	it.UpdatedAt = time.Now()
	m.byID[it.ID] = *it
	return nil
}

func (m *memItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memItemRepo) CountLowStock(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, it := range m.byID {
		if it.IsLowStock() {
			n++
		}
	}
	return n, nil
}

func (m *memItemRepo) WithItemLock(ctx context.Context, fn func(tx domain.ItemTx) error) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.setHeld(true)
	defer m.setHeld(false)

	tx := &memItemTx{repo: m, pending: map[uuid.UUID]int{}}
	if err := fn(tx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, qty := range tx.pending {
		it := m.byID[id]
		it.CurrentQuantity = qty
		m.byID[id] = it
		m.updates++
	}
	return nil
}

type memItemTx struct {
	repo    *memItemRepo
	pending map[uuid.UUID]int
}

func (tx *memItemTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return tx.repo.GetByID(ctx, id)
}

func (tx *memItemTx) GetInventory(ctx context.Context, id uuid.UUID) (*domain.Inventory, error) {
	return tx.repo.inventories.GetByID(ctx, id)
}

func (tx *memItemTx) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return tx.repo.products.GetByID(ctx, id)
}

func (tx *memItemTx) UpdateQuantity(_ context.Context, id uuid.UUID, quantity int) error {
	tx.pending[id] = quantity
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []domain.LowStockAlert
	err    error
}

func (n *recordingNotifier) NotifyLowStock(_ context.Context, alert domain.LowStockAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

func (m *memItemRepo) setHeld(held bool) {
	m.mu.Lock()
	m.held = held
	m.mu.Unlock()
}
