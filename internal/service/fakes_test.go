package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/favorite"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/errs"
)

// In-memory repositories mirroring the MySQL implementations' contracts,
// including the atomic compare-and-decrement semantics.

type fakeProductRepo struct {
	mu             sync.Mutex
	products       map[string]*product.Product
	decrementDelay time.Duration
}

func newFakeProductRepo(ps ...*product.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*product.Product)}
	for _, p := range ps {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) ListAll(ctx context.Context) ([]*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*product.Product
	for _, p := range r.products {
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return errs.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) DecrementStock(ctx context.Context, id string, qty int64) error {
	if r.decrementDelay > 0 {
		select {
		case <-time.After(r.decrementDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errs.ErrNotFound
	}
	if p.Stock < qty {
		return &errs.InsufficientStockError{ProductID: id}
	}
	p.Stock -= qty
	return nil
}

func (r *fakeProductRepo) RestoreStock(ctx context.Context, id string, qty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errs.ErrNotFound
	}
	p.Stock += qty
	return nil
}

func (r *fakeProductRepo) stock(id string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		return p.Stock
	}
	return -1
}

type fakeCartRepo struct {
	mu    sync.Mutex
	lines map[string]map[string]*cart.Line // userID -> productID -> line
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{lines: make(map[string]map[string]*cart.Line)}
}

func (r *fakeCartRepo) Upsert(ctx context.Context, line *cart.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lines[line.UserID] == nil {
		r.lines[line.UserID] = make(map[string]*cart.Line)
	}
	cp := *line
	r.lines[line.UserID][line.ProductID] = &cp
	return nil
}

func (r *fakeCartRepo) Deactivate(ctx context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.lines[userID][productID]; ok {
		l.Active = false
	}
	return nil
}

func (r *fakeCartRepo) ListActive(ctx context.Context, userID string) ([]*cart.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*cart.Line
	for _, l := range r.lines[userID] {
		if l.Active {
			cp := *l
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

func (r *fakeCartRepo) Clear(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lines, userID)
	return nil
}

func (r *fakeCartRepo) CountActiveByProduct(ctx context.Context, productID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, byProduct := range r.lines {
		if l, ok := byProduct[productID]; ok && l.Active {
			n++
		}
	}
	return n, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	seq    int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*order.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.IdempotencyKey != nil {
		for _, existing := range r.orders {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *o.IdempotencyKey {
				return errs.ErrConcurrentModification
			}
		}
	}
	if o.CreatedAt.IsZero() {
		r.seq++
		o.CreatedAt = time.Unix(r.seq, 0)
	}
	cp := copyOrder(o)
	r.orders[o.ID] = cp
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return copyOrder(o), nil
}

func (r *fakeOrderRepo) GetByIdempotencyKey(ctx context.Context, userID, key string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UserID == userID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return copyOrder(o), nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			list = append(list, copyOrder(o))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *fakeOrderRepo) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*order.Order
	for _, o := range r.orders {
		list = append(list, copyOrder(o))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return errs.ErrConcurrentModification
	}
	o.Status = to
	return nil
}

func (r *fakeOrderRepo) CountOpenByProduct(ctx context.Context, productID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, o := range r.orders {
		if o.Status != order.StatusPlaced && o.Status != order.StatusShipped {
			continue
		}
		for _, l := range o.Lines {
			if l.ProductID == productID {
				n++
			}
		}
	}
	return n, nil
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Lines = append([]order.Line(nil), o.Lines...)
	return &cp
}

type fakeFavoriteRepo struct {
	mu      sync.Mutex
	entries map[string]map[string]time.Time // userID -> productID -> added at
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{entries: make(map[string]map[string]time.Time)}
}

func (r *fakeFavoriteRepo) Exists(ctx context.Context, userID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[userID][productID]
	return ok, nil
}

func (r *fakeFavoriteRepo) Add(ctx context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[userID] == nil {
		r.entries[userID] = make(map[string]time.Time)
	}
	r.entries[userID][productID] = time.Now()
	return nil
}

func (r *fakeFavoriteRepo) Remove(ctx context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries[userID], productID)
	return nil
}

func (r *fakeFavoriteRepo) ListByUser(ctx context.Context, userID string) ([]*favorite.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*favorite.Entry
	for pid, at := range r.entries[userID] {
		list = append(list, &favorite.Entry{UserID: userID, ProductID: pid, CreatedAt: at})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}
