package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore はテスト用のインメモリDB。WithinTx は直列化し、失敗したらスナップショットに戻す。
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users       map[string]*model.User
	products    map[string]model.Product
	categories  map[string]model.Category
	orders      map[string]model.Order // key: OrderRef
	cart        map[string]model.CartItem
	reviews     []model.Review
	audits      []model.AuditLog
	adjustments []model.InventoryAdjustment
	outbox      []model.OutboxEvent
	seq         int64

	// メソッド名 -> 返すエラー
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*model.User{},
		products:   map[string]model.Product{},
		categories: map[string]model.Category{},
		orders:     map[string]model.Order{},
		cart:       map[string]model.CartItem{},
		fail:       map[string]error{},
	}
}

type memSnapshot struct {
	users       map[string]*model.User
	products    map[string]model.Product
	orders      map[string]model.Order
	cart        map[string]model.CartItem
	audits      []model.AuditLog
	adjustments []model.InventoryAdjustment
	outbox      []model.OutboxEvent
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		users:       map[string]*model.User{},
		products:    map[string]model.Product{},
		orders:      map[string]model.Order{},
		cart:        map[string]model.CartItem{},
		audits:      append([]model.AuditLog(nil), s.audits...),
		adjustments: append([]model.InventoryAdjustment(nil), s.adjustments...),
		outbox:      append([]model.OutboxEvent(nil), s.outbox...),
	}
	for k, v := range s.users {
		u := *v
		snap.users[k] = &u
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.cart {
		snap.cart[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.products = snap.products
	s.orders = snap.orders
	s.cart = snap.cart
	s.audits = snap.audits
	s.adjustments = snap.adjustments
	s.outbox = snap.outbox
}

func (s *memStore) failure(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail[method]
}

// TransactionManager
func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// TxRepos
func (s *memStore) Orders() repo.OrderRepository        { return memOrders{s} }
func (s *memStore) Products() repo.ProductRepository    { return memProducts{s} }
func (s *memStore) Inventory() repo.InventoryRepository { return memInventory{s} }
func (s *memStore) CartItems() repo.CartItemRepository  { return memCart{s} }
func (s *memStore) AuditLogs() repo.AuditLogRepository  { return memAudits{s} }
func (s *memStore) Outbox() repo.OutboxRepository       { return memOutbox{s} }

// ---- seed / inspect helpers

func (s *memStore) addUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
}

func (s *memStore) addProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.MinimumOrderQuantity == 0 {
		p.MinimumOrderQuantity = 1
	}
	s.products[p.ID] = p
}

func (s *memStore) addOrder(o model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	s.orders[o.OrderRef] = o
}

func (s *memStore) addCartItem(c model.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		s.seq++
		c.CreatedAt = time.Unix(s.seq, 0)
	}
	s.cart[c.ID] = c
}

func (s *memStore) order(ref string) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[ref]
}

func (s *memStore) stock(productID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].StockQuantity
}

func (s *memStore) cartHas(userID, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cart {
		if c.UserID == userID && c.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *memStore) counts() (audits, adjustments, outbox int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audits), len(s.adjustments), len(s.outbox)
}

// ---- users

type memUsers struct{ s *memStore }

var _ repo.UserRepository = memUsers{}

func (r memUsers) Create(ctx context.Context, user *model.User) error {
	if err := r.s.failure("Users.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repo.ErrDuplicate
		}
	}
	u := *user
	r.s.users[u.ID] = &u
	return nil
}

func (r memUsers) FindByID(ctx context.Context, userID string) (*model.User, error) {
	if err := r.s.failure("Users.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUsers) Update(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := *user
	r.s.users[u.ID] = &u
	return nil
}

func (r memUsers) IncrementTokenVersion(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return repo.ErrUserNotFound
	}
	u.TokenVersion++
	return nil
}

// ---- products / categories

type memProducts struct{ s *memStore }

var _ repo.ProductRepository = memProducts{}

func (r memProducts) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []model.Product
	for _, p := range r.s.products {
		if q.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != q.CategoryID) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	start := (q.Page - 1) * q.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r memProducts) FindByID(ctx context.Context, id string) (model.Product, error) {
	if err := r.s.failure("Products.FindByID"); err != nil {
		return model.Product{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.Slug == p.Slug {
			return model.Product{}, repo.ErrDuplicate
		}
	}
	r.s.products[p.ID] = p
	return p, nil
}

func (r memProducts) Update(ctx context.Context, p model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return repo.ErrNotFound
	}
	r.s.products[p.ID] = p
	return nil
}

func (r memProducts) SoftDelete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

type memCategories struct{ s *memStore }

var _ repo.CategoryRepository = memCategories{}

func (r memCategories) List(ctx context.Context) ([]model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCategories) FindByID(ctx context.Context, id string) (model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return model.Category{}, repo.ErrNotFound
	}
	return c, nil
}

// ---- orders

type memOrders struct{ s *memStore }

var _ repo.OrderRepository = memOrders{}

func (r memOrders) Create(ctx context.Context, o model.Order) (model.Order, error) {
	if err := r.s.failure("Orders.Create"); err != nil {
		return model.Order{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.OrderRef]; ok {
		return model.Order{}, repo.ErrDuplicate
	}
	r.s.seq++
	o.CreatedAt = time.Unix(r.s.seq, 0)
	o.UpdatedAt = o.CreatedAt
	r.s.orders[o.OrderRef] = o
	return o, nil
}

func (r memOrders) FindByOrderRef(ctx context.Context, ref string) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[ref]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	if u, ok := r.s.users[o.UserID]; ok {
		cp := *u
		o.User = &cp
	}
	if p, ok := r.s.products[o.ProductID]; ok {
		o.Product = &p
	}
	return o, nil
}

func (r memOrders) FindByOrderRefForUpdate(ctx context.Context, ref string) (model.Order, error) {
	if err := r.s.failure("Orders.FindByOrderRefForUpdate"); err != nil {
		return model.Order{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[ref]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r memOrders) UpdateStatusByOrderRef(ctx context.Context, ref string, from []model.OrderStatus, to model.OrderStatus) (int64, error) {
	if err := r.s.failure("Orders.UpdateStatusByOrderRef"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[ref]
	if !ok {
		return 0, nil
	}
	for _, st := range from {
		if o.Status == st {
			o.Status = to
			r.s.orders[ref] = o
			return 1, nil
		}
	}
	return 0, nil
}

func (r memOrders) ListByUserID(ctx context.Context, userID string) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memOrders) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

// ---- inventory

type memInventory struct{ s *memStore }

var _ repo.InventoryRepository = memInventory{}

func (r memInventory) SetStock(ctx context.Context, productID string, newStock int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.StockQuantity = newStock
	r.s.products[productID] = p
	return nil
}

func (r memInventory) DecrementStock(ctx context.Context, productID string, qty int64) (int64, error) {
	if err := r.s.failure("Inventory.DecrementStock"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return 0, repo.ErrNotFound
	}
	if p.StockQuantity < qty {
		return p.StockQuantity, repo.ErrInsufficientStock
	}
	p.StockQuantity -= qty
	r.s.products[productID] = p
	return p.StockQuantity, nil
}

func (r memInventory) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.adjustments = append(r.s.adjustments, adj)
	return nil
}

// ---- cart

type memCart struct{ s *memStore }

var _ repo.CartItemRepository = memCart{}

func (r memCart) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.CartItem
	for _, c := range r.s.cart {
		if c.UserID == userID {
			if p, ok := r.s.products[c.ProductID]; ok {
				c.Product = &p
			}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memCart) FindByUserAndProduct(ctx context.Context, userID, productID string) (model.CartItem, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.cart {
		if c.UserID == userID && c.ProductID == productID {
			return c, true, nil
		}
	}
	return model.CartItem{}, false, nil
}

func (r memCart) UpsertByUserAndProduct(ctx context.Context, userID, productID string, addQty int64) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.cart {
		if c.UserID == userID && c.ProductID == productID {
			c.Qty += addQty
			r.s.cart[id] = c
			return c, nil
		}
	}
	r.s.seq++
	c := model.CartItem{ID: uuid.NewString(), UserID: userID, ProductID: productID, Qty: addQty, CreatedAt: time.Unix(r.s.seq, 0)}
	r.s.cart[c.ID] = c
	return c, nil
}

func (r memCart) UpdateQuantity(ctx context.Context, id string, qty int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cart[id]
	if !ok {
		return repo.ErrNotFound
	}
	c.Qty = qty
	r.s.cart[id] = c
	return nil
}

func (r memCart) FindByID(ctx context.Context, id string) (model.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cart[id]
	if !ok {
		return model.CartItem{}, repo.ErrNotFound
	}
	if p, ok := r.s.products[c.ProductID]; ok {
		c.Product = &p
	}
	return c, nil
}

func (r memCart) DeleteByID(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cart[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.cart, id)
	return nil
}

func (r memCart) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.cart {
		if c.UserID == userID {
			delete(r.s.cart, id)
			n++
		}
	}
	return n, nil
}

func (r memCart) DeleteByUserAndProduct(ctx context.Context, userID, productID string) (int64, error) {
	if err := r.s.failure("CartItems.DeleteByUserAndProduct"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.cart {
		if c.UserID == userID && c.ProductID == productID {
			delete(r.s.cart, id)
			n++
		}
	}
	return n, nil
}

func (r memCart) CountByUserID(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.cart {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r memCart) IsOwnedByUser(ctx context.Context, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cart[id]
	return ok && c.UserID == userID, nil
}

// ---- audit / outbox

type memAudits struct{ s *memStore }

var _ repo.AuditLogRepository = memAudits{}

func (r memAudits) Create(ctx context.Context, log model.AuditLog) error {
	if err := r.s.failure("AuditLogs.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, log)
	return nil
}

func (r memAudits) Find(ctx context.Context, q repo.AuditLogQuery) ([]model.AuditLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var hit []model.AuditLog
	// 新しい順
	for i := len(r.s.audits) - 1; i >= 0; i-- {
		a := r.s.audits[i]
		if (q.ResourceType == "" || a.ResourceType == q.ResourceType) &&
			(q.ResourceID == "" || a.ResourceID == q.ResourceID) &&
			(q.ActorID == "" || a.ActorID == q.ActorID) &&
			(q.Action == "" || a.Action == q.Action) {
			hit = append(hit, a)
		}
	}
	total := int64(len(hit))
	if q.Offset >= len(hit) {
		return nil, total, nil
	}
	hit = hit[q.Offset:]
	if q.Limit > 0 && q.Limit < len(hit) {
		hit = hit[:q.Limit]
	}
	return hit, total, nil
}

type memOutbox struct{ s *memStore }

var _ repo.OutboxRepository = memOutbox{}

func (r memOutbox) Insert(ctx context.Context, e model.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = int64(len(r.s.outbox) + 1)
	r.s.outbox = append(r.s.outbox, e)
	return nil
}

func (r memOutbox) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.OutboxEvent
	for _, e := range r.s.outbox {
		if e.SentAt == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memOutbox) MarkSent(ctx context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.outbox {
		if r.s.outbox[i].ID == id {
			r.s.outbox[i].SentAt = &at
			return nil
		}
	}
	return repo.ErrNotFound
}

// ---- gateway / locker mocks

type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreateSession(ctx context.Context, req model.SessionRequest) (model.Session, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.Session), args.Error(1)
}

type failingLocker struct{ err error }

func (l failingLocker) Lock(context.Context, string) (func(), error) { return nil, l.err }

var errBoom = errors.New("boom")
