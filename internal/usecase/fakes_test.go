package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"
)

// ---- products ----

type memProductRepo struct {
	mu       sync.Mutex
	nextID   int64
	products []model.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{nextID: 1}
}

func (r *memProductRepo) add(p model.Product) model.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	} else if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	r.products = append(r.products, p)
	return p
}

func (r *memProductRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	filtered := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		if q.Category != "" && q.Category != "all" && p.Category != q.Category {
			continue
		}
		filtered = append(filtered, p)
	}

	switch q.Sort {
	case "asc":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case "desc":
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	default:
		sort.Slice(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	}

	total := int64(len(filtered))

	start := (q.Page - 1) * q.Limit
	if start >= len(filtered) {
		return []model.Product{}, total, nil
	}
	end := start + q.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], total, nil
}

func (r *memProductRepo) ListCategories(ctx context.Context) ([]repo.CategorySummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byID := make([]model.Product, len(r.products))
	copy(byID, r.products)
	sort.Slice(byID, func(i, j int) bool { return byID[i].ID < byID[j].ID })

	seen := map[string]repo.CategorySummary{}
	for _, p := range byID {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		seen[p.Category] = repo.CategorySummary{Name: p.Category, Image: image}
	}

	out := make([]repo.CategorySummary, 0, len(seen))
	for _, cs := range seen {
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memProductRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

func (r *memProductRepo) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]model.Product, len(ids))
	for _, id := range ids {
		for _, p := range r.products {
			if p.ID == id {
				out[id] = p
				break
			}
		}
	}
	return out, nil
}

func (r *memProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	return r.add(p), nil
}

func (r *memProductRepo) Update(ctx context.Context, p model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].ID == p.ID {
			r.products[i].Name = p.Name
			r.products[i].Price = p.Price
			r.products[i].Quantity = p.Quantity
			r.products[i].Category = p.Category
			r.products[i].Images = p.Images
			return nil
		}
	}
	return repo.ErrNotFound
}

// ---- cart ----

// AddItemはDBのアトミックupsertと同じく1回の排他操作で行う
type memCartRepo struct {
	mu         sync.Mutex
	nextCartID int64
	nextItemID int64
	carts      map[int64]model.Cart       // userID -> cart
	items      map[int64][]model.CartItem // cartID -> items
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{
		nextCartID: 1,
		nextItemID: 1,
		carts:      map[int64]model.Cart{},
		items:      map[int64][]model.CartItem{},
	}
}

func (r *memCartRepo) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart, ok := r.carts[userID]; ok {
		return cart, nil
	}
	cart := model.Cart{ID: r.nextCartID, UserID: userID}
	r.nextCartID++
	r.carts[userID] = cart
	return cart, nil
}

func (r *memCartRepo) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart, ok := r.carts[userID]; ok {
		return cart, nil
	}
	return model.Cart{}, repo.ErrNotFound
}

func (r *memCartRepo) ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]model.CartItem, len(r.items[cartID]))
	copy(items, r.items[cartID])
	return items, nil
}

func (r *memCartRepo) AddItem(ctx context.Context, cartID int64, productID int64, qty int64) error {
	if qty <= 0 {
		return errors.New("invalid quantity")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items[cartID] {
		if it.ProductID == productID {
			r.items[cartID][i].Quantity += qty
			return nil
		}
	}
	r.items[cartID] = append(r.items[cartID], model.CartItem{
		ID:        r.nextItemID,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  qty,
	})
	r.nextItemID++
	return nil
}

func (r *memCartRepo) SetQuantity(ctx context.Context, cartID int64, productID int64, qty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items[cartID] {
		if it.ProductID == productID {
			r.items[cartID][i].Quantity = qty
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r *memCartRepo) RemoveItem(ctx context.Context, cartID int64, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[cartID][:0]
	for _, it := range r.items[cartID] {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	r.items[cartID] = kept
	return nil
}

func (r *memCartRepo) Clear(ctx context.Context, cartID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[cartID] = nil
	return nil
}

// ---- wishlist ----

type memWishlistRepo struct {
	mu         sync.Mutex
	nextListID int64
	nextItemID int64
	lists      map[int64]model.Wishlist       // userID -> wishlist
	items      map[int64][]model.WishlistItem // wishlistID -> items
}

func newMemWishlistRepo() *memWishlistRepo {
	return &memWishlistRepo{
		nextListID: 1,
		nextItemID: 1,
		lists:      map[int64]model.Wishlist{},
		items:      map[int64][]model.WishlistItem{},
	}
}

func (r *memWishlistRepo) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if wl, ok := r.lists[userID]; ok {
		return wl, nil
	}
	wl := model.Wishlist{ID: r.nextListID, UserID: userID}
	r.nextListID++
	r.lists[userID] = wl
	return wl, nil
}

func (r *memWishlistRepo) FindByUserID(ctx context.Context, userID int64) (model.Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if wl, ok := r.lists[userID]; ok {
		return wl, nil
	}
	return model.Wishlist{}, repo.ErrNotFound
}

func (r *memWishlistRepo) ListItems(ctx context.Context, wishlistID int64) ([]model.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]model.WishlistItem, len(r.items[wishlistID]))
	copy(items, r.items[wishlistID])
	return items, nil
}

func (r *memWishlistRepo) AddProduct(ctx context.Context, wishlistID int64, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items[wishlistID] {
		if it.ProductID == productID {
			return nil
		}
	}
	r.items[wishlistID] = append(r.items[wishlistID], model.WishlistItem{
		ID:         r.nextItemID,
		WishlistID: wishlistID,
		ProductID:  productID,
	})
	r.nextItemID++
	return nil
}

func (r *memWishlistRepo) RemoveProduct(ctx context.Context, wishlistID int64, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[wishlistID][:0]
	for _, it := range r.items[wishlistID] {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	r.items[wishlistID] = kept
	return nil
}

// ---- users ----

// DBの一意制約（email、管理者は1人）を模す
type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  []model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1}
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repo.ErrEmailTaken
		}
	}
	if user.Role == model.RoleAdmin {
		for _, u := range r.users {
			if u.Role == model.RoleAdmin {
				return repo.ErrAdminExists
			}
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users = append(r.users, *user)
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == userID {
			cp := u
			return &cp, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

// ---- orders ----

type memOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders []model.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{nextID: 1}
}

func (r *memOrderRepo) Create(ctx context.Context, o model.Order) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID
	r.nextID++
	r.orders = append(r.orders, o)
	return o.ID, nil
}

func (r *memOrderRepo) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r *memOrderRepo) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type memOrderItemRepo struct {
	mu     sync.Mutex
	nextID int64
	items  []model.OrderItem
}

func newMemOrderItemRepo() *memOrderItemRepo {
	return &memOrderItemRepo{nextID: 1}
}

func (r *memOrderItemRepo) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		it.ID = r.nextID
		r.nextID++
		it.OrderID = orderID
		r.items = append(r.items, it)
	}
	return nil
}

func (r *memOrderItemRepo) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.OrderItem{}
	for _, it := range r.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memTxManager struct {
	orders     *memOrderRepo
	orderItems *memOrderItemRepo
	products   *memProductRepo
	audit      *memAuditRepo
}

func newMemTxManager() *memTxManager {
	return &memTxManager{
		orders:     newMemOrderRepo(),
		orderItems: newMemOrderItemRepo(),
		products:   newMemProductRepo(),
		audit:      &memAuditRepo{},
	}
}

func (m *memTxManager) Orders() repo.OrderRepository         { return m.orders }
func (m *memTxManager) OrderItems() repo.OrderItemRepository { return m.orderItems }
func (m *memTxManager) Products() repo.ProductRepository     { return m.products }
func (m *memTxManager) AuditLogs() repo.AuditLogRepository   { return m.audit }

// fnが失敗したら開始前の状態に巻き戻す（本物のロールバック相当）
func (m *memTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	ordersBefore := append([]model.Order(nil), m.orders.orders...)
	orderItemsBefore := append([]model.OrderItem(nil), m.orderItems.items...)
	productsBefore := append([]model.Product(nil), m.products.products...)
	logsBefore := append([]model.AuditLog(nil), m.audit.logs...)

	if err := fn(m); err != nil {
		m.orders.orders = ordersBefore
		m.orderItems.items = orderItemsBefore
		m.products.products = productsBefore
		m.audit.logs = logsBefore
		return err
	}
	return nil
}

// ---- audit ----

type memAuditRepo struct {
	mu      sync.Mutex
	failErr error //非nilならCreateを失敗させる
	logs    []model.AuditLog
}

func (r *memAuditRepo) Create(ctx context.Context, log model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.logs = append(r.logs, log)
	return nil
}

// ---- uploader ----

type fakeUploader struct {
	mu       sync.Mutex
	uploaded []string
	removed  []string
	failOn   string //このファイル名でアップロード失敗させる
}

func (u *fakeUploader) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if u.failOn != "" && filename == u.failOn {
		return "", errors.New("upload failed")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploaded = append(u.uploaded, filename)
	return "/uploads/" + filename, nil
}

func (u *fakeUploader) Remove(ctx context.Context, url string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.removed = append(u.removed, url)
	return nil
}

// ---- auth parts ----

type fakeIssuer struct{}

func (i *fakeIssuer) Issue(userID int64, email string, role model.Role, now time.Time) (string, time.Time, error) {
	return fmt.Sprintf("token-%d-%s", userID, strings.ToLower(string(role))), now.Add(time.Hour), nil
}

type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.t
}
