package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// OrderRefPrefix は決済ゲートウェイに渡す注文参照の接頭辞
const OrderRefPrefix = "TRADOORA-ORDER-"

// 決済ゲートウェイ（Midtrans Snap）の約束
type PaymentGateway interface {
	CreateSession(ctx context.Context, req model.SessionRequest) (model.Session, error)
}

// 注文参照を作る約束
type OrderRefGenerator interface {
	NewOrderRef() string
}

// Locker は注文単位の排他。取れなければエラーを返す
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// 決済まわりのメトリクス
type PaymentMetrics interface {
	ObserveCheckout(result string)
	ObserveNotification(status model.OrderStatus, outcome string)
}

type ulidOrderRefs struct{}

// ULID（単調増加）で TRADOORA-ORDER-<ULID> を作る
func NewULIDOrderRefGenerator() OrderRefGenerator { return ulidOrderRefs{} }

func (ulidOrderRefs) NewOrderRef() string {
	return OrderRefPrefix + ulid.Make().String()
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

type noopPaymentMetrics struct{}

func (noopPaymentMetrics) ObserveCheckout(string)                        {}
func (noopPaymentMetrics) ObserveNotification(model.OrderStatus, string) {}

// TransactionUsecase はチェックアウトと決済通知の突き合わせ。
type TransactionUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	users     repo.UserRepository
	products  repo.ProductRepository
	gateway   PaymentGateway
	serverKey string
	logger    *slog.Logger

	refs    OrderRefGenerator
	locker  Locker
	metrics PaymentMetrics
	now     func() time.Time

	// 同一プロセスでの同じ通知の同時実行をまとめる
	flights singleflight.Group
}

type TransactionOption func(*TransactionUsecase)

func WithLocker(l Locker) TransactionOption {
	return func(u *TransactionUsecase) { u.locker = l }
}

func WithPaymentMetrics(m PaymentMetrics) TransactionOption {
	return func(u *TransactionUsecase) { u.metrics = m }
}

func WithOrderRefGenerator(g OrderRefGenerator) TransactionOption {
	return func(u *TransactionUsecase) { u.refs = g }
}

// DI
func NewTransactionUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	users repo.UserRepository,
	products repo.ProductRepository,
	gateway PaymentGateway,
	serverKey string,
	logger *slog.Logger,
	opts ...TransactionOption,
) *TransactionUsecase {
	u := &TransactionUsecase{
		tx:        tx,
		orders:    orders,
		users:     users,
		products:  products,
		gateway:   gateway,
		serverKey: serverKey,
		logger:    logger,
		refs:      NewULIDOrderRefGenerator(),
		locker:    noopLocker{},
		metrics:   noopPaymentMetrics{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type CheckoutInput struct {
	UserID    string
	ProductID string
	Qty       int64
	Price     decimal.Decimal
}

type OrderOutput struct {
	ID          string    `json:"id"`
	OrderRef    string    `json:"order_ref"`
	UserID      string    `json:"user_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Qty         int64     `json:"qty"`
	Price       string    `json:"price"`
	GrossAmount string    `json:"gross_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CheckoutOutput struct {
	Order       OrderOutput `json:"order"`
	SnapToken   string      `json:"snap_token"`
	RedirectURL string      `json:"redirect_url"`
}

// Checkout はPENDINGの注文を1件作り、決済ゲートウェイのセッションを取る。
// ゲートウェイ失敗時も注文はPENDINGのまま残る（ResumeCheckoutで再取得できる）。
func (u *TransactionUsecase) Checkout(ctx context.Context, in CheckoutInput) (CheckoutOutput, error) {
	userID := strings.TrimSpace(in.UserID)
	productID := strings.TrimSpace(in.ProductID)
	if userID == "" {
		return CheckoutOutput{}, validationError("user_id is required")
	}
	if productID == "" {
		return CheckoutOutput{}, validationError("product_id is required")
	}
	if in.Qty <= 0 {
		return CheckoutOutput{}, validationError("qty must be a positive integer")
	}
	if !in.Price.IsPositive() {
		return CheckoutOutput{}, validationError("price must be positive")
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return CheckoutOutput{}, validationError("price must have at most 2 decimal places")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		return CheckoutOutput{}, dependencyError("failed to load user", err)
	}
	if user == nil {
		return CheckoutOutput{}, notFoundError("user not found")
	}

	product, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CheckoutOutput{}, notFoundError("product not found")
	}
	if err != nil {
		return CheckoutOutput{}, dependencyError("failed to load product", err)
	}

	created, err := u.orders.Create(ctx, model.Order{
		ID:        uuid.NewString(),
		OrderRef:  u.refs.NewOrderRef(),
		UserID:    user.ID,
		ProductID: product.ID,
		Qty:       in.Qty,
		Price:     in.Price,
		Status:    model.OrderStatusPending,
	})
	if err != nil {
		u.metrics.ObserveCheckout("store_error")
		return CheckoutOutput{}, dependencyError("failed to create order", err)
	}

	session, err := u.requestSession(ctx, created, user, &product)
	if err != nil {
		u.metrics.ObserveCheckout("gateway_error")
		return CheckoutOutput{}, err
	}

	u.metrics.ObserveCheckout("ok")
	u.logger.InfoContext(ctx, "checkout created",
		"order_ref", created.OrderRef,
		"user_id", created.UserID,
		"product_id", created.ProductID,
		"gross_amount", created.GrossAmount().StringFixed(2),
	)

	created.Product = &product
	return CheckoutOutput{
		Order:       toOrderOutput(created),
		SnapToken:   session.Token,
		RedirectURL: session.RedirectURL,
	}, nil
}

// ResumeCheckout は自分のPENDING注文に対してセッションを取り直す。
func (u *TransactionUsecase) ResumeCheckout(ctx context.Context, userID, orderRef string) (CheckoutOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return CheckoutOutput{}, authenticationError("unauthorized")
	}
	if strings.TrimSpace(orderRef) == "" {
		return CheckoutOutput{}, validationError("order_ref is required")
	}

	o, err := u.orders.FindByOrderRef(ctx, orderRef)
	if errors.Is(err, repo.ErrNotFound) {
		return CheckoutOutput{}, notFoundError("order not found")
	}
	if err != nil {
		return CheckoutOutput{}, dependencyError("failed to load order", err)
	}
	//他人の注文は「存在しない扱い」にする
	if o.UserID != userID {
		return CheckoutOutput{}, notFoundError("order not found")
	}
	if o.Status != model.OrderStatusPending {
		return CheckoutOutput{}, validationError("order is not pending")
	}

	session, err := u.requestSession(ctx, o, o.User, o.Product)
	if err != nil {
		u.metrics.ObserveCheckout("gateway_error")
		return CheckoutOutput{}, err
	}
	u.metrics.ObserveCheckout("resumed")

	return CheckoutOutput{
		Order:       toOrderOutput(o),
		SnapToken:   session.Token,
		RedirectURL: session.RedirectURL,
	}, nil
}

func (u *TransactionUsecase) requestSession(ctx context.Context, o model.Order, user *model.User, product *model.Product) (model.Session, error) {
	buyerName, buyerEmail := "Customer", ""
	if user != nil {
		if strings.TrimSpace(user.Name) != "" {
			buyerName = user.Name
		}
		buyerEmail = user.Email
	}
	productName := "Product"
	if product != nil && strings.TrimSpace(product.Name) != "" {
		productName = product.Name
	}

	session, err := u.gateway.CreateSession(ctx, model.SessionRequest{
		OrderRef:    o.OrderRef,
		GrossAmount: o.GrossAmount(),
		BuyerName:   buyerName,
		BuyerEmail:  buyerEmail,
		Items: []model.LineItem{{
			ID:    o.ProductID,
			Name:  productName,
			Qty:   o.Qty,
			Price: o.Price,
		}},
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "payment gateway create session failed", "order_ref", o.OrderRef, "err", err)
		return model.Session{}, dependencyError("payment gateway unavailable; order "+o.OrderRef+" is pending", err)
	}
	if session.Token == "" {
		u.logger.ErrorContext(ctx, "payment gateway returned empty token", "order_ref", o.OrderRef)
		return model.Session{}, dependencyError("payment gateway returned no token; order "+o.OrderRef+" is pending", nil)
	}
	return session, nil
}

// 自分の注文一覧（新しい順）
func (u *TransactionUsecase) ListByUser(ctx context.Context, userID string) ([]OrderOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return []OrderOutput{}, authenticationError("unauthorized")
	}

	orders, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return []OrderOutput{}, dependencyError("db error", err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs, nil
}

func (u *TransactionUsecase) GetByOrderRef(ctx context.Context, userID, orderRef string) (OrderOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return OrderOutput{}, authenticationError("unauthorized")
	}

	o, err := u.orders.FindByOrderRef(ctx, orderRef)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, notFoundError("order not found")
	}
	if err != nil {
		return OrderOutput{}, dependencyError("db error", err)
	}
	if o.UserID != userID {
		return OrderOutput{}, notFoundError("order not found")
	}
	return toOrderOutput(o), nil
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 管理者用の注文一覧
func (u *TransactionUsecase) ListAll(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch model.OrderStatus(f.Status) {
	case "", model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusChallenged, model.OrderStatusCancelled:
	default:
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	orders, total, err := u.orders.ListAdmin(ctx, f)
	if err != nil {
		return OrderListOutput{}, dependencyError("db error", err)
	}

	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return OrderListOutput{Items: outs, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func toOrderOutput(o model.Order) OrderOutput {
	out := OrderOutput{
		ID:          o.ID,
		OrderRef:    o.OrderRef,
		UserID:      o.UserID,
		ProductID:   o.ProductID,
		Qty:         o.Qty,
		Price:       o.Price.StringFixed(2),
		GrossAmount: o.GrossAmount().StringFixed(2),
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.Product != nil {
		out.ProductName = o.Product.Name
	}
	return out
}
