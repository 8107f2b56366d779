package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 1通知の突き合わせにかける上限
const reconcileTimeout = 30 * time.Second

type NotificationOutcome string

const (
	// 遷移を適用した
	OutcomeApplied NotificationOutcome = "applied"
	// すでに同じステータス（重複通知）
	OutcomeUnchanged NotificationOutcome = "unchanged"
	// 許可されない遷移（終端状態など）
	OutcomeIgnored NotificationOutcome = "ignored"
	// 知らない注文参照。ログだけ残して200を返す
	OutcomeUnknownOrder NotificationOutcome = "unknown_order"
)

type NotificationResult struct {
	OrderRef       string              `json:"order_ref"`
	Outcome        NotificationOutcome `json:"outcome"`
	PreviousStatus model.OrderStatus   `json:"previous_status,omitempty"`
	Status         model.OrderStatus   `json:"status,omitempty"`

	// PAIDを適用したときだけ入る
	StockAfter       *int64 `json:"-"`
	CartItemsRemoved int64  `json:"-"`
}

// 注文ステータス変更イベント（outbox -> Kafka）
type orderStatusChangedEvent struct {
	EventID        string            `json:"event_id"`
	OrderRef       string            `json:"order_ref"`
	UserID         string            `json:"user_id"`
	ProductID      string            `json:"product_id"`
	Qty            int64             `json:"qty"`
	GrossAmount    string            `json:"gross_amount"`
	PreviousStatus model.OrderStatus `json:"previous_status"`
	Status         model.OrderStatus `json:"status"`
	GatewayStatus  string            `json:"gateway_status"`
	OccurredAt     string            `json:"occurred_at"`
}

// HandleNotification は決済ゲートウェイの通知を検証し、注文に反映する。
//
// 署名検証 -> ステータス変換 -> 1つのTxで
// 行ロック / 条件付きステータス更新 / (PAIDのときだけ) 在庫減算・カート削除・履歴・outbox。
// どこかで失敗すれば全部ロールバックし、ゲートウェイの再送に任せる。
func (u *TransactionUsecase) HandleNotification(ctx context.Context, n model.PaymentNotification) (NotificationResult, error) {
	if err := validateNotification(n); err != nil {
		u.metrics.ObserveNotification("", "invalid")
		return NotificationResult{}, err
	}

	if !n.VerifySignature(u.serverKey) {
		u.logger.WarnContext(ctx, "payment notification signature mismatch",
			"order_ref", n.OrderRef,
			"transaction_status", n.TransactionStatus,
		)
		u.metrics.ObserveNotification("", "bad_signature")
		return NotificationResult{}, authenticationError("invalid signature")
	}

	target := model.MapGatewayStatus(n.TransactionStatus, n.FraudStatus)

	key := strings.Join([]string{n.OrderRef, n.TransactionStatus, n.FraudStatus, n.StatusCode, n.GrossAmount}, "|")
	v, err, _ := u.flights.Do(key, func() (interface{}, error) {
		// 相乗りした呼び出しも同じ結果を受け取るので、最初の呼び出し元の切断で止めない
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
		defer cancel()
		return u.reconcile(rctx, n, target)
	})
	if err != nil {
		u.metrics.ObserveNotification(target, "error")
		return NotificationResult{}, err
	}

	res := v.(NotificationResult)
	u.metrics.ObserveNotification(target, string(res.Outcome))
	return res, nil
}

// ハンドラの validate タグと同じ必須チェック。ハンドラを通らない呼び出し元向け
func validateNotification(n model.PaymentNotification) error {
	required := []struct{ name, value string }{
		{"order_id", n.OrderRef},
		{"transaction_status", n.TransactionStatus},
		{"status_code", n.StatusCode},
		{"gross_amount", n.GrossAmount},
		{"signature_key", n.SignatureKey},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return validationError(f.name + " is required")
		}
	}
	if _, err := decimal.NewFromString(n.GrossAmount); err != nil {
		return validationError("gross_amount must be a decimal")
	}
	return nil
}

func (u *TransactionUsecase) reconcile(ctx context.Context, n model.PaymentNotification, target model.OrderStatus) (NotificationResult, error) {
	unlock, err := u.locker.Lock(ctx, n.OrderRef)
	if err != nil {
		u.logger.WarnContext(ctx, "order lock not acquired", "order_ref", n.OrderRef, "err", err)
		return NotificationResult{}, unavailableError("order is being reconciled, retry later", err)
	}
	defer unlock()

	res := NotificationResult{OrderRef: n.OrderRef}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderRefForUpdate(ctx, n.OrderRef)
		if errors.Is(err, repo.ErrNotFound) {
			res.Outcome = OutcomeUnknownOrder
			return nil
		}
		if err != nil {
			return dependencyError("failed to load order", err)
		}

		res.PreviousStatus = o.Status
		res.Status = o.Status

		if o.Status == target {
			res.Outcome = OutcomeUnchanged
			return nil
		}

		rows, err := r.Orders().UpdateStatusByOrderRef(ctx, o.OrderRef, target.AllowedFrom(), target)
		if err != nil {
			return dependencyError("failed to update order status", err)
		}
		if rows == 0 {
			res.Outcome = OutcomeIgnored
			return nil
		}
		res.Outcome = OutcomeApplied
		res.Status = target

		if target == model.OrderStatusPaid {
			if err := u.applyPaidEffects(ctx, r, o, &res); err != nil {
				return err
			}
		}

		if err := u.recordTransition(ctx, r, o, target, n); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); !ok {
			err = dependencyError("failed to reconcile order", err)
		}
		u.logger.ErrorContext(ctx, "payment notification failed", "order_ref", n.OrderRef, "err", err)
		return NotificationResult{}, err
	}

	switch res.Outcome {
	case OutcomeUnknownOrder:
		u.logger.WarnContext(ctx, "payment notification for unknown order", "order_ref", n.OrderRef)
	case OutcomeApplied:
		u.logger.InfoContext(ctx, "order status updated",
			"order_ref", n.OrderRef,
			"from", res.PreviousStatus,
			"to", res.Status,
			"transaction_status", n.TransactionStatus,
		)
	default:
		u.logger.InfoContext(ctx, "payment notification had no effect",
			"order_ref", n.OrderRef,
			"outcome", res.Outcome,
			"status", res.Status,
			"target", target,
		)
	}
	return res, nil
}

// 在庫減算とカート削除。在庫が足りなければTxごと失敗させる
func (u *TransactionUsecase) applyPaidEffects(ctx context.Context, r repo.TxRepos, o model.Order, res *NotificationResult) error {
	stock, err := r.Inventory().DecrementStock(ctx, o.ProductID, o.Qty)
	if errors.Is(err, repo.ErrInsufficientStock) {
		return consistencyError("insufficient stock for order "+o.OrderRef, err)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return consistencyError("product of order "+o.OrderRef+" no longer exists", err)
	}
	if err != nil {
		return dependencyError("failed to decrement stock", err)
	}
	res.StockAfter = &stock

	removed, err := r.CartItems().DeleteByUserAndProduct(ctx, o.UserID, o.ProductID)
	if err != nil {
		return dependencyError("failed to clear cart item", err)
	}
	res.CartItemsRemoved = removed

	ref := o.OrderRef
	if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
		ProductID: o.ProductID,
		OrderRef:  &ref,
		ActorID:   model.ActorPaymentGateway,
		Delta:     -o.Qty,
		Reason:    "payment settled",
	}); err != nil {
		return dependencyError("failed to record inventory adjustment", err)
	}
	return nil
}

// 監査ログとoutboxイベント
func (u *TransactionUsecase) recordTransition(ctx context.Context, r repo.TxRepos, o model.Order, to model.OrderStatus, n model.PaymentNotification) error {
	now := u.now()

	before, _ := json.Marshal(map[string]string{"status": string(o.Status)})
	after, _ := json.Marshal(map[string]string{
		"status":             string(to),
		"transaction_status": n.TransactionStatus,
		"fraud_status":       n.FraudStatus,
		"transaction_id":     n.TransactionID,
	})
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorID:      model.ActorPaymentGateway,
		Action:       model.AuditActionUpdateOrderStatus,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   o.OrderRef,
		BeforeJSON:   string(before),
		AfterJSON:    string(after),
		CreatedAt:    now,
	}); err != nil {
		return dependencyError("failed to write audit log", err)
	}

	ev := orderStatusChangedEvent{
		EventID:        uuid.NewString(),
		OrderRef:       o.OrderRef,
		UserID:         o.UserID,
		ProductID:      o.ProductID,
		Qty:            o.Qty,
		GrossAmount:    o.GrossAmount().StringFixed(2),
		PreviousStatus: o.Status,
		Status:         to,
		GatewayStatus:  n.TransactionStatus,
		OccurredAt:     now.UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return internalError(err)
	}
	if err := r.Outbox().Insert(ctx, model.OutboxEvent{
		EventID: ev.EventID,
		Topic:   model.TopicOrderStatusChanged,
		Key:     o.OrderRef,
		Payload: string(payload),
	}); err != nil {
		return dependencyError("failed to enqueue order event", err)
	}
	return nil
}
