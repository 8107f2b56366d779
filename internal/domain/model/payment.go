package model

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"github.com/shopspring/decimal"
)

// 決済セッション作成時に渡す明細
type LineItem struct {
	ID    string
	Name  string
	Qty   int64
	Price decimal.Decimal
}

// SessionRequest はゲートウェイへ渡す決済セッション作成の入力。
type SessionRequest struct {
	OrderRef    string
	GrossAmount decimal.Decimal
	BuyerName   string
	BuyerEmail  string
	Items       []LineItem
}

// ゲートウェイが返すホスト型決済ページ
type Session struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// PaymentNotification はゲートウェイからの非同期通知。
// 未知のフィールドは無視する。
type PaymentNotification struct {
	OrderRef          string `json:"order_id" validate:"required,max=64"`
	TransactionStatus string `json:"transaction_status" validate:"required"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code" validate:"required,numeric"`
	GrossAmount       string `json:"gross_amount" validate:"required"`
	SignatureKey      string `json:"signature_key" validate:"required,hexadecimal"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
	TransactionTime   string `json:"transaction_time"`
}

// MapGatewayStatus はゲートウェイの transaction_status / fraud_status を注文ステータスへ写す。
// 未知の値は PENDING。
func MapGatewayStatus(transactionStatus, fraudStatus string) OrderStatus {
	switch transactionStatus {
	case "capture":
		// accept 以外(空を含む)は要確認
		if fraudStatus == "accept" {
			return OrderStatusPaid
		}
		return OrderStatusChallenged
	case "settlement":
		return OrderStatusPaid
	case "cancel", "deny", "expire", "failure":
		return OrderStatusCancelled
	default:
		return OrderStatusPending
	}
}

// NotificationSignature は SHA-512(order_id + status_code + gross_amount + server_key) の16進表記。
func NotificationSignature(orderRef, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderRef + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature は通知に付いた signature_key を定数時間で比較する。
func (n PaymentNotification) VerifySignature(serverKey string) bool {
	expected := NotificationSignature(n.OrderRef, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}
