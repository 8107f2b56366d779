package model

import "time"

type AuditAction string

const (
	AuditActionUpdateStock       AuditAction = "UPDATE_STOCK"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
)

type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
)

// Midtrans通知で注文が動いたときの actor_id
const ActorPaymentGateway = "midtrans"

// AuditLog は追記のみ。更新・削除はしない。
// ResourceID は product なら商品ID、order なら order_ref。
// Before/After は変更前後のスナップショット（JSON文字列）。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID      string            `gorm:"type:varchar(64);not null;index" json:"actor_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index:idx_audit_resource,priority:1" json:"resource_type"`
	ResourceID   string            `gorm:"type:varchar(64);not null;index:idx_audit_resource,priority:2" json:"resource_id"`
	BeforeJSON   string            `gorm:"type:text" json:"before_json"`
	AfterJSON    string            `gorm:"type:text" json:"after_json"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
