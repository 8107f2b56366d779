package model

import "time"

// 注文ステータス変更などのイベント。同じTxで書き込み、relayがKafkaへ送る。
type OutboxEvent struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   string     `gorm:"type:varchar(36);not null;uniqueIndex" json:"event_id"`
	Topic     string     `gorm:"type:varchar(255);not null" json:"topic"`
	Key       string     `gorm:"type:varchar(255);not null" json:"key"`
	Payload   string     `gorm:"type:text;not null" json:"payload"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime;index" json:"created_at"`
	SentAt    *time.Time `gorm:"index" json:"sent_at,omitempty"`
}

const TopicOrderStatusChanged = "tradoora.order.status_changed"
