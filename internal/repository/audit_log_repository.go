package repository

import (
	"context"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
)

// 監査ログの検索条件。空の項目では絞り込まない
type AuditLogQuery struct {
	ResourceType model.AuditResourceType
	ResourceID   string
	ActorID      string
	Action       model.AuditAction
	Limit        int
	Offset       int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順。2つ目の戻り値は件数（Limit/Offset 適用前）
	Find(ctx context.Context, q AuditLogQuery) ([]model.AuditLog, int64, error)
}
