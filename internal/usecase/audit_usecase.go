package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"
)

// 管理画面の監査ログ閲覧
type AuditUsecase struct {
	audits repo.AuditLogRepository
	orders repo.OrderRepository
}

func NewAuditUsecase(audits repo.AuditLogRepository, orders repo.OrderRepository) *AuditUsecase {
	return &AuditUsecase{audits: audits, orders: orders}
}

type AuditListInput struct {
	ResourceType string
	ResourceID   string
	ActorID      string
	Action       string
	Page         int
	Limit        int
}

type AuditListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func (u *AuditUsecase) List(ctx context.Context, in AuditListInput) (AuditListOutput, error) {
	if in.Page < 1 {
		return AuditListOutput{}, validationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 200 {
		return AuditListOutput{}, validationError("invalid limit")
	}

	q := repo.AuditLogQuery{
		ResourceType: model.AuditResourceType(strings.ToLower(strings.TrimSpace(in.ResourceType))),
		ResourceID:   strings.TrimSpace(in.ResourceID),
		ActorID:      strings.TrimSpace(in.ActorID),
		Action:       model.AuditAction(strings.ToUpper(strings.TrimSpace(in.Action))),
		Limit:        in.Limit,
		Offset:       (in.Page - 1) * in.Limit,
	}
	switch q.ResourceType {
	case "", model.AuditResourceOrder, model.AuditResourceProduct:
	default:
		return AuditListOutput{}, validationError("invalid resource_type")
	}

	items, total, err := u.audits.Find(ctx, q)
	if err != nil {
		return AuditListOutput{}, dependencyError("failed to load audit logs", err)
	}
	if items == nil {
		items = []model.AuditLog{}
	}
	return AuditListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// OrderHistory は1注文のステータス変更履歴（新しい順）。
func (u *AuditUsecase) OrderHistory(ctx context.Context, orderRef string) ([]model.AuditLog, error) {
	orderRef = strings.TrimSpace(orderRef)
	if orderRef == "" {
		return nil, validationError("order_ref is required")
	}

	if _, err := u.orders.FindByOrderRef(ctx, orderRef); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError("order not found")
		}
		return nil, dependencyError("failed to load order", err)
	}

	items, _, err := u.audits.Find(ctx, repo.AuditLogQuery{
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderRef,
		Limit:        100,
	})
	if err != nil {
		return nil, dependencyError("failed to load audit logs", err)
	}
	if items == nil {
		items = []model.AuditLog{}
	}
	return items, nil
}
