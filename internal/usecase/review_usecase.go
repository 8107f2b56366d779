package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"github.com/google/uuid"
)

type ReviewUsecase struct {
	reviewRepo  repo.ReviewRepository
	productRepo repo.ProductRepository
}

func NewReviewUsecase(reviewRepo repo.ReviewRepository, productRepo repo.ProductRepository) *ReviewUsecase {
	return &ReviewUsecase{reviewRepo: reviewRepo, productRepo: productRepo}
}

type CreateReviewInput struct {
	ProductID string
	Rating    int
	Comment   *string
}

type ReviewerOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ReviewOutput struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Rating    int             `json:"rating"`
	Comment   *string         `json:"comment"`
	CreatedAt time.Time       `json:"created_at"`
	User      *ReviewerOutput `json:"user,omitempty"`
}

func (u *ReviewUsecase) Create(ctx context.Context, userID string, in CreateReviewInput) (ReviewOutput, error) {
	if userID == "" {
		return ReviewOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return ReviewOutput{}, NewHTTPError(http.StatusBadRequest, "product_id required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return ReviewOutput{}, NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}
	if in.Comment != nil {
		c := strings.TrimSpace(*in.Comment)
		if c == "" {
			in.Comment = nil
		} else {
			in.Comment = &c
		}
	}

	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ReviewOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return ReviewOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	r, err := u.reviewRepo.Create(ctx, model.Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: in.ProductID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return ReviewOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toReviewOutput(r), nil
}

// 新しい順
func (u *ReviewUsecase) ListByProduct(ctx context.Context, productID string) ([]ReviewOutput, error) {
	list, err := u.reviewRepo.ListByProductID(ctx, productID)
	if err != nil {
		return []ReviewOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toReviewOutputs(list), nil
}

func (u *ReviewUsecase) ListAll(ctx context.Context) ([]ReviewOutput, error) {
	list, err := u.reviewRepo.ListAll(ctx)
	if err != nil {
		return []ReviewOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toReviewOutputs(list), nil
}

func toReviewOutputs(list []model.Review) []ReviewOutput {
	out := make([]ReviewOutput, 0, len(list))
	for _, r := range list {
		out = append(out, toReviewOutput(r))
	}
	return out
}

func toReviewOutput(r model.Review) ReviewOutput {
	out := ReviewOutput{
		ID:        r.ID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.User != nil {
		out.User = &ReviewerOutput{ID: r.User.ID, Name: r.User.Name}
	}
	return out
}
