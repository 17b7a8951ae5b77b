package repository

import (
	"context"

	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PendingClaimRepository interface {
	Create(ctx context.Context, pending *entity.PendingClaim) error
	Take(ctx context.Context, callID int64) (*entity.PendingClaim, error)
	CountByDropID(ctx context.Context, dropID int64) (int64, error)
}

type pendingClaimRepository struct{}

func NewPendingClaimRepository() *pendingClaimRepository {
	return &pendingClaimRepository{}
}

func (r *pendingClaimRepository) Create(ctx context.Context, pending *entity.PendingClaim) error {
	return xcontext.DB(ctx).Create(pending).Error
}

// Take consumes the pending claim. Only one caller can take a given call id;
// every later attempt gets gorm.ErrRecordNotFound, which makes the
// resolution callback idempotent.
func (r *pendingClaimRepository) Take(
	ctx context.Context, callID int64,
) (*entity.PendingClaim, error) {
	var result entity.PendingClaim
	if err := xcontext.DB(ctx).Take(&result, "call_id=?", callID).Error; err != nil {
		return nil, err
	}

	tx := xcontext.DB(ctx).Delete(&entity.PendingClaim{}, "call_id=?", callID)
	if tx.Error != nil {
		return nil, tx.Error
	}

	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return &result, nil
}

func (r *pendingClaimRepository) CountByDropID(ctx context.Context, dropID int64) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.PendingClaim{}).
		Where("drop_id=?", dropID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
