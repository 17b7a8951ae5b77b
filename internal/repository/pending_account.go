package repository

import (
	"context"

	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PendingAccountRepository interface {
	Create(ctx context.Context, pending *entity.PendingAccount) error
	Take(ctx context.Context, callID int64) (*entity.PendingAccount, error)
}

type pendingAccountRepository struct{}

func NewPendingAccountRepository() *pendingAccountRepository {
	return &pendingAccountRepository{}
}

func (r *pendingAccountRepository) Create(ctx context.Context, pending *entity.PendingAccount) error {
	return xcontext.DB(ctx).Create(pending).Error
}

func (r *pendingAccountRepository) Take(
	ctx context.Context, callID int64,
) (*entity.PendingAccount, error) {
	var result entity.PendingAccount
	if err := xcontext.DB(ctx).Take(&result, "call_id=?", callID).Error; err != nil {
		return nil, err
	}

	tx := xcontext.DB(ctx).Delete(&entity.PendingAccount{}, "call_id=?", callID)
	if tx.Error != nil {
		return nil, tx.Error
	}

	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return &result, nil
}
