package repository

import (
	"context"
	"database/sql"

	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type DropRepository interface {
	Create(ctx context.Context, drop *entity.Drop) error
	GetByID(ctx context.Context, id int64) (*entity.Drop, error)
	DeleteByID(ctx context.Context, id int64) error
	SetFunded(ctx context.Context, id int64) error
	SetTokenID(ctx context.Context, id int64, tokenID string) error
}

type dropRepository struct{}

func NewDropRepository() *dropRepository {
	return &dropRepository{}
}

func (r *dropRepository) Create(ctx context.Context, drop *entity.Drop) error {
	return xcontext.DB(ctx).Create(drop).Error
}

func (r *dropRepository) GetByID(ctx context.Context, id int64) (*entity.Drop, error) {
	var result entity.Drop
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *dropRepository) DeleteByID(ctx context.Context, id int64) error {
	tx := xcontext.DB(ctx).Delete(&entity.Drop{}, "id=?", id)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *dropRepository) SetFunded(ctx context.Context, id int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Drop{}).
		Where("id=? AND funded=?", id, false).
		Update("funded", true)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *dropRepository) SetTokenID(ctx context.Context, id int64, tokenID string) error {
	tx := xcontext.DB(ctx).Model(&entity.Drop{}).
		Where("id=? AND (token_id IS NULL OR token_id='')", id).
		Update("token_id", sql.NullString{Valid: true, String: tokenID})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
