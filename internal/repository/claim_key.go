package repository

import (
	"context"

	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ClaimKeyRepository interface {
	CreateAll(ctx context.Context, keys []entity.ClaimKey) error
	GetByPublicKey(ctx context.Context, publicKey string) (*entity.ClaimKey, error)
	GetExisted(ctx context.Context, publicKeys []string) ([]string, error)
	DeleteByDropID(ctx context.Context, dropID int64) error
	Consume(ctx context.Context, publicKey string) (*entity.Drop, bool, error)
}

type claimKeyRepository struct{}

func NewClaimKeyRepository() *claimKeyRepository {
	return &claimKeyRepository{}
}

func (r *claimKeyRepository) CreateAll(ctx context.Context, keys []entity.ClaimKey) error {
	return xcontext.DB(ctx).Create(keys).Error
}

func (r *claimKeyRepository) GetByPublicKey(
	ctx context.Context, publicKey string,
) (*entity.ClaimKey, error) {
	var result entity.ClaimKey
	if err := xcontext.DB(ctx).Take(&result, "public_key=?", publicKey).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetExisted returns the subset of publicKeys that is already bound to a
// drop.
func (r *claimKeyRepository) GetExisted(
	ctx context.Context, publicKeys []string,
) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).Model(&entity.ClaimKey{}).
		Where("public_key IN (?)", publicKeys).
		Pluck("public_key", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *claimKeyRepository) DeleteByDropID(ctx context.Context, dropID int64) error {
	return xcontext.DB(ctx).Delete(&entity.ClaimKey{}, "drop_id=?", dropID).Error
}

// Consume atomically removes the binding for publicKey and decrements the
// bound drop's claim counter, deleting the drop when the counter reaches
// zero. It returns the drop snapshot read after the decrement and whether
// the drop row was deleted. Run it inside a database transaction; the caller
// of the second concurrent claim for the same key observes
// gorm.ErrRecordNotFound. The counter is decremented in place so claims of
// distinct keys of the same drop never invalidate each other.
func (r *claimKeyRepository) Consume(
	ctx context.Context, publicKey string,
) (*entity.Drop, bool, error) {
	var key entity.ClaimKey
	if err := xcontext.DB(ctx).Take(&key, "public_key=?", publicKey).Error; err != nil {
		return nil, false, err
	}

	tx := xcontext.DB(ctx).Delete(&entity.ClaimKey{}, "public_key=?", publicKey)
	if tx.Error != nil {
		return nil, false, tx.Error
	}

	if tx.RowsAffected == 0 {
		return nil, false, gorm.ErrRecordNotFound
	}

	decrement := xcontext.DB(ctx).Model(&entity.Drop{}).
		Where("id=? AND remaining_claims > 0", key.DropID).
		Update("remaining_claims", gorm.Expr("remaining_claims - 1"))
	if decrement.Error != nil {
		return nil, false, decrement.Error
	}

	if decrement.RowsAffected == 0 {
		return nil, false, gorm.ErrRecordNotFound
	}

	var drop entity.Drop
	if err := xcontext.DB(ctx).Take(&drop, "id=?", key.DropID).Error; err != nil {
		return nil, false, err
	}

	if drop.RemainingClaims == 0 {
		if err := xcontext.DB(ctx).Delete(&entity.Drop{}, "id=?", drop.ID).Error; err != nil {
			return nil, false, err
		}

		return &drop, true, nil
	}

	return &drop, false, nil
}
