package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/types"
)

type ItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, items []*types.Item) ([]*types.Item, error)
	GetByID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*types.Item, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.Item, error)
	Update(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, fields map[string]interface{}) error
	SetRoom(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, roomID *uuid.UUID) error
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error
	CountActiveInRoom(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) (int64, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]*types.Item, error)
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	repoLog := baseLog.With("repo", "ItemRepo")
	return &itemRepo{db: db, log: repoLog}
}

func (r *itemRepo) Create(ctx context.Context, tx *gorm.DB, items []*types.Item) ([]*types.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(items) == 0 {
		return []*types.Item{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) GetByID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*types.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if itemID == uuid.Nil {
		return nil, nil
	}

	var result types.Item
	err := transaction.WithContext(ctx).
		Where("id = ?", itemID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *itemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Item
	if len(itemIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", itemIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *itemRepo) Update(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if itemID == uuid.Nil || len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Item{}).
		Where("id = ?", itemID).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *itemRepo) SetRoom(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, roomID *uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if itemID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Item{}).
		Where("id = ?", itemID).
		Update("room_id", roomID).Error; err != nil {
		return err
	}
	return nil
}

func (r *itemRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if itemID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&types.Item{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *itemRepo) CountActiveInRoom(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if roomID == uuid.Nil {
		return 0, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Item{}).
		Where("room_id = ?", roomID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *itemRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]*types.Item, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Item
	if ownerUserID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
