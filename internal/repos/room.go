package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/types"
)

type RoomRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rooms []*types.Room) ([]*types.Room, error)
	GetByID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) (*types.Room, error)
	Update(ctx context.Context, tx *gorm.DB, roomID uuid.UUID, fields map[string]interface{}) error
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) error
	ListByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Room, error)
	MaxDisplayOrder(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int, error)
	SetDisplayOrder(ctx context.Context, tx *gorm.DB, roomID uuid.UUID, order int) error
}

type roomRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoomRepo(db *gorm.DB, baseLog *logger.Logger) RoomRepo {
	repoLog := baseLog.With("repo", "RoomRepo")
	return &roomRepo{db: db, log: repoLog}
}

func (r *roomRepo) Create(ctx context.Context, tx *gorm.DB, rooms []*types.Room) ([]*types.Room, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rooms) == 0 {
		return []*types.Room{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *roomRepo) GetByID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) (*types.Room, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if roomID == uuid.Nil {
		return nil, nil
	}

	var result types.Room
	err := transaction.WithContext(ctx).
		Where("id = ?", roomID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *roomRepo) Update(ctx context.Context, tx *gorm.DB, roomID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if roomID == uuid.Nil || len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Room{}).
		Where("id = ?", roomID).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *roomRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if roomID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", roomID).
		Delete(&types.Room{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *roomRepo) ListByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Room, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Room
	if projectID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("display_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roomRepo) MaxDisplayOrder(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if projectID == uuid.Nil {
		return 0, nil
	}

	var max int
	if err := transaction.WithContext(ctx).
		Model(&types.Room{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *roomRepo) SetDisplayOrder(ctx context.Context, tx *gorm.DB, roomID uuid.UUID, order int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if roomID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Room{}).
		Where("id = ?", roomID).
		Update("display_order", order).Error; err != nil {
		return err
	}
	return nil
}
