package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/types"
)

type BoardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, boards []*types.Board) ([]*types.Board, error)
	GetByID(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) (*types.Board, error)
	Update(ctx context.Context, tx *gorm.DB, boardID uuid.UUID, fields map[string]interface{}) error
	SaveLayout(ctx context.Context, tx *gorm.DB, boardID uuid.UUID, layout datatypes.JSON) error
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) error
	CountActiveOwnedBy(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) (int64, error)
	ListOwnedBy(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]*types.Board, error)
}

type boardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBoardRepo(db *gorm.DB, baseLog *logger.Logger) BoardRepo {
	repoLog := baseLog.With("repo", "BoardRepo")
	return &boardRepo{db: db, log: repoLog}
}

func (r *boardRepo) Create(ctx context.Context, tx *gorm.DB, boards []*types.Board) ([]*types.Board, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(boards) == 0 {
		return []*types.Board{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

func (r *boardRepo) GetByID(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) (*types.Board, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if boardID == uuid.Nil {
		return nil, nil
	}

	var result types.Board
	err := transaction.WithContext(ctx).
		Where("id = ?", boardID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *boardRepo) Update(ctx context.Context, tx *gorm.DB, boardID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if boardID == uuid.Nil || len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Board{}).
		Where("id = ?", boardID).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *boardRepo) SaveLayout(ctx context.Context, tx *gorm.DB, boardID uuid.UUID, layout datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if boardID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Board{}).
		Where("id = ?", boardID).
		Update("latest_layout_json", layout).Error; err != nil {
		return err
	}
	return nil
}

func (r *boardRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if boardID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", boardID).
		Delete(&types.Board{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *boardRepo) CountActiveOwnedBy(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if ownerUserID == uuid.Nil {
		return 0, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Board{}).
		Where("owner_user_id = ?", ownerUserID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *boardRepo) ListOwnedBy(ctx context.Context, tx *gorm.DB, ownerUserID uuid.UUID) ([]*types.Board, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Board
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
