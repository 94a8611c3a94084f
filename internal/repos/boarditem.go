package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/types"
)

// BoardItemRepo never hard-deletes rows: removal flips removed_at so the
// full add/remove history of a board stays queryable.
type BoardItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.BoardItem) ([]*types.BoardItem, error)
	GetActive(ctx context.Context, tx *gorm.DB, boardID, itemID uuid.UUID) (*types.BoardItem, error)
	MarkRemoved(ctx context.Context, tx *gorm.DB, rowID uuid.UUID) error
	ListActiveByBoard(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) ([]*types.BoardItem, error)
	ListHistoryByBoard(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) ([]*types.BoardItem, error)
}

type boardItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBoardItemRepo(db *gorm.DB, baseLog *logger.Logger) BoardItemRepo {
	repoLog := baseLog.With("repo", "BoardItemRepo")
	return &boardItemRepo{db: db, log: repoLog}
}

func (r *boardItemRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.BoardItem) ([]*types.BoardItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.BoardItem{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *boardItemRepo) GetActive(ctx context.Context, tx *gorm.DB, boardID, itemID uuid.UUID) (*types.BoardItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if boardID == uuid.Nil || itemID == uuid.Nil {
		return nil, nil
	}

	var result types.BoardItem
	err := transaction.WithContext(ctx).
		Where("board_id = ? AND item_id = ? AND removed_at IS NULL", boardID, itemID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *boardItemRepo) MarkRemoved(ctx context.Context, tx *gorm.DB, rowID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if rowID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.BoardItem{}).
		Where("id = ? AND removed_at IS NULL", rowID).
		Update("removed_at", gorm.Expr("now()")).Error; err != nil {
		return err
	}
	return nil
}

func (r *boardItemRepo) ListActiveByBoard(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) ([]*types.BoardItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.BoardItem
	if boardID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("board_id = ? AND removed_at IS NULL", boardID).
		Order("added_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *boardItemRepo) ListHistoryByBoard(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) ([]*types.BoardItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.BoardItem
	if boardID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("added_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
