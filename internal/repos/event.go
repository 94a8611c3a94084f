package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/types"
)

// EventRepo is append-only: the interface deliberately exposes no update or
// delete operation. Ledger rows are the audit spine and are never touched
// after insert.
type EventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, event *types.Event) (*types.Event, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Event, error)
	ListByBoardID(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) ([]*types.Event, error)
	ListByItemID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) ([]*types.Event, error)
	ListByActor(ctx context.Context, tx *gorm.DB, actorUserID uuid.UUID) ([]*types.Event, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	repoLog := baseLog.With("repo", "EventRepo")
	return &eventRepo{db: db, log: repoLog}
}

func (r *eventRepo) Create(ctx context.Context, tx *gorm.DB, event *types.Event) (*types.Event, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if event == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *eventRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Event, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Event
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *eventRepo) ListByBoardID(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) ([]*types.Event, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Event
	if boardID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *eventRepo) ListByItemID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) ([]*types.Event, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Event
	if itemID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *eventRepo) ListByActor(ctx context.Context, tx *gorm.DB, actorUserID uuid.UUID) ([]*types.Event, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Event
	if actorUserID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("actor_user_id = ?", actorUserID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
