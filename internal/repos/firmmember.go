package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/types"
)

type FirmMemberRepo interface {
	Create(ctx context.Context, tx *gorm.DB, members []*types.FirmMember) ([]*types.FirmMember, error)
	GetActiveMembership(ctx context.Context, tx *gorm.DB, firmID, userID uuid.UUID) (*types.FirmMember, error)
	GetActiveFirmIDsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	MarkLeft(ctx context.Context, tx *gorm.DB, firmID, userID uuid.UUID) error
}

type firmMemberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFirmMemberRepo(db *gorm.DB, baseLog *logger.Logger) FirmMemberRepo {
	repoLog := baseLog.With("repo", "FirmMemberRepo")
	return &firmMemberRepo{db: db, log: repoLog}
}

func (r *firmMemberRepo) Create(ctx context.Context, tx *gorm.DB, members []*types.FirmMember) ([]*types.FirmMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(members) == 0 {
		return []*types.FirmMember{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *firmMemberRepo) GetActiveMembership(ctx context.Context, tx *gorm.DB, firmID, userID uuid.UUID) (*types.FirmMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if firmID == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}

	var result types.FirmMember
	err := transaction.WithContext(ctx).
		Where("firm_id = ? AND user_id = ? AND status = ? AND left_at IS NULL",
			firmID, userID, types.FirmMemberStatusActive).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *firmMemberRepo) GetActiveFirmIDsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []uuid.UUID
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.FirmMember{}).
		Where("user_id = ? AND status = ? AND left_at IS NULL", userID, types.FirmMemberStatusActive).
		Order("joined_at ASC").
		Pluck("firm_id", &results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *firmMemberRepo) MarkLeft(ctx context.Context, tx *gorm.DB, firmID, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if firmID == uuid.Nil || userID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.FirmMember{}).
		Where("firm_id = ? AND user_id = ? AND left_at IS NULL", firmID, userID).
		Updates(map[string]interface{}{
			"status":  types.FirmMemberStatusRemoved,
			"left_at": gorm.Expr("now()"),
		}).Error; err != nil {
		return err
	}
	return nil
}
