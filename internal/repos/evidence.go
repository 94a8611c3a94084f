package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/types"
)

// StepEvidenceRepo exposes no update or delete: submissions are immutable
// and corrections arrive as new versions.
type StepEvidenceRepo interface {
	CreateSubmission(ctx context.Context, tx *gorm.DB, sub *types.StepEvidenceSubmission) (*types.StepEvidenceSubmission, error)
	MaxVersion(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, timelineStepID int, supplierID uuid.UUID) (int, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StepEvidenceSubmission, error)
	ListVersions(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, timelineStepID int, supplierID uuid.UUID) ([]*types.StepEvidenceSubmission, error)
	GetCurrent(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, timelineStepID int, supplierID uuid.UUID) (*types.StepEvidenceSubmission, error)
	ListByItemStep(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, timelineStepID int) ([]*types.StepEvidenceSubmission, error)
}

type stepEvidenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStepEvidenceRepo(db *gorm.DB, baseLog *logger.Logger) StepEvidenceRepo {
	repoLog := baseLog.With("repo", "StepEvidenceRepo")
	return &stepEvidenceRepo{db: db, log: repoLog}
}

func (r *stepEvidenceRepo) CreateSubmission(ctx context.Context, tx *gorm.DB, sub *types.StepEvidenceSubmission) (*types.StepEvidenceSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if sub == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *stepEvidenceRepo) MaxVersion(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, timelineStepID int, supplierID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if itemID == uuid.Nil || supplierID == uuid.Nil {
		return 0, nil
	}

	var max int
	if err := transaction.WithContext(ctx).
		Model(&types.StepEvidenceSubmission{}).
		Where("item_id = ? AND timeline_step_id = ? AND supplier_id = ?", itemID, timelineStepID, supplierID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *stepEvidenceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StepEvidenceSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.StepEvidenceSubmission
	err := transaction.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("id = ?", id).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *stepEvidenceRepo) ListVersions(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, timelineStepID int, supplierID uuid.UUID) ([]*types.StepEvidenceSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.StepEvidenceSubmission
	if itemID == uuid.Nil || supplierID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("item_id = ? AND timeline_step_id = ? AND supplier_id = ?", itemID, timelineStepID, supplierID).
		Order("version ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *stepEvidenceRepo) GetCurrent(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, timelineStepID int, supplierID uuid.UUID) (*types.StepEvidenceSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if itemID == uuid.Nil || supplierID == uuid.Nil {
		return nil, nil
	}

	var result types.StepEvidenceSubmission
	err := transaction.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("item_id = ? AND timeline_step_id = ? AND supplier_id = ?", itemID, timelineStepID, supplierID).
		Order("version DESC").
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *stepEvidenceRepo) ListByItemStep(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, timelineStepID int) ([]*types.StepEvidenceSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.StepEvidenceSubmission
	if itemID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("item_id = ? AND timeline_step_id = ?", itemID, timelineStepID).
		Order("supplier_id ASC, version ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
