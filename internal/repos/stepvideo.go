package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/types"
)

// StepVideoRepo mirrors StepEvidenceRepo for the step-4/5/6 video
// sub-ledger; rows are immutable, versions only grow.
type StepVideoRepo interface {
	CreateSubmission(ctx context.Context, tx *gorm.DB, sub *types.StepVideoSubmission) (*types.StepVideoSubmission, error)
	MaxVersion(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, stepNumber int) (int, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StepVideoSubmission, error)
	ListVersions(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, stepNumber int) ([]*types.StepVideoSubmission, error)
	GetCurrent(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, stepNumber int) (*types.StepVideoSubmission, error)
}

type stepVideoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStepVideoRepo(db *gorm.DB, baseLog *logger.Logger) StepVideoRepo {
	repoLog := baseLog.With("repo", "StepVideoRepo")
	return &stepVideoRepo{db: db, log: repoLog}
}

func (r *stepVideoRepo) CreateSubmission(ctx context.Context, tx *gorm.DB, sub *types.StepVideoSubmission) (*types.StepVideoSubmission, error) {
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

func (r *stepVideoRepo) MaxVersion(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, stepNumber int) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if itemID == uuid.Nil {
		return 0, nil
	}

	var max int
	if err := transaction.WithContext(ctx).
		Model(&types.StepVideoSubmission{}).
		Where("item_id = ? AND step_number = ?", itemID, stepNumber).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *stepVideoRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.StepVideoSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.StepVideoSubmission
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

func (r *stepVideoRepo) ListVersions(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, stepNumber int) ([]*types.StepVideoSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.StepVideoSubmission
	if itemID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("item_id = ? AND step_number = ?", itemID, stepNumber).
		Order("version ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *stepVideoRepo) GetCurrent(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, stepNumber int) (*types.StepVideoSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if itemID == uuid.Nil {
		return nil, nil
	}

	var result types.StepVideoSubmission
	err := transaction.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("item_id = ? AND step_number = ?", itemID, stepNumber).
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
