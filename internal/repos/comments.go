package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/types"
)

// StepCommentRepo and EvidenceCommentRepo are append-only; ProjectCommentRepo
// is the one comment store with update and delete.

type StepCommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, comments []*types.StepComment) ([]*types.StepComment, error)
	ListByItemStep(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, stepNumber int) ([]*types.StepComment, error)
}

type stepCommentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStepCommentRepo(db *gorm.DB, baseLog *logger.Logger) StepCommentRepo {
	repoLog := baseLog.With("repo", "StepCommentRepo")
	return &stepCommentRepo{db: db, log: repoLog}
}

func (r *stepCommentRepo) Create(ctx context.Context, tx *gorm.DB, comments []*types.StepComment) ([]*types.StepComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(comments) == 0 {
		return []*types.StepComment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *stepCommentRepo) ListByItemStep(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, stepNumber int) ([]*types.StepComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.StepComment
	if itemID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("item_id = ? AND step_number = ?", itemID, stepNumber).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type EvidenceCommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, comments []*types.EvidenceComment) ([]*types.EvidenceComment, error)
	ListByEvidenceID(ctx context.Context, tx *gorm.DB, evidenceID uuid.UUID) ([]*types.EvidenceComment, error)
}

type evidenceCommentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvidenceCommentRepo(db *gorm.DB, baseLog *logger.Logger) EvidenceCommentRepo {
	repoLog := baseLog.With("repo", "EvidenceCommentRepo")
	return &evidenceCommentRepo{db: db, log: repoLog}
}

func (r *evidenceCommentRepo) Create(ctx context.Context, tx *gorm.DB, comments []*types.EvidenceComment) ([]*types.EvidenceComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(comments) == 0 {
		return []*types.EvidenceComment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *evidenceCommentRepo) ListByEvidenceID(ctx context.Context, tx *gorm.DB, evidenceID uuid.UUID) ([]*types.EvidenceComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.EvidenceComment
	if evidenceID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("evidence_id = ?", evidenceID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type ProjectCommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, comments []*types.ProjectComment) ([]*types.ProjectComment, error)
	GetByID(ctx context.Context, tx *gorm.DB, commentID uuid.UUID) (*types.ProjectComment, error)
	Update(ctx context.Context, tx *gorm.DB, commentID uuid.UUID, fields map[string]interface{}) error
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, commentID uuid.UUID) error
	ListByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.ProjectComment, error)
}

type projectCommentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectCommentRepo(db *gorm.DB, baseLog *logger.Logger) ProjectCommentRepo {
	repoLog := baseLog.With("repo", "ProjectCommentRepo")
	return &projectCommentRepo{db: db, log: repoLog}
}

func (r *projectCommentRepo) Create(ctx context.Context, tx *gorm.DB, comments []*types.ProjectComment) ([]*types.ProjectComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(comments) == 0 {
		return []*types.ProjectComment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *projectCommentRepo) GetByID(ctx context.Context, tx *gorm.DB, commentID uuid.UUID) (*types.ProjectComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if commentID == uuid.Nil {
		return nil, nil
	}

	var result types.ProjectComment
	err := transaction.WithContext(ctx).
		Where("id = ?", commentID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *projectCommentRepo) Update(ctx context.Context, tx *gorm.DB, commentID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if commentID == uuid.Nil || len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.ProjectComment{}).
		Where("id = ?", commentID).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *projectCommentRepo) SoftDeleteByID(ctx context.Context, tx *gorm.DB, commentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if commentID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", commentID).
		Delete(&types.ProjectComment{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *projectCommentRepo) ListByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.ProjectComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ProjectComment
	if projectID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
