package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/authz"
	"github.com/studiolane/studiolane-backend/internal/ledger"
	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/repos"
	"github.com/studiolane/studiolane-backend/internal/svcerr"
	"github.com/studiolane/studiolane-backend/internal/types"
)

type AddProjectCommentInput struct {
	ProjectID       uuid.UUID
	ParentCommentID *uuid.UUID
	ItemID          *uuid.UUID
	VideoID         *uuid.UUID
	Text            string
	IsUrgent        bool
}

type UpdateProjectCommentInput struct {
	Text     *string
	IsUrgent *bool
}

// ProjectCommentService is the one mutable comment surface: authors (or
// admins) may edit and soft-delete. Step and evidence comments stay
// append-only.
type ProjectCommentService interface {
	Add(ctx context.Context, in AddProjectCommentInput) (*types.ProjectComment, error)
	Update(ctx context.Context, commentID uuid.UUID, in UpdateProjectCommentInput) (*types.ProjectComment, error)
	SoftDelete(ctx context.Context, commentID uuid.UUID) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*types.ProjectComment, error)
}

type projectCommentService struct {
	db       *gorm.DB
	log      *logger.Logger
	resolver *authz.Resolver
	comments repos.ProjectCommentRepo
	recorder ledger.EventRecorder
	notifier ledger.Notifier
}

func NewProjectCommentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	resolver *authz.Resolver,
	comments repos.ProjectCommentRepo,
	recorder ledger.EventRecorder,
	notifier ledger.Notifier,
) ProjectCommentService {
	return &projectCommentService{
		db:       db,
		log:      baseLog.With("service", "ProjectCommentService"),
		resolver: resolver,
		comments: comments,
		recorder: recorder,
		notifier: notifier,
	}
}

// Add requires any resolvable access to the project: team viewers may
// comment even though they cannot edit the project itself.
func (s *projectCommentService) Add(ctx context.Context, in AddProjectCommentInput) (*types.ProjectComment, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, svcerr.Validationf("missing_text", "comment text is required")
	}
	project, _, err := s.resolver.ResolveProject(ctx, nil, pc, in.ProjectID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if project == nil {
		return nil, svcerr.NotFound("project_not_found", fmt.Errorf("project not found"))
	}
	if in.ParentCommentID != nil {
		parent, err := s.comments.GetByID(ctx, nil, *in.ParentCommentID)
		if err != nil {
			return nil, svcerr.Storage("comment_lookup_failed", err)
		}
		if parent == nil || parent.ProjectID != in.ProjectID {
			return nil, svcerr.Validationf("invalid_parent", "parent comment does not belong to the project")
		}
	}

	comment := &types.ProjectComment{
		ID:              uuid.New(),
		ProjectID:       in.ProjectID,
		AuthorUserID:    pc.UserID,
		ParentCommentID: in.ParentCommentID,
		ItemID:          in.ItemID,
		VideoID:         in.VideoID,
		Text:            text,
		IsUrgent:        in.IsUrgent,
	}
	if _, err := s.comments.Create(ctx, nil, []*types.ProjectComment{comment}); err != nil {
		return nil, svcerr.Storage("comment_insert_failed", err)
	}

	s.record(ctx, types.EventProjectCommentAdded, comment.ID, map[string]interface{}{
		"project_id": in.ProjectID.String(),
		"is_urgent":  in.IsUrgent,
	})
	if s.notifier != nil {
		go s.notifier.Dispatch("project_comment_added", map[string]interface{}{
			"project_id": in.ProjectID.String(),
			"comment_id": comment.ID.String(),
			"is_urgent":  in.IsUrgent,
		})
	}
	return comment, nil
}

func (s *projectCommentService) Update(ctx context.Context, commentID uuid.UUID, in UpdateProjectCommentInput) (*types.ProjectComment, error) {
	comment, err := s.requireAuthor(ctx, commentID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Text != nil {
		text := strings.TrimSpace(*in.Text)
		if text == "" {
			return nil, svcerr.Validationf("missing_text", "comment text is required")
		}
		fields["text"] = text
	}
	if in.IsUrgent != nil {
		fields["is_urgent"] = *in.IsUrgent
	}
	if len(fields) == 0 {
		return comment, nil
	}

	if err := s.comments.Update(ctx, nil, commentID, fields); err != nil {
		return nil, svcerr.Storage("comment_update_failed", err)
	}
	updated, err := s.comments.GetByID(ctx, nil, commentID)
	if err != nil {
		return nil, svcerr.Storage("comment_lookup_failed", err)
	}
	s.record(ctx, types.EventProjectCommentUpdated, commentID, nil)
	return updated, nil
}

func (s *projectCommentService) SoftDelete(ctx context.Context, commentID uuid.UUID) error {
	if _, err := s.requireAuthor(ctx, commentID); err != nil {
		return err
	}
	if err := s.comments.SoftDeleteByID(ctx, nil, commentID); err != nil {
		return svcerr.Storage("comment_delete_failed", err)
	}
	s.record(ctx, types.EventProjectCommentDeleted, commentID, nil)
	return nil
}

func (s *projectCommentService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*types.ProjectComment, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	project, _, err := s.resolver.ResolveProject(ctx, nil, pc, projectID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if project == nil {
		return nil, svcerr.NotFound("project_not_found", fmt.Errorf("project not found"))
	}
	comments, err := s.comments.ListByProjectID(ctx, nil, projectID)
	if err != nil {
		return nil, svcerr.Storage("comment_list_failed", err)
	}
	return comments, nil
}

// requireAuthor gates mutation to the comment's author or an admin.
func (s *projectCommentService) requireAuthor(ctx context.Context, commentID uuid.UUID) (*types.ProjectComment, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	comment, err := s.comments.GetByID(ctx, nil, commentID)
	if err != nil {
		return nil, svcerr.Storage("comment_lookup_failed", err)
	}
	if comment == nil {
		return nil, svcerr.NotFound("comment_not_found", fmt.Errorf("comment not found"))
	}
	if !pc.IsAdmin && comment.AuthorUserID != pc.UserID {
		return nil, svcerr.Authorization("not_author", fmt.Errorf("only the author may modify a comment"))
	}
	return comment, nil
}

func (s *projectCommentService) record(ctx context.Context, eventType string, commentID uuid.UUID, payload map[string]interface{}) {
	id := commentID
	if _, err := s.recorder.Record(ctx, nil, ledger.RecordInput{
		EventType:  eventType,
		ObjectType: types.ObjectProjectComment,
		ObjectID:   &id,
		Payload:    payload,
	}); err != nil {
		s.log.Error("ledger append failed after comment mutation", "event_type", eventType, "error", err)
	}
}
