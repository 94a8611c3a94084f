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

type CreateProjectInput struct {
	BoardID uuid.UUID
	Name    string
	Status  string
}

type UpdateProjectInput struct {
	Name   *string
	Status *string
}

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*types.Project, error)
	Get(ctx context.Context, projectID uuid.UUID) (*types.Project, authz.Access, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*types.Project, error)
	Update(ctx context.Context, projectID uuid.UUID, in UpdateProjectInput) (*types.Project, error)
	SoftDelete(ctx context.Context, projectID uuid.UUID) error
}

type projectService struct {
	db       *gorm.DB
	log      *logger.Logger
	resolver *authz.Resolver
	projects repos.ProjectRepo
	recorder ledger.EventRecorder
}

func NewProjectService(
	db *gorm.DB,
	baseLog *logger.Logger,
	resolver *authz.Resolver,
	projects repos.ProjectRepo,
	recorder ledger.EventRecorder,
) ProjectService {
	return &projectService{
		db:       db,
		log:      baseLog.With("service", "ProjectService"),
		resolver: resolver,
		projects: projects,
		recorder: recorder,
	}
}

// Create attaches a project to a board the principal can edit. A project has
// no owner of its own; every later access decision walks back to the board.
func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (*types.Project, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, svcerr.Validationf("missing_name", "project name is required")
	}
	status := in.Status
	if status == "" {
		status = types.ProjectStatusDraft
	}
	if !types.ValidProjectStatus(status) {
		return nil, svcerr.Validationf("invalid_status", "unknown project status %q", status)
	}

	board, access, err := s.resolver.ResolveBoard(ctx, nil, pc, in.BoardID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if board == nil {
		return nil, svcerr.NotFound("board_not_found", fmt.Errorf("board not found"))
	}
	if !s.resolver.CanEdit(ctx, pc, access) {
		return nil, svcerr.Authorization("read_only", fmt.Errorf("principal may not edit this board"))
	}

	project := &types.Project{
		ID:      uuid.New(),
		BoardID: in.BoardID,
		Name:    name,
		Status:  status,
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.projects.Create(ctx, tx, []*types.Project{project})
		return err
	}); err != nil {
		return nil, svcerr.Storage("project_create_failed", err)
	}

	projectID := project.ID
	boardID := project.BoardID
	s.record(ctx, types.EventProjectCreated, &projectID, &boardID, map[string]interface{}{
		"name":   project.Name,
		"status": project.Status,
	})
	return project, nil
}

func (s *projectService) Get(ctx context.Context, projectID uuid.UUID) (*types.Project, authz.Access, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, authz.AccessNone, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	project, access, err := s.resolver.ResolveProject(ctx, nil, pc, projectID)
	if err != nil {
		return nil, authz.AccessNone, svcerr.Storage("resolve_failed", err)
	}
	if project == nil {
		return nil, authz.AccessNone, svcerr.NotFound("project_not_found", fmt.Errorf("project not found"))
	}
	return project, access, nil
}

func (s *projectService) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*types.Project, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	board, _, err := s.resolver.ResolveBoard(ctx, nil, pc, boardID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if board == nil {
		return nil, svcerr.NotFound("board_not_found", fmt.Errorf("board not found"))
	}
	projects, err := s.projects.ListByBoardID(ctx, nil, boardID)
	if err != nil {
		return nil, svcerr.Storage("project_list_failed", err)
	}
	return projects, nil
}

func (s *projectService) Update(ctx context.Context, projectID uuid.UUID, in UpdateProjectInput) (*types.Project, error) {
	project, err := s.requireEditable(ctx, projectID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, svcerr.Validationf("missing_name", "project name is required")
		}
		fields["name"] = name
	}
	if in.Status != nil {
		if !types.ValidProjectStatus(*in.Status) {
			return nil, svcerr.Validationf("invalid_status", "unknown project status %q", *in.Status)
		}
		fields["status"] = *in.Status
	}
	if len(fields) == 0 {
		return project, nil
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.projects.Update(ctx, tx, projectID, fields)
	}); err != nil {
		return nil, svcerr.Storage("project_update_failed", err)
	}

	updated, err := s.projects.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, svcerr.Storage("project_lookup_failed", err)
	}
	pID := projectID
	bID := project.BoardID
	s.record(ctx, types.EventProjectUpdated, &pID, &bID, fields)
	return updated, nil
}

func (s *projectService) SoftDelete(ctx context.Context, projectID uuid.UUID) error {
	project, err := s.requireEditable(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.projects.SoftDeleteByID(ctx, tx, projectID)
	}); err != nil {
		return svcerr.Storage("project_delete_failed", err)
	}
	pID := projectID
	bID := project.BoardID
	s.record(ctx, types.EventProjectDeleted, &pID, &bID, nil)
	return nil
}

func (s *projectService) requireEditable(ctx context.Context, projectID uuid.UUID) (*types.Project, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	project, access, err := s.resolver.ResolveProject(ctx, nil, pc, projectID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if project == nil {
		return nil, svcerr.NotFound("project_not_found", fmt.Errorf("project not found"))
	}
	if !s.resolver.CanEdit(ctx, pc, access) {
		return nil, svcerr.Authorization("read_only", fmt.Errorf("principal may not edit this project"))
	}
	return project, nil
}

func (s *projectService) record(ctx context.Context, eventType string, projectID, boardID *uuid.UUID, payload map[string]interface{}) {
	if _, err := s.recorder.Record(ctx, nil, ledger.RecordInput{
		EventType:  eventType,
		ObjectType: types.ObjectProject,
		ObjectID:   projectID,
		BoardID:    boardID,
		Payload:    payload,
	}); err != nil {
		s.log.Error("ledger append failed after project mutation", "event_type", eventType, "error", err)
	}
}
