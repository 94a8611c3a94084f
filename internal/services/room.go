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

type CreateRoomInput struct {
	ProjectID uuid.UUID
	Name      string
}

type RoomService interface {
	Create(ctx context.Context, in CreateRoomInput) (*types.Room, error)
	Get(ctx context.Context, roomID uuid.UUID) (*types.Room, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*types.Room, error)
	Rename(ctx context.Context, roomID uuid.UUID, name string) (*types.Room, error)
	Reorder(ctx context.Context, projectID uuid.UUID, orderedRoomIDs []uuid.UUID) error
	SoftDelete(ctx context.Context, roomID uuid.UUID) error
}

type roomService struct {
	db       *gorm.DB
	log      *logger.Logger
	resolver *authz.Resolver
	rooms    repos.RoomRepo
	items    repos.ItemRepo
	recorder ledger.EventRecorder
}

func NewRoomService(
	db *gorm.DB,
	baseLog *logger.Logger,
	resolver *authz.Resolver,
	rooms repos.RoomRepo,
	items repos.ItemRepo,
	recorder ledger.EventRecorder,
) RoomService {
	return &roomService{
		db:       db,
		log:      baseLog.With("service", "RoomService"),
		resolver: resolver,
		rooms:    rooms,
		items:    items,
		recorder: recorder,
	}
}

// Create appends a room at the end of the project's ordering. The display
// order is assigned inside the transaction so concurrent creates cannot
// observe the same max.
func (s *roomService) Create(ctx context.Context, in CreateRoomInput) (*types.Room, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, svcerr.Validationf("missing_name", "room name is required")
	}
	project, access, err := s.resolver.ResolveProject(ctx, nil, pc, in.ProjectID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if project == nil {
		return nil, svcerr.NotFound("project_not_found", fmt.Errorf("project not found"))
	}
	if !s.resolver.CanEdit(ctx, pc, access) {
		return nil, svcerr.Authorization("read_only", fmt.Errorf("principal may not edit this project"))
	}

	room := &types.Room{
		ID:        uuid.New(),
		ProjectID: in.ProjectID,
		Name:      name,
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		max, err := s.rooms.MaxDisplayOrder(ctx, tx, in.ProjectID)
		if err != nil {
			return err
		}
		room.DisplayOrder = max + 1
		_, err = s.rooms.Create(ctx, tx, []*types.Room{room})
		return err
	}); err != nil {
		return nil, svcerr.Storage("room_create_failed", err)
	}

	roomID := room.ID
	s.record(ctx, types.EventRoomCreated, &roomID, map[string]interface{}{
		"name":          room.Name,
		"display_order": room.DisplayOrder,
	})
	return room, nil
}

func (s *roomService) Get(ctx context.Context, roomID uuid.UUID) (*types.Room, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	room, _, err := s.resolver.ResolveRoom(ctx, nil, pc, roomID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if room == nil {
		return nil, svcerr.NotFound("room_not_found", fmt.Errorf("room not found"))
	}
	return room, nil
}

func (s *roomService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*types.Room, error) {
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
	rooms, err := s.rooms.ListByProjectID(ctx, nil, projectID)
	if err != nil {
		return nil, svcerr.Storage("room_list_failed", err)
	}
	return rooms, nil
}

func (s *roomService) Rename(ctx context.Context, roomID uuid.UUID, name string) (*types.Room, error) {
	room, err := s.requireEditable(ctx, roomID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, svcerr.Validationf("missing_name", "room name is required")
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.rooms.Update(ctx, tx, roomID, map[string]interface{}{"name": name})
	}); err != nil {
		return nil, svcerr.Storage("room_update_failed", err)
	}
	room.Name = name
	rID := roomID
	s.record(ctx, types.EventRoomUpdated, &rID, map[string]interface{}{"name": name})
	return room, nil
}

// Reorder rewrites the ordering of every room in the project. The submitted
// list must be exactly the project's current room set; the result is a dense
// 1..N sequence in the submitted order.
func (s *roomService) Reorder(ctx context.Context, projectID uuid.UUID, orderedRoomIDs []uuid.UUID) error {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	project, access, err := s.resolver.ResolveProject(ctx, nil, pc, projectID)
	if err != nil {
		return svcerr.Storage("resolve_failed", err)
	}
	if project == nil {
		return svcerr.NotFound("project_not_found", fmt.Errorf("project not found"))
	}
	if !s.resolver.CanEdit(ctx, pc, access) {
		return svcerr.Authorization("read_only", fmt.Errorf("principal may not edit this project"))
	}

	current, err := s.rooms.ListByProjectID(ctx, nil, projectID)
	if err != nil {
		return svcerr.Storage("room_list_failed", err)
	}
	if len(orderedRoomIDs) != len(current) {
		return svcerr.Validationf("incomplete_ordering", "ordering names %d rooms, project has %d", len(orderedRoomIDs), len(current))
	}
	known := make(map[uuid.UUID]struct{}, len(current))
	for _, room := range current {
		known[room.ID] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(orderedRoomIDs))
	for _, id := range orderedRoomIDs {
		if _, ok := known[id]; !ok {
			return svcerr.Validationf("unknown_room", "room %s does not belong to the project", id)
		}
		if _, dup := seen[id]; dup {
			return svcerr.Validationf("duplicate_room", "room %s appears twice in the ordering", id)
		}
		seen[id] = struct{}{}
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedRoomIDs {
			if err := s.rooms.SetDisplayOrder(ctx, tx, id, i+1); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return svcerr.Storage("room_reorder_failed", err)
	}

	pID := projectID
	if _, err := s.recorder.Record(ctx, nil, ledger.RecordInput{
		EventType:  types.EventRoomReordered,
		ObjectType: types.ObjectProject,
		ObjectID:   &pID,
		Payload:    map[string]interface{}{"room_count": len(orderedRoomIDs)},
	}); err != nil {
		s.log.Error("ledger append failed after room reorder", "project_id", projectID, "error", err)
	}
	return nil
}

// SoftDelete refuses to delete a room that still holds items; callers must
// move or delete the contents first.
func (s *roomService) SoftDelete(ctx context.Context, roomID uuid.UUID) error {
	if _, err := s.requireEditable(ctx, roomID); err != nil {
		return err
	}
	count, err := s.items.CountActiveInRoom(ctx, nil, roomID)
	if err != nil {
		return svcerr.Storage("item_count_failed", err)
	}
	if count > 0 {
		return svcerr.Conflict("room_not_empty", fmt.Errorf("room still holds %d items", count))
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.rooms.SoftDeleteByID(ctx, tx, roomID)
	}); err != nil {
		return svcerr.Storage("room_delete_failed", err)
	}
	rID := roomID
	s.record(ctx, types.EventRoomDeleted, &rID, nil)
	return nil
}

func (s *roomService) requireEditable(ctx context.Context, roomID uuid.UUID) (*types.Room, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	room, access, err := s.resolver.ResolveRoom(ctx, nil, pc, roomID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if room == nil {
		return nil, svcerr.NotFound("room_not_found", fmt.Errorf("room not found"))
	}
	if !s.resolver.CanEdit(ctx, pc, access) {
		return nil, svcerr.Authorization("read_only", fmt.Errorf("principal may not edit this room"))
	}
	return room, nil
}

func (s *roomService) record(ctx context.Context, eventType string, roomID *uuid.UUID, payload map[string]interface{}) {
	if _, err := s.recorder.Record(ctx, nil, ledger.RecordInput{
		EventType:  eventType,
		ObjectType: types.ObjectRoom,
		ObjectID:   roomID,
		Payload:    payload,
	}); err != nil {
		s.log.Error("ledger append failed after room mutation", "event_type", eventType, "error", err)
	}
}
