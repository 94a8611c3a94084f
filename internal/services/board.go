package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/authz"
	"github.com/studiolane/studiolane-backend/internal/hooks"
	"github.com/studiolane/studiolane-backend/internal/ledger"
	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/repos"
	"github.com/studiolane/studiolane-backend/internal/svcerr"
	"github.com/studiolane/studiolane-backend/internal/types"
)

const maxBoardNameLen = 255

type CreateBoardInput struct {
	Name        string
	ViewMode    string
	OwnerFirmID *uuid.UUID
}

type UpdateBoardInput struct {
	Name     *string
	ViewMode *string
}

// LayoutEnvelope is the canonical read shape for a board layout. Readers
// always get an items array, even when nothing was ever saved.
type LayoutEnvelope struct {
	Items []json.RawMessage      `json:"items"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

type BoardService interface {
	Create(ctx context.Context, in CreateBoardInput) (*types.Board, error)
	Get(ctx context.Context, boardID uuid.UUID) (*types.Board, authz.Access, error)
	ListOwned(ctx context.Context) ([]*types.Board, error)
	Update(ctx context.Context, boardID uuid.UUID, in UpdateBoardInput) (*types.Board, error)
	SaveLayout(ctx context.Context, boardID uuid.UUID, rawLayout string) error
	GetLayout(ctx context.Context, boardID uuid.UUID) (*types.Board, *LayoutEnvelope, error)
	SoftDelete(ctx context.Context, boardID uuid.UUID) error
	AddItem(ctx context.Context, boardID, itemID uuid.UUID) (*types.BoardItem, error)
	RemoveItem(ctx context.Context, boardID, itemID uuid.UUID) error
	ListItems(ctx context.Context, boardID uuid.UUID) ([]*types.Item, error)
}

type boardService struct {
	db         *gorm.DB
	log        *logger.Logger
	resolver   *authz.Resolver
	roles      authz.RoleDirectory
	boards     repos.BoardRepo
	boardItems repos.BoardItemRepo
	items      repos.ItemRepo
	members    repos.FirmMemberRepo
	recorder   ledger.EventRecorder
	hookRunner *hooks.Runner
}

func NewBoardService(
	db *gorm.DB,
	baseLog *logger.Logger,
	resolver *authz.Resolver,
	roles authz.RoleDirectory,
	boards repos.BoardRepo,
	boardItems repos.BoardItemRepo,
	items repos.ItemRepo,
	members repos.FirmMemberRepo,
	recorder ledger.EventRecorder,
	hookRunner *hooks.Runner,
) BoardService {
	return &boardService{
		db:         db,
		log:        baseLog.With("service", "BoardService"),
		resolver:   resolver,
		roles:      roles,
		boards:     boards,
		boardItems: boardItems,
		items:      items,
		members:    members,
		recorder:   recorder,
		hookRunner: hookRunner,
	}
}

// Create makes a board owned by the authenticated principal. Principals
// holding the single-board role may own at most one board; the second
// attempt is a conflict, not a silent overwrite.
func (s *boardService) Create(ctx context.Context, in CreateBoardInput) (*types.Board, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, svcerr.Validationf("missing_name", "board name is required")
	}
	if len(name) > maxBoardNameLen {
		return nil, svcerr.Validationf("name_too_long", "board name exceeds %d characters", maxBoardNameLen)
	}
	viewMode := in.ViewMode
	if viewMode == "" {
		viewMode = types.ViewModeGrid
	}
	if !types.ValidViewMode(viewMode) {
		return nil, svcerr.Validationf("invalid_view_mode", "unknown view mode %q", viewMode)
	}

	// A firm delegation grants that firm's members view access, so the
	// caller must actually belong to the firm it names.
	if in.OwnerFirmID != nil && *in.OwnerFirmID != uuid.Nil {
		membership, err := s.members.GetActiveMembership(ctx, nil, *in.OwnerFirmID, pc.UserID)
		if err != nil {
			return nil, svcerr.Storage("membership_lookup_failed", err)
		}
		if !membership.IsActive() {
			return nil, svcerr.Validationf("invalid_firm", "principal holds no active membership in firm %s", *in.OwnerFirmID)
		}
	}

	singleBoard, err := s.roles.HasSingleBoardRole(ctx, pc.UserID)
	if err != nil {
		return nil, svcerr.Storage("role_lookup_failed", err)
	}
	if singleBoard {
		count, err := s.boards.CountActiveOwnedBy(ctx, nil, pc.UserID)
		if err != nil {
			return nil, svcerr.Storage("board_count_failed", err)
		}
		if count > 0 {
			return nil, svcerr.Conflict("board_exists", fmt.Errorf("principal already owns a board"))
		}
	}

	board := &types.Board{
		ID:          uuid.New(),
		OwnerUserID: pc.UserID,
		OwnerFirmID: in.OwnerFirmID,
		Name:        name,
		ViewMode:    viewMode,
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.boards.Create(ctx, tx, []*types.Board{board})
		return err
	}); err != nil {
		return nil, svcerr.Storage("board_create_failed", err)
	}

	boardID := board.ID
	s.record(ctx, types.EventBoardCreated, types.ObjectBoard, &boardID, &boardID, map[string]interface{}{
		"name":      board.Name,
		"view_mode": board.ViewMode,
	})
	return board, nil
}

func (s *boardService) Get(ctx context.Context, boardID uuid.UUID) (*types.Board, authz.Access, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, authz.AccessNone, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	board, access, err := s.resolver.ResolveBoard(ctx, nil, pc, boardID)
	if err != nil {
		return nil, authz.AccessNone, svcerr.Storage("resolve_failed", err)
	}
	if board == nil {
		return nil, authz.AccessNone, svcerr.NotFound("board_not_found", fmt.Errorf("board not found"))
	}
	return board, access, nil
}

func (s *boardService) ListOwned(ctx context.Context) ([]*types.Board, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	boards, err := s.boards.ListOwnedBy(ctx, nil, pc.UserID)
	if err != nil {
		return nil, svcerr.Storage("board_list_failed", err)
	}
	return boards, nil
}

func (s *boardService) Update(ctx context.Context, boardID uuid.UUID, in UpdateBoardInput) (*types.Board, error) {
	board, err := s.requireEditable(ctx, boardID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, svcerr.Validationf("missing_name", "board name is required")
		}
		if len(name) > maxBoardNameLen {
			return nil, svcerr.Validationf("name_too_long", "board name exceeds %d characters", maxBoardNameLen)
		}
		fields["name"] = name
	}
	if in.ViewMode != nil {
		if !types.ValidViewMode(*in.ViewMode) {
			return nil, svcerr.Validationf("invalid_view_mode", "unknown view mode %q", *in.ViewMode)
		}
		fields["view_mode"] = *in.ViewMode
	}
	if len(fields) == 0 {
		return board, nil
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.boards.Update(ctx, tx, boardID, fields)
	}); err != nil {
		return nil, svcerr.Storage("board_update_failed", err)
	}

	updated, err := s.boards.GetByID(ctx, nil, boardID)
	if err != nil {
		return nil, svcerr.Storage("board_lookup_failed", err)
	}
	id := boardID
	s.record(ctx, types.EventBoardUpdated, types.ObjectBoard, &id, &id, fields)
	s.hookRunner.BoardChanged(ctx, boardID)
	return updated, nil
}

// SaveLayout stores the full layout snapshot. The payload must be parseable
// JSON carrying a top-level "items" array; nothing else about its shape is
// interpreted at write time.
func (s *boardService) SaveLayout(ctx context.Context, boardID uuid.UUID, rawLayout string) error {
	if _, err := s.requireEditable(ctx, boardID); err != nil {
		return err
	}

	var probe struct {
		Items *[]json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(rawLayout), &probe); err != nil {
		return svcerr.Validation("invalid_layout", fmt.Errorf("layout is not valid JSON: %w", err))
	}
	if probe.Items == nil {
		return svcerr.Validationf("invalid_layout", "layout must carry a top-level items array")
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.boards.SaveLayout(ctx, tx, boardID, datatypes.JSON(rawLayout))
	}); err != nil {
		return svcerr.Storage("layout_save_failed", err)
	}

	id := boardID
	s.record(ctx, types.EventBoardLayoutSaved, types.ObjectBoard, &id, &id, map[string]interface{}{
		"item_count": len(*probe.Items),
	})
	s.hookRunner.BoardChanged(ctx, boardID)
	return nil
}

// GetLayout always returns a well-formed envelope. A board with no stored
// layout, or with stored bytes that no longer parse, reads as empty rather
// than erroring.
func (s *boardService) GetLayout(ctx context.Context, boardID uuid.UUID) (*types.Board, *LayoutEnvelope, error) {
	board, _, err := s.Get(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}
	envelope := &LayoutEnvelope{Items: []json.RawMessage{}}
	if len(board.LatestLayoutJSON) > 0 {
		var stored LayoutEnvelope
		if err := json.Unmarshal(board.LatestLayoutJSON, &stored); err != nil {
			s.log.Warn("stored layout unparseable, serving empty", "board_id", boardID, "error", err)
		} else if stored.Items != nil {
			envelope = &stored
		}
	}
	return board, envelope, nil
}

func (s *boardService) SoftDelete(ctx context.Context, boardID uuid.UUID) error {
	if _, err := s.requireEditable(ctx, boardID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.boards.SoftDeleteByID(ctx, tx, boardID)
	}); err != nil {
		return svcerr.Storage("board_delete_failed", err)
	}
	id := boardID
	s.record(ctx, types.EventBoardDeleted, types.ObjectBoard, &id, &id, nil)
	s.hookRunner.BoardChanged(ctx, boardID)
	return nil
}

// AddItem places an item on a board. Re-adding a previously removed item
// creates a fresh membership row; the removed row keeps its removed_at so
// the add/remove history stays intact.
func (s *boardService) AddItem(ctx context.Context, boardID, itemID uuid.UUID) (*types.BoardItem, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	if _, err := s.requireEditable(ctx, boardID); err != nil {
		return nil, err
	}
	item, err := s.resolver.ResolveItem(ctx, nil, pc, itemID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if item == nil {
		return nil, svcerr.NotFound("item_not_found", fmt.Errorf("item not found"))
	}

	existing, err := s.boardItems.GetActive(ctx, nil, boardID, itemID)
	if err != nil {
		return nil, svcerr.Storage("membership_lookup_failed", err)
	}
	if existing != nil {
		return existing, nil
	}

	row := &types.BoardItem{
		ID:            uuid.New(),
		BoardID:       boardID,
		ItemID:        itemID,
		AddedByUserID: pc.UserID,
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.boardItems.Create(ctx, tx, []*types.BoardItem{row})
		return err
	}); err != nil {
		return nil, svcerr.Storage("membership_create_failed", err)
	}

	rowID := row.ID
	bID := boardID
	iID := itemID
	if _, err := s.recorder.Record(ctx, nil, ledger.RecordInput{
		EventType:  types.EventBoardItemAdded,
		ObjectType: types.ObjectBoardItem,
		ObjectID:   &rowID,
		BoardID:    &bID,
		ItemID:     &iID,
	}); err != nil {
		s.log.Error("ledger append failed after board mutation", "event_type", types.EventBoardItemAdded, "error", err)
	}
	s.hookRunner.BoardChanged(ctx, boardID)
	return row, nil
}

func (s *boardService) RemoveItem(ctx context.Context, boardID, itemID uuid.UUID) error {
	if _, err := s.requireEditable(ctx, boardID); err != nil {
		return err
	}
	row, err := s.boardItems.GetActive(ctx, nil, boardID, itemID)
	if err != nil {
		return svcerr.Storage("membership_lookup_failed", err)
	}
	if row == nil {
		return svcerr.NotFound("membership_not_found", fmt.Errorf("item is not on the board"))
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.boardItems.MarkRemoved(ctx, tx, row.ID)
	}); err != nil {
		return svcerr.Storage("membership_remove_failed", err)
	}

	rowID := row.ID
	bID := boardID
	iID := itemID
	if _, err := s.recorder.Record(ctx, nil, ledger.RecordInput{
		EventType:  types.EventBoardItemRemoved,
		ObjectType: types.ObjectBoardItem,
		ObjectID:   &rowID,
		BoardID:    &bID,
		ItemID:     &iID,
	}); err != nil {
		s.log.Error("ledger append failed after board mutation", "event_type", types.EventBoardItemRemoved, "error", err)
	}
	s.hookRunner.BoardChanged(ctx, boardID)
	return nil
}

func (s *boardService) ListItems(ctx context.Context, boardID uuid.UUID) ([]*types.Item, error) {
	if _, _, err := s.Get(ctx, boardID); err != nil {
		return nil, err
	}
	rows, err := s.boardItems.ListActiveByBoard(ctx, nil, boardID)
	if err != nil {
		return nil, svcerr.Storage("membership_list_failed", err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ItemID)
	}
	items, err := s.items.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, svcerr.Storage("item_list_failed", err)
	}
	return items, nil
}

// requireEditable resolves the board and refuses anything below edit
// capability. Team-granted view access never passes.
func (s *boardService) requireEditable(ctx context.Context, boardID uuid.UUID) (*types.Board, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	board, access, err := s.resolver.ResolveBoard(ctx, nil, pc, boardID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if board == nil {
		return nil, svcerr.NotFound("board_not_found", fmt.Errorf("board not found"))
	}
	if !s.resolver.CanEdit(ctx, pc, access) {
		return nil, svcerr.Authorization("read_only", fmt.Errorf("principal may not edit this board"))
	}
	return board, nil
}

func (s *boardService) record(ctx context.Context, eventType, objectType string, objectID, boardID *uuid.UUID, payload map[string]interface{}) {
	if _, err := s.recorder.Record(ctx, nil, ledger.RecordInput{
		EventType:  eventType,
		ObjectType: objectType,
		ObjectID:   objectID,
		BoardID:    boardID,
		Payload:    payload,
	}); err != nil {
		s.log.Error("ledger append failed after board mutation", "event_type", eventType, "error", err)
	}
}
