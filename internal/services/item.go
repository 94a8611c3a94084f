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
	"github.com/studiolane/studiolane-backend/internal/normalization"
	"github.com/studiolane/studiolane-backend/internal/repos"
	"github.com/studiolane/studiolane-backend/internal/svcerr"
	"github.com/studiolane/studiolane-backend/internal/types"
)

// DimensionInput is one raw dimension as submitted, prior to unit
// canonicalization.
type DimensionInput struct {
	Value float64
	Unit  string
}

type CreateItemInput struct {
	Name   string
	Width  DimensionInput
	Height DimensionInput
	Depth  DimensionInput
}

type UpdateItemInput struct {
	Name   *string
	Width  *DimensionInput
	Height *DimensionInput
	Depth  *DimensionInput
}

type ItemService interface {
	Create(ctx context.Context, in CreateItemInput) (*types.Item, error)
	Get(ctx context.Context, itemID uuid.UUID) (*types.Item, error)
	ListOwned(ctx context.Context) ([]*types.Item, error)
	Update(ctx context.Context, itemID uuid.UUID, in UpdateItemInput) (*types.Item, error)
	PlaceInRoom(ctx context.Context, itemID, roomID uuid.UUID) error
	RemoveFromRoom(ctx context.Context, itemID uuid.UUID) error
	SoftDelete(ctx context.Context, itemID uuid.UUID) error
}

type itemService struct {
	db       *gorm.DB
	log      *logger.Logger
	resolver *authz.Resolver
	items    repos.ItemRepo
	recorder ledger.EventRecorder
}

func NewItemService(
	db *gorm.DB,
	baseLog *logger.Logger,
	resolver *authz.Resolver,
	items repos.ItemRepo,
	recorder ledger.EventRecorder,
) ItemService {
	return &itemService{
		db:       db,
		log:      baseLog.With("service", "ItemService"),
		resolver: resolver,
		items:    items,
		recorder: recorder,
	}
}

// Create canonicalizes dimensions to centimeters and derives CBM once at
// write time. Items always start unplaced.
func (s *itemService) Create(ctx context.Context, in CreateItemInput) (*types.Item, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, svcerr.Validationf("missing_name", "item name is required")
	}

	widthCm, heightCm, depthCm, cbm, err := normalizeDimensions(in.Width, in.Height, in.Depth)
	if err != nil {
		return nil, err
	}

	item := &types.Item{
		ID:          uuid.New(),
		OwnerUserID: pc.UserID,
		Name:        name,
		WidthCm:     widthCm,
		HeightCm:    heightCm,
		DepthCm:     depthCm,
		CBM:         cbm,
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.items.Create(ctx, tx, []*types.Item{item})
		return err
	}); err != nil {
		return nil, svcerr.Storage("item_create_failed", err)
	}

	itemID := item.ID
	s.record(ctx, types.EventItemCreated, &itemID, map[string]interface{}{
		"name":         item.Name,
		"cbm":          item.CBM,
		"volume_class": normalization.VolumeClass(item.CBM),
	})
	return item, nil
}

func (s *itemService) Get(ctx context.Context, itemID uuid.UUID) (*types.Item, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	item, err := s.resolver.ResolveItem(ctx, nil, pc, itemID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if item == nil {
		return nil, svcerr.NotFound("item_not_found", fmt.Errorf("item not found"))
	}
	return item, nil
}

func (s *itemService) ListOwned(ctx context.Context) ([]*types.Item, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	items, err := s.items.ListByOwner(ctx, nil, pc.UserID)
	if err != nil {
		return nil, svcerr.Storage("item_list_failed", err)
	}
	return items, nil
}

func (s *itemService) Update(ctx context.Context, itemID uuid.UUID, in UpdateItemInput) (*types.Item, error) {
	item, err := s.requireEditable(ctx, itemID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, svcerr.Validationf("missing_name", "item name is required")
		}
		fields["name"] = name
	}

	// Dimension updates recompute CBM from the full resulting triple, mixing
	// stored values with the submitted ones.
	if in.Width != nil || in.Height != nil || in.Depth != nil {
		widthCm, heightCm, depthCm := item.WidthCm, item.HeightCm, item.DepthCm
		if in.Width != nil {
			v, ok := normalization.NormalizeToCm(in.Width.Value, in.Width.Unit)
			if !ok {
				return nil, svcerr.Validationf("invalid_dimension", "width %v %s is not a valid dimension", in.Width.Value, in.Width.Unit)
			}
			widthCm = v
		}
		if in.Height != nil {
			v, ok := normalization.NormalizeToCm(in.Height.Value, in.Height.Unit)
			if !ok {
				return nil, svcerr.Validationf("invalid_dimension", "height %v %s is not a valid dimension", in.Height.Value, in.Height.Unit)
			}
			heightCm = v
		}
		if in.Depth != nil {
			v, ok := normalization.NormalizeToCm(in.Depth.Value, in.Depth.Unit)
			if !ok {
				return nil, svcerr.Validationf("invalid_dimension", "depth %v %s is not a valid dimension", in.Depth.Value, in.Depth.Unit)
			}
			depthCm = v
		}
		cbm, ok := normalization.CalculateCBM(widthCm, heightCm, depthCm)
		if !ok {
			return nil, svcerr.Validationf("invalid_dimensions", "resulting dimensions do not form a valid volume")
		}
		fields["width_cm"] = widthCm
		fields["height_cm"] = heightCm
		fields["depth_cm"] = depthCm
		fields["cbm"] = cbm
	}
	if len(fields) == 0 {
		return item, nil
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.items.Update(ctx, tx, itemID, fields)
	}); err != nil {
		return nil, svcerr.Storage("item_update_failed", err)
	}

	updated, err := s.items.GetByID(ctx, nil, itemID)
	if err != nil {
		return nil, svcerr.Storage("item_lookup_failed", err)
	}
	iID := itemID
	s.record(ctx, types.EventItemUpdated, &iID, fields)
	return updated, nil
}

// PlaceInRoom moves an item into a room the principal can edit; the room's
// board hierarchy authorizes the placement, the item's ownership authorizes
// the move.
func (s *itemService) PlaceInRoom(ctx context.Context, itemID, roomID uuid.UUID) error {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	if _, err := s.requireEditable(ctx, itemID); err != nil {
		return err
	}
	room, access, err := s.resolver.ResolveRoom(ctx, nil, pc, roomID)
	if err != nil {
		return svcerr.Storage("resolve_failed", err)
	}
	if room == nil {
		return svcerr.NotFound("room_not_found", fmt.Errorf("room not found"))
	}
	if !s.resolver.CanEdit(ctx, pc, access) {
		return svcerr.Authorization("read_only", fmt.Errorf("principal may not edit this room"))
	}

	rID := roomID
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.items.SetRoom(ctx, tx, itemID, &rID)
	}); err != nil {
		return svcerr.Storage("item_place_failed", err)
	}
	iID := itemID
	s.record(ctx, types.EventItemPlaced, &iID, map[string]interface{}{"room_id": roomID.String()})
	return nil
}

func (s *itemService) RemoveFromRoom(ctx context.Context, itemID uuid.UUID) error {
	if _, err := s.requireEditable(ctx, itemID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.items.SetRoom(ctx, tx, itemID, nil)
	}); err != nil {
		return svcerr.Storage("item_unplace_failed", err)
	}
	iID := itemID
	s.record(ctx, types.EventItemRemoved, &iID, nil)
	return nil
}

func (s *itemService) SoftDelete(ctx context.Context, itemID uuid.UUID) error {
	if _, err := s.requireEditable(ctx, itemID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.items.SoftDeleteByID(ctx, tx, itemID)
	}); err != nil {
		return svcerr.Storage("item_delete_failed", err)
	}
	iID := itemID
	s.record(ctx, types.EventItemDeleted, &iID, nil)
	return nil
}

// requireEditable resolves the item and refuses principals without edit
// capability. Ownership alone is not enough: a view-only classified member
// may not mutate even their own items.
func (s *itemService) requireEditable(ctx context.Context, itemID uuid.UUID) (*types.Item, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	item, err := s.resolver.ResolveItem(ctx, nil, pc, itemID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if item == nil {
		return nil, svcerr.NotFound("item_not_found", fmt.Errorf("item not found"))
	}
	access := authz.AccessOwner
	if pc.IsAdmin {
		access = authz.AccessAdmin
	}
	if !s.resolver.CanEdit(ctx, pc, access) {
		return nil, svcerr.Authorization("read_only", fmt.Errorf("principal may not edit this item"))
	}
	return item, nil
}

func (s *itemService) record(ctx context.Context, eventType string, itemID *uuid.UUID, payload map[string]interface{}) {
	if _, err := s.recorder.Record(ctx, nil, ledger.RecordInput{
		EventType:  eventType,
		ObjectType: types.ObjectItem,
		ObjectID:   itemID,
		ItemID:     itemID,
		Payload:    payload,
	}); err != nil {
		s.log.Error("ledger append failed after item mutation", "event_type", eventType, "error", err)
	}
}

func normalizeDimensions(width, height, depth DimensionInput) (float64, float64, float64, float64, error) {
	widthCm, ok := normalization.NormalizeToCm(width.Value, width.Unit)
	if !ok {
		return 0, 0, 0, 0, svcerr.Validationf("invalid_dimension", "width %v %s is not a valid dimension", width.Value, width.Unit)
	}
	heightCm, ok := normalization.NormalizeToCm(height.Value, height.Unit)
	if !ok {
		return 0, 0, 0, 0, svcerr.Validationf("invalid_dimension", "height %v %s is not a valid dimension", height.Value, height.Unit)
	}
	depthCm, ok := normalization.NormalizeToCm(depth.Value, depth.Unit)
	if !ok {
		return 0, 0, 0, 0, svcerr.Validationf("invalid_dimension", "depth %v %s is not a valid dimension", depth.Value, depth.Unit)
	}
	cbm, ok := normalization.CalculateCBM(widthCm, heightCm, depthCm)
	if !ok {
		return 0, 0, 0, 0, svcerr.Validationf("invalid_dimensions", "dimensions do not form a valid volume")
	}
	return widthCm, heightCm, depthCm, cbm, nil
}
