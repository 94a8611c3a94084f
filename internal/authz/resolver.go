package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/repos"
	"github.com/studiolane/studiolane-backend/internal/requestdata"
	"github.com/studiolane/studiolane-backend/internal/types"
)

// Access is the level a principal holds on a resolved entity. Team access is
// view-only and must never authorize a mutation.
type Access int

const (
	AccessNone Access = iota
	AccessOwner
	AccessAdmin
	AccessTeamView
)

// PrincipalContext is the server-resolved acting identity, passed explicitly
// into every resolver call. It is never reconstructed from request
// parameters.
type PrincipalContext struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// PrincipalFromContext pulls the authenticated principal out of request
// context. ok=false means no authenticated principal.
func PrincipalFromContext(ctx context.Context) (PrincipalContext, bool) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return PrincipalContext{}, false
	}
	return PrincipalContext{UserID: rd.UserID, IsAdmin: rd.IsAdmin}, true
}

// RoleDirectory is the external membership/role collaborator. The resolver
// only consumes classifications from it.
type RoleDirectory interface {
	IsViewOnlyTeamMember(ctx context.Context, userID uuid.UUID) (bool, error)
	HasSingleBoardRole(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Resolver struct {
	db       *gorm.DB
	log      *logger.Logger
	items    repos.ItemRepo
	boards   repos.BoardRepo
	projects repos.ProjectRepo
	rooms    repos.RoomRepo
	members  repos.FirmMemberRepo
	roles    RoleDirectory
}

func NewResolver(
	db *gorm.DB,
	baseLog *logger.Logger,
	items repos.ItemRepo,
	boards repos.BoardRepo,
	projects repos.ProjectRepo,
	rooms repos.RoomRepo,
	members repos.FirmMemberRepo,
	roles RoleDirectory,
) *Resolver {
	return &Resolver{
		db:       db,
		log:      baseLog.With("component", "Resolver"),
		items:    items,
		boards:   boards,
		projects: projects,
		rooms:    rooms,
		members:  members,
		roles:    roles,
	}
}

// ResolveItem returns the item iff it exists, is not soft-deleted, and the
// principal is a platform admin or the item's owner. There is no team-based
// access to items. A nil item with nil error means denied; denial and
// not-found are indistinguishable to callers.
func (r *Resolver) ResolveItem(ctx context.Context, tx *gorm.DB, pc PrincipalContext, itemID uuid.UUID) (*types.Item, error) {
	if itemID == uuid.Nil || pc.UserID == uuid.Nil {
		return nil, nil
	}
	item, err := r.items.GetByID(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	if pc.IsAdmin {
		return item, nil
	}
	if item.OwnerUserID == pc.UserID {
		return item, nil
	}
	return nil, nil
}

// ResolveBoard returns the board and the access level the principal holds on
// it. Admin is checked first and short-circuits everything; ownership beats
// team access; team access is granted only through an active membership in
// the board's firm and is view-only.
func (r *Resolver) ResolveBoard(ctx context.Context, tx *gorm.DB, pc PrincipalContext, boardID uuid.UUID) (*types.Board, Access, error) {
	if boardID == uuid.Nil || pc.UserID == uuid.Nil {
		return nil, AccessNone, nil
	}
	board, err := r.boards.GetByID(ctx, tx, boardID)
	if err != nil {
		return nil, AccessNone, err
	}
	if board == nil {
		return nil, AccessNone, nil
	}
	if pc.IsAdmin {
		return board, AccessAdmin, nil
	}
	if board.OwnerUserID == pc.UserID {
		return board, AccessOwner, nil
	}

	firmID, err := r.boardFirmID(ctx, tx, board)
	if err != nil {
		return nil, AccessNone, err
	}
	if firmID == uuid.Nil {
		return nil, AccessNone, nil
	}
	membership, err := r.members.GetActiveMembership(ctx, tx, firmID, pc.UserID)
	if err != nil {
		if isMissingRelation(err) {
			return nil, AccessNone, nil
		}
		return nil, AccessNone, err
	}
	if membership.IsActive() {
		return board, AccessTeamView, nil
	}
	return nil, AccessNone, nil
}

// boardFirmID resolves the firm a board belongs to: the explicit owner firm
// when set, otherwise the board owner's first active membership. When the
// firm-membership storage is unprovisioned this degrades silently to "no
// firm" instead of failing the resolution.
func (r *Resolver) boardFirmID(ctx context.Context, tx *gorm.DB, board *types.Board) (uuid.UUID, error) {
	if board.OwnerFirmID != nil && *board.OwnerFirmID != uuid.Nil {
		return *board.OwnerFirmID, nil
	}
	firmIDs, err := r.members.GetActiveFirmIDsForUser(ctx, tx, board.OwnerUserID)
	if err != nil {
		if isMissingRelation(err) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	if len(firmIDs) == 0 {
		return uuid.Nil, nil
	}
	return firmIDs[0], nil
}

// ResolveProject walks up to the parent board; a project has no independent
// ownership.
func (r *Resolver) ResolveProject(ctx context.Context, tx *gorm.DB, pc PrincipalContext, projectID uuid.UUID) (*types.Project, Access, error) {
	if projectID == uuid.Nil || pc.UserID == uuid.Nil {
		return nil, AccessNone, nil
	}
	project, err := r.projects.GetByID(ctx, tx, projectID)
	if err != nil {
		return nil, AccessNone, err
	}
	if project == nil {
		return nil, AccessNone, nil
	}
	board, access, err := r.ResolveBoard(ctx, tx, pc, project.BoardID)
	if err != nil {
		return nil, AccessNone, err
	}
	if board == nil {
		return nil, AccessNone, nil
	}
	return project, access, nil
}

// ResolveRoom walks room → project → board.
func (r *Resolver) ResolveRoom(ctx context.Context, tx *gorm.DB, pc PrincipalContext, roomID uuid.UUID) (*types.Room, Access, error) {
	if roomID == uuid.Nil || pc.UserID == uuid.Nil {
		return nil, AccessNone, nil
	}
	room, err := r.rooms.GetByID(ctx, tx, roomID)
	if err != nil {
		return nil, AccessNone, err
	}
	if room == nil {
		return nil, AccessNone, nil
	}
	project, access, err := r.ResolveProject(ctx, tx, pc, room.ProjectID)
	if err != nil {
		return nil, AccessNone, err
	}
	if project == nil {
		return nil, AccessNone, nil
	}
	return room, access, nil
}

// CanEdit reports whether the principal may mutate an entity it resolved
// with the given access. Team-granted view access never edits; an externally
// classified view-only team member never edits even its own entities.
func (r *Resolver) CanEdit(ctx context.Context, pc PrincipalContext, access Access) bool {
	if access == AccessAdmin {
		return true
	}
	if access != AccessOwner {
		return false
	}
	if r.roles != nil {
		viewOnly, err := r.roles.IsViewOnlyTeamMember(ctx, pc.UserID)
		if err != nil {
			r.log.Warn("view-only classification failed, refusing edit", "user_id", pc.UserID, "error", err)
			return false
		}
		if viewOnly {
			return false
		}
	}
	return true
}

// BoardOwnerID returns the owner of a non-deleted board, or Nil when the
// board is absent or soft-deleted.
func (r *Resolver) BoardOwnerID(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) (uuid.UUID, error) {
	board, err := r.boards.GetByID(ctx, tx, boardID)
	if err != nil {
		return uuid.Nil, err
	}
	if board == nil {
		return uuid.Nil, nil
	}
	return board.OwnerUserID, nil
}

// ItemOwnerID returns the owner of a non-deleted item, or Nil when absent.
func (r *Resolver) ItemOwnerID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (uuid.UUID, error) {
	item, err := r.items.GetByID(ctx, tx, itemID)
	if err != nil {
		return uuid.Nil, err
	}
	if item == nil {
		return uuid.Nil, nil
	}
	return item.OwnerUserID, nil
}

// isMissingRelation detects postgres undefined_table (42P01): the
// firm-membership feature may simply not be provisioned in a deployment,
// which must degrade to no team access rather than fail the call.
func isMissingRelation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	return false
}
