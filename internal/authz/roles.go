package authz

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/repos"
)

// Role names live in capability storage owned by the membership service;
// this directory only reads classifications from the user row.
const (
	RoleDesigner = "designer"
	RoleSupplier = "supplier"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

type roleDirectory struct {
	db    *gorm.DB
	log   *logger.Logger
	users repos.UserRepo
}

// NewRoleDirectory returns the default role directory backed by the user
// table. Viewers are view-only team members; designers hold the single-board
// role.
func NewRoleDirectory(db *gorm.DB, baseLog *logger.Logger, users repos.UserRepo) RoleDirectory {
	return &roleDirectory{
		db:    db,
		log:   baseLog.With("component", "RoleDirectory"),
		users: users,
	}
}

func (d *roleDirectory) IsViewOnlyTeamMember(ctx context.Context, userID uuid.UUID) (bool, error) {
	role, err := d.roleOf(ctx, userID)
	if err != nil {
		return false, err
	}
	return role == RoleViewer, nil
}

func (d *roleDirectory) HasSingleBoardRole(ctx context.Context, userID uuid.UUID) (bool, error) {
	role, err := d.roleOf(ctx, userID)
	if err != nil {
		return false, err
	}
	return role == RoleDesigner, nil
}

func (d *roleDirectory) roleOf(ctx context.Context, userID uuid.UUID) (string, error) {
	users, err := d.users.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", nil
	}
	return users[0].Role, nil
}
