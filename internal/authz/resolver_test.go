package authz_test

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/authz"
	"github.com/studiolane/studiolane-backend/internal/repos"
	"github.com/studiolane/studiolane-backend/internal/testutil"
	"github.com/studiolane/studiolane-backend/internal/types"
)

func newResolver(tb testing.TB, db *gorm.DB) *authz.Resolver {
	tb.Helper()
	log := testutil.Logger(tb)
	roles := authz.NewRoleDirectory(db, log, repos.NewUserRepo(db, log))
	return authz.NewResolver(db, log,
		repos.NewItemRepo(db, log),
		repos.NewBoardRepo(db, log),
		repos.NewProjectRepo(db, log),
		repos.NewRoomRepo(db, log),
		repos.NewFirmMemberRepo(db, log),
		roles,
	)
}

func TestResolveItemOwnerAndStranger(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	resolver := newResolver(t, db)

	owner := testutil.SeedUser(t, tx, authz.RoleDesigner, false)
	stranger := testutil.SeedUser(t, tx, authz.RoleDesigner, false)
	item := testutil.SeedItem(t, tx, owner.ID)

	ctx := context.Background()

	got, err := resolver.ResolveItem(ctx, tx, authz.PrincipalContext{UserID: owner.ID}, item.ID)
	if err != nil {
		t.Fatalf("owner resolve: %v", err)
	}
	if got == nil || got.ID != item.ID {
		t.Fatalf("owner should resolve the item, got %v", got)
	}

	got, err = resolver.ResolveItem(ctx, tx, authz.PrincipalContext{UserID: stranger.ID}, item.ID)
	if err != nil {
		t.Fatalf("stranger resolve: %v", err)
	}
	if got != nil {
		t.Fatalf("stranger should be denied, got item %v", got.ID)
	}
}

func TestResolveItemAdminOverride(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	resolver := newResolver(t, db)

	owner := testutil.SeedUser(t, tx, authz.RoleDesigner, false)
	admin := testutil.SeedUser(t, tx, authz.RoleOperator, true)
	item := testutil.SeedItem(t, tx, owner.ID)

	got, err := resolver.ResolveItem(context.Background(), tx, authz.PrincipalContext{UserID: admin.ID, IsAdmin: true}, item.ID)
	if err != nil {
		t.Fatalf("admin resolve: %v", err)
	}
	if got == nil {
		t.Fatal("admin should resolve any item")
	}
}

func TestResolveItemSoftDeletedIsOpaque(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	resolver := newResolver(t, db)

	owner := testutil.SeedUser(t, tx, authz.RoleDesigner, false)
	item := testutil.SeedItem(t, tx, owner.ID)
	if err := tx.Delete(&types.Item{}, "id = ?", item.ID).Error; err != nil {
		t.Fatalf("soft delete item: %v", err)
	}

	got, err := resolver.ResolveItem(context.Background(), tx, authz.PrincipalContext{UserID: owner.ID}, item.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != nil {
		t.Fatal("soft-deleted item should be invisible even to its owner")
	}
}

func TestResolveBoardTeamViewOnly(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	resolver := newResolver(t, db)

	owner := testutil.SeedUser(t, tx, authz.RoleDesigner, false)
	teammate := testutil.SeedUser(t, tx, authz.RoleOperator, false)
	outsider := testutil.SeedUser(t, tx, authz.RoleOperator, false)
	firm := testutil.SeedFirm(t, tx, "Studio")
	testutil.SeedFirmMember(t, tx, firm.ID, teammate.ID, types.FirmMemberStatusActive)
	board := testutil.SeedBoard(t, tx, owner.ID, &firm.ID)

	ctx := context.Background()

	_, access, err := resolver.ResolveBoard(ctx, tx, authz.PrincipalContext{UserID: teammate.ID}, board.ID)
	if err != nil {
		t.Fatalf("teammate resolve: %v", err)
	}
	if access != authz.AccessTeamView {
		t.Fatalf("expected team view access, got %v", access)
	}
	if resolver.CanEdit(ctx, authz.PrincipalContext{UserID: teammate.ID}, access) {
		t.Fatal("team view access must never edit")
	}

	got, access, err := resolver.ResolveBoard(ctx, tx, authz.PrincipalContext{UserID: outsider.ID}, board.ID)
	if err != nil {
		t.Fatalf("outsider resolve: %v", err)
	}
	if got != nil || access != authz.AccessNone {
		t.Fatalf("outsider should be denied, got access %v", access)
	}
}

func TestResolveBoardRemovedMemberDenied(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	resolver := newResolver(t, db)

	owner := testutil.SeedUser(t, tx, authz.RoleDesigner, false)
	former := testutil.SeedUser(t, tx, authz.RoleOperator, false)
	firm := testutil.SeedFirm(t, tx, "Studio")
	testutil.SeedFirmMember(t, tx, firm.ID, former.ID, types.FirmMemberStatusRemoved)
	board := testutil.SeedBoard(t, tx, owner.ID, &firm.ID)

	got, access, err := resolver.ResolveBoard(context.Background(), tx, authz.PrincipalContext{UserID: former.ID}, board.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != nil || access != authz.AccessNone {
		t.Fatalf("removed member should be denied, got access %v", access)
	}
}

func TestCanEditViewerRefused(t *testing.T) {
	db := testutil.DB(t)
	resolver := newResolver(t, db)

	// The role directory reads committed rows, so the viewer cannot live in a
	// rolled-back test transaction.
	viewer := testutil.SeedUser(t, db, authz.RoleViewer, false)
	t.Cleanup(func() {
		db.Unscoped().Delete(&types.User{}, "id = ?", viewer.ID)
	})

	if resolver.CanEdit(context.Background(), authz.PrincipalContext{UserID: viewer.ID}, authz.AccessOwner) {
		t.Fatal("view-only team member must not edit even owned entities")
	}
}

func TestResolveRoomWalksToBoard(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	resolver := newResolver(t, db)

	owner := testutil.SeedUser(t, tx, authz.RoleDesigner, false)
	stranger := testutil.SeedUser(t, tx, authz.RoleDesigner, false)
	board := testutil.SeedBoard(t, tx, owner.ID, nil)
	project := testutil.SeedProject(t, tx, board.ID)
	room := testutil.SeedRoom(t, tx, project.ID, 1)

	ctx := context.Background()

	got, access, err := resolver.ResolveRoom(ctx, tx, authz.PrincipalContext{UserID: owner.ID}, room.ID)
	if err != nil {
		t.Fatalf("owner resolve room: %v", err)
	}
	if got == nil || access != authz.AccessOwner {
		t.Fatalf("owner should hold owner access on the room, got %v", access)
	}

	gotP, access, err := resolver.ResolveProject(ctx, tx, authz.PrincipalContext{UserID: stranger.ID}, project.ID)
	if err != nil {
		t.Fatalf("stranger resolve project: %v", err)
	}
	if gotP != nil || access != authz.AccessNone {
		t.Fatalf("stranger should be denied on the project, got %v", access)
	}
}
