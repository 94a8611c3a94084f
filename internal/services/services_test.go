package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/authz"
	"github.com/studiolane/studiolane-backend/internal/hooks"
	"github.com/studiolane/studiolane-backend/internal/ledger"
	"github.com/studiolane/studiolane-backend/internal/repos"
	"github.com/studiolane/studiolane-backend/internal/requestdata"
	"github.com/studiolane/studiolane-backend/internal/services"
	"github.com/studiolane/studiolane-backend/internal/svcerr"
	"github.com/studiolane/studiolane-backend/internal/testutil"
	"github.com/studiolane/studiolane-backend/internal/types"
)

// harness wires the full service stack against the test database. Services
// commit their own transactions, so tests key their rows on fresh uuids
// rather than rolling back.
type harness struct {
	db       *gorm.DB
	Boards   services.BoardService
	Projects services.ProjectService
	Rooms    services.RoomService
	Items    services.ItemService
	Comments services.ProjectCommentService
}

func newHarness(tb testing.TB) *harness {
	tb.Helper()
	db := testutil.DB(tb)
	log := testutil.Logger(tb)

	userRepo := repos.NewUserRepo(db, log)
	boardRepo := repos.NewBoardRepo(db, log)
	boardItemRepo := repos.NewBoardItemRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	roomRepo := repos.NewRoomRepo(db, log)
	itemRepo := repos.NewItemRepo(db, log)
	eventRepo := repos.NewEventRepo(db, log)
	commentRepo := repos.NewProjectCommentRepo(db, log)
	memberRepo := repos.NewFirmMemberRepo(db, log)

	roles := authz.NewRoleDirectory(db, log, userRepo)
	resolver := authz.NewResolver(db, log, itemRepo, boardRepo, projectRepo, roomRepo, memberRepo, roles)
	recorder := ledger.NewEventRecorder(db, log, eventRepo)
	runner := hooks.NewRunner(log)

	return &harness{
		db:       db,
		Boards:   services.NewBoardService(db, log, resolver, roles, boardRepo, boardItemRepo, itemRepo, memberRepo, recorder, runner),
		Projects: services.NewProjectService(db, log, resolver, projectRepo, recorder),
		Rooms:    services.NewRoomService(db, log, resolver, roomRepo, itemRepo, recorder),
		Items:    services.NewItemService(db, log, resolver, itemRepo, recorder),
		Comments: services.NewProjectCommentService(db, log, resolver, commentRepo, recorder, nil),
	}
}

func asPrincipal(user *types.User) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	})
}

func wantKind(t *testing.T, err error, kind svcerr.Kind) {
	t.Helper()
	var se *svcerr.Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *svcerr.Error, got %T: %v", err, err)
	}
	if se.Kind != kind {
		t.Fatalf("expected kind %v, got %v (%v)", kind, se.Kind, err)
	}
}

func TestBoardItemReAddKeepsHistory(t *testing.T) {
	h := newHarness(t)

	owner := testutil.SeedUser(t, h.db, "operator", false)
	item := testutil.SeedItem(t, h.db, owner.ID)
	ctx := asPrincipal(owner)

	board, err := h.Boards.Create(ctx, services.CreateBoardInput{Name: "Loft"})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}

	first, err := h.Boards.AddItem(ctx, board.ID, item.ID)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	// adding again while active is idempotent
	again, err := h.Boards.AddItem(ctx, board.ID, item.ID)
	if err != nil {
		t.Fatalf("re-add while active: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("active re-add should return the existing row, got %v and %v", first.ID, again.ID)
	}

	if err := h.Boards.RemoveItem(ctx, board.ID, item.ID); err != nil {
		t.Fatalf("remove item: %v", err)
	}

	second, err := h.Boards.AddItem(ctx, board.ID, item.ID)
	if err != nil {
		t.Fatalf("re-add after removal: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("re-add after removal must create a fresh membership row")
	}

	var rows []types.BoardItem
	if err := h.db.Where("board_id = ? AND item_id = ?", board.ID, item.ID).Order("created_at").Find(&rows).Error; err != nil {
		t.Fatalf("read memberships: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 membership rows, got %d", len(rows))
	}
	if rows[0].RemovedAt == nil {
		t.Fatal("removed row must keep its removed_at")
	}
	if rows[1].RemovedAt != nil {
		t.Fatal("fresh row must be active")
	}
}

func TestSingleBoardRoleConflict(t *testing.T) {
	h := newHarness(t)

	designer := testutil.SeedUser(t, h.db, authz.RoleDesigner, false)
	ctx := asPrincipal(designer)

	if _, err := h.Boards.Create(ctx, services.CreateBoardInput{Name: "First"}); err != nil {
		t.Fatalf("first board: %v", err)
	}
	_, err := h.Boards.Create(ctx, services.CreateBoardInput{Name: "Second"})
	if err == nil {
		t.Fatal("a designer's second board must conflict")
	}
	wantKind(t, err, svcerr.KindConflict)

	// deleting the board frees the slot
	boards, err := h.Boards.ListOwned(ctx)
	if err != nil || len(boards) != 1 {
		t.Fatalf("list owned: %v (%d boards)", err, len(boards))
	}
	if err := h.Boards.SoftDelete(ctx, boards[0].ID); err != nil {
		t.Fatalf("delete board: %v", err)
	}
	if _, err := h.Boards.Create(ctx, services.CreateBoardInput{Name: "Second"}); err != nil {
		t.Fatalf("board after delete: %v", err)
	}
}

func TestBoardLayoutRoundTrip(t *testing.T) {
	h := newHarness(t)

	owner := testutil.SeedUser(t, h.db, "operator", false)
	ctx := asPrincipal(owner)
	board, err := h.Boards.Create(ctx, services.CreateBoardInput{Name: "Studio"})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}

	// a fresh board reads as an empty envelope
	_, envelope, err := h.Boards.GetLayout(ctx, board.ID)
	if err != nil {
		t.Fatalf("get empty layout: %v", err)
	}
	if envelope == nil || envelope.Items == nil || len(envelope.Items) != 0 {
		t.Fatalf("expected empty items array, got %+v", envelope)
	}

	err = h.Boards.SaveLayout(ctx, board.ID, `{"meta": {}}`)
	wantKind(t, err, svcerr.KindValidation)

	err = h.Boards.SaveLayout(ctx, board.ID, `{not json`)
	wantKind(t, err, svcerr.KindValidation)

	layout := `{"items": [{"item_id": "a", "x": 1, "y": 2}], "meta": {"zoom": 1.5}}`
	if err := h.Boards.SaveLayout(ctx, board.ID, layout); err != nil {
		t.Fatalf("save layout: %v", err)
	}
	_, envelope, err = h.Boards.GetLayout(ctx, board.ID)
	if err != nil {
		t.Fatalf("get layout: %v", err)
	}
	if len(envelope.Items) != 1 {
		t.Fatalf("expected 1 layout item, got %d", len(envelope.Items))
	}

	// stored bytes that no longer match the envelope shape read as empty
	if err := h.db.Model(&types.Board{}).Where("id = ?", board.ID).
		Update("latest_layout_json", `{"items": 5}`).Error; err != nil {
		t.Fatalf("corrupt stored layout: %v", err)
	}
	_, envelope, err = h.Boards.GetLayout(ctx, board.ID)
	if err != nil {
		t.Fatalf("get corrupted layout: %v", err)
	}
	if len(envelope.Items) != 0 {
		t.Fatalf("corrupted layout should read as empty, got %d items", len(envelope.Items))
	}
}

func TestRoomOrdering(t *testing.T) {
	h := newHarness(t)

	owner := testutil.SeedUser(t, h.db, "operator", false)
	ctx := asPrincipal(owner)
	board := testutil.SeedBoard(t, h.db, owner.ID, nil)
	project := testutil.SeedProject(t, h.db, board.ID)

	var roomIDs []uuid.UUID
	for _, name := range []string{"Living", "Kitchen", "Bedroom"} {
		room, err := h.Rooms.Create(ctx, services.CreateRoomInput{ProjectID: project.ID, Name: name})
		if err != nil {
			t.Fatalf("create room %s: %v", name, err)
		}
		roomIDs = append(roomIDs, room.ID)
	}

	rooms, err := h.Rooms.ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	for i, room := range rooms {
		if room.DisplayOrder != i+1 {
			t.Fatalf("expected dense 1..N creation order, got %d at position %d", room.DisplayOrder, i)
		}
	}

	// a permutation rewrites dense 1..N
	reversed := []uuid.UUID{roomIDs[2], roomIDs[1], roomIDs[0]}
	if err := h.Rooms.Reorder(ctx, project.ID, reversed); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	rooms, err = h.Rooms.ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("list after reorder: %v", err)
	}
	if rooms[0].ID != roomIDs[2] || rooms[0].DisplayOrder != 1 {
		t.Fatalf("reorder not applied, got %v at order %d", rooms[0].ID, rooms[0].DisplayOrder)
	}

	// the submitted set must match the project's rooms exactly
	err = h.Rooms.Reorder(ctx, project.ID, roomIDs[:2])
	wantKind(t, err, svcerr.KindValidation)
	err = h.Rooms.Reorder(ctx, project.ID, []uuid.UUID{roomIDs[0], roomIDs[1], roomIDs[1]})
	wantKind(t, err, svcerr.KindValidation)
	err = h.Rooms.Reorder(ctx, project.ID, []uuid.UUID{roomIDs[0], roomIDs[1], uuid.New()})
	wantKind(t, err, svcerr.KindValidation)
}

func TestRoomDeleteRefusesWhenOccupied(t *testing.T) {
	h := newHarness(t)

	owner := testutil.SeedUser(t, h.db, "operator", false)
	ctx := asPrincipal(owner)
	board := testutil.SeedBoard(t, h.db, owner.ID, nil)
	project := testutil.SeedProject(t, h.db, board.ID)
	item := testutil.SeedItem(t, h.db, owner.ID)

	room, err := h.Rooms.Create(ctx, services.CreateRoomInput{ProjectID: project.ID, Name: "Den"})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if err := h.Items.PlaceInRoom(ctx, item.ID, room.ID); err != nil {
		t.Fatalf("place item: %v", err)
	}

	err = h.Rooms.SoftDelete(ctx, room.ID)
	wantKind(t, err, svcerr.KindConflict)

	if err := h.Items.RemoveFromRoom(ctx, item.ID); err != nil {
		t.Fatalf("remove from room: %v", err)
	}
	if err := h.Rooms.SoftDelete(ctx, room.ID); err != nil {
		t.Fatalf("delete empty room: %v", err)
	}
}

func TestItemDimensionNormalization(t *testing.T) {
	h := newHarness(t)

	owner := testutil.SeedUser(t, h.db, "operator", false)
	ctx := asPrincipal(owner)

	item, err := h.Items.Create(ctx, services.CreateItemInput{
		Name:   "Side table",
		Width:  services.DimensionInput{Value: 100, Unit: "mm"},
		Height: services.DimensionInput{Value: 0.1, Unit: "m"},
		Depth:  services.DimensionInput{Value: 10, Unit: "cm"},
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.WidthCm != 10 || item.HeightCm != 10 || item.DepthCm != 10 {
		t.Fatalf("dimensions should normalize to 10cm each, got %v %v %v", item.WidthCm, item.HeightCm, item.DepthCm)
	}
	if item.CBM != 0.001 {
		t.Fatalf("expected CBM 0.001, got %v", item.CBM)
	}

	// a partial update mixes the stored triple with the submitted value
	width := services.DimensionInput{Value: 200, Unit: "mm"}
	updated, err := h.Items.Update(ctx, item.ID, services.UpdateItemInput{Width: &width})
	if err != nil {
		t.Fatalf("update width: %v", err)
	}
	if updated.WidthCm != 20 || updated.HeightCm != 10 || updated.DepthCm != 10 {
		t.Fatalf("unexpected triple after partial update: %v %v %v", updated.WidthCm, updated.HeightCm, updated.DepthCm)
	}
	if updated.CBM != 0.002 {
		t.Fatalf("expected recomputed CBM 0.002, got %v", updated.CBM)
	}

	_, err = h.Items.Create(ctx, services.CreateItemInput{
		Name:   "Bad",
		Width:  services.DimensionInput{Value: 10, Unit: "furlong"},
		Height: services.DimensionInput{Value: 10, Unit: "cm"},
		Depth:  services.DimensionInput{Value: 10, Unit: "cm"},
	})
	wantKind(t, err, svcerr.KindValidation)
}

func TestItemMutationsRefuseViewer(t *testing.T) {
	h := newHarness(t)

	viewer := testutil.SeedUser(t, h.db, authz.RoleViewer, false)
	owner := testutil.SeedUser(t, h.db, "operator", false)
	item := testutil.SeedItem(t, h.db, viewer.ID)
	board := testutil.SeedBoard(t, h.db, owner.ID, nil)
	project := testutil.SeedProject(t, h.db, board.ID)
	room := testutil.SeedRoom(t, h.db, project.ID, 1)

	ctx := asPrincipal(viewer)

	name := "renamed"
	_, err := h.Items.Update(ctx, item.ID, services.UpdateItemInput{Name: &name})
	wantKind(t, err, svcerr.KindAuthorization)

	err = h.Items.PlaceInRoom(ctx, item.ID, room.ID)
	wantKind(t, err, svcerr.KindAuthorization)

	err = h.Items.RemoveFromRoom(ctx, item.ID)
	wantKind(t, err, svcerr.KindAuthorization)

	err = h.Items.SoftDelete(ctx, item.ID)
	wantKind(t, err, svcerr.KindAuthorization)

	// reads stay open to the owner
	got, err := h.Items.Get(ctx, item.ID)
	if err != nil || got == nil {
		t.Fatalf("viewer should still read their own item: %v", err)
	}
}

func TestBoardCreateRejectsForeignFirm(t *testing.T) {
	h := newHarness(t)

	outsider := testutil.SeedUser(t, h.db, "operator", false)
	member := testutil.SeedUser(t, h.db, "operator", false)
	firm := testutil.SeedFirm(t, h.db, "Studio")
	testutil.SeedFirmMember(t, h.db, firm.ID, member.ID, types.FirmMemberStatusActive)

	_, err := h.Boards.Create(asPrincipal(outsider), services.CreateBoardInput{
		Name:        "Delegated",
		OwnerFirmID: &firm.ID,
	})
	wantKind(t, err, svcerr.KindValidation)

	board, err := h.Boards.Create(asPrincipal(member), services.CreateBoardInput{
		Name:        "Delegated",
		OwnerFirmID: &firm.ID,
	})
	if err != nil {
		t.Fatalf("member-owned delegation: %v", err)
	}
	if board.OwnerFirmID == nil || *board.OwnerFirmID != firm.ID {
		t.Fatalf("delegation not stored, got %v", board.OwnerFirmID)
	}
}

func TestProjectCommentAuthorship(t *testing.T) {
	h := newHarness(t)

	owner := testutil.SeedUser(t, h.db, "operator", false)
	stranger := testutil.SeedUser(t, h.db, "operator", false)
	board := testutil.SeedBoard(t, h.db, owner.ID, nil)
	project := testutil.SeedProject(t, h.db, board.ID)

	comment, err := h.Comments.Add(asPrincipal(owner), services.AddProjectCommentInput{
		ProjectID: project.ID,
		Text:      "swap the fabric on the headboard",
		IsUrgent:  true,
	})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	_, err = h.Comments.Add(asPrincipal(stranger), services.AddProjectCommentInput{
		ProjectID: project.ID,
		Text:      "nope",
	})
	wantKind(t, err, svcerr.KindNotFound)

	// a reply must thread under the same project
	otherBoard := testutil.SeedBoard(t, h.db, owner.ID, nil)
	otherProject := testutil.SeedProject(t, h.db, otherBoard.ID)
	parentID := comment.ID
	_, err = h.Comments.Add(asPrincipal(owner), services.AddProjectCommentInput{
		ProjectID:       otherProject.ID,
		ParentCommentID: &parentID,
		Text:            "cross-project reply",
	})
	wantKind(t, err, svcerr.KindValidation)

	// only the author or an admin may edit
	text := "edited"
	_, err = h.Comments.Update(asPrincipal(stranger), comment.ID, services.UpdateProjectCommentInput{Text: &text})
	if err == nil {
		t.Fatal("non-author edit should be refused")
	}

	updated, err := h.Comments.Update(asPrincipal(owner), comment.ID, services.UpdateProjectCommentInput{Text: &text})
	if err != nil {
		t.Fatalf("author edit: %v", err)
	}
	if updated.Text != "edited" {
		t.Fatalf("edit not applied, got %q", updated.Text)
	}

	if err := h.Comments.SoftDelete(asPrincipal(owner), comment.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	comments, err := h.Comments.ListByProject(asPrincipal(owner), project.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("deleted comment should not list, got %d", len(comments))
	}
}
