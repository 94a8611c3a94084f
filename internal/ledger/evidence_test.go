package ledger

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/authz"
	"github.com/studiolane/studiolane-backend/internal/repos"
	"github.com/studiolane/studiolane-backend/internal/requestdata"
	"github.com/studiolane/studiolane-backend/internal/svcerr"
	"github.com/studiolane/studiolane-backend/internal/testutil"
	"github.com/studiolane/studiolane-backend/internal/types"
)

func TestValidateLinks(t *testing.T) {
	if _, err := validateLinks(nil); err == nil {
		t.Fatal("zero links should be rejected")
	}
	four := []string{
		"https://www.youtube.com/watch?v=a",
		"https://www.youtube.com/watch?v=b",
		"https://www.youtube.com/watch?v=c",
		"https://www.youtube.com/watch?v=d",
	}
	if _, err := validateLinks(four); err == nil {
		t.Fatal("four links should be rejected")
	}

	// one bad host poisons the whole set
	mixed := []string{
		"https://www.youtube.com/watch?v=a",
		"https://example.com/video/1",
	}
	if _, err := validateLinks(mixed); err == nil {
		t.Fatal("an unrecognized host should reject the whole set")
	}

	specs, err := validateLinks([]string{
		"https://www.youtube.com/watch?v=a",
		"https://vimeo.com/12345",
		"https://www.loom.com/share/abc",
	})
	if err != nil {
		t.Fatalf("three recognized links: %v", err)
	}
	want := []string{types.ProviderYouTube, types.ProviderVimeo, types.ProviderLoom}
	for i, spec := range specs {
		if spec.provider != want[i] {
			t.Fatalf("link %d: expected provider %q, got %q", i, want[i], spec.provider)
		}
	}
}

// asPrincipal builds a request context carrying the given user as the
// authenticated principal.
func asPrincipal(user *types.User) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	})
}

func newEvidenceService(tb testing.TB, db *gorm.DB) EvidenceService {
	tb.Helper()
	log := testutil.Logger(tb)
	roles := authz.NewRoleDirectory(db, log, repos.NewUserRepo(db, log))
	resolver := authz.NewResolver(db, log,
		repos.NewItemRepo(db, log), repos.NewBoardRepo(db, log),
		repos.NewProjectRepo(db, log), repos.NewRoomRepo(db, log),
		repos.NewFirmMemberRepo(db, log), roles)
	recorder := NewEventRecorder(db, log, repos.NewEventRepo(db, log))
	return NewEvidenceService(db, log, resolver,
		repos.NewItemRepo(db, log),
		repos.NewStepEvidenceRepo(db, log),
		repos.NewEvidenceCommentRepo(db, log),
		recorder, nil)
}

func newVideoService(tb testing.TB, db *gorm.DB) VideoService {
	tb.Helper()
	log := testutil.Logger(tb)
	roles := authz.NewRoleDirectory(db, log, repos.NewUserRepo(db, log))
	resolver := authz.NewResolver(db, log,
		repos.NewItemRepo(db, log), repos.NewBoardRepo(db, log),
		repos.NewProjectRepo(db, log), repos.NewRoomRepo(db, log),
		repos.NewFirmMemberRepo(db, log), roles)
	recorder := NewEventRecorder(db, log, repos.NewEventRepo(db, log))
	return NewVideoService(db, log, resolver,
		repos.NewItemRepo(db, log),
		repos.NewStepVideoRepo(db, log),
		repos.NewStepCommentRepo(db, log),
		recorder, nil)
}

// Submissions commit their own transactions, so these tests seed committed
// rows keyed on fresh uuids instead of a rolled-back transaction.
func TestSubmitStepEvidenceVersionsAscend(t *testing.T) {
	db := testutil.DB(t)
	svc := newEvidenceService(t, db)

	owner := testutil.SeedUser(t, db, "designer", false)
	supplier := testutil.SeedUser(t, db, "supplier", false)
	item := testutil.SeedItem(t, db, owner.ID)

	ctx := asPrincipal(supplier)
	urls := []string{"https://www.youtube.com/watch?v=a"}

	first, err := svc.SubmitStepEvidence(ctx, SubmitEvidenceInput{ItemID: item.ID, TimelineStepID: 2, URLs: urls})
	if err != nil {
		t.Fatalf("first submission: %v", err)
	}
	second, err := svc.SubmitStepEvidence(ctx, SubmitEvidenceInput{ItemID: item.ID, TimelineStepID: 2, URLs: urls})
	if err != nil {
		t.Fatalf("second submission: %v", err)
	}
	if first.Version != 1 || second.Version != 2 {
		t.Fatalf("versions should ascend from 1, got %d then %d", first.Version, second.Version)
	}

	// a different step starts its own version chain
	other, err := svc.SubmitStepEvidence(ctx, SubmitEvidenceInput{ItemID: item.ID, TimelineStepID: 3, URLs: urls})
	if err != nil {
		t.Fatalf("other step submission: %v", err)
	}
	if other.Version != 1 {
		t.Fatalf("a new (item, step, supplier) key should start at 1, got %d", other.Version)
	}
}

func TestEvidenceHistoryShapes(t *testing.T) {
	db := testutil.DB(t)
	svc := newEvidenceService(t, db)

	owner := testutil.SeedUser(t, db, "designer", false)
	supplier := testutil.SeedUser(t, db, "supplier", false)
	item := testutil.SeedItem(t, db, owner.ID)

	if _, err := svc.SubmitStepEvidence(asPrincipal(supplier), SubmitEvidenceInput{
		ItemID: item.ID, TimelineStepID: 2,
		URLs: []string{"https://vimeo.com/12345"},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	views, err := svc.DesignerHistory(asPrincipal(owner), item.ID, 2)
	if err != nil {
		t.Fatalf("designer history: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 version, got %d", len(views))
	}
	if views[0].SubmittedBy != nil {
		t.Fatal("designer shape must omit submitter identity")
	}
	if len(views[0].Links) != 1 || views[0].Links[0].Provider != types.ProviderVimeo {
		t.Fatalf("unexpected links: %+v", views[0].Links)
	}

	opViews, err := svc.OperatorHistory(asPrincipal(supplier), item.ID, 2, supplier.ID)
	if err != nil {
		t.Fatalf("operator history: %v", err)
	}
	if len(opViews) != 1 || opViews[0].SubmittedBy == nil || *opViews[0].SubmittedBy != supplier.ID {
		t.Fatalf("operator shape must carry the submitter, got %+v", opViews)
	}

	// a supplier cannot read another supplier's chain; the refusal is shaped
	// like a miss
	_, err = svc.OperatorHistory(asPrincipal(owner), item.ID, 2, supplier.ID)
	if err == nil || kindOf(t, err) != svcerr.KindNotFound {
		t.Fatalf("foreign supplier chain should read as not found, got %v", err)
	}

	stranger := testutil.SeedUser(t, db, "designer", false)
	_, err = svc.DesignerHistory(asPrincipal(stranger), item.ID, 2)
	if err == nil || kindOf(t, err) != svcerr.KindNotFound {
		t.Fatalf("a stranger's read should be indistinguishable from a missing item, got %v", err)
	}
}

func TestSubmitStepVideoSources(t *testing.T) {
	db := testutil.DB(t)
	svc := newVideoService(t, db)

	owner := testutil.SeedUser(t, db, "designer", false)
	supplier := testutil.SeedUser(t, db, "supplier", false)
	operator := testutil.SeedUser(t, db, "operator", false)
	item := testutil.SeedItem(t, db, owner.ID)
	urls := []string{"https://www.loom.com/share/abc"}

	sub, err := svc.SubmitStepVideo(asPrincipal(supplier), SubmitVideoInput{
		ItemID: item.ID, StepNumber: 4, Source: types.VideoSourceSupplier, URLs: urls,
	})
	if err != nil {
		t.Fatalf("supplier submit: %v", err)
	}
	if sub.SupplierID == nil || *sub.SupplierID != supplier.ID || sub.OperatorID != nil {
		t.Fatalf("supplier source must fill only the supplier column, got %+v", sub)
	}

	sub, err = svc.SubmitStepVideo(asPrincipal(operator), SubmitVideoInput{
		ItemID: item.ID, StepNumber: 4, Source: types.VideoSourceOperator, URLs: urls,
	})
	if err != nil {
		t.Fatalf("operator submit: %v", err)
	}
	if sub.OperatorID == nil || *sub.OperatorID != operator.ID || sub.SupplierID != nil {
		t.Fatalf("operator source must fill only the operator column, got %+v", sub)
	}
	if sub.Version != 2 {
		t.Fatalf("versions are shared per (item, step) across sources, got %d", sub.Version)
	}

	_, err = svc.SubmitStepVideo(asPrincipal(supplier), SubmitVideoInput{
		ItemID: item.ID, StepNumber: 4, Source: "client", URLs: urls,
	})
	if err == nil || kindOf(t, err) != svcerr.KindValidation {
		t.Fatalf("unknown source should fail validation, got %v", err)
	}

	_, err = svc.SubmitStepVideo(asPrincipal(supplier), SubmitVideoInput{
		ItemID: item.ID, StepNumber: 3, Source: types.VideoSourceSupplier, URLs: urls,
	})
	if err == nil || kindOf(t, err) != svcerr.KindValidation {
		t.Fatalf("step outside 4..6 should fail validation, got %v", err)
	}
}

func TestVideoCurrentAndDesignerShape(t *testing.T) {
	db := testutil.DB(t)
	svc := newVideoService(t, db)

	owner := testutil.SeedUser(t, db, "designer", false)
	supplier := testutil.SeedUser(t, db, "supplier", false)
	item := testutil.SeedItem(t, db, owner.ID)
	urls := []string{"https://www.youtube.com/watch?v=a"}

	for i := 0; i < 3; i++ {
		if _, err := svc.SubmitStepVideo(asPrincipal(supplier), SubmitVideoInput{
			ItemID: item.ID, StepNumber: 5, Source: types.VideoSourceSupplier, URLs: urls,
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	current, err := svc.Current(asPrincipal(owner), item.ID, 5)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current == nil || current.Version != 3 {
		t.Fatalf("current should be the max version, got %+v", current)
	}

	views, err := svc.DesignerHistory(asPrincipal(owner), item.ID, 5)
	if err != nil {
		t.Fatalf("designer history: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(views))
	}
	for _, v := range views {
		if v.SubmittedBy != nil {
			t.Fatal("designer shape must omit submitter identity")
		}
		if v.Source != types.VideoSourceSupplier {
			t.Fatalf("source must still be derivable, got %q", v.Source)
		}
	}

	// an empty key yields no current version and no error
	current, err = svc.Current(asPrincipal(owner), item.ID, 6)
	if err != nil {
		t.Fatalf("current on empty key: %v", err)
	}
	if current != nil {
		t.Fatalf("expected nil current, got %+v", current)
	}
}

func TestStepCommentsGateOnItem(t *testing.T) {
	db := testutil.DB(t)
	svc := newVideoService(t, db)

	owner := testutil.SeedUser(t, db, "designer", false)
	stranger := testutil.SeedUser(t, db, "designer", false)
	item := testutil.SeedItem(t, db, owner.ID)

	version := 1
	comment, err := svc.AddStepComment(asPrincipal(owner), AddStepCommentInput{
		ItemID: item.ID, StepNumber: 4, MediaVersion: &version, Text: "tighter joinery on the left leg",
	})
	if err != nil {
		t.Fatalf("owner comment: %v", err)
	}
	if comment.DesignerID != owner.ID {
		t.Fatalf("comment author must be the principal, got %v", comment.DesignerID)
	}

	_, err = svc.AddStepComment(asPrincipal(stranger), AddStepCommentInput{
		ItemID: item.ID, StepNumber: 4, Text: "nope",
	})
	if err == nil || kindOf(t, err) != svcerr.KindNotFound {
		t.Fatalf("stranger comment should read as not found, got %v", err)
	}

	comments, err := svc.ListStepComments(asPrincipal(owner), item.ID, 4)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Text != "tighter joinery on the left leg" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
}
