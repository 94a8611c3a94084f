package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/studiolane/studiolane-backend/internal/repos"
	"github.com/studiolane/studiolane-backend/internal/requestdata"
	"github.com/studiolane/studiolane-backend/internal/svcerr"
	"github.com/studiolane/studiolane-backend/internal/testutil"
	"github.com/studiolane/studiolane-backend/internal/types"
)

func kindOf(t *testing.T, err error) svcerr.Kind {
	t.Helper()
	var se *svcerr.Error
	if !errors.As(err, &se) {
		t.Fatalf("expected *svcerr.Error, got %T: %v", err, err)
	}
	return se.Kind
}

func TestCanonicalPayloadBound(t *testing.T) {
	// a JSON string literal: two quotes plus the body
	atLimit := `"` + strings.Repeat("a", maxPayloadBytes-2) + `"`
	payload, err := canonicalPayload(nil, atLimit)
	if err != nil {
		t.Fatalf("payload of exactly %d bytes should pass: %v", maxPayloadBytes, err)
	}
	if len(payload) != maxPayloadBytes {
		t.Fatalf("expected %d bytes stored, got %d", maxPayloadBytes, len(payload))
	}

	overLimit := `"` + strings.Repeat("a", maxPayloadBytes-1) + `"`
	if _, err := canonicalPayload(nil, overLimit); err == nil {
		t.Fatal("payload over the bound should be rejected")
	}
}

func TestCanonicalPayloadInvalidRaw(t *testing.T) {
	if _, err := canonicalPayload(nil, "{not json"); err == nil {
		t.Fatal("unparseable raw payload should be rejected")
	}
}

func TestCanonicalPayloadAbsent(t *testing.T) {
	payload, err := canonicalPayload(nil, "")
	if err != nil {
		t.Fatalf("absent payload: %v", err)
	}
	if payload != nil {
		t.Fatalf("absent payload should store nil, got %q", payload)
	}
}

func TestCanonicalPayloadStructured(t *testing.T) {
	payload, err := canonicalPayload(map[string]interface{}{"version": 2}, "")
	if err != nil {
		t.Fatalf("structured payload: %v", err)
	}
	if string(payload) != `{"version":2}` {
		t.Fatalf("unexpected serialization: %s", payload)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 45); got != "short" {
		t.Fatalf("short value should pass through, got %q", got)
	}
	long := strings.Repeat("x", 60)
	if got := truncate(long, 45); len(got) != 45 {
		t.Fatalf("expected 45 bytes, got %d", len(got))
	}

	// the cut never splits a multi-byte rune
	accented := strings.Repeat("é", 30) // 2 bytes each
	got := truncate(accented, 45)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if len(got) != 44 {
		t.Fatalf("expected 44 bytes after backing off the partial rune, got %d", len(got))
	}
}

func TestRecordRejectsUnknownEnums(t *testing.T) {
	log := testutil.Logger(t)
	recorder := NewEventRecorder(nil, log, repos.NewEventRepo(nil, log))
	ctx := context.Background()

	_, err := recorder.Record(ctx, nil, RecordInput{
		EventType:  "board.exploded",
		ObjectType: types.ObjectBoard,
	})
	if err == nil || kindOf(t, err) != svcerr.KindValidation {
		t.Fatalf("unknown event type should fail validation, got %v", err)
	}

	_, err = recorder.Record(ctx, nil, RecordInput{
		EventType:  types.EventBoardCreated,
		ObjectType: "spaceship",
	})
	if err == nil || kindOf(t, err) != svcerr.KindValidation {
		t.Fatalf("unknown object type should fail validation, got %v", err)
	}
}

func TestRecordRequiresPrincipal(t *testing.T) {
	log := testutil.Logger(t)
	recorder := NewEventRecorder(nil, log, repos.NewEventRepo(nil, log))

	_, err := recorder.Record(context.Background(), nil, RecordInput{
		EventType:  types.EventBoardCreated,
		ObjectType: types.ObjectBoard,
	})
	if err == nil || kindOf(t, err) != svcerr.KindAuthentication {
		t.Fatalf("missing principal should fail authentication, got %v", err)
	}
}

func TestRecordPersistsActorFromContext(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	recorder := NewEventRecorder(db, log, repos.NewEventRepo(db, log))

	actor := testutil.SeedUser(t, tx, "designer", false)
	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:    actor.ID,
		ClientIP:  strings.Repeat("9", 60),
		UserAgent: strings.Repeat("u", 600),
	})

	id, err := recorder.Record(ctx, tx, RecordInput{
		EventType:  types.EventBoardCreated,
		ObjectType: types.ObjectBoard,
		Payload:    map[string]interface{}{"name": "Atelier"},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	var event types.Event
	if err := tx.First(&event, "id = ?", id).Error; err != nil {
		t.Fatalf("read back event: %v", err)
	}
	if event.ActorUserID != actor.ID {
		t.Fatalf("actor must come from context, got %v", event.ActorUserID)
	}
	if len(event.IP) != maxIPLen {
		t.Fatalf("ip should be truncated to %d, got %d", maxIPLen, len(event.IP))
	}
	if len(event.UserAgent) != maxUserAgentLen {
		t.Fatalf("user agent should be truncated to %d, got %d", maxUserAgentLen, len(event.UserAgent))
	}
}
