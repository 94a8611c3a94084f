package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/repos"
	"github.com/studiolane/studiolane-backend/internal/requestdata"
	"github.com/studiolane/studiolane-backend/internal/svcerr"
	"github.com/studiolane/studiolane-backend/internal/types"
)

const (
	maxPayloadBytes = 10240
	maxIPLen        = 45
	maxUserAgentLen = 500
)

// RecordInput describes one ledger event. The actor is never part of the
// input: it is always derived from the authenticated principal in context.
type RecordInput struct {
	EventType   string
	ObjectType  string
	ObjectID    *uuid.UUID
	ItemID      *uuid.UUID
	BoardID     *uuid.UUID
	ActorFirmID *uuid.UUID
	// Payload is a structured value serialized by the recorder. RawPayload
	// is a pre-serialized alternative, revalidated for parseability. At most
	// one should be set.
	Payload    interface{}
	RawPayload string
	// IP / UserAgent override what the request context carries. Both are
	// truncated to their column bounds.
	IP        string
	UserAgent string
}

// EventRecorder appends immutable rows to the audit spine. There is no
// update or delete anywhere on this surface.
type EventRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, in RecordInput) (uuid.UUID, error)
}

type eventRecorder struct {
	db     *gorm.DB
	log    *logger.Logger
	events repos.EventRepo
}

func NewEventRecorder(db *gorm.DB, baseLog *logger.Logger, events repos.EventRepo) EventRecorder {
	return &eventRecorder{
		db:     db,
		log:    baseLog.With("component", "EventRecorder"),
		events: events,
	}
}

func (r *eventRecorder) Record(ctx context.Context, tx *gorm.DB, in RecordInput) (uuid.UUID, error) {
	if !types.ValidEventType(in.EventType) {
		return uuid.Nil, svcerr.Validationf("invalid_event_type", "unknown event type %q", in.EventType)
	}
	if !types.ValidObjectType(in.ObjectType) {
		return uuid.Nil, svcerr.Validationf("invalid_object_type", "unknown object type %q", in.ObjectType)
	}

	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, svcerr.Authentication("no_principal", fmt.Errorf("no authenticated principal for ledger write"))
	}

	payload, err := canonicalPayload(in.Payload, in.RawPayload)
	if err != nil {
		return uuid.Nil, err
	}

	ip := in.IP
	if ip == "" {
		ip = rd.ClientIP
	}
	userAgent := in.UserAgent
	if userAgent == "" {
		userAgent = rd.UserAgent
	}

	event := &types.Event{
		ID:          uuid.New(),
		ActorUserID: rd.UserID,
		ActorFirmID: in.ActorFirmID,
		EventType:   in.EventType,
		ObjectType:  in.ObjectType,
		ObjectID:    in.ObjectID,
		ItemID:      in.ItemID,
		BoardID:     in.BoardID,
		Payload:     payload,
		IP:          truncate(ip, maxIPLen),
		UserAgent:   truncate(userAgent, maxUserAgentLen),
	}

	if _, err := r.events.Create(ctx, tx, event); err != nil {
		return uuid.Nil, svcerr.Storage("event_insert_failed", err)
	}
	return event.ID, nil
}

// canonicalPayload serializes a structured payload or revalidates a
// pre-serialized one, and enforces the 10 KiB bound (exactly 10240 bytes is
// accepted).
func canonicalPayload(structured interface{}, raw string) (datatypes.JSON, error) {
	var data []byte
	switch {
	case raw != "":
		if !json.Valid([]byte(raw)) {
			return nil, svcerr.Validationf("invalid_payload", "payload is not valid JSON")
		}
		data = []byte(raw)
	case structured != nil:
		serialized, err := json.Marshal(structured)
		if err != nil {
			return nil, svcerr.Validation("invalid_payload", err)
		}
		data = serialized
	default:
		return nil, nil
	}
	if len(data) > maxPayloadBytes {
		return nil, svcerr.Validationf("payload_too_large", "payload is %d bytes, max %d", len(data), maxPayloadBytes)
	}
	return datatypes.JSON(data), nil
}

// truncate clips to at most max bytes without splitting a multi-byte rune
// at the boundary; the column would reject an invalid byte sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
