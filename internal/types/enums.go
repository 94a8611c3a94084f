package types

import (
	"net/url"
	"strings"
)

// Closed enumerations. Every value written to the ledger or to a whitelisted
// column is validated against these sets; widening a set is a deliberate
// governance change, not a runtime affordance.

// Event types.
const (
	EventBoardCreated          = "board_created"
	EventBoardUpdated          = "board_updated"
	EventBoardDeleted          = "board_deleted"
	EventBoardLayoutSaved      = "board_layout_saved"
	EventBoardItemAdded        = "board_item_added"
	EventBoardItemRemoved      = "board_item_removed"
	EventProjectCreated        = "project_created"
	EventProjectUpdated        = "project_updated"
	EventProjectDeleted        = "project_deleted"
	EventRoomCreated           = "room_created"
	EventRoomUpdated           = "room_updated"
	EventRoomReordered         = "room_reordered"
	EventRoomDeleted           = "room_deleted"
	EventItemCreated           = "item_created"
	EventItemUpdated           = "item_updated"
	EventItemDeleted           = "item_deleted"
	EventItemPlaced            = "item_placed"
	EventItemRemoved           = "item_removed"
	EventEvidenceSubmitted     = "evidence_submitted"
	EventStepVideoSubmitted    = "step_video_submitted"
	EventStepCommentAdded      = "step_comment_added"
	EventEvidenceCommentAdded  = "evidence_comment_added"
	EventProjectCommentAdded   = "project_comment_added"
	EventProjectCommentUpdated = "project_comment_updated"
	EventProjectCommentDeleted = "project_comment_deleted"
	EventMemberAccessGranted   = "member_access_granted"
)

var eventTypes = map[string]struct{}{
	EventBoardCreated:          {},
	EventBoardUpdated:          {},
	EventBoardDeleted:          {},
	EventBoardLayoutSaved:      {},
	EventBoardItemAdded:        {},
	EventBoardItemRemoved:      {},
	EventProjectCreated:        {},
	EventProjectUpdated:        {},
	EventProjectDeleted:        {},
	EventRoomCreated:           {},
	EventRoomUpdated:           {},
	EventRoomReordered:         {},
	EventRoomDeleted:           {},
	EventItemCreated:           {},
	EventItemUpdated:           {},
	EventItemDeleted:           {},
	EventItemPlaced:            {},
	EventItemRemoved:           {},
	EventEvidenceSubmitted:     {},
	EventStepVideoSubmitted:    {},
	EventStepCommentAdded:      {},
	EventEvidenceCommentAdded:  {},
	EventProjectCommentAdded:   {},
	EventProjectCommentUpdated: {},
	EventProjectCommentDeleted: {},
	EventMemberAccessGranted:   {},
}

func ValidEventType(v string) bool {
	_, ok := eventTypes[v]
	return ok
}

// Object types.
const (
	ObjectBoard           = "board"
	ObjectProject         = "project"
	ObjectRoom            = "room"
	ObjectItem            = "item"
	ObjectBoardItem       = "board_item"
	ObjectEvidence        = "evidence"
	ObjectStepVideo       = "step_video"
	ObjectStepComment     = "step_comment"
	ObjectEvidenceComment = "evidence_comment"
	ObjectProjectComment  = "project_comment"
	ObjectFirm            = "firm"
)

var objectTypes = map[string]struct{}{
	ObjectBoard:           {},
	ObjectProject:         {},
	ObjectRoom:            {},
	ObjectItem:            {},
	ObjectBoardItem:       {},
	ObjectEvidence:        {},
	ObjectStepVideo:       {},
	ObjectStepComment:     {},
	ObjectEvidenceComment: {},
	ObjectProjectComment:  {},
	ObjectFirm:            {},
}

func ValidObjectType(v string) bool {
	_, ok := objectTypes[v]
	return ok
}

// Board view modes.
const (
	ViewModeGrid = "grid"
	ViewModeList = "list"
	ViewMode3D   = "3d"
)

func ValidViewMode(v string) bool {
	switch v {
	case ViewModeGrid, ViewModeList, ViewMode3D:
		return true
	}
	return false
}

// Project lifecycle.
const (
	ProjectStatusDraft    = "draft"
	ProjectStatusActive   = "active"
	ProjectStatusArchived = "archived"
)

func ValidProjectStatus(v string) bool {
	switch v {
	case ProjectStatusDraft, ProjectStatusActive, ProjectStatusArchived:
		return true
	}
	return false
}

// Firm membership status.
const (
	FirmMemberStatusActive  = "active"
	FirmMemberStatusRemoved = "removed"
)

// Video evidence sources.
const (
	VideoSourceSupplier = "supplier"
	VideoSourceOperator = "operator"
)

// Video link providers.
const (
	ProviderYouTube = "youtube"
	ProviderVimeo   = "vimeo"
	ProviderLoom    = "loom"
)

// ProviderFromURL resolves a raw link to exactly one recognized provider by
// host suffix. Anything else fails the whole submission it belongs to.
func ProviderFromURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	switch {
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") || host == "youtu.be":
		return ProviderYouTube, true
	case host == "vimeo.com" || strings.HasSuffix(host, ".vimeo.com"):
		return ProviderVimeo, true
	case host == "loom.com" || strings.HasSuffix(host, ".loom.com"):
		return ProviderLoom, true
	}
	return "", false
}

// Evidence-bearing timeline steps (production, QC, shipping).
func ValidVideoStep(step int) bool {
	return step >= 4 && step <= 6
}
