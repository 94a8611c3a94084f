package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/authz"
	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/repos"
	"github.com/studiolane/studiolane-backend/internal/svcerr"
	"github.com/studiolane/studiolane-backend/internal/types"
)

const (
	minLinksPerSubmission = 1
	maxLinksPerSubmission = 3
)

// Notifier is invoked fire-and-forget after successful comment writes; its
// outcome is never consumed by the core.
type Notifier interface {
	Dispatch(event string, fields map[string]interface{})
}

// LinkView is one video link as shown to a reader.
type LinkView struct {
	Provider  string `json:"provider"`
	URL       string `json:"url"`
	SortOrder int    `json:"sort_order"`
}

// EvidenceView is a read-shaped submission. SubmittedBy is nil in the
// designer view: submitter identity is stripped at the read boundary, not
// by clients.
type EvidenceView struct {
	ID             uuid.UUID  `json:"id"`
	ItemID         uuid.UUID  `json:"item_id"`
	TimelineStepID int        `json:"timeline_step_id"`
	Version        int        `json:"version"`
	SubmittedBy    *uuid.UUID `json:"submitted_by,omitempty"`
	Links          []LinkView `json:"links"`
	CreatedAt      time.Time  `json:"created_at"`
}

type SubmitEvidenceInput struct {
	ItemID         uuid.UUID
	TimelineStepID int
	URLs           []string
}

type AddEvidenceCommentInput struct {
	EvidenceID uuid.UUID
	Text       string
}

type EvidenceService interface {
	SubmitStepEvidence(ctx context.Context, in SubmitEvidenceInput) (*types.StepEvidenceSubmission, error)
	DesignerHistory(ctx context.Context, itemID uuid.UUID, timelineStepID int) ([]EvidenceView, error)
	OperatorHistory(ctx context.Context, itemID uuid.UUID, timelineStepID int, supplierID uuid.UUID) ([]EvidenceView, error)
	AddComment(ctx context.Context, in AddEvidenceCommentInput) (*types.EvidenceComment, error)
	ListComments(ctx context.Context, evidenceID uuid.UUID) ([]*types.EvidenceComment, error)
}

type evidenceService struct {
	db       *gorm.DB
	log      *logger.Logger
	resolver *authz.Resolver
	items    repos.ItemRepo
	evidence repos.StepEvidenceRepo
	comments repos.EvidenceCommentRepo
	recorder EventRecorder
	notifier Notifier
}

func NewEvidenceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	resolver *authz.Resolver,
	items repos.ItemRepo,
	evidence repos.StepEvidenceRepo,
	comments repos.EvidenceCommentRepo,
	recorder EventRecorder,
	notifier Notifier,
) EvidenceService {
	return &evidenceService{
		db:       db,
		log:      baseLog.With("service", "EvidenceService"),
		resolver: resolver,
		items:    items,
		evidence: evidence,
		comments: comments,
		recorder: recorder,
		notifier: notifier,
	}
}

// SubmitStepEvidence appends one immutable submission version for the
// (item, step, supplier) key. The supplier is always the authenticated
// principal. Any unrecognized link host fails the whole submission; no
// partial link set is ever persisted.
func (s *evidenceService) SubmitStepEvidence(ctx context.Context, in SubmitEvidenceInput) (*types.StepEvidenceSubmission, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	if in.ItemID == uuid.Nil {
		return nil, svcerr.Validationf("missing_item", "item id is required")
	}
	if in.TimelineStepID <= 0 {
		return nil, svcerr.Validationf("invalid_step", "timeline step id is required")
	}
	links, err := validateLinks(in.URLs)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, nil, in.ItemID)
	if err != nil {
		return nil, svcerr.Storage("item_lookup_failed", err)
	}
	if item == nil {
		return nil, svcerr.NotFound("item_not_found", fmt.Errorf("item not found"))
	}

	sub := &types.StepEvidenceSubmission{
		ID:             uuid.New(),
		ItemID:         in.ItemID,
		TimelineStepID: in.TimelineStepID,
		SupplierID:     pc.UserID,
	}
	for i, l := range links {
		sub.Links = append(sub.Links, types.EvidenceLink{
			ID:           uuid.New(),
			SubmissionID: sub.ID,
			Provider:     l.provider,
			URL:          l.url,
			SortOrder:    i,
		})
	}

	assign := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			max, err := s.evidence.MaxVersion(ctx, tx, sub.ItemID, sub.TimelineStepID, sub.SupplierID)
			if err != nil {
				return err
			}
			sub.Version = max + 1
			_, err = s.evidence.CreateSubmission(ctx, tx, sub)
			return err
		})
	}
	err = assign()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost the version race; recompute once against the committed state
		err = assign()
	}
	if err != nil {
		return nil, svcerr.Storage("evidence_insert_failed", err)
	}

	subID := sub.ID
	itemID := sub.ItemID
	if _, err := s.recorder.Record(ctx, nil, RecordInput{
		EventType:  types.EventEvidenceSubmitted,
		ObjectType: types.ObjectEvidence,
		ObjectID:   &subID,
		ItemID:     &itemID,
		Payload: map[string]interface{}{
			"timeline_step_id": sub.TimelineStepID,
			"version":          sub.Version,
			"link_count":       len(sub.Links),
		},
	}); err != nil {
		// submission already committed; the audit gap is accepted
		s.log.Error("ledger append failed after evidence commit", "submission_id", sub.ID, "error", err)
	}
	return sub, nil
}

// DesignerHistory returns all versions ascending, with submitter identity
// omitted. The reader must resolve the item (owner or admin).
func (s *evidenceService) DesignerHistory(ctx context.Context, itemID uuid.UUID, timelineStepID int) ([]EvidenceView, error) {
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
	subs, err := s.evidence.ListByItemStep(ctx, nil, itemID, timelineStepID)
	if err != nil {
		return nil, svcerr.Storage("evidence_list_failed", err)
	}
	views := make([]EvidenceView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, shapeEvidence(sub, false))
	}
	return views, nil
}

// OperatorHistory includes submitter identity; only the submitting supplier
// or an admin may use it.
func (s *evidenceService) OperatorHistory(ctx context.Context, itemID uuid.UUID, timelineStepID int, supplierID uuid.UUID) ([]EvidenceView, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	if !pc.IsAdmin && pc.UserID != supplierID {
		return nil, svcerr.NotFound("chain_not_found", fmt.Errorf("submission chain not found"))
	}
	subs, err := s.evidence.ListVersions(ctx, nil, itemID, timelineStepID, supplierID)
	if err != nil {
		return nil, svcerr.Storage("evidence_list_failed", err)
	}
	views := make([]EvidenceView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, shapeEvidence(sub, true))
	}
	return views, nil
}

func (s *evidenceService) AddComment(ctx context.Context, in AddEvidenceCommentInput) (*types.EvidenceComment, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	if in.Text == "" {
		return nil, svcerr.Validationf("missing_text", "comment text is required")
	}
	sub, err := s.evidence.GetByID(ctx, nil, in.EvidenceID)
	if err != nil {
		return nil, svcerr.Storage("evidence_lookup_failed", err)
	}
	if sub == nil || !s.mayDiscuss(ctx, pc, sub) {
		return nil, svcerr.NotFound("evidence_not_found", fmt.Errorf("evidence not found"))
	}

	comment := &types.EvidenceComment{
		ID:           uuid.New(),
		EvidenceID:   sub.ID,
		AuthorUserID: pc.UserID,
		Text:         in.Text,
	}
	if _, err := s.comments.Create(ctx, nil, []*types.EvidenceComment{comment}); err != nil {
		return nil, svcerr.Storage("comment_insert_failed", err)
	}

	commentID := comment.ID
	itemID := sub.ItemID
	if _, err := s.recorder.Record(ctx, nil, RecordInput{
		EventType:  types.EventEvidenceCommentAdded,
		ObjectType: types.ObjectEvidenceComment,
		ObjectID:   &commentID,
		ItemID:     &itemID,
	}); err != nil {
		s.log.Error("ledger append failed after evidence comment commit", "comment_id", comment.ID, "error", err)
	}
	if s.notifier != nil {
		go s.notifier.Dispatch("evidence_comment_added", map[string]interface{}{
			"evidence_id": sub.ID.String(),
			"comment_id":  comment.ID.String(),
		})
	}
	return comment, nil
}

func (s *evidenceService) ListComments(ctx context.Context, evidenceID uuid.UUID) ([]*types.EvidenceComment, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	sub, err := s.evidence.GetByID(ctx, nil, evidenceID)
	if err != nil {
		return nil, svcerr.Storage("evidence_lookup_failed", err)
	}
	if sub == nil || !s.mayDiscuss(ctx, pc, sub) {
		return nil, svcerr.NotFound("evidence_not_found", fmt.Errorf("evidence not found"))
	}
	comments, err := s.comments.ListByEvidenceID(ctx, nil, evidenceID)
	if err != nil {
		return nil, svcerr.Storage("comment_list_failed", err)
	}
	return comments, nil
}

// mayDiscuss: the submitting supplier, the item's resolvable principals
// (owner/admin), nobody else.
func (s *evidenceService) mayDiscuss(ctx context.Context, pc authz.PrincipalContext, sub *types.StepEvidenceSubmission) bool {
	if pc.IsAdmin || pc.UserID == sub.SupplierID {
		return true
	}
	item, err := s.resolver.ResolveItem(ctx, nil, pc, sub.ItemID)
	if err != nil {
		s.log.Warn("item resolution failed during comment gate", "item_id", sub.ItemID, "error", err)
		return false
	}
	return item != nil
}

func shapeEvidence(sub *types.StepEvidenceSubmission, includeSubmitter bool) EvidenceView {
	view := EvidenceView{
		ID:             sub.ID,
		ItemID:         sub.ItemID,
		TimelineStepID: sub.TimelineStepID,
		Version:        sub.Version,
		CreatedAt:      sub.CreatedAt,
	}
	if includeSubmitter {
		supplierID := sub.SupplierID
		view.SubmittedBy = &supplierID
	}
	for _, l := range sub.Links {
		view.Links = append(view.Links, LinkView{Provider: l.Provider, URL: l.URL, SortOrder: l.SortOrder})
	}
	return view
}

type linkSpec struct {
	provider string
	url      string
}

// validateLinks enforces 1-3 links, each resolving to exactly one recognized
// provider. One bad host rejects the whole set.
func validateLinks(urls []string) ([]linkSpec, error) {
	if len(urls) < minLinksPerSubmission || len(urls) > maxLinksPerSubmission {
		return nil, svcerr.Validationf("invalid_link_count", "a submission carries 1 to 3 links, got %d", len(urls))
	}
	specs := make([]linkSpec, 0, len(urls))
	for _, raw := range urls {
		provider, ok := types.ProviderFromURL(raw)
		if !ok {
			return nil, svcerr.Validationf("unrecognized_provider", "unrecognized video host in %q", raw)
		}
		specs = append(specs, linkSpec{provider: provider, url: raw})
	}
	return specs, nil
}
