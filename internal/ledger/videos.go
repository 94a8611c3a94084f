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

// VideoView is a read-shaped step video submission. Source is derived from
// the non-null actor column; SubmittedBy is nil in the designer shape.
type VideoView struct {
	ID          uuid.UUID  `json:"id"`
	ItemID      uuid.UUID  `json:"item_id"`
	StepNumber  int        `json:"step_number"`
	Version     int        `json:"version"`
	Source      string     `json:"source"`
	SubmittedBy *uuid.UUID `json:"submitted_by,omitempty"`
	Links       []LinkView `json:"links"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SubmitVideoInput struct {
	ItemID     uuid.UUID
	StepNumber int
	// Source declares which actor column the principal fills: "supplier" or
	// "operator". Exactly one actor column ends up set.
	Source string
	URLs   []string
}

type AddStepCommentInput struct {
	ItemID       uuid.UUID
	StepNumber   int
	MediaVersion *int
	Text         string
}

type VideoService interface {
	SubmitStepVideo(ctx context.Context, in SubmitVideoInput) (*types.StepVideoSubmission, error)
	DesignerHistory(ctx context.Context, itemID uuid.UUID, stepNumber int) ([]VideoView, error)
	OperatorHistory(ctx context.Context, itemID uuid.UUID, stepNumber int) ([]VideoView, error)
	Current(ctx context.Context, itemID uuid.UUID, stepNumber int) (*VideoView, error)
	AddStepComment(ctx context.Context, in AddStepCommentInput) (*types.StepComment, error)
	ListStepComments(ctx context.Context, itemID uuid.UUID, stepNumber int) ([]*types.StepComment, error)
}

type videoService struct {
	db       *gorm.DB
	log      *logger.Logger
	resolver *authz.Resolver
	items    repos.ItemRepo
	videos   repos.StepVideoRepo
	comments repos.StepCommentRepo
	recorder EventRecorder
	notifier Notifier
}

func NewVideoService(
	db *gorm.DB,
	baseLog *logger.Logger,
	resolver *authz.Resolver,
	items repos.ItemRepo,
	videos repos.StepVideoRepo,
	comments repos.StepCommentRepo,
	recorder EventRecorder,
	notifier Notifier,
) VideoService {
	return &videoService{
		db:       db,
		log:      baseLog.With("service", "VideoService"),
		resolver: resolver,
		items:    items,
		videos:   videos,
		comments: comments,
		recorder: recorder,
		notifier: notifier,
	}
}

// SubmitStepVideo appends one immutable video version for the (item, step)
// key. Exactly one of the supplier/operator columns is filled, from the
// authenticated principal, according to the declared source.
func (s *videoService) SubmitStepVideo(ctx context.Context, in SubmitVideoInput) (*types.StepVideoSubmission, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	if in.ItemID == uuid.Nil {
		return nil, svcerr.Validationf("missing_item", "item id is required")
	}
	if !types.ValidVideoStep(in.StepNumber) {
		return nil, svcerr.Validationf("invalid_step", "step number must be 4, 5 or 6")
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

	sub := &types.StepVideoSubmission{
		ID:         uuid.New(),
		ItemID:     in.ItemID,
		StepNumber: in.StepNumber,
	}
	actorID := pc.UserID
	switch in.Source {
	case types.VideoSourceSupplier:
		sub.SupplierID = &actorID
	case types.VideoSourceOperator:
		sub.OperatorID = &actorID
	default:
		return nil, svcerr.Validationf("invalid_source", "source must be supplier or operator")
	}
	for i, l := range links {
		sub.Links = append(sub.Links, types.StepVideoLink{
			ID:           uuid.New(),
			SubmissionID: sub.ID,
			Provider:     l.provider,
			URL:          l.url,
			SortOrder:    i,
		})
	}

	assign := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			max, err := s.videos.MaxVersion(ctx, tx, sub.ItemID, sub.StepNumber)
			if err != nil {
				return err
			}
			sub.Version = max + 1
			_, err = s.videos.CreateSubmission(ctx, tx, sub)
			return err
		})
	}
	err = assign()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = assign()
	}
	if err != nil {
		return nil, svcerr.Storage("video_insert_failed", err)
	}

	subID := sub.ID
	itemID := sub.ItemID
	if _, err := s.recorder.Record(ctx, nil, RecordInput{
		EventType:  types.EventStepVideoSubmitted,
		ObjectType: types.ObjectStepVideo,
		ObjectID:   &subID,
		ItemID:     &itemID,
		Payload: map[string]interface{}{
			"step_number": sub.StepNumber,
			"version":     sub.Version,
			"source":      sub.Source(),
		},
	}); err != nil {
		s.log.Error("ledger append failed after video commit", "submission_id", sub.ID, "error", err)
	}
	return sub, nil
}

func (s *videoService) DesignerHistory(ctx context.Context, itemID uuid.UUID, stepNumber int) ([]VideoView, error) {
	subs, err := s.history(ctx, itemID, stepNumber)
	if err != nil {
		return nil, err
	}
	views := make([]VideoView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, shapeVideo(sub, false))
	}
	return views, nil
}

func (s *videoService) OperatorHistory(ctx context.Context, itemID uuid.UUID, stepNumber int) ([]VideoView, error) {
	subs, err := s.history(ctx, itemID, stepNumber)
	if err != nil {
		return nil, err
	}
	views := make([]VideoView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, shapeVideo(sub, true))
	}
	return views, nil
}

func (s *videoService) history(ctx context.Context, itemID uuid.UUID, stepNumber int) ([]*types.StepVideoSubmission, error) {
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
	subs, err := s.videos.ListVersions(ctx, nil, itemID, stepNumber)
	if err != nil {
		return nil, svcerr.Storage("video_list_failed", err)
	}
	return subs, nil
}

// Current returns the max-version submission for the key, operator-shaped.
func (s *videoService) Current(ctx context.Context, itemID uuid.UUID, stepNumber int) (*VideoView, error) {
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
	sub, err := s.videos.GetCurrent(ctx, nil, itemID, stepNumber)
	if err != nil {
		return nil, svcerr.Storage("video_lookup_failed", err)
	}
	if sub == nil {
		return nil, nil
	}
	view := shapeVideo(sub, true)
	return &view, nil
}

// AddStepComment appends an immutable designer comment on a step; the
// designer must resolve the item (owner or admin).
func (s *videoService) AddStepComment(ctx context.Context, in AddStepCommentInput) (*types.StepComment, error) {
	pc, ok := authz.PrincipalFromContext(ctx)
	if !ok {
		return nil, svcerr.Authentication("no_principal", fmt.Errorf("not authenticated"))
	}
	if !types.ValidVideoStep(in.StepNumber) {
		return nil, svcerr.Validationf("invalid_step", "step number must be 4, 5 or 6")
	}
	if in.Text == "" {
		return nil, svcerr.Validationf("missing_text", "comment text is required")
	}
	item, err := s.resolver.ResolveItem(ctx, nil, pc, in.ItemID)
	if err != nil {
		return nil, svcerr.Storage("resolve_failed", err)
	}
	if item == nil {
		return nil, svcerr.NotFound("item_not_found", fmt.Errorf("item not found"))
	}

	comment := &types.StepComment{
		ID:           uuid.New(),
		ItemID:       in.ItemID,
		StepNumber:   in.StepNumber,
		DesignerID:   pc.UserID,
		MediaVersion: in.MediaVersion,
		Text:         in.Text,
	}
	if _, err := s.comments.Create(ctx, nil, []*types.StepComment{comment}); err != nil {
		return nil, svcerr.Storage("comment_insert_failed", err)
	}

	commentID := comment.ID
	itemID := in.ItemID
	if _, err := s.recorder.Record(ctx, nil, RecordInput{
		EventType:  types.EventStepCommentAdded,
		ObjectType: types.ObjectStepComment,
		ObjectID:   &commentID,
		ItemID:     &itemID,
		Payload:    map[string]interface{}{"step_number": in.StepNumber},
	}); err != nil {
		s.log.Error("ledger append failed after step comment commit", "comment_id", comment.ID, "error", err)
	}
	if s.notifier != nil {
		go s.notifier.Dispatch("step_comment_added", map[string]interface{}{
			"item_id":     in.ItemID.String(),
			"step_number": in.StepNumber,
			"comment_id":  comment.ID.String(),
		})
	}
	return comment, nil
}

func (s *videoService) ListStepComments(ctx context.Context, itemID uuid.UUID, stepNumber int) ([]*types.StepComment, error) {
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
	comments, err := s.comments.ListByItemStep(ctx, nil, itemID, stepNumber)
	if err != nil {
		return nil, svcerr.Storage("comment_list_failed", err)
	}
	return comments, nil
}

func shapeVideo(sub *types.StepVideoSubmission, includeSubmitter bool) VideoView {
	view := VideoView{
		ID:         sub.ID,
		ItemID:     sub.ItemID,
		StepNumber: sub.StepNumber,
		Version:    sub.Version,
		Source:     sub.Source(),
		CreatedAt:  sub.CreatedAt,
	}
	if includeSubmitter {
		if sub.SupplierID != nil {
			view.SubmittedBy = sub.SupplierID
		} else if sub.OperatorID != nil {
			view.SubmittedBy = sub.OperatorID
		}
	}
	for _, l := range sub.Links {
		view.Links = append(view.Links, LinkView{Provider: l.Provider, URL: l.URL, SortOrder: l.SortOrder})
	}
	return view
}
