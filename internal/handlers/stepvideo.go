package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studiolane/studiolane-backend/internal/ledger"
)

type StepVideoHandler struct {
	videoService ledger.VideoService
}

func NewStepVideoHandler(videoService ledger.VideoService) *StepVideoHandler {
	return &StepVideoHandler{videoService: videoService}
}

func (vh *StepVideoHandler) Submit(c *gin.Context) {
	var req struct {
		ItemID     uuid.UUID `json:"item_id"`
		StepNumber int       `json:"step_number"`
		Source     string    `json:"source"`
		URLs       []string  `json:"urls"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	sub, err := vh.videoService.SubmitStepVideo(c.Request.Context(), ledger.SubmitVideoInput{
		ItemID:     req.ItemID,
		StepNumber: req.StepNumber,
		Source:     req.Source,
		URLs:       req.URLs,
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "video submitted", gin.H{"submission": sub})
}

func (vh *StepVideoHandler) DesignerHistory(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	step, ok := parseIntParam(c, "step_number")
	if !ok {
		return
	}
	views, err := vh.videoService.DesignerHistory(c.Request.Context(), itemID, step)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "video history", gin.H{"submissions": views})
}

func (vh *StepVideoHandler) OperatorHistory(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	step, ok := parseIntParam(c, "step_number")
	if !ok {
		return
	}
	views, err := vh.videoService.OperatorHistory(c.Request.Context(), itemID, step)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "video history", gin.H{"submissions": views})
}

func (vh *StepVideoHandler) Current(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	step, ok := parseIntParam(c, "step_number")
	if !ok {
		return
	}
	view, err := vh.videoService.Current(c.Request.Context(), itemID, step)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "current video", gin.H{"submission": view})
}

func (vh *StepVideoHandler) AddComment(c *gin.Context) {
	var req struct {
		ItemID       uuid.UUID `json:"item_id"`
		StepNumber   int       `json:"step_number"`
		MediaVersion *int      `json:"media_version"`
		Text         string    `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	comment, err := vh.videoService.AddStepComment(c.Request.Context(), ledger.AddStepCommentInput{
		ItemID:       req.ItemID,
		StepNumber:   req.StepNumber,
		MediaVersion: req.MediaVersion,
		Text:         req.Text,
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "comment added", gin.H{"comment": comment})
}

func (vh *StepVideoHandler) ListComments(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	step, ok := parseIntParam(c, "step_number")
	if !ok {
		return
	}
	comments, err := vh.videoService.ListStepComments(c.Request.Context(), itemID, step)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "comments", gin.H{"comments": comments})
}
