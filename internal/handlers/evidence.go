package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studiolane/studiolane-backend/internal/ledger"
)

type EvidenceHandler struct {
	evidenceService ledger.EvidenceService
}

func NewEvidenceHandler(evidenceService ledger.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{evidenceService: evidenceService}
}

func (eh *EvidenceHandler) Submit(c *gin.Context) {
	var req struct {
		ItemID         uuid.UUID `json:"item_id"`
		TimelineStepID int       `json:"timeline_step_id"`
		URLs           []string  `json:"urls"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	sub, err := eh.evidenceService.SubmitStepEvidence(c.Request.Context(), ledger.SubmitEvidenceInput{
		ItemID:         req.ItemID,
		TimelineStepID: req.TimelineStepID,
		URLs:           req.URLs,
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "evidence submitted", gin.H{"submission": sub})
}

func (eh *EvidenceHandler) DesignerHistory(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	step, ok := parseIntParam(c, "step_id")
	if !ok {
		return
	}
	views, err := eh.evidenceService.DesignerHistory(c.Request.Context(), itemID, step)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "evidence history", gin.H{"submissions": views})
}

func (eh *EvidenceHandler) OperatorHistory(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	step, ok := parseIntParam(c, "step_id")
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "supplier_id")
	if !ok {
		return
	}
	views, err := eh.evidenceService.OperatorHistory(c.Request.Context(), itemID, step, supplierID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "evidence history", gin.H{"submissions": views})
}

func (eh *EvidenceHandler) AddComment(c *gin.Context) {
	evidenceID, ok := parseIDParam(c, "evidence_id")
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	comment, err := eh.evidenceService.AddComment(c.Request.Context(), ledger.AddEvidenceCommentInput{
		EvidenceID: evidenceID,
		Text:       req.Text,
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "comment added", gin.H{"comment": comment})
}

func (eh *EvidenceHandler) ListComments(c *gin.Context) {
	evidenceID, ok := parseIDParam(c, "evidence_id")
	if !ok {
		return
	}
	comments, err := eh.evidenceService.ListComments(c.Request.Context(), evidenceID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "comments", gin.H{"comments": comments})
}

func parseIntParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		RespondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}
