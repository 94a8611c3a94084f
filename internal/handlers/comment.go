package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studiolane/studiolane-backend/internal/services"
)

type ProjectCommentHandler struct {
	commentService services.ProjectCommentService
}

func NewProjectCommentHandler(commentService services.ProjectCommentService) *ProjectCommentHandler {
	return &ProjectCommentHandler{commentService: commentService}
}

func (ch *ProjectCommentHandler) Add(c *gin.Context) {
	var req struct {
		ProjectID       uuid.UUID  `json:"project_id"`
		ParentCommentID *uuid.UUID `json:"parent_comment_id"`
		ItemID          *uuid.UUID `json:"item_id"`
		VideoID         *uuid.UUID `json:"video_id"`
		Text            string     `json:"text"`
		IsUrgent        bool       `json:"is_urgent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	comment, err := ch.commentService.Add(c.Request.Context(), services.AddProjectCommentInput{
		ProjectID:       req.ProjectID,
		ParentCommentID: req.ParentCommentID,
		ItemID:          req.ItemID,
		VideoID:         req.VideoID,
		Text:            req.Text,
		IsUrgent:        req.IsUrgent,
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "comment added", gin.H{"comment": comment})
}

func (ch *ProjectCommentHandler) Update(c *gin.Context) {
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		return
	}
	var req struct {
		Text     *string `json:"text"`
		IsUrgent *bool   `json:"is_urgent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	comment, err := ch.commentService.Update(c.Request.Context(), commentID, services.UpdateProjectCommentInput{
		Text:     req.Text,
		IsUrgent: req.IsUrgent,
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "comment updated", gin.H{"comment": comment})
}

func (ch *ProjectCommentHandler) Delete(c *gin.Context) {
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		return
	}
	if err := ch.commentService.SoftDelete(c.Request.Context(), commentID); err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "comment deleted", nil)
}

func (ch *ProjectCommentHandler) ListByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}
	comments, err := ch.commentService.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "comments", gin.H{"comments": comments})
}
