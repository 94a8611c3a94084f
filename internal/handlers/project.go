package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studiolane/studiolane-backend/internal/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (ph *ProjectHandler) Create(c *gin.Context) {
	var req struct {
		BoardID uuid.UUID `json:"board_id"`
		Name    string    `json:"name"`
		Status  string    `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	project, err := ph.projectService.Create(c.Request.Context(), services.CreateProjectInput{
		BoardID: req.BoardID,
		Name:    req.Name,
		Status:  req.Status,
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "project created", gin.H{"project": project})
}

func (ph *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}
	project, access, err := ph.projectService.Get(c.Request.Context(), projectID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "project", gin.H{"project": project, "access": int(access)})
}

func (ph *ProjectHandler) ListByBoard(c *gin.Context) {
	boardID, ok := parseIDParam(c, "board_id")
	if !ok {
		return
	}
	projects, err := ph.projectService.ListByBoard(c.Request.Context(), boardID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "projects", gin.H{"projects": projects})
}

func (ph *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}
	var req struct {
		Name   *string `json:"name"`
		Status *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	project, err := ph.projectService.Update(c.Request.Context(), projectID, services.UpdateProjectInput{
		Name:   req.Name,
		Status: req.Status,
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "project updated", gin.H{"project": project})
}

func (ph *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}
	if err := ph.projectService.SoftDelete(c.Request.Context(), projectID); err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "project deleted", nil)
}
