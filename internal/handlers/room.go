package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studiolane/studiolane-backend/internal/services"
)

type RoomHandler struct {
	roomService services.RoomService
}

func NewRoomHandler(roomService services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

func (rh *RoomHandler) Create(c *gin.Context) {
	var req struct {
		ProjectID uuid.UUID `json:"project_id"`
		Name      string    `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	room, err := rh.roomService.Create(c.Request.Context(), services.CreateRoomInput{
		ProjectID: req.ProjectID,
		Name:      req.Name,
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "room created", gin.H{"room": room})
}

func (rh *RoomHandler) Get(c *gin.Context) {
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}
	room, err := rh.roomService.Get(c.Request.Context(), roomID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "room", gin.H{"room": room})
}

func (rh *RoomHandler) ListByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}
	rooms, err := rh.roomService.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "rooms", gin.H{"rooms": rooms})
}

func (rh *RoomHandler) Rename(c *gin.Context) {
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	room, err := rh.roomService.Rename(c.Request.Context(), roomID, req.Name)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "room renamed", gin.H{"room": room})
}

func (rh *RoomHandler) Reorder(c *gin.Context) {
	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}
	var req struct {
		RoomIDs []uuid.UUID `json:"room_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	if err := rh.roomService.Reorder(c.Request.Context(), projectID, req.RoomIDs); err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "rooms reordered", nil)
}

func (rh *RoomHandler) Delete(c *gin.Context) {
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}
	if err := rh.roomService.SoftDelete(c.Request.Context(), roomID); err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "room deleted", nil)
}
