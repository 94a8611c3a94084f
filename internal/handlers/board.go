package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studiolane/studiolane-backend/internal/services"
)

type BoardHandler struct {
	boardService services.BoardService
}

func NewBoardHandler(boardService services.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

func (bh *BoardHandler) Create(c *gin.Context) {
	var req struct {
		Name        string     `json:"name"`
		ViewMode    string     `json:"view_mode"`
		OwnerFirmID *uuid.UUID `json:"owner_firm_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	board, err := bh.boardService.Create(c.Request.Context(), services.CreateBoardInput{
		Name:        req.Name,
		ViewMode:    req.ViewMode,
		OwnerFirmID: req.OwnerFirmID,
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "board created", gin.H{"board": board})
}

func (bh *BoardHandler) Get(c *gin.Context) {
	boardID, ok := parseIDParam(c, "board_id")
	if !ok {
		return
	}
	board, access, err := bh.boardService.Get(c.Request.Context(), boardID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "board", gin.H{"board": board, "access": int(access)})
}

func (bh *BoardHandler) ListOwned(c *gin.Context) {
	boards, err := bh.boardService.ListOwned(c.Request.Context())
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "boards", gin.H{"boards": boards})
}

func (bh *BoardHandler) Update(c *gin.Context) {
	boardID, ok := parseIDParam(c, "board_id")
	if !ok {
		return
	}
	var req struct {
		Name     *string `json:"name"`
		ViewMode *string `json:"view_mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	board, err := bh.boardService.Update(c.Request.Context(), boardID, services.UpdateBoardInput{
		Name:     req.Name,
		ViewMode: req.ViewMode,
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "board updated", gin.H{"board": board})
}

func (bh *BoardHandler) SaveLayout(c *gin.Context) {
	boardID, ok := parseIDParam(c, "board_id")
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	if err := bh.boardService.SaveLayout(c.Request.Context(), boardID, string(raw)); err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "layout saved", nil)
}

func (bh *BoardHandler) GetLayout(c *gin.Context) {
	boardID, ok := parseIDParam(c, "board_id")
	if !ok {
		return
	}
	board, layout, err := bh.boardService.GetLayout(c.Request.Context(), boardID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "layout", gin.H{"board": board, "layout": layout})
}

func (bh *BoardHandler) Delete(c *gin.Context) {
	boardID, ok := parseIDParam(c, "board_id")
	if !ok {
		return
	}
	if err := bh.boardService.SoftDelete(c.Request.Context(), boardID); err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "board deleted", nil)
}

func (bh *BoardHandler) AddItem(c *gin.Context) {
	boardID, ok := parseIDParam(c, "board_id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	row, err := bh.boardService.AddItem(c.Request.Context(), boardID, itemID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "item added", gin.H{"board_item": row})
}

func (bh *BoardHandler) RemoveItem(c *gin.Context) {
	boardID, ok := parseIDParam(c, "board_id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	if err := bh.boardService.RemoveItem(c.Request.Context(), boardID, itemID); err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "item removed", nil)
}

func (bh *BoardHandler) ListItems(c *gin.Context) {
	boardID, ok := parseIDParam(c, "board_id")
	if !ok {
		return
	}
	items, err := bh.boardService.ListItems(c.Request.Context(), boardID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "items", gin.H{"items": items})
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondBadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
