package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/studiolane/studiolane-backend/internal/services"
)

type ItemHandler struct {
	itemService services.ItemService
}

func NewItemHandler(itemService services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

type dimensionBody struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func (d *dimensionBody) input() *services.DimensionInput {
	if d == nil {
		return nil
	}
	return &services.DimensionInput{Value: d.Value, Unit: d.Unit}
}

func (ih *ItemHandler) Create(c *gin.Context) {
	var req struct {
		Name   string        `json:"name"`
		Width  dimensionBody `json:"width"`
		Height dimensionBody `json:"height"`
		Depth  dimensionBody `json:"depth"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	item, err := ih.itemService.Create(c.Request.Context(), services.CreateItemInput{
		Name:   req.Name,
		Width:  services.DimensionInput{Value: req.Width.Value, Unit: req.Width.Unit},
		Height: services.DimensionInput{Value: req.Height.Value, Unit: req.Height.Unit},
		Depth:  services.DimensionInput{Value: req.Depth.Value, Unit: req.Depth.Unit},
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "item created", gin.H{"item": item})
}

func (ih *ItemHandler) Get(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	item, err := ih.itemService.Get(c.Request.Context(), itemID)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "item", gin.H{"item": item})
}

func (ih *ItemHandler) ListOwned(c *gin.Context) {
	items, err := ih.itemService.ListOwned(c.Request.Context())
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "items", gin.H{"items": items})
}

func (ih *ItemHandler) Update(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	var req struct {
		Name   *string        `json:"name"`
		Width  *dimensionBody `json:"width"`
		Height *dimensionBody `json:"height"`
		Depth  *dimensionBody `json:"depth"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	item, err := ih.itemService.Update(c.Request.Context(), itemID, services.UpdateItemInput{
		Name:   req.Name,
		Width:  req.Width.input(),
		Height: req.Height.input(),
		Depth:  req.Depth.input(),
	})
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "item updated", gin.H{"item": item})
}

func (ih *ItemHandler) PlaceInRoom(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	roomID, ok := parseIDParam(c, "room_id")
	if !ok {
		return
	}
	if err := ih.itemService.PlaceInRoom(c.Request.Context(), itemID, roomID); err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "item placed", nil)
}

func (ih *ItemHandler) RemoveFromRoom(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	if err := ih.itemService.RemoveFromRoom(c.Request.Context(), itemID); err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "item removed from room", nil)
}

func (ih *ItemHandler) Delete(c *gin.Context) {
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	if err := ih.itemService.SoftDelete(c.Request.Context(), itemID); err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, "item deleted", nil)
}
