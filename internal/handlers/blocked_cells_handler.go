package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/consult-scheduler/internal/middleware"
	"github.com/BruksfildServices01/consult-scheduler/internal/usecase/booking"
)

type BlockedCellsHandler struct {
	cells *booking.ManageBlockedCells
}

func NewBlockedCellsHandler(cells *booking.ManageBlockedCells) *BlockedCellsHandler {
	return &BlockedCellsHandler{cells: cells}
}

type BlockCellRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	Reason    string `json:"reason"`
}

// GET /api/providers/:id/blocked-cells?date=YYYY-MM-DD
func (h *BlockedCellsHandler) List(c *gin.Context) {
	providerID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	cells, err := h.cells.List(c.Request.Context(), middleware.Actor(c), providerID, c.Query("date"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, cells)
}

func (h *BlockedCellsHandler) Block(c *gin.Context) {
	providerID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req BlockCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, err.Error())
		return
	}

	cell, err := h.cells.Block(c.Request.Context(), middleware.Actor(c), booking.BlockedCellInput{
		ProviderID: providerID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		Reason:     req.Reason,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, cell)
}

// DELETE /api/providers/:id/blocked-cells?date=YYYY-MM-DD&start_time=HH:mm
func (h *BlockedCellsHandler) Unblock(c *gin.Context) {
	providerID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	err := h.cells.Unblock(c.Request.Context(), middleware.Actor(c), booking.BlockedCellInput{
		ProviderID: providerID,
		Date:       c.Query("date"),
		StartTime:  c.Query("start_time"),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
