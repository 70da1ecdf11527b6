package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/consult-scheduler/internal/usecase/booking"
)

type AdminHandler struct {
	matrix *booking.GetProviderDayMatrix
}

func NewAdminHandler(matrix *booking.GetProviderDayMatrix) *AdminHandler {
	return &AdminHandler{matrix: matrix}
}

// GET /api/admin/matrix?date=YYYY-MM-DD
func (h *AdminHandler) DayMatrix(c *gin.Context) {
	m, err := h.matrix.Execute(c.Request.Context(), c.Query("date"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, m)
}
