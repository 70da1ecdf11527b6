package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/consult-scheduler/internal/middleware"
	"github.com/BruksfildServices01/consult-scheduler/internal/usecase/booking"
)

type WorkingHoursHandler struct {
	hours *booking.ManageWorkingHours
}

func NewWorkingHoursHandler(hours *booking.ManageWorkingHours) *WorkingHoursHandler {
	return &WorkingHoursHandler{hours: hours}
}

type WorkingDayConfig struct {
	Weekday    *int   `json:"weekday" binding:"required,min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
}

type WorkingHoursUpdateRequest struct {
	Days []WorkingDayConfig `json:"days" binding:"required,dive"`
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	providerID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	hours, err := h.hours.Get(c.Request.Context(), middleware.Actor(c), providerID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, hours)
}

func (h *WorkingHoursHandler) Update(c *gin.Context) {
	providerID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, err.Error())
		return
	}

	days := make([]booking.WorkingDay, 0, len(req.Days))
	for _, d := range req.Days {
		days = append(days, booking.WorkingDay{
			Weekday:    *d.Weekday,
			Active:     d.Active,
			StartTime:  d.StartTime,
			EndTime:    d.EndTime,
			BreakStart: d.BreakStart,
			BreakEnd:   d.BreakEnd,
		})
	}

	hours, err := h.hours.Replace(c.Request.Context(), middleware.Actor(c), providerID, days)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, hours)
}
