package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/consult-scheduler/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	availability *booking.GetAvailability
}

func NewPublicHandler(availability *booking.GetAvailability) *PublicHandler {
	return &PublicHandler{availability: availability}
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

// GET /api/public/providers/:id/availability?date=&duration=&service_id=&mode=
func (h *PublicHandler) Availability(c *gin.Context) {
	providerID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "date is required")
		return
	}

	duration, ok := intQuery(c, "duration", 0)
	if !ok {
		return
	}
	serviceID, ok := uintQuery(c, "service_id")
	if !ok {
		return
	}

	res, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		ProviderID:      providerID,
		Date:            date,
		DurationMinutes: duration,
		ServiceID:       serviceID,
		Mode:            c.Query("mode"),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, res)
}
