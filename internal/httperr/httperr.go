package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// Respond maps a use case error to its HTTP representation.
func Respond(c *gin.Context, err error) {
	var (
		conflict   SlotConflictError
		transition TransitionError
		notFound   NotFoundError
	)

	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, HTTPError{
			Code:    CodeSlotConflict,
			Message: "Slot is no longer available, choose another time.",
			Details: gin.H{
				"provider_id": conflict.ProviderID,
				"cell":        conflict.Cell,
				"status":      conflict.Status,
				"booking_id":  conflict.BookingID,
			},
		})
	case errors.As(err, &transition):
		c.JSON(http.StatusUnprocessableEntity, HTTPError{
			Code:    CodeInvalidStateTransition,
			Message: transition.Error(),
			Details: gin.H{
				"axis": transition.Axis,
				"from": transition.From,
				"to":   transition.To,
			},
		})
	case errors.As(err, &notFound):
		NotFound(c, CodeNotFound, notFound.Error())
	default:
		switch code := CodeOf(err); code {
		case CodeTimeout:
			Write(c, http.StatusGatewayTimeout, code, "Datastore timeout, re-query before retrying.")
		case CodeForbiddenActor:
			Forbidden(c, code, "Action not allowed for this actor.")
		case CodeOutsideWorkingHours, CodeInvalidSlot, CodeTooSoon, CodeInvalidRequest:
			BadRequest(c, code, "Requested time is not bookable.")
		case "":
			Internal(c, "internal_error", "Unexpected error.")
		default:
			BadRequest(c, code, code)
		}
	}
}
