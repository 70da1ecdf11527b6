package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/consult-scheduler/internal/middleware"
	"github.com/BruksfildServices01/consult-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	create     *booking.CreateBooking
	get        *booking.GetBooking
	listByDate *booking.ListBookingsByDate
	cancel     *booking.CancelBooking
	payment    *booking.TransitionPayment
	approval   *booking.TransitionApproval
	fulfilment *booking.AdvanceFulfilment
}

func NewBookingHandler(
	create *booking.CreateBooking,
	get *booking.GetBooking,
	listByDate *booking.ListBookingsByDate,
	cancel *booking.CancelBooking,
	payment *booking.TransitionPayment,
	approval *booking.TransitionApproval,
	fulfilment *booking.AdvanceFulfilment,
) *BookingHandler {
	return &BookingHandler{
		create:     create,
		get:        get,
		listByDate: listByDate,
		cancel:     cancel,
		payment:    payment,
		approval:   approval,
		fulfilment: fulfilment,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ProviderID uint   `json:"provider_id" binding:"required"`
	ServiceID  uint   `json:"service_id" binding:"required"`
	Mode       string `json:"mode"`
	Date       string `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime  string `json:"start_time" binding:"required"` // HH:mm
	EndTime    string `json:"end_time"`
	// CustomerID is honoured only for admins booking on behalf of someone.
	CustomerID uint `json:"customer_id"`
}

type PaymentRequest struct {
	Event      string `json:"event" binding:"required,oneof=succeeded failed refunded"`
	PaymentRef string `json:"payment_ref"`
}

type ApprovalRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accepted rejected"`
	Reason   string `json:"reason"`
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	actor := middleware.Actor(c)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, err.Error())
		return
	}

	customerID := actor.UserID
	switch actor.Role {
	case domain.RoleCustomer:
	case domain.RoleAdmin:
		if req.CustomerID != 0 {
			customerID = req.CustomerID
		}
	default:
		httperr.Respond(c, httperr.ErrBusiness(httperr.CodeForbiddenActor))
		return
	}

	b, err := h.create.Execute(c.Request.Context(), booking.CreateBookingInput{
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		CustomerID: customerID,
		Mode:       req.Mode,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, b)
}

// ======================================================
// READ
// ======================================================

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	b, err := h.get.Execute(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, b)
}

// GET /api/providers/:id/bookings?date=YYYY-MM-DD
func (h *BookingHandler) ListByDate(c *gin.Context) {
	providerID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	list, err := h.listByDate.Execute(
		c.Request.Context(),
		middleware.Actor(c),
		providerID,
		c.Query("date"),
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, list)
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	b, err := h.cancel.Execute(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) Payment(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, err.Error())
		return
	}

	b, err := h.payment.Execute(c.Request.Context(), middleware.Actor(c), booking.TransitionPaymentInput{
		BookingID:  id,
		Event:      booking.PaymentEvent(req.Event),
		PaymentRef: req.PaymentRef,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) Approval(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, err.Error())
		return
	}

	b, err := h.approval.Execute(c.Request.Context(), middleware.Actor(c), booking.TransitionApprovalInput{
		BookingID: id,
		Decision:  domain.Approval(req.Decision),
		Reason:    req.Reason,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) Start(c *gin.Context) {
	h.advance(c, domain.FulfilmentInProgress)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	h.advance(c, domain.FulfilmentCompleted)
}

func (h *BookingHandler) advance(c *gin.Context, target domain.Fulfilment) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	b, err := h.fulfilment.Execute(c.Request.Context(), middleware.Actor(c), id, target)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, b)
}
