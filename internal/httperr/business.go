package httperr

import (
	"errors"
	"fmt"
)

// Business error codes surfaced to callers.
const (
	CodeNoScheduleConfigured   = "no_schedule_configured"
	CodeSlotConflict           = "slot_conflict"
	CodeInvalidStateTransition = "invalid_state_transition"
	CodeTimeout                = "timeout"
	CodeNotFound               = "not_found"
	CodeForbiddenActor         = "forbidden_actor"
	CodeOutsideWorkingHours    = "outside_working_hours"
	CodeInvalidSlot            = "invalid_slot"
	CodeTooSoon                = "too_soon"
	CodeInvalidRequest         = "invalid_request"
)

type coder interface {
	BusinessCode() string
}

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func (e BusinessError) BusinessCode() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// ErrTimeout means the datastore did not answer in time; the outcome of a
// mutating call is unknown and callers must re-query before retrying.
func ErrTimeout(cause error) error {
	return fmt.Errorf("%w: %w", BusinessError{Code: CodeTimeout}, cause)
}

func IsBusiness(err error, code string) bool {
	return CodeOf(err) == code
}

// CodeOf returns the business code carried by err, or "" for plain errors.
func CodeOf(err error) string {
	var c coder
	if errors.As(err, &c) {
		return c.BusinessCode()
	}
	return ""
}

// ======================================================
// Typed conditions
// ======================================================

type NotFoundError struct {
	Entity string
	ID     any
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e NotFoundError) BusinessCode() string {
	return CodeNotFound
}

func ErrNotFound(entity string, id any) error {
	return NotFoundError{Entity: entity, ID: id}
}

// SlotConflictError identifies the first cell that was no longer available
// when the booking was committed.
type SlotConflictError struct {
	ProviderID uint
	Cell       string
	// Status of the conflicting cell ("occupied", "blocked", "held", "off_grid"
	// or "released" when the booking itself was already cancelled or rejected).
	Status string
	// BookingID is the booking whose request lost, when there is one.
	BookingID uint
}

func (e SlotConflictError) Error() string {
	return fmt.Sprintf("slot conflict on provider %d cell %s (%s)", e.ProviderID, e.Cell, e.Status)
}

func (e SlotConflictError) BusinessCode() string {
	return CodeSlotConflict
}

type TransitionError struct {
	Axis string
	From string
	To   string
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Axis, e.From, e.To)
}

func (e TransitionError) BusinessCode() string {
	return CodeInvalidStateTransition
}

func ErrTransition(axis, from, to string) error {
	return TransitionError{Axis: axis, From: from, To: to}
}
