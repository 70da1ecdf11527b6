package httperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCodeOf_TypedConditions(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"business", ErrBusiness(CodeTooSoon), CodeTooSoon},
		{"wrapped business", fmt.Errorf("create: %w", ErrBusiness(CodeInvalidSlot)), CodeInvalidSlot},
		{"conflict", SlotConflictError{ProviderID: 1, Cell: "2026-10-19T09:00"}, CodeSlotConflict},
		{"transition", ErrTransition("payment", "refunded", "paid"), CodeInvalidStateTransition},
		{"not found", ErrNotFound("booking", 7), CodeNotFound},
		{"timeout", ErrTimeout(context.DeadlineExceeded), CodeTimeout},
		{"plain", errors.New("boom"), ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, CodeOf(tc.err))
			if tc.code != "" {
				assert.True(t, IsBusiness(tc.err, tc.code))
			}
		})
	}
}

func TestErrTimeout_KeepsCause(t *testing.T) {
	err := ErrTimeout(context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsExclusionConflict(t *testing.T) {
	assert.True(t, IsExclusionConflict(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, IsExclusionConflict(errors.New("other")))
	assert.False(t, IsExclusionConflict(nil))
}

func TestRespond_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{SlotConflictError{ProviderID: 1, Cell: "2026-10-19T09:00", Status: "occupied"}, http.StatusConflict},
		{ErrTransition("provider_approval", "rejected", "accepted"), http.StatusUnprocessableEntity},
		{ErrNotFound("booking", 3), http.StatusNotFound},
		{ErrTimeout(context.DeadlineExceeded), http.StatusGatewayTimeout},
		{ErrBusiness(CodeForbiddenActor), http.StatusForbidden},
		{ErrBusiness(CodeTooSoon), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Respond(c, tc.err)
		require.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}
