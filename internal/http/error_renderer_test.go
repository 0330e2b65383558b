package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/domain/employee"
	apperrors "github.com/visorhr/visorhr-ui/internal/errors"
	"github.com/visorhr/visorhr-ui/internal/service"
)

func TestShownInStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "backend rejection", err: fmt.Errorf("login: %w", &domainauth.BackendError{Op: "login", Status: 401}), want: true},
		{name: "transport", err: &domainauth.BackendError{Op: "login", Transport: true, Err: context.DeadlineExceeded}, want: true},
		{name: "admin gate", err: service.ErrAdminValidationRequired, want: true},
		{name: "invalid option", err: fmt.Errorf("sex: %w", service.ErrInvalidOption), want: true},
		{name: "underage", err: employee.ErrUnderage, want: true},
		{name: "in progress", err: service.ErrOperationInProgress, want: false},
		{name: "unknown field", err: employee.ErrUnknownField, want: false},
		{name: "other", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shownInStatus(tt.err))
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   apperrors.ErrorCode
		status int
	}{
		{name: "in progress", err: service.ErrOperationInProgress, code: apperrors.ErrCodeConflict, status: http.StatusConflict},
		{name: "view closed", err: service.ErrViewClosed, code: apperrors.ErrCodeConflict, status: http.StatusConflict},
		{name: "admin gate", err: service.ErrAdminValidationRequired, code: apperrors.ErrCodeForbidden, status: http.StatusForbidden},
		{name: "wrong tab", err: service.ErrRegisterTabRequired, code: apperrors.ErrCodeForbidden, status: http.StatusForbidden},
		{name: "unknown field", err: fmt.Errorf("%w: %q", employee.ErrUnknownField, "x"), code: apperrors.ErrCodeNotFound, status: http.StatusNotFound},
		{name: "wrong kind", err: service.ErrWrongKind, code: apperrors.ErrCodeValidation, status: http.StatusBadRequest},
		{name: "transport", err: &domainauth.BackendError{Transport: true, Err: errors.New("dial")}, code: apperrors.ErrCodeUnavailable, status: http.StatusBadGateway},
		{name: "app error passes through", err: apperrors.NotFound("gone"), code: apperrors.ErrCodeNotFound, status: http.StatusNotFound},
		{name: "unknown", err: errors.New("boom"), code: apperrors.ErrCodeInternal, status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			assert.Equal(t, tt.code, apperrors.GetCode(got))
			assert.Equal(t, tt.status, apperrors.HTTPStatus(got))
		})
	}
	assert.NoError(t, classifyError(nil))
}

func TestRenderErrorPage(t *testing.T) {
	h := &UIHandlers{T: RequireTemplateRenderer(t)}

	rec := httptest.NewRecorder()
	h.renderErrorPage(rec, httptest.NewRequest(http.MethodGet, "/", nil), service.ErrViewClosed)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1>409</h1>")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Hx-Request", "true")
	rec = httptest.NewRecorder()
	h.renderErrorPage(rec, req, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
