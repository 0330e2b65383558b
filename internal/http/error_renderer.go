package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/domain/employee"
	apperrors "github.com/visorhr/visorhr-ui/internal/errors"
	"github.com/visorhr/visorhr-ui/internal/service"
)

// shownInStatus reports whether a failed operation already put its message into the
// view's status slot, in which case the page is re-rendered instead of an error response.
func shownInStatus(err error) bool {
	var be *domainauth.BackendError
	switch {
	case errors.As(err, &be):
		return true
	case errors.Is(err, service.ErrAdminValidationRequired),
		errors.Is(err, service.ErrInvalidOption),
		errors.Is(err, employee.ErrInvalidDate),
		errors.Is(err, employee.ErrUnderage),
		errors.Is(err, employee.ErrBirthDateTooEarly):
		return true
	default:
		return false
	}
}

// classifyError maps service and domain failures onto AppError codes for JSON responses.
func classifyError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, service.ErrOperationInProgress):
		return apperrors.Wrap(err, apperrors.ErrCodeConflict, "another request is still running")
	case errors.Is(err, service.ErrViewClosed):
		return apperrors.Wrap(err, apperrors.ErrCodeConflict, "view was closed")
	case errors.Is(err, service.ErrAdminValidationRequired):
		return apperrors.Wrap(err, apperrors.ErrCodeForbidden, "administrator validation required")
	case errors.Is(err, service.ErrRegisterTabRequired):
		return apperrors.Wrap(err, apperrors.ErrCodeForbidden, "switch to the register tab first")
	case errors.Is(err, employee.ErrUnknownField):
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "unknown field")
	case errors.Is(err, service.ErrWrongKind),
		errors.Is(err, service.ErrInvalidOption),
		errors.Is(err, employee.ErrInvalidDate),
		errors.Is(err, employee.ErrUnderage),
		errors.Is(err, employee.ErrBirthDateTooEarly):
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid value")
	case domainauth.IsTransport(err):
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "backend unreachable")
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "request failed")
	}
}

// ErrorPageData feeds the error template.
type ErrorPageData struct {
	PageMeta
	StatusCode int
	Message    string
}

// renderErrorPage shows a full error page for browser navigations and falls back to JSON
// when the template cannot be rendered.
func (h *UIHandlers) renderErrorPage(w http.ResponseWriter, r *http.Request, err error) {
	err = classifyError(err)
	code := apperrors.HTTPStatus(err)
	if IsHTMX(r) || h.T == nil {
		WriteAppError(w, err)
		return
	}
	data := ErrorPageData{PageMeta: PageMeta{Title: http.StatusText(code)}, StatusCode: code, Message: http.StatusText(code)}
	if rerr := h.T.RenderError(w, code, data); rerr != nil {
		h.logger().Error("render error page failed", slog.Any("error", rerr))
		WriteAppError(w, err)
	}
}
