package service

import "errors"

var (
	// ErrOperationInProgress rejects a login, register, logout or admin check while
	// another one for the same view has not completed.
	ErrOperationInProgress = errors.New("operation in progress")
	// ErrAdminValidationRequired rejects registration while accounts exist and no
	// administrator has been validated in the current register view.
	ErrAdminValidationRequired = errors.New("admin validation required")
	// ErrRegisterTabRequired rejects an admin credential check outside the register view.
	ErrRegisterTabRequired = errors.New("admin validation requires the register tab")
	// ErrViewClosed is returned when a completion arrives after the view was unmounted.
	ErrViewClosed = errors.New("view closed")
	// ErrInvalidOption rejects a select value outside the field's options.
	ErrInvalidOption = errors.New("invalid option")
	// ErrWrongKind rejects an edit that does not match the field kind.
	ErrWrongKind = errors.New("wrong field kind")

	errNoChange = errors.New("no change")
)

// User-facing fallback texts for the status slot.
const (
	MsgRequestFailed         = "Request failed"
	MsgLogoutFailed          = "Logout failed"
	MsgLoggedOut             = "Logged out"
	MsgAdminValidationFailed = "Admin validation failed"
	MsgAdminValidated        = "Admin validated. You can now register a user."
	MsgAdminRequired         = "Administrator validation is required before registering."
	MsgInvalidDate           = "Enter the date as YYYY-MM-DD or DD-Mon-YYYY."
	MsgDraftSaved            = "Draft saved locally."
)
