package httpx

import (
	"net/http"
	"strings"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	apperrors "github.com/visorhr/visorhr-ui/internal/errors"
	"github.com/visorhr/visorhr-ui/internal/service"
)

// Backend calls run on a context detached from the browser connection so that a
// completion still lands in the view when the tab navigates away mid-request.

// SwitchTab handles POST /auth/tab.
func (h *UIHandlers) SwitchTab(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	tab, ok := domainauth.ParseTab(r.FormValue("tab"))
	if !ok {
		WriteAppError(w, apperrors.ValidationField("tab", "tab must be login or register"))
		return
	}
	err := v.Gate.SwitchTab(tab)
	h.finish(w, r, err, h.authPanel(w, r, v))
}

// Login handles POST /auth/login.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	username, password, ok := credentials(w, r, "username", "password")
	if !ok {
		return
	}
	err := v.Session.Login(detach(r.Context()), username, password)
	if err == nil {
		h.sessionChanged(w, r)
		return
	}
	h.finish(w, r, err, h.authPanel(w, r, v))
}

// Register handles POST /auth/register.
func (h *UIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	username, password, ok := credentials(w, r, "username", "password")
	if !ok {
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	err := v.Session.Register(detach(r.Context()), username, email, password)
	if err == nil {
		h.sessionChanged(w, r)
		return
	}
	h.finish(w, r, err, h.authPanel(w, r, v))
}

// Logout handles POST /auth/logout. A failed logout keeps the editor in place and only
// refreshes the status slot.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	err := v.Logout(detach(r.Context()))
	if err == nil {
		h.sessionChanged(w, r)
		return
	}
	h.finish(w, r, err, nil)
}

// ValidateAdmin handles POST /auth/validate-admin from the admin overlay.
func (h *UIHandlers) ValidateAdmin(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	username, password, ok := credentials(w, r, "admin_username", "admin_password")
	if !ok {
		return
	}
	err := v.Gate.ValidateAdmin(detach(r.Context()), username, password)
	h.finish(w, r, err, h.authPanel(w, r, v))
}

func (h *UIHandlers) authPanel(w http.ResponseWriter, r *http.Request, v *service.View) func() error {
	return func() error {
		return h.T.RenderPartial(w, tmplAuthPanel, h.pageData(r, v, ""))
	}
}

// credentials reads a username/password pair. Usernames are trimmed; passwords are taken as typed.
func credentials(w http.ResponseWriter, r *http.Request, userField, passField string) (string, string, bool) {
	if err := r.ParseForm(); err != nil {
		WriteAppError(w, apperrors.Wrap(err, apperrors.ErrCodeValidation, "malformed form"))
		return "", "", false
	}
	username := strings.TrimSpace(r.PostFormValue(userField))
	password := r.PostFormValue(passField)
	switch {
	case username == "":
		WriteAppError(w, apperrors.ValidationField(userField, "username is required"))
		return "", "", false
	case password == "":
		WriteAppError(w, apperrors.ValidationField(passField, "password is required"))
		return "", "", false
	}
	return username, password, true
}
