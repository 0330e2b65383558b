package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

// AdminGateOptions groups dependencies for NewAdminGateController.
type AdminGateOptions struct {
	Backend ports.AuthBackend
	Status  *StatusChannel
	Logger  *slog.Logger
}

// AdminGateController decides whether registration is open. Once any account exists,
// registering requires a successful administrator credential check in the current
// register view.
type AdminGateController struct {
	backend ports.AuthBackend
	status  *StatusChannel
	store   *Store[domainauth.GateState]
	logger  *slog.Logger
}

// NewAdminGateController creates a gate on the login tab with no accounts assumed.
func NewAdminGateController(opts AdminGateOptions) *AdminGateController {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminGateController{
		backend: opts.Backend,
		status:  opts.Status,
		store:   NewStore(domainauth.NewGateState()),
		logger:  logger,
	}
}

// Snapshot returns the gate state. RegistrationEnabled and OverlayVisible must be
// read from one snapshot so they never disagree.
func (g *AdminGateController) Snapshot() domainauth.GateState {
	return g.store.Get()
}

// RegistrationEnabled reports whether the register submit control is usable.
func (g *AdminGateController) RegistrationEnabled() bool {
	return g.store.Get().RegistrationEnabled()
}

// OverlayVisible reports whether the admin-authorization overlay is shown.
func (g *AdminGateController) OverlayVisible() bool {
	return g.store.Get().OverlayVisible()
}

// Subscribe registers fn for every gate change.
func (g *AdminGateController) Subscribe(fn func(domainauth.GateState)) func() {
	return g.store.Subscribe(fn)
}

// SwitchTab activates tab. An actual change drops admin validation, the admin input
// and the status message; selecting the active tab again does nothing.
func (g *AdminGateController) SwitchTab(tab domainauth.Tab) error {
	changed := false
	_, err := g.store.Dispatch(func(cur domainauth.GateState) domainauth.GateState {
		changed = cur.ActiveTab != tab
		return domainauth.SwitchTab(cur, tab)
	})
	if err != nil {
		return err
	}
	if changed {
		g.status.Clear()
	}
	return nil
}

// ValidateAdmin checks administrator credentials against the backend. Success unlocks
// registration and hides the overlay in one transition. It is only accepted on the
// register tab, and a result that arrives after that register view ended changes nothing.
func (g *AdminGateController) ValidateAdmin(ctx context.Context, username, password string) error {
	started, err := g.store.Apply(func(cur domainauth.GateState) (domainauth.GateState, error) {
		if cur.ActiveTab != domainauth.TabRegister {
			return cur, ErrRegisterTabRequired
		}
		if cur.InFlight {
			return cur, ErrOperationInProgress
		}
		return domainauth.AdminAttempted(cur, username), nil
	})
	if err != nil {
		return err
	}
	gen := started.AttemptGeneration

	resolved := false
	defer func() {
		if !resolved {
			_, _ = g.store.Dispatch(func(cur domainauth.GateState) domainauth.GateState {
				return domainauth.AdminResolved(cur, false, gen)
			})
		}
	}()

	g.status.Clear()
	msg, err := g.backend.ValidateAdmin(ctx, username, password)
	if err != nil {
		g.logger.WarnContext(ctx, "admin validation failed", "error", err)
		if g.store.Closed() {
			return ErrViewClosed
		}
		if !g.store.Get().AdminCurrent(gen) {
			return nil
		}
		g.status.Error(domainauth.UserMessage(err, MsgAdminValidationFailed))
		return fmt.Errorf("validate admin: %w", err)
	}

	resolved = true
	current := false
	if _, err := g.store.Dispatch(func(cur domainauth.GateState) domainauth.GateState {
		current = cur.AdminCurrent(gen)
		return domainauth.AdminResolved(cur, true, gen)
	}); err != nil {
		return err
	}
	if !current {
		g.logger.InfoContext(ctx, "dropping admin validation from an earlier register view")
		return nil
	}
	g.status.Success(fallback(msg, MsgAdminValidated))
	return nil
}

func (g *AdminGateController) accountsChecked(exist bool) {
	_, _ = g.store.Dispatch(func(cur domainauth.GateState) domainauth.GateState {
		return domainauth.AccountsChecked(cur, exist)
	})
}

func (g *AdminGateController) reset() {
	_, _ = g.store.Dispatch(domainauth.GateReset)
}

func (g *AdminGateController) close() {
	g.store.Close()
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
