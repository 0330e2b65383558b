package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

// SessionOptions groups dependencies for NewSessionController.
type SessionOptions struct {
	Backend ports.AuthBackend
	Cache   ports.SessionCache
	// Scope keys the persisted session copy, normally the view ID.
	Scope  string
	Status *StatusChannel
	Gate   *AdminGateController
	Logger *slog.Logger
}

// SessionController owns the current user of a view.
//
//	Anonymous --login/register ok--> Authenticated --logout ok--> Anonymous
//
// Authenticated is also reachable at mount through RestoreSession. Login, Register and
// Logout are mutually exclusive: while one is in flight the others fail with
// ErrOperationInProgress without reaching the backend.
type SessionController struct {
	backend ports.AuthBackend
	cache   ports.SessionCache
	scope   string
	status  *StatusChannel
	gate    *AdminGateController
	store   *Store[domainauth.SessionState]
	logger  *slog.Logger
}

// NewSessionController creates an anonymous session controller.
func NewSessionController(opts SessionOptions) *SessionController {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionController{
		backend: opts.Backend,
		cache:   opts.Cache,
		scope:   opts.Scope,
		status:  opts.Status,
		gate:    opts.Gate,
		store:   NewStore(domainauth.SessionState{}),
		logger:  logger,
	}
}

// Snapshot returns the session state.
func (c *SessionController) Snapshot() domainauth.SessionState {
	return c.store.Get()
}

// User returns the signed-in user or nil.
func (c *SessionController) User() *domainauth.Session {
	return c.store.Get().User
}

// Subscribe registers fn for every session change.
func (c *SessionController) Subscribe(fn func(domainauth.SessionState)) func() {
	return c.store.Subscribe(fn)
}

// CheckAccountsExist asks the backend once whether any account exists and records the
// answer in the gate. A failed check counts as "no accounts", which leaves registration
// ungated until the next mount.
func (c *SessionController) CheckAccountsExist(ctx context.Context) bool {
	exist, err := c.backend.CheckAccountsExist(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "accounts-exist check failed, treating as no accounts", "error", err)
		exist = false
	}
	c.gate.accountsChecked(exist)
	return exist
}

// RestoreSession reads the persisted copy. Anything unreadable leaves the view
// anonymous; a corrupt entry is deleted.
func (c *SessionController) RestoreSession(ctx context.Context) bool {
	data, err := c.cache.Load(ctx, c.scope)
	if err != nil {
		if !errors.Is(err, ports.ErrNotCached) {
			c.logger.WarnContext(ctx, "session cache read failed", "error", err)
		}
		return false
	}

	sess, err := domainauth.ParseSession(data)
	if err != nil {
		c.logger.WarnContext(ctx, "discarding unreadable cached session", "error", err)
		if derr := c.cache.Delete(ctx, c.scope); derr != nil {
			c.logger.WarnContext(ctx, "session cache delete failed", "error", derr)
		}
		return false
	}

	_, err = c.store.Dispatch(func(cur domainauth.SessionState) domainauth.SessionState {
		return domainauth.SignedIn(cur, *sess)
	})
	return err == nil
}

// Login signs in with username and password.
func (c *SessionController) Login(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, domainauth.TabLogin, func(ctx context.Context) (ports.AuthResult, domainauth.Session, error) {
		res, err := c.backend.Login(ctx, ports.LoginInput{Username: username, Password: password})
		return res, domainauth.Session{Username: username}, err
	})
}

// Register creates an account and signs it in. It refuses with
// ErrAdminValidationRequired while the admin gate is closed.
func (c *SessionController) Register(ctx context.Context, username, email, password string) error {
	if !c.gate.RegistrationEnabled() {
		c.status.Error(MsgAdminRequired)
		return ErrAdminValidationRequired
	}
	return c.authenticate(ctx, domainauth.TabRegister, func(ctx context.Context) (ports.AuthResult, domainauth.Session, error) {
		res, err := c.backend.Register(ctx, ports.RegisterInput{Username: username, Email: email, Password: password})
		return res, domainauth.Session{Username: username, Email: email}, err
	})
}

type authCall func(ctx context.Context) (res ports.AuthResult, submitted domainauth.Session, err error)

func (c *SessionController) authenticate(ctx context.Context, mode domainauth.Tab, call authCall) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.status.Clear()
	res, submitted, err := call(ctx)
	if err != nil {
		c.logger.InfoContext(ctx, "authentication rejected", "mode", string(mode), "error", err)
		if c.store.Closed() {
			return ErrViewClosed
		}
		c.status.Error(domainauth.UserMessage(err, MsgRequestFailed))
		return fmt.Errorf("%s: %w", mode, err)
	}

	user := submitted
	if res.User != nil {
		user = *res.User
	}
	if _, err := c.store.Dispatch(func(cur domainauth.SessionState) domainauth.SessionState {
		return domainauth.SignedIn(cur, user)
	}); err != nil {
		return err
	}
	c.persist(ctx, user)
	c.logger.DebugContext(ctx, "signed in", "mode", string(mode), "username", user.Username)
	c.status.Success(fallback(res.Message, string(mode)+" successful"))
	return nil
}

// Logout ends the backend session. Only a 2xx response signs the view out; on failure
// the session and its persisted copy stay intact.
func (c *SessionController) Logout(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.status.Clear()
	msg, err := c.backend.Logout(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "logout rejected", "error", err)
		if c.store.Closed() {
			return ErrViewClosed
		}
		c.status.Error(domainauth.UserMessage(err, MsgLogoutFailed))
		return fmt.Errorf("logout: %w", err)
	}

	if _, err := c.store.Dispatch(domainauth.SignedOut); err != nil {
		return err
	}
	if derr := c.cache.Delete(ctx, c.scope); derr != nil {
		c.logger.WarnContext(ctx, "session cache delete failed", "error", derr)
	}
	c.gate.reset()
	c.status.Success(fallback(msg, MsgLoggedOut))
	return nil
}

func (c *SessionController) persist(ctx context.Context, user domainauth.Session) {
	data, err := user.Marshal()
	if err != nil {
		c.logger.WarnContext(ctx, "encode session failed", "error", err)
		return
	}
	if err := c.cache.Save(ctx, c.scope, data); err != nil {
		c.logger.WarnContext(ctx, "session cache write failed", "error", err)
	}
}

func (c *SessionController) begin() error {
	_, err := c.store.Apply(func(cur domainauth.SessionState) (domainauth.SessionState, error) {
		if cur.InFlight {
			return cur, ErrOperationInProgress
		}
		return domainauth.BeginRequest(cur), nil
	})
	return err
}

func (c *SessionController) end() {
	_, _ = c.store.Dispatch(domainauth.EndRequest)
}

func (c *SessionController) close() {
	c.store.Close()
}
