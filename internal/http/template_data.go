package httpx

import (
	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/service"
)

// PageMeta describes the page being rendered.
type PageMeta struct {
	Title string
}

// PageData is everything the layout and its fragments read. Gate-derived flags come
// from one gate snapshot so the overlay and the register button never disagree.
type PageData struct {
	PageMeta
	ViewID    string
	CSRFToken string

	User        *domainauth.Session
	SessionBusy bool

	Gate                domainauth.GateState
	RegistrationEnabled bool
	OverlayVisible      bool

	Status domainauth.StatusMessage

	Sections       []service.SectionView
	MaxUploadBytes int64
	IsDev          bool

	// AuthBase is shown on the auth page so operators can see which backend is in use.
	AuthBase string
}

// ShowRegister reports whether the register tab is active.
func (d PageData) ShowRegister() bool {
	return d.Gate.ActiveTab == domainauth.TabRegister
}

// pageSettings are the handler-level values copied into every PageData.
type pageSettings struct {
	MaxUploadBytes int64
	IsDev          bool
	AuthBase       string
	CSRFToken      string
}

func buildPageData(v *service.View, meta PageMeta, s pageSettings) PageData {
	sess := v.Session.Snapshot()
	gate := v.Gate.Snapshot()
	d := PageData{
		PageMeta:            meta,
		ViewID:              v.ID,
		CSRFToken:           s.CSRFToken,
		User:                sess.User,
		SessionBusy:         sess.InFlight,
		Gate:                gate,
		RegistrationEnabled: gate.RegistrationEnabled(),
		OverlayVisible:      gate.OverlayVisible(),
		Status:              v.Status.Current(),
		MaxUploadBytes:      s.MaxUploadBytes,
		IsDev:               s.IsDev,
		AuthBase:            s.AuthBase,
	}
	if sess.User != nil {
		d.Sections = v.Form.Sections()
	}
	return d
}
