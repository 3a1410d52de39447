package identity

import (
	"context"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/resumeblast/blastkit/internal/store"
	"github.com/resumeblast/blastkit/internal/view"
)

// AdminChecker answers whether an account holds admin privileges. The
// backend owns the answer; the client never stores it across restarts.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// GuestRegistrar announces a freshly minted guest to the backend so the
// payment-return path can look the guest up after a redirect.
type GuestRegistrar interface {
	GuestInit(ctx context.Context, guestID, email string) error
}

// StartParams is the parsed launch context: the query portion of the URL the
// process was opened with.
type StartParams struct {
	PaymentSuccess    bool
	CheckoutSessionID string
	GuestID           string
}

// ParseStartParams extracts the recognized query parameters from a raw URL.
func ParseStartParams(rawURL string) StartParams {
	var p StartParams
	if rawURL == "" {
		return p
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return p
	}
	q := u.Query()
	p.PaymentSuccess = q.Get("payment") == "success"
	p.CheckoutSessionID = q.Get("session_id")
	p.GuestID = q.Get("guest_id")
	return p
}

// Resolver owns the current identity and applies the startup and auth-event
// routing rules against the view controller.
type Resolver struct {
	auth       AuthClient
	admin      AdminChecker
	registrar  GuestRegistrar
	views      *view.Controller
	store      store.Store
	checkLimit time.Duration

	session    *Session
	isAdmin    bool
	guest      *Guest
	lastUserID uuid.UUID
}

// NewResolver wires the resolver. checkLimit bounds the admin privilege RPC;
// zero means no bound. registrar may be nil for offline use.
func NewResolver(auth AuthClient, admin AdminChecker, registrar GuestRegistrar, views *view.Controller, s store.Store, checkLimit time.Duration) *Resolver {
	return &Resolver{auth: auth, admin: admin, registrar: registrar, views: views, store: s, checkLimit: checkLimit}
}

// Session returns the registered session, or nil.
func (r *Resolver) Session() *Session {
	return r.session
}

// Guest returns the active guest identity, or nil.
func (r *Resolver) Guest() *Guest {
	return r.guest
}

// IsAdmin reports the last privilege check result.
func (r *Resolver) IsAdmin() bool {
	return r.isAdmin
}

// Viewer snapshots the identity for view guards.
func (r *Resolver) Viewer() view.Viewer {
	return view.Viewer{
		SignedIn: r.session != nil,
		IsGuest:  r.guest != nil,
		IsAdmin:  r.isAdmin,
	}
}

// Restore resolves identity at startup and routes to the initial screen.
// A payment return takes priority over everything else; without one, a
// signed-in user lands on their role's home screen and an anonymous visitor
// stays on the public pages.
func (r *Resolver) Restore(ctx context.Context, params StartParams) error {
	sess, err := r.auth.CurrentSession(ctx)
	if err != nil {
		// A flapping provider must not lock the user out of public pages.
		log.Printf("[identity] session restore failed: %v", err)
		sess = nil
	}

	if sess != nil {
		r.session = sess
		r.lastUserID = sess.UserID
		r.isAdmin = r.checkAdmin(ctx, sess.UserID)
		if params.PaymentSuccess {
			r.views.ForcePaymentReturn(r.Viewer())
			return nil
		}
		switch {
		case r.isAdmin:
			r.views.Restore(view.ModeAdmin)
		case sess.Role == RoleRecruiter:
			r.views.Restore(view.ModeRecruiter)
		default:
			r.views.Restore(view.ModeDashboard)
		}
		return nil
	}

	if params.PaymentSuccess {
		if g, ok := DetectGuest(r.store, params.GuestID); ok {
			r.guest = &g
			r.views.ForcePaymentReturn(r.Viewer())
			return nil
		}
		// Payment return with no identity at all: nothing to resume.
		log.Printf("[identity] payment return with no session and no guest evidence")
		r.views.Restore(view.ModeJobseekerHome)
		return nil
	}

	if g, ok := DetectGuest(r.store, params.GuestID); ok {
		r.guest = &g
	}
	if !r.views.Mode().Legal() {
		r.views.Restore(view.ModeJobseekerHome)
	}
	return nil
}

// OnAuthEvent applies a provider state change. Repeated SIGNED_IN events for
// the same user are ignored so token refreshes do not re-route the screen.
func (r *Resolver) OnAuthEvent(ctx context.Context, event AuthEvent, sess *Session) {
	switch event {
	case EventSignedIn:
		if sess == nil {
			return
		}
		if r.session != nil && r.lastUserID == sess.UserID {
			r.session = sess
			return
		}
		r.session = sess
		r.lastUserID = sess.UserID
		r.guest = nil
		if err := ClearGuest(r.store); err != nil {
			log.Printf("[identity] failed to clear guest state: %v", err)
		}
		r.isAdmin = r.checkAdmin(ctx, sess.UserID)
		switch {
		case r.isAdmin:
			r.views.ForceLogin(r.Viewer())
		case sess.Role == RoleRecruiter:
			r.views.Navigate(view.ModeRecruiter, r.Viewer())
		default:
			r.views.ForceLogin(r.Viewer())
		}

	case EventSignedOut:
		r.session = nil
		r.isAdmin = false
		r.guest = nil
		r.lastUserID = uuid.Nil
		r.views.ForceSignOut()
	}
}

// BecomeGuest mints or restores the guest identity for an account-less
// workflow and registers it with the backend. Registration is best effort:
// the guest must stay usable offline, and the redirect path can still
// recover through the local checkpoint.
func (r *Resolver) BecomeGuest(ctx context.Context) (*Guest, error) {
	if r.session != nil {
		return nil, nil
	}
	g, err := EnsureGuest(r.store)
	if err != nil {
		return nil, err
	}
	r.guest = &g
	if r.registrar != nil {
		if err := r.registrar.GuestInit(ctx, g.ID, g.EmailAlias); err != nil {
			log.Printf("[identity] guest backend registration failed: %v", err)
		}
	}
	return r.guest, nil
}

// checkAdmin asks the backend with a bounded deadline. Any failure or
// timeout resolves to false; login must never hang or fail on the privilege
// check.
func (r *Resolver) checkAdmin(ctx context.Context, userID uuid.UUID) bool {
	if r.admin == nil {
		return false
	}
	if r.checkLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.checkLimit)
		defer cancel()
	}
	ok, err := r.admin.IsAdmin(ctx, userID)
	if err != nil {
		log.Printf("[identity] admin check failed, assuming non-admin: %v", err)
		return false
	}
	return ok
}
