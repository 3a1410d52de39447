package view

import "log"

// Viewer is the identity snapshot the guard table consults.
type Viewer struct {
	SignedIn bool
	IsGuest  bool
	IsAdmin  bool
}

// AlertSink receives user-facing rejection messages.
type AlertSink interface {
	Alert(message string)
}

// Scroller resets the viewport after an accepted transition.
type Scroller interface {
	ScrollTop()
}

// NopAlertSink discards alerts.
type NopAlertSink struct{}

func (NopAlertSink) Alert(string) {}

// NopScroller discards scroll requests.
type NopScroller struct{}

func (NopScroller) ScrollTop() {}

// Controller owns the current Mode and applies every transition through
// Navigate. It is not safe for concurrent use; callers serialize access.
type Controller struct {
	mode     Mode
	alerts   AlertSink
	scroller Scroller

	// uploadedInSession records that the current session produced an upload,
	// used by the dashboard to offer the workbench shortcut. Never set for
	// guests.
	uploadedInSession bool
}

// NewController starts at the public landing page.
func NewController(alerts AlertSink, scroller Scroller) *Controller {
	if alerts == nil {
		alerts = NopAlertSink{}
	}
	if scroller == nil {
		scroller = NopScroller{}
	}
	return &Controller{mode: ModeJobseekerHome, alerts: alerts, scroller: scroller}
}

// Mode returns the current screen.
func (c *Controller) Mode() Mode {
	return c.mode
}

// UploadedInSession reports whether this session has produced an upload.
func (c *Controller) UploadedInSession() bool {
	return c.uploadedInSession
}

// Navigate applies the guard table and, when the transition is accepted,
// switches screens and scrolls to top. A rejected transition leaves the
// current mode untouched and raises exactly one alert.
func (c *Controller) Navigate(target Mode, v Viewer) bool {
	if !target.Valid() {
		log.Printf("[view] rejecting navigation to invalid mode %d", int(target))
		return false
	}

	switch target {
	case ModeAdmin:
		if !v.IsAdmin {
			c.alerts.Alert("Access denied: admin privileges required")
			return false
		}
	case ModeWorkbench:
		if !v.SignedIn && !v.IsGuest {
			// No identity at all: the landing page hosts the signup prompt.
			target = ModeJobseekerHome
		}
	case ModeDashboard:
		if !v.SignedIn {
			target = ModeJobseekerHome
		}
	}

	c.apply(target)
	return true
}

// Back returns from a legal or contact page to the caller's home screen.
// From any other screen it is a no-op.
func (c *Controller) Back(v Viewer) {
	if !c.mode.Legal() {
		return
	}
	if v.SignedIn {
		c.apply(ModeDashboard)
		return
	}
	c.apply(ModeJobseekerHome)
}

// ForceSignOut routes to the landing page and clears session-scoped view
// state. Used by the identity resolver on a sign-out event.
func (c *Controller) ForceSignOut() {
	c.uploadedInSession = false
	c.apply(ModeJobseekerHome)
}

// ForceLogin routes a fresh sign-in to its home screen based on privilege.
func (c *Controller) ForceLogin(v Viewer) {
	switch {
	case v.IsAdmin:
		c.apply(ModeAdmin)
	default:
		c.apply(ModeWorkbench)
	}
}

// ForcePaymentReturn routes a verified checkout return straight to the
// workbench. The uploaded flag is only set for registered users; a guest's
// work lives in the checkpoint, not the session.
func (c *Controller) ForcePaymentReturn(v Viewer) {
	if v.SignedIn {
		c.uploadedInSession = true
	}
	c.apply(ModeWorkbench)
}

// Restore sets the mode directly during startup restoration, bypassing
// guards that only apply to user-initiated navigation.
func (c *Controller) Restore(m Mode) {
	if !m.Valid() {
		m = ModeJobseekerHome
	}
	c.mode = m
}

func (c *Controller) apply(m Mode) {
	if c.mode != m {
		log.Printf("[view] %s -> %s", c.mode, m)
	}
	c.mode = m
	c.scroller.ScrollTop()
}
