// Package app assembles the client subsystems into one explicit context
// object. Nothing here reaches for globals: every dependency is constructed
// once and handed down, so tests can swap any layer for a fake.
package app

import (
	"context"
	"fmt"

	"github.com/resumeblast/blastkit/internal/admin"
	"github.com/resumeblast/blastkit/internal/analysis"
	"github.com/resumeblast/blastkit/internal/api"
	"github.com/resumeblast/blastkit/internal/config"
	"github.com/resumeblast/blastkit/internal/identity"
	"github.com/resumeblast/blastkit/internal/store"
	"github.com/resumeblast/blastkit/internal/tracking"
	"github.com/resumeblast/blastkit/internal/view"
	"github.com/resumeblast/blastkit/internal/workflow"
)

// App is the assembled client: configuration, persistent state, the backend
// client, identity resolution, view routing, and the shared service layers
// that campaign workflows draw on.
type App struct {
	Config   config.Config
	Store    store.Store
	Auth     *identity.ProviderClient
	API      *api.Client
	Views    *view.Controller
	Identity *identity.Resolver
	Analyzer *analysis.Analyzer
	Events   *tracking.Tracker
	Admin    *admin.Console
}

// New validates cfg and wires the full dependency graph. The API client's
// bearer token is read lazily from the identity resolver, so calls made after
// sign-in carry the session token without any re-wiring.
func New(cfg config.Config, alerts view.AlertSink, scroller view.Scroller) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fs, err := store.NewFileStore(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	a := &App{
		Config: cfg,
		Store:  fs,
		Auth:   identity.NewProviderClient(cfg.AuthBaseURL, cfg.AuthAnonKey),
		Views:  view.NewController(alerts, scroller),
	}
	a.API = api.NewClient(cfg.APIBaseURL, func() string {
		if a.Identity == nil {
			return ""
		}
		if sess := a.Identity.Session(); sess != nil {
			return sess.AccessToken
		}
		return ""
	})
	a.Identity = identity.NewResolver(a.Auth, a.API, a.API, a.Views, a.Store, cfg.AdminCheckTimeout())
	a.Analyzer = analysis.NewAnalyzer(a.API)
	a.Events = tracking.NewTracker(a.API)
	a.Admin = admin.NewConsole(admin.NewClient(a.API))

	return a, nil
}

// Start restores identity and view state from the launch URL. It is the
// process-boot entrypoint; call it once before any workflow runs.
func (a *App) Start(ctx context.Context, launchURL string) error {
	return a.Identity.Restore(ctx, identity.ParseStartParams(launchURL))
}

// Workflow builds a campaign tracker bound to whoever is currently signed in
// (or the active guest). plans may be nil to fall back to the built-in
// catalog.
func (a *App) Workflow(redirect workflow.Redirector, plans []api.Plan) *workflow.Tracker {
	var id workflow.Identity
	if sess := a.Identity.Session(); sess != nil {
		id.UserID = sess.UserID.String()
		id.Email = sess.Email
		id.Name = sess.Name
	} else if g := a.Identity.Guest(); g != nil {
		id.GuestID = g.ID
		id.Email = g.EmailAlias
	}
	return workflow.NewTracker(a.API, a.Store, a.Analyzer, a.Events, redirect, id, plans)
}

// AdminPoller builds the unread-ticket poller at the configured interval.
// Callers own Start/Stop.
func (a *App) AdminPoller(onCount func(int)) *admin.Poller {
	return admin.NewPoller(a.Admin.Client(), a.Config.AdminPollInterval(), onCount)
}

// Close drains in-flight activity events and flushes the state store.
func (a *App) Close() error {
	a.Events.Flush()
	return a.Store.Flush()
}
