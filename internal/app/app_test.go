package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumeblast/blastkit/internal/config"
	"github.com/resumeblast/blastkit/internal/view"
	"github.com/resumeblast/blastkit/internal/workflow"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Config{
		APIBaseURL:  "https://api.test.invalid",
		AuthBaseURL: "https://auth.test.invalid",
		AuthAnonKey: "anon-key",
		ReturnURL:   "https://app.test.invalid/return",
		StateDir:    t.TempDir(),
	}
	return cfg.MergeWithDefaults(config.Config{})
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(config.Config{}, view.NopAlertSink{}, view.NopScroller{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_base_url")
}

func TestNewWiresAllSubsystems(t *testing.T) {
	a, err := New(testConfig(t), view.NopAlertSink{}, view.NopScroller{})
	require.NoError(t, err)

	assert.NotNil(t, a.Store)
	assert.NotNil(t, a.Auth)
	assert.NotNil(t, a.API)
	assert.NotNil(t, a.Views)
	assert.NotNil(t, a.Identity)
	assert.NotNil(t, a.Analyzer)
	assert.NotNil(t, a.Events)
	assert.NotNil(t, a.Admin)

	require.NoError(t, a.Close())
}

func TestStartWithNoIdentityLandsOnPublicHome(t *testing.T) {
	a, err := New(testConfig(t), view.NopAlertSink{}, view.NopScroller{})
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Start(context.Background(), ""))
	assert.Equal(t, view.ModeJobseekerHome, a.Views.Mode())
}

func TestWorkflowBindsGuestIdentity(t *testing.T) {
	a, err := New(testConfig(t), view.NopAlertSink{}, view.NopScroller{})
	require.NoError(t, err)
	defer a.Close()

	g, err := a.Identity.BecomeGuest(context.Background())
	require.NoError(t, err)

	wf := a.Workflow(nil, nil)
	require.NotNil(t, wf)

	// A fresh guest starts idle with no campaign state carried over.
	assert.Equal(t, workflow.StateIdle, wf.State())
	assert.Equal(t, g.EmailAlias, a.Identity.Guest().EmailAlias)
}
