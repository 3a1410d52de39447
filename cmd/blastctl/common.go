package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/resumeblast/blastkit/internal/app"
	"github.com/resumeblast/blastkit/internal/config"
	"github.com/resumeblast/blastkit/internal/view"
)

// tokenStoreKey holds the access token between CLI invocations so a login
// survives process restarts the way a browser session would.
const tokenStoreKey = "auth_access_token"

// terminalAlerts prints routing alerts to stderr.
type terminalAlerts struct{}

func (terminalAlerts) Alert(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// loadAppConfig merges, in priority order: config file, environment
// variables, built-in defaults.
func loadAppConfig(configPath string, verbose bool) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	cfg = cfg.MergeWithDefaults(config.FromEnv())
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildApp assembles the client, re-adopts any stored access token, and
// restores identity and view state from launchURL.
func buildApp(ctx context.Context, configPath string, verbose bool, launchURL string) (*app.App, error) {
	cfg, err := loadAppConfig(configPath, verbose)
	if err != nil {
		return nil, err
	}

	a, err := app.New(cfg, terminalAlerts{}, view.NopScroller{})
	if err != nil {
		return nil, err
	}

	if tok, ok, err := a.Store.Get(tokenStoreKey); err == nil && ok && tok != "" {
		if _, err := a.Auth.AdoptToken(tok); err != nil {
			// Expired or garbled token: drop it and continue signed out.
			log.Printf("[cli] stored token rejected: %v", err)
			_ = a.Store.Delete(tokenStoreKey)
		}
	}

	if err := a.Start(ctx, launchURL); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func mustFlags(cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		if !cmd.Flags().Changed(name) {
			return fmt.Errorf("--%s is required", name)
		}
	}
	return nil
}
