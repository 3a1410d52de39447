package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var adminCommand = &cobra.Command{
	Use:   "admin",
	Short: "Show the admin console dashboard",
	Long: `Loads every console panel: platform stats, revenue, backend health, mail
delivery counters, the recruiter pool, and unread support tickets. Panels
that fail to load are reported individually without hiding the rest.

With --watch, keeps polling for unread support tickets until interrupted.`,
	RunE: adminConsoleCmd,
}

var (
	adminConfigPath string
	adminWatch      bool
	adminVerbose    bool
)

func init() {
	adminCommand.Flags().StringVar(&adminConfigPath, "config", "", "Path to config.json file")
	adminCommand.Flags().BoolVarP(&adminWatch, "watch", "w", false, "Keep polling for unread support tickets")
	adminCommand.Flags().BoolVarP(&adminVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(adminCommand)
}

func adminConsoleCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, adminConfigPath, adminVerbose, "")
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.Identity.IsAdmin() {
		return fmt.Errorf("admin privileges required; run 'blastctl login' with an admin account")
	}

	snap, err := a.Admin.RefreshAll(ctx)
	if err != nil {
		return fmt.Errorf("console refresh failed: %w", err)
	}

	if snap.Stats != nil {
		fmt.Printf("Users: %d  Campaigns: %d  Resumes: %d  Active guests: %d\n",
			snap.Stats.TotalUsers, snap.Stats.TotalCampaigns, snap.Stats.TotalResumes, snap.Stats.ActiveGuests)
	}
	if snap.Revenue != nil {
		fmt.Printf("Revenue: $%d.%02d total, $%d.%02d this month\n",
			snap.Revenue.TotalCents/100, snap.Revenue.TotalCents%100,
			snap.Revenue.MonthCents/100, snap.Revenue.MonthCents%100)
	}
	if snap.Health != nil {
		fmt.Printf("Backend health: %s\n", snap.Health.Status)
		for name, status := range snap.Health.Components {
			fmt.Printf("  %s: %s\n", name, status)
		}
	}
	if snap.MailStats != nil {
		fmt.Printf("Mail: %d sent, %d delivered, %d opened, %d bounced\n",
			snap.MailStats.Sent, snap.MailStats.Delivered, snap.MailStats.Opened, snap.MailStats.Bounced)
	}
	if snap.RecruiterStats != nil {
		fmt.Printf("Recruiter pool: %d\n", snap.RecruiterStats.Total)
	}
	fmt.Printf("Unread support tickets: %d\n", snap.UnreadTickets)

	for panel, perr := range snap.PanelErrors {
		fmt.Fprintf(os.Stderr, "Warning: %s panel failed to load: %v\n", panel, perr)
	}

	if !adminWatch {
		return nil
	}

	poller := a.AdminPoller(func(count int) {
		fmt.Printf("Unread support tickets: %d\n", count)
	})
	if err := poller.Start(); err != nil {
		return fmt.Errorf("failed to start ticket poller: %w", err)
	}
	defer poller.Stop()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	return nil
}
