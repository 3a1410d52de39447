package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resumeblast/blastkit/internal/api"
	"github.com/resumeblast/blastkit/internal/workflow"
)

var resumeCommand = &cobra.Command{
	Use:   "resume",
	Short: "Finish a paid campaign after returning from checkout",
	Long: `Completes a send that was interrupted by the payment redirect. Pass the
full URL the checkout page redirected back to; the saved checkpoint supplies
everything else. Running it twice for the same payment is safe.`,
	RunE: resumeBlastCmd,
}

var (
	resumeConfigPath string
	resumeURL        string
	resumeVerbose    bool
)

func init() {
	resumeCommand.Flags().StringVar(&resumeConfigPath, "config", "", "Path to config.json file")
	resumeCommand.Flags().StringVarP(&resumeURL, "url", "u", "", "Return URL from the checkout page, including query parameters")
	resumeCommand.Flags().BoolVarP(&resumeVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(resumeCommand)
}

func resumeBlastCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	if err := mustFlags(cmd, "url"); err != nil {
		return err
	}

	a, err := buildApp(ctx, resumeConfigPath, resumeVerbose, resumeURL)
	if err != nil {
		return err
	}
	defer a.Close()

	wf := a.Workflow(nil, nil)
	res, err := wf.ResumeAfterRedirect(ctx, resumeURL)
	if err != nil {
		var consistency *workflow.ErrStateConsistency
		if errors.As(err, &consistency) {
			return fmt.Errorf("cannot finish this campaign: %s (contact support if you were charged)", consistency.Reason)
		}
		return fmt.Errorf("failed to finish campaign: %w", err)
	}

	if res.AlreadyProcessed {
		fmt.Println("This payment was already processed; nothing to do.")
		return nil
	}
	fmt.Printf("Sent to %d recruiters (campaign %s)\n", res.RecipientCount, res.CampaignID)
	if days := api.DeliveryDays(res.RecipientCount); days > 1 {
		fmt.Printf("Delivery is batched at %d recruiters per day and completes in %d days.\n", api.DailySendLimit, days)
	}
	if res.DripScheduled {
		fmt.Printf("Follow-up waves are scheduled over the next %d days.\n", api.DripWaveDays[len(api.DripWaveDays)-1])
	}
	return nil
}
