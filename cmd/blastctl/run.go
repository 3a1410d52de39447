package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/resumeblast/blastkit/internal/api"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Upload a resume and send a distribution campaign",
	Long: `Runs the campaign workflow end-to-end: upload -> analyze -> configure ->
send. The free plan sends immediately; paid plans print a checkout URL and
save a local checkpoint, so the send can be finished with 'blastctl resume'
after payment.`,
	RunE: runBlastCmd,
}

var (
	runConfigPath string
	runResumePath string
	runPlan       string
	runIndustry   string
	runLocation   string
	runAgree      bool
	runVerbose    bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	runCommand.Flags().StringVarP(&runResumePath, "resume", "r", "", "Path to the resume file (.pdf, .docx, .doc or .txt)")
	runCommand.Flags().StringVarP(&runPlan, "plan", "p", "free", "Plan key (free, starter, basic, professional, growth, advanced, premium)")
	runCommand.Flags().StringVar(&runIndustry, "industry", "", "Target recruiter industry")
	runCommand.Flags().StringVar(&runLocation, "location", "", "Target recruiter location")
	runCommand.Flags().BoolVar(&runAgree, "agree", false, "Accept the distribution disclaimer")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(runCommand)
}

// stdoutRedirector prints the checkout URL instead of navigating; the user
// opens it in a browser.
type stdoutRedirector struct{}

func (stdoutRedirector) Redirect(url string) error {
	fmt.Printf("\nComplete payment at:\n\n  %s\n\n", url)
	fmt.Println("Then finish the send with:")
	fmt.Println("  blastctl resume --url '<the URL you were redirected back to>'")
	return nil
}

func runBlastCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	if err := mustFlags(cmd, "resume", "industry", "location"); err != nil {
		return err
	}
	if !runAgree {
		return fmt.Errorf("the distribution disclaimer must be accepted with --agree")
	}

	a, err := buildApp(ctx, runConfigPath, runVerbose, "")
	if err != nil {
		return err
	}
	defer a.Close()

	// No login is required for one-off sends; anonymous runs get a guest
	// identity anchored in local state so payment redirects can find them.
	if a.Identity.Session() == nil && a.Identity.Guest() == nil {
		if _, err := a.Identity.BecomeGuest(ctx); err != nil {
			return fmt.Errorf("failed to create guest identity: %w", err)
		}
	}

	plans, err := a.API.PublicPlans(ctx)
	if err != nil {
		return fmt.Errorf("failed to load plan catalog: %w", err)
	}
	plan, err := api.PlanByKey(plans, runPlan)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(runResumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}

	wf := a.Workflow(stdoutRedirector{}, plans)

	if err := wf.Upload(ctx, filepath.Base(runResumePath), data); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	profile, err := wf.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if runVerbose {
		fmt.Printf("Candidate: %s <%s>\n", profile.CandidateName, profile.CandidateEmail)
		fmt.Printf("Role: %s (%s)\n", profile.CurrentRole, profile.SeniorityLevel)
		fmt.Printf("ATS score: %.0f\n", profile.ATSScore)
	}

	if err := wf.Configure(plan.Key, runIndustry, runLocation); err != nil {
		return err
	}
	wf.AcceptDisclaimer(true)
	if a.Identity.Guest() != nil {
		wf.AcceptGuestDisclaimer(true)
	}

	if plan.Key == "free" {
		eligible, err := wf.CheckFreeTier(ctx)
		if err != nil {
			return fmt.Errorf("free tier check failed: %w", err)
		}
		if !eligible {
			if a.Identity.Session() == nil {
				return fmt.Errorf("the free trial requires a signed-in account; run 'blastctl login' first")
			}
			return fmt.Errorf("the free trial has already been used on this account; pick a paid plan")
		}
		res, err := wf.SendFreeBlast(ctx)
		if err != nil {
			return fmt.Errorf("send failed: %w", err)
		}
		fmt.Printf("Sent to %d recruiters (campaign %s)\n", res.RecipientCount, res.CampaignID)
		return nil
	}

	if err := wf.StartPaidBlast(ctx); err != nil {
		return fmt.Errorf("checkout failed: %w", err)
	}
	return nil
}
