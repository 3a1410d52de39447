package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/resumeblast/blastkit/internal/api"
)

var plansCommand = &cobra.Command{
	Use:   "plans",
	Short: "List the available distribution plans",
	RunE:  listPlansCmd,
}

var (
	plansConfigPath string
	plansVerbose    bool
)

func init() {
	plansCommand.Flags().StringVar(&plansConfigPath, "config", "", "Path to config.json file")
	plansCommand.Flags().BoolVarP(&plansVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(plansCommand)
}

func listPlansCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, plansConfigPath, plansVerbose, "")
	if err != nil {
		return err
	}
	defer a.Close()

	plans, err := a.API.PublicPlans(ctx)
	if err != nil {
		return fmt.Errorf("failed to load plan catalog: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAN\tPRICE\tRECRUITERS\tDELIVERY\t")
	for _, p := range plans {
		price := "free"
		if p.PriceCents > 0 {
			price = fmt.Sprintf("$%d.%02d", p.PriceCents/100, p.PriceCents%100)
		}
		delivery := "same day"
		if days := api.DeliveryDays(p.RecruiterCount); days > 1 {
			delivery = fmt.Sprintf("%d days", days)
		}
		note := ""
		if p.ComingSoon {
			note = " (coming soon)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d%s\t%s\t\n", p.Key, price, p.RecruiterCount, note, delivery)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nSends go out in daily batches of up to %d recruiters; follow-up waves land %s days after the first send.\n",
		api.DailySendLimit, joinInts(api.DripWaveDays))
	return nil
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
