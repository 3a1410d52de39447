package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blastctl",
	Short: "Resume distribution client",
	Long: `blastctl drives a resume distribution campaign end-to-end: upload a
resume, review the extracted profile, pick a plan, and send it to a targeted
recruiter list. Paid plans hand off to a hosted checkout page; run
'blastctl resume' after paying to finish the send.`,
}

func main() {
	// Load .env file if present (ignore errors if missing)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
