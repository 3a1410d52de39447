package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resumeblast/blastkit/internal/identity"
	"github.com/resumeblast/blastkit/internal/tracking"
)

var loginCommand = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session for later commands",
	RunE:  loginCmd,
}

var signupCommand = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE:  signupCmd,
}

var logoutCommand = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the stored session",
	RunE:  logoutCmd,
}

var (
	loginConfigPath   string
	loginEmail        string
	loginPassword     string
	loginVerbose      bool
	signupConfigPath  string
	signupEmail       string
	signupPassword    string
	signupName        string
	signupAsRecruiter bool
	logoutConfigPath  string
)

func init() {
	loginCommand.Flags().StringVar(&loginConfigPath, "config", "", "Path to config.json file")
	loginCommand.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCommand.Flags().StringVar(&loginPassword, "password", "", "Account password")
	loginCommand.Flags().BoolVarP(&loginVerbose, "verbose", "v", false, "Print detailed debug information")

	signupCommand.Flags().StringVar(&signupConfigPath, "config", "", "Path to config.json file")
	signupCommand.Flags().StringVar(&signupEmail, "email", "", "Account email")
	signupCommand.Flags().StringVar(&signupPassword, "password", "", "Account password")
	signupCommand.Flags().StringVarP(&signupName, "name", "n", "", "Display name")
	signupCommand.Flags().BoolVar(&signupAsRecruiter, "recruiter", false, "Register as a recruiter instead of a job seeker")

	logoutCommand.Flags().StringVar(&logoutConfigPath, "config", "", "Path to config.json file")

	rootCmd.AddCommand(loginCommand)
	rootCmd.AddCommand(signupCommand)
	rootCmd.AddCommand(logoutCommand)
}

func loginCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	if err := mustFlags(cmd, "email", "password"); err != nil {
		return err
	}

	a, err := buildApp(ctx, loginConfigPath, loginVerbose, "")
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.Auth.SignIn(ctx, loginEmail, loginPassword)
	if err != nil {
		return err
	}
	a.Identity.OnAuthEvent(ctx, identity.EventSignedIn, sess)
	a.Events.Track(tracking.EventLogin, sess.UserID.String(), nil)

	if err := a.Store.Set(tokenStoreKey, sess.AccessToken); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	fmt.Printf("Signed in as %s (%s)\n", sess.Email, sess.Role)
	if a.Identity.IsAdmin() {
		fmt.Println("Admin privileges active.")
	}
	return nil
}

func signupCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	if err := mustFlags(cmd, "email", "password", "name"); err != nil {
		return err
	}

	a, err := buildApp(ctx, signupConfigPath, false, "")
	if err != nil {
		return err
	}
	defer a.Close()

	role := identity.RoleJobSeeker
	if signupAsRecruiter {
		role = identity.RoleRecruiter
	}
	sess, err := a.Auth.SignUp(ctx, signupEmail, signupPassword, signupName, role)
	if err != nil {
		return err
	}
	a.Identity.OnAuthEvent(ctx, identity.EventSignedIn, sess)
	a.Events.Track(tracking.EventSignup, sess.UserID.String(), map[string]any{"role": string(role)})

	if err := a.Store.Set(tokenStoreKey, sess.AccessToken); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	fmt.Printf("Account created; signed in as %s (%s)\n", sess.Email, sess.Role)
	return nil
}

func logoutCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(ctx, logoutConfigPath, false, "")
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Identity.Session() == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	if err := a.Auth.SignOut(ctx); err != nil {
		// Best effort: the local session is discarded either way.
		fmt.Printf("Warning: provider sign-out failed: %v\n", err)
	}
	a.Identity.OnAuthEvent(ctx, identity.EventSignedOut, nil)
	if err := a.Store.Delete(tokenStoreKey); err != nil {
		return fmt.Errorf("failed to discard stored session: %w", err)
	}
	fmt.Println("Signed out.")
	return nil
}
