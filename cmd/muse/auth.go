package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the GitHub credential",
}

var authSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate the key pair that seals the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AuthSetup")
		if err != nil {
			return err
		}
		defer a.Close()

		if a.Sealer().IsConfigured() {
			return fmt.Errorf("key pair already exists; remove the key files to regenerate")
		}

		passphrase, err := promptHidden("New key passphrase")
		if err != nil {
			return err
		}
		again, err := promptHidden("Repeat passphrase")
		if err != nil {
			return err
		}
		if passphrase != again {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.Sealer().Setup(passphrase); err != nil {
			return fmt.Errorf("generating key pair: %w", err)
		}
		fmt.Println("Key pair generated.")
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a GitHub personal access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AuthLogin")
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.Sealer().IsConfigured() {
			return fmt.Errorf("no key pair; run `muse auth setup` first")
		}

		token, err := promptHidden("GitHub token")
		if err != nil {
			return err
		}

		// Validate before storing so a typo fails loudly here, not later.
		user, err := a.Service().FetchUser(token)
		if err != nil {
			return fmt.Errorf("validating token: %w", err)
		}

		if err := a.Service().SetToken(token); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", user.Login)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token and cached profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AuthLogout")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().ClearToken(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AuthStatus")
		if err != nil {
			return err
		}
		defer a.Close()

		has, err := a.Service().HasToken()
		if err != nil {
			return err
		}
		if !has {
			fmt.Println("Not logged in.")
			return nil
		}

		user, err := a.Service().CachedUser()
		if err != nil {
			return err
		}
		if user != nil {
			fmt.Printf("Logged in as %s\n", user.Login)
		} else {
			fmt.Println("Token stored (no cached profile).")
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSetupCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
