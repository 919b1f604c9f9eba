package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// remote command (GitHub sync)
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Sync projects with GitHub repositories",
}

var remoteReposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List the authenticated user's repositories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListRemoteRepositories")
		if err != nil {
			return err
		}
		defer a.Close()

		token, err := unsealToken(a)
		if err != nil {
			return err
		}

		repos, err := a.Service().ListRemoteRepositories(token)
		if err != nil {
			return err
		}
		for _, r := range repos {
			visibility := "public"
			if r.Private {
				visibility = "private"
			}
			fmt.Printf("%-50s  %-8s  %s\n", r.FullName, visibility, r.Description)
		}
		return nil
	},
}

var remoteBranchesCmd = &cobra.Command{
	Use:   "branches REPO",
	Short: "List branches of a repository (owner/name)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListBranches")
		if err != nil {
			return err
		}
		defer a.Close()

		token, err := unsealToken(a)
		if err != nil {
			return err
		}

		branches := a.Service().ListBranches(args[0], token)
		if len(branches) == 0 {
			fmt.Println("No branches found.")
			return nil
		}
		for _, b := range branches {
			fmt.Println(b)
		}
		return nil
	},
}

var remoteImportCmd = &cobra.Command{
	Use:   "import REPO",
	Short: "Import a repository branch into a local project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")

		a, err := newApp("ImportRepository")
		if err != nil {
			return err
		}
		defer a.Close()

		token, err := unsealToken(a)
		if err != nil {
			return err
		}

		if branch == "" {
			repos, err := a.Service().ListRemoteRepositories(token)
			if err != nil {
				return err
			}
			for _, r := range repos {
				if r.FullName == args[0] {
					branch = r.DefaultBranch
					break
				}
			}
			if branch == "" {
				return fmt.Errorf("could not determine the default branch of %s; use --branch", args[0])
			}
		}

		res, err := a.Service().ImportRepository(args[0], branch, token)
		if err != nil {
			return err
		}

		if res.Relinked {
			fmt.Printf("Reusing project %s\n", res.Project.ID)
		} else {
			fmt.Printf("Created project %s\n", res.Project.ID)
		}
		fmt.Printf("Imported %d of %d eligible files\n", res.Downloaded, res.Eligible)
		if res.Truncated > 0 {
			fmt.Printf("Skipped %d files over the import cap\n", res.Truncated)
		}
		if res.Failed > 0 {
			fmt.Printf("Failed to download %d files\n", res.Failed)
		}
		return nil
	},
}

var remotePushCmd = &cobra.Command{
	Use:   "push PROJECT",
	Short: "Push the latest commit's files to the linked branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Push")
		if err != nil {
			return err
		}
		defer a.Close()

		token, err := unsealToken(a)
		if err != nil {
			return err
		}

		pushed, err := a.Service().Push(args[0], token)
		if err != nil {
			return err
		}
		fmt.Printf("Pushed %d files\n", pushed)
		return nil
	},
}

var remoteSwitchCmd = &cobra.Command{
	Use:   "switch PROJECT BRANCH",
	Short: "Replace a project's files with another branch's content",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("SwitchBranch")
		if err != nil {
			return err
		}
		defer a.Close()

		if !yes {
			check, err := a.Service().CheckSwitch(args[0])
			if err != nil {
				return err
			}
			if check.UnpushedCommits > 0 {
				fmt.Printf("Warning: %d unpushed commits will be lost.\n", check.UnpushedCommits)
			}
			if check.ActiveFile != "" {
				fmt.Printf("Warning: %s is open in this project.\n", check.ActiveFile)
			}
			if !confirm(fmt.Sprintf("Replace all local files with branch %q?", args[1])) {
				fmt.Println("Aborted.")
				return nil
			}
		}

		token, err := unsealToken(a)
		if err != nil {
			return err
		}

		res, err := a.Service().SwitchBranch(args[0], args[1], token)
		if err != nil {
			return err
		}
		fmt.Printf("Switched to %s (%d files)\n", args[1], res.Downloaded)
		return nil
	},
}

func init() {
	remoteImportCmd.Flags().StringP("branch", "b", "", "Branch to import (defaults to the repository's default branch)")
	remoteSwitchCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	remoteCmd.AddCommand(remoteReposCmd)
	remoteCmd.AddCommand(remoteBranchesCmd)
	remoteCmd.AddCommand(remoteImportCmd)
	remoteCmd.AddCommand(remotePushCmd)
	remoteCmd.AddCommand(remoteSwitchCmd)
	rootCmd.AddCommand(remoteCmd)
}
