package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// git command (local commit log, not a real git repository)
var gitCmd = &cobra.Command{
	Use:   "git",
	Short: "Manage a project's commit history",
}

var gitInitCmd = &cobra.Command{
	Use:   "init PROJECT",
	Short: "Initialize (or reset) a project's commit log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("InitLog")
		if err != nil {
			return err
		}
		defer a.Close()

		commits, err := a.Service().Log(args[0])
		if err == nil && len(commits) > 0 && !yes {
			if !confirm(fmt.Sprintf("Project has %d commits; init discards them. Continue?", len(commits))) {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := a.Service().InitLog(args[0]); err != nil {
			return err
		}
		fmt.Println("Commit log initialized.")
		return nil
	},
}

var gitCommitCmd = &cobra.Command{
	Use:   "commit PROJECT",
	Short: "Record a snapshot of the project's files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")
		branch, _ := cmd.Flags().GetString("branch")

		a, err := newApp("Commit")
		if err != nil {
			return err
		}
		defer a.Close()

		commit, err := a.Service().Commit(args[0], message, branch)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s (%d files)\n", commit.ID, commit.Message, len(commit.Files))
		return nil
	},
}

var gitLogCmd = &cobra.Command{
	Use:   "log PROJECT",
	Short: "Show the project's commit history, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Log")
		if err != nil {
			return err
		}
		defer a.Close()

		commits, err := a.Service().Log(args[0])
		if err != nil {
			return err
		}
		if len(commits) == 0 {
			fmt.Println("No commits.")
			return nil
		}

		for _, c := range commits {
			fmt.Printf("commit %s\n", c.ID)
			fmt.Printf("Date:    %s\n", c.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Printf("Files:   %d\n", len(c.Files))
			if c.Branch != "" {
				fmt.Printf("Branch:  %s\n", c.Branch)
			}
			if c.Import {
				fmt.Println("Import:  yes")
			}
			if c.Pushed {
				fmt.Printf("Pushed:  %s (%s)\n", c.PushedAt.Format("2006-01-02 15:04:05"), c.PushedBranch)
			}
			fmt.Printf("\n    %s\n\n", c.Message)
		}
		return nil
	},
}

var gitDiffCmd = &cobra.Command{
	Use:   "diff PROJECT FILENAME",
	Short: "Compare a file against its last committed snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Diff")
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.Service().Diff(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	gitInitCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	gitCommitCmd.Flags().StringP("message", "m", "", "Commit message (required)")
	gitCommitCmd.Flags().StringP("branch", "b", "", "Branch label to record (defaults to the linked branch)")

	gitCmd.AddCommand(gitInitCmd)
	gitCmd.AddCommand(gitCommitCmd)
	gitCmd.AddCommand(gitLogCmd)
	gitCmd.AddCommand(gitDiffCmd)
	rootCmd.AddCommand(gitCmd)
}
