package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")

		a, err := newApp("CreateProject")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Service().CreateProject(args[0], description)
		if err != nil {
			return err
		}
		fmt.Printf("Created project %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("search")

		a, err := newApp("ListProjects")
		if err != nil {
			return err
		}
		defer a.Close()

		projects, err := a.Service().SearchProjects(query)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("No projects.")
			return nil
		}

		for _, p := range projects {
			remote := ""
			if p.Remote.Linked() {
				remote = fmt.Sprintf("  [%s@%s]", p.Remote.Repo, p.Remote.Branch)
			}
			fmt.Printf("%-24s  %-20s  %3d file(s)%s\n", p.ID, p.Name, len(p.Files), remote)
		}
		return nil
	},
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RenameProject")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().RenameProject(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Renamed project %s\n", args[0])
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a project and all its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("DeleteProject")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Service().GetProject(args[0])
		if err != nil {
			return err
		}
		if !yes && !confirm(fmt.Sprintf("Delete project %q and its %d file(s)?", p.Name, len(p.Files))) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := a.Service().DeleteProject(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted project %s\n", args[0])
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().StringP("description", "d", "", "Project description")
	projectListCmd.Flags().StringP("search", "s", "", "Filter by project name or filename")
	projectDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectRenameCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}
