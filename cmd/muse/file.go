package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"muse-go/internal/muse"
)

// file command
var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Manage files within a project",
}

var fileSaveCmd = &cobra.Command{
	Use:   "save FILENAME",
	Short: "Save file content from stdin or --from",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetString("project")
		from, _ := cmd.Flags().GetString("from")

		a, err := newApp("SaveFile")
		if err != nil {
			return err
		}
		defer a.Close()

		var content []byte
		if from != "" {
			content, err = os.ReadFile(from)
			if err != nil {
				return fmt.Errorf("reading %s: %w", from, err)
			}
		} else {
			content, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
		}

		rec, err := a.Service().SaveFile(projectID, args[0], string(content))
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s (%d bytes)\n", rec.Filename, rec.Size)
		return nil
	},
}

var fileCatCmd = &cobra.Command{
	Use:   "cat PROJECT FILENAME",
	Short: "Print file content",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("GetFile")
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Service().GetFile(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Print(rec.Content)
		if !strings.HasSuffix(rec.Content, "\n") {
			fmt.Println()
		}
		return nil
	},
}

var fileOpenCmd = &cobra.Command{
	Use:   "open PROJECT FILENAME",
	Short: "Make a file the active editing context",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("OpenFile")
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.Service().OpenFile(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Opened %s (%d bytes)\n", rec.Filename, rec.Size)
		return nil
	},
}

var fileListCmd = &cobra.Command{
	Use:   "list PROJECT",
	Short: "List a project's files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asTree, _ := cmd.Flags().GetBool("tree")

		a, err := newApp("ListFiles")
		if err != nil {
			return err
		}
		defer a.Close()

		files, err := a.Service().ListFiles(args[0])
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No files.")
			return nil
		}

		if asTree {
			root := muse.BuildFileTree(files)
			root.Walk(func(node *muse.TreeNode, depth int) {
				indent := strings.Repeat("  ", depth)
				if node.IsDir {
					fmt.Printf("%s%s/\n", indent, node.Name)
				} else {
					fmt.Printf("%s%s\n", indent, node.Name)
				}
			})
			return nil
		}

		root := muse.BuildFileTree(files)
		root.Walk(func(node *muse.TreeNode, depth int) {
			if node.IsDir {
				return
			}
			rec := node.File
			fmt.Printf("%-40s  %6d  %s\n", node.Path, rec.Size, rec.LastModified.Format("2006-01-02 15:04:05"))
		})
		return nil
	},
}

var fileRenameCmd = &cobra.Command{
	Use:   "rename PROJECT OLD NEW",
	Short: "Rename a file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RenameFile")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().RenameFile(args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Printf("Renamed %s to %s\n", args[1], args[2])
		return nil
	},
}

var fileDeleteCmd = &cobra.Command{
	Use:   "delete PROJECT FILENAME",
	Short: "Delete a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("DeleteFile")
		if err != nil {
			return err
		}
		defer a.Close()

		if !yes && !confirm(fmt.Sprintf("Delete file %q?", args[1])) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := a.Service().DeleteFile(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[1])
		return nil
	},
}

func init() {
	fileSaveCmd.Flags().StringP("project", "p", "", "Project id (defaults to the active project)")
	fileSaveCmd.Flags().StringP("from", "f", "", "Read content from a file instead of stdin")
	fileListCmd.Flags().BoolP("tree", "t", false, "Render as a folder tree")
	fileDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	fileCmd.AddCommand(fileSaveCmd)
	fileCmd.AddCommand(fileCatCmd)
	fileCmd.AddCommand(fileOpenCmd)
	fileCmd.AddCommand(fileListCmd)
	fileCmd.AddCommand(fileRenameCmd)
	fileCmd.AddCommand(fileDeleteCmd)
	rootCmd.AddCommand(fileCmd)
}
