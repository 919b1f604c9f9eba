package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"muse-go/internal/app"
	"muse-go/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "muse",
	Short: "Project-organized markdown notes with commit history and GitHub sync",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Storage:    %s (%s)\n", cfg.Storage.Type, cfg.Storage.DataDir)
		fmt.Printf("Remote API: %s\n", cfg.Remote.APIBaseURL)
		fmt.Printf("Allowed:    %v (max %d files, batches of %d)\n",
			cfg.Remote.AllowedFiles, cfg.Remote.MaxFiles, cfg.Remote.BatchSize)
		return nil
	},
}

// stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("GetStats")
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.Service().GetStats()
		if err != nil {
			return err
		}
		fmt.Printf("%d project(s), %d file(s), %d commit(s)\n", st.Projects, st.Files, st.Commits)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statsCmd)
}
