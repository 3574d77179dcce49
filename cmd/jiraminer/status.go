package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jiraminer/pkg/checkpoint"
	"jiraminer/pkg/logger"
)

// statusCmd shows per-project checkpoint state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint progress for all configured projects",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	store := checkpoint.NewStore(cfg.Paths.Checkpoint, logger.GetLogger())
	progress := store.Load(cfg.Jira.Projects)

	fmt.Printf("checkpoint: %s\n", cfg.Paths.Checkpoint)
	for _, project := range cfg.Jira.Projects {
		fmt.Printf("  %-12s %s\n", project, progress[project])
	}

	return nil
}
