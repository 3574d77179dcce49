package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jiraminer/pkg/logger"
	"jiraminer/pkg/transform"
)

var (
	transformRawFile  string
	transformTaskFile string
)

// transformCmd runs the transformation pipeline
var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Derive training tasks from the raw corpus",
	Long: `Stream the raw issue corpus and derive cleaned, deduplicated
prompt/completion training examples into the task corpus.

The task corpus is rewritten each run; deduplication covers the whole pass.`,
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().StringVar(&transformRawFile, "raw-file", "", "raw corpus input path")
	transformCmd.Flags().StringVar(&transformTaskFile, "task-file", "", "task corpus output path")

	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if transformRawFile != "" {
		flags["raw-file"] = transformRawFile
	}
	if transformTaskFile != "" {
		flags["task-file"] = transformTaskFile
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	t := transform.NewTransformer(cfg.Paths.RawCorpus, cfg.Paths.TaskCorpus, logger.GetLogger())
	stats, err := t.Run()
	if err != nil {
		return fmt.Errorf("transform pipeline failed: %w", err)
	}

	fmt.Printf("raw records processed: %d (malformed: %d)\n", stats.RawProcessed, stats.Malformed)
	fmt.Printf("unique tasks written:  %d\n", stats.TasksWritten)
	fmt.Printf("output: %s\n", cfg.Paths.TaskCorpus)

	return nil
}
