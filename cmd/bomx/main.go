package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/bomx/cmd/bomx/commands"
	"github.com/teranos/bomx/logger"
)

var rootCmd = &cobra.Command{
	Use:   "bomx",
	Short: "bomx - BOM enrichment and alternative-evaluation pipeline",
	Long: `bomx - Bill-of-materials enrichment and alternative-evaluation pipeline.

bomx ingests a raw BOM file (CSV/TSV), maps its columns to a canonical
schema, parses each row, enriches rows with part-catalog data, evaluates
alternative parts against project constraints, and reports cost savings.

Available commands:
  analyze - Run the pipeline over a BOM file and print the report
  am      - Manage bomx core configuration ("I am")
  version - Show version information

Examples:
  bomx analyze parts.csv              # Analyze a BOM file
  bomx analyze parts.csv --json       # Emit the full job result as JSON
  bomx am show                        # Show current configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip for commands whose output is piped or parsed (like 'am show')
		if cmd.Name() != "show" {
			if err := logger.Initialize(false); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Emit machine-readable JSON output")

	rootCmd.AddCommand(commands.AnalyzeCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
