package cli

import (
	"fmt"
	"log"

	"github.com/javanhut/commitscope/internal/colors"
	"github.com/javanhut/commitscope/internal/session"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <export-file>",
	Short: "Import a profiling session export",
	Long: `Import a profiling session export into the session store, replacing the
previously imported session. Files ending in .zst are decompressed first.

Examples:
  commitscope import profile.json
  commitscope import --store /tmp/sessions profile.json.zst`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	log.Printf("Reading session export %s...", path)
	exp, err := session.Load(path)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := session.Import(db, exp, path)
	if err != nil {
		return fmt.Errorf("failed to import session: %w", err)
	}

	fmt.Printf("%s %d roots, %d commits\n", colors.SuccessText("Imported"), result.Roots, result.Commits)
	if result.Skipped > 0 {
		fmt.Printf("%s %d roots with undecodable operation logs:\n", colors.WarningText("Skipped"), result.Skipped)
		for _, e := range result.Errors[:min(3, len(result.Errors))] {
			fmt.Printf("  - %v\n", e)
		}
		if len(result.Errors) > 3 {
			fmt.Printf("  ... and %d more errors\n", len(result.Errors)-3)
		}
	}
	return nil
}
