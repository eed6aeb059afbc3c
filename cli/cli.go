package cli

import (
	"os"

	"github.com/javanhut/commitscope/internal/colors"
	"github.com/javanhut/commitscope/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "commitscope",
	Short: "Commitscope reconstructs component trees from profiling sessions",
	Long: `Commitscope imports recorded profiling sessions and rebuilds the component
tree as it stood after any commit, from the initial snapshot and the per-commit
operation logs.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

var (
	storeDirFlag string
	noColorFlag  bool

	// cfg is loaded before every command runs.
	cfg *config.Config
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeDirFlag, "store", "", "Session store directory (overrides store.dir)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	// Session commands
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(rootsCmd)

	// Inspection commands
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(diffCmd)

	rootCmd.AddCommand(configCmd)
}

func loadSettings(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if storeDirFlag != "" {
		loaded.Store.Dir = storeDirFlag
	}
	if noColorFlag || !loaded.ColorUI() {
		colors.SetColorEnabled(false)
	}
	cfg = loaded
	return nil
}
