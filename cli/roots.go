package cli

import (
	"fmt"

	"github.com/javanhut/commitscope/internal/colors"
	"github.com/javanhut/commitscope/internal/session"
	"github.com/javanhut/commitscope/internal/store"
	"github.com/spf13/cobra"
)

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "List the recorded roots",
	Long: `List every root of the imported session with its number of commits.

Examples:
  commitscope roots
  commitscope roots --file profile.json`,
	Args: cobra.NoArgs,
	RunE: runRoots,
}

var rootsFile string

func init() {
	rootsCmd.Flags().StringVar(&rootsFile, "file", "", "Read roots from an export file instead of the store")
}

func runRoots(cmd *cobra.Command, args []string) error {
	var roots []store.RootInfo
	source := ""

	if rootsFile != "" {
		exp, err := session.Load(rootsFile)
		if err != nil {
			return err
		}
		for _, r := range exp.Roots {
			roots = append(roots, store.RootInfo{ID: r.RootID, DisplayName: r.DisplayName, Commits: len(r.Operations)})
		}
		source = rootsFile
	} else {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if roots, err = db.Roots(); err != nil {
			return fmt.Errorf("failed to list roots: %w", err)
		}
		source, _ = db.GetMeta(session.MetaSource)
	}

	if len(roots) == 0 {
		fmt.Println(colors.Gray("No roots recorded. Run: commitscope import <export-file>"))
		return nil
	}

	if source != "" {
		fmt.Println(colors.SectionHeader("Session: " + source))
	}
	for _, r := range roots {
		name := r.DisplayName
		if name == "" {
			name = colors.Gray("(unnamed)")
		}
		fmt.Printf("  %s  %s  %d commits\n", colors.InfoText(fmt.Sprintf("%6d", r.ID)), name, r.Commits)
	}
	return nil
}
