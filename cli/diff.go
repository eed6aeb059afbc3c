package cli

import (
	"fmt"

	"github.com/javanhut/commitscope/internal/colors"
	"github.com/javanhut/commitscope/internal/committree"
	"github.com/javanhut/commitscope/internal/snapcache"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <root-id> <from-commit> [<to-commit>]",
	Short: "Show node changes between two commits",
	Long: `Show how the tree of a root changed between two commits. Without a second
commit the one directly after <from-commit> is used.

Examples:
  commitscope diff 1 3        # Changes made by commit 4
  commitscope diff 1 0 12     # Everything that changed from commit 0 to 12
  commitscope diff 1 0 12 --stat`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runDiff,
}

var (
	diffFile string
	diffStat bool
)

func init() {
	diffCmd.Flags().StringVar(&diffFile, "file", "", "Read from an export file instead of the store")
	diffCmd.Flags().BoolVar(&diffStat, "stat", false, "Show only statistics")
}

func runDiff(cmd *cobra.Command, args []string) error {
	root, err := parseRootID(args[0])
	if err != nil {
		return err
	}
	from, err := parseCommitIndex(args[1])
	if err != nil {
		return err
	}
	to := from + 1
	if len(args) == 3 {
		if to, err = parseCommitIndex(args[2]); err != nil {
			return err
		}
	}

	source, closeSource, err := openSource(diffFile)
	if err != nil {
		return err
	}
	defer closeSource()

	// One cache for both ends so the shared prefix is built once.
	cache := snapcache.New(source)
	a, err := cache.Snapshot(root, from)
	if err != nil {
		return err
	}
	b, err := cache.Snapshot(root, to)
	if err != nil {
		return err
	}

	changes := committree.Diff(a, b)
	if len(changes) == 0 {
		fmt.Println(colors.Gray("No changes"))
		return nil
	}

	if diffStat {
		counts := make(map[committree.ChangeKind]int)
		for _, c := range changes {
			counts[c.Kind]++
		}
		for kind := committree.Added; kind <= committree.DurationChanged; kind++ {
			if counts[kind] > 0 {
				fmt.Printf("  %s %d\n", colors.Change(kind.String(), fmt.Sprintf("%-10s", kind)), counts[kind])
			}
		}
		return nil
	}

	fmt.Println(colors.SectionHeader(fmt.Sprintf("Root %d: commit %d -> %d", root, from, to)))
	for _, c := range changes {
		fmt.Println(colors.Change(c.Kind.String(), describeChange(c)))
	}
	return nil
}

func describeChange(c committree.Change) string {
	switch c.Kind {
	case committree.Added:
		return fmt.Sprintf("+ %s under #%d", nodeLabel(c.New), c.New.ParentID)
	case committree.Removed:
		return fmt.Sprintf("- %s", nodeLabel(c.Old))
	case committree.Reparented:
		return fmt.Sprintf("~ %s moved #%d -> #%d", nodeLabel(c.New), c.Old.ParentID, c.New.ParentID)
	case committree.Reordered:
		return fmt.Sprintf("~ %s children %v -> %v", nodeLabel(c.New), c.Old.Children, c.New.Children)
	case committree.Renamed:
		return fmt.Sprintf("~ %s renamed from %s", nodeLabel(c.New), nodeLabel(c.Old))
	case committree.DurationChanged:
		return fmt.Sprintf("~ %s %s -> %s", nodeLabel(c.New),
			formatDuration(c.Old.TreeBaseDuration), formatDuration(c.New.TreeBaseDuration))
	default:
		return fmt.Sprintf("? #%d %s", c.ID, c.Kind)
	}
}
