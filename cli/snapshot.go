package cli

import (
	"fmt"
	"strings"

	"github.com/javanhut/commitscope/internal/colors"
	"github.com/javanhut/commitscope/internal/committree"
	"github.com/javanhut/commitscope/internal/seals"
	"github.com/javanhut/commitscope/internal/snapcache"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <root-id> <commit>",
	Short: "Print the tree after a commit",
	Long: `Reconstruct the tree of a root as it stood after the given commit and print
it depth first. Commits are numbered from 0.

Examples:
  commitscope snapshot 1 0
  commitscope snapshot 1 12 --digest
  commitscope snapshot 1 12 --verify amber-cedar-grows-447abe9b
  commitscope snapshot --file profile.json 1 3`,
	Args: cobra.ExactArgs(2),
	RunE: runSnapshot,
}

var (
	snapshotFile        string
	snapshotDigest      bool
	snapshotNoDurations bool
	snapshotVerify      string
)

func init() {
	snapshotCmd.Flags().StringVar(&snapshotFile, "file", "", "Read from an export file instead of the store")
	snapshotCmd.Flags().BoolVar(&snapshotDigest, "digest", false, "Print only the snapshot digest")
	snapshotCmd.Flags().BoolVar(&snapshotNoDurations, "no-durations", false, "Hide tree base durations")
	snapshotCmd.Flags().StringVar(&snapshotVerify, "verify", "", "Fail unless the snapshot has this seal")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	root, err := parseRootID(args[0])
	if err != nil {
		return err
	}
	index, err := parseCommitIndex(args[1])
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(snapshotFile)
	if err != nil {
		return err
	}
	defer closeSource()

	tree, err := snapcache.New(source).Snapshot(root, index)
	if err != nil {
		return err
	}

	digest := tree.Digest()
	seal := seals.Name(digest)
	if snapshotVerify != "" && !seals.Matches(snapshotVerify, digest) {
		return fmt.Errorf("snapshot seal is %s, not %s", seal, snapshotVerify)
	}

	if snapshotDigest {
		fmt.Printf("%s %s\n", digest, colors.InfoText(seal))
		return nil
	}

	showDurations := cfg.ShowDurations() && !snapshotNoDurations
	fmt.Println(colors.SectionHeader(fmt.Sprintf("Root %d after commit %d (%d nodes)", root, index, tree.Len())))
	fmt.Println(colors.Dim("seal " + seal))
	return tree.Walk(func(n *committree.Node, depth int) error {
		line := strings.Repeat("  ", depth) + nodeLabel(n)
		if showDurations {
			line += " " + colors.Gray(formatDuration(n.TreeBaseDuration))
		}
		fmt.Println(line)
		return nil
	})
}

func formatDuration(ms float64) string {
	return fmt.Sprintf("%.3fms", ms)
}
