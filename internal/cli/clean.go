// clean.go implements "interviewer clean" for pruning the local attempt history.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/interviewer-dev/interviewer/internal/cleanup"
	"github.com/interviewer-dev/interviewer/internal/store"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove finished attempts from the local history",
	Long: `Remove completed and abandoned attempts from the local state database.

By default, removes attempts older than the configured cleanup.max_age_days
(default 30). Use --keep to keep only the N most recent finished attempts.
Use --dry-run to preview what would be removed. Unfinished attempts and their
drafts are always kept.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

var (
	keepFlag   int
	dryRunFlag bool
)

func init() {
	cleanCmd.Flags().IntVar(&keepFlag, "keep", 0, "Keep only the last N finished attempts (0 = use age-based cleanup)")
	cleanCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Preview what would be removed without deleting")
}

func runClean(cmd *cobra.Command, args []string) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	if d.store == nil {
		return errors.New("local state is unavailable")
	}

	var pruned []store.Attempt
	if keepFlag > 0 {
		pruned, err = cleanup.PruneKeepRecent(d.store, keepFlag, dryRunFlag)
	} else {
		maxAge := d.cfg.Cleanup.MaxAgeDays
		if maxAge <= 0 {
			maxAge = 30
		}
		pruned, err = cleanup.PruneByAge(d.store, maxAge, dryRunFlag)
	}
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(pruned) == 0 {
		fmt.Fprintln(out, d.tr.T("clean.none"))
		return nil
	}

	key := "clean.removed"
	if dryRunFlag {
		key = "clean.wouldRemove"
	}
	for _, a := range pruned {
		title := a.Title
		if title == "" {
			title = a.InterviewID
		}
		fmt.Fprintf(out, "  %-8s  %-9s  %s\n", shortID(a.ID), a.Status, title)
	}
	fmt.Fprintln(out, d.tr.Tf(key, map[string]any{"count": len(pruned)}))
	return nil
}
