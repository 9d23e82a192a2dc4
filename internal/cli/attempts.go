// attempts.go implements "interviewer attempts" listing the local attempt history.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "Show local attempt history",
	Long: `List the interviews taken on this machine, most recent first, with how
many questions were answered and the report each completed attempt produced.`,
	Args: cobra.NoArgs,
	RunE: runAttempts,
}

var attemptsLimit int

func init() {
	attemptsCmd.Flags().IntVar(&attemptsLimit, "limit", 20, "Maximum number of attempts to show")
}

func runAttempts(cmd *cobra.Command, args []string) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	if d.store == nil {
		return errors.New("local state is unavailable")
	}
	summaries, err := d.store.ListAttempts(attemptsLimit)
	if err != nil {
		return fmt.Errorf("listing attempts: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, d.tr.T("attempts.empty"))
		return nil
	}
	for _, s := range summaries {
		title := s.Title
		if title == "" {
			title = s.InterviewID
		}
		fmt.Fprintf(out, "%-8s  %-11s  %3d/%-3d  %-16s  %s",
			shortID(s.ID), s.Status, s.Answered, s.Drafts,
			s.UpdatedAt.Local().Format("2006-01-02 15:04"), title)
		if s.ReportID != "" {
			fmt.Fprintf(out, "  -> %s", s.ReportID)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
