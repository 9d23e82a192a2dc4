// report.go implements "interviewer reports" and "interviewer report".
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/report"
	"github.com/interviewer-dev/interviewer/internal/tui/commands"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List graded reports",
	Args:  cobra.NoArgs,
	RunE:  runReports,
}

var reportCmd = &cobra.Command{
	Use:   "report <report-id>",
	Short: "Show a graded report",
	Long: `Display the score, achieved level, feedback and graded answers of one
report. With --save, the report is also written as Markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var reportDeleteCmd = &cobra.Command{
	Use:   "delete <report-id>",
	Short: "Delete a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportDelete,
}

func init() {
	reportCmd.Flags().StringVar(&saveDirFlag, "save", "", "Also write the report as Markdown into this directory")
	reportCmd.AddCommand(reportDeleteCmd)
}

func runReports(cmd *cobra.Command, args []string) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	reports, err := d.client.ListReports(cmd.Context(), pageFlag, limitFlag)
	if err != nil {
		return fmt.Errorf("listing reports: %s", api.DetailOrError(err))
	}

	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		fmt.Fprintln(out, d.tr.T("reports.empty"))
		return nil
	}
	for _, r := range reports {
		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(out, "%-38s  %5.1f  %-8s  %-16s  %s\n",
			r.ID, r.Score, report.LevelLabel(r.AchievedLevel, d.tr), created, r.InterviewID)
	}
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	doc, err := commands.BuildDocument(cmd.Context(), d.client, args[0], nil, d.eventSource())
	if err != nil {
		return fmt.Errorf("getting report: %s", api.DetailOrError(err))
	}

	// Label answers with question text when the interview is still around.
	if iv, err := d.client.GetInterview(cmd.Context(), doc.Report.InterviewID); err == nil {
		doc.Questions = make(map[string]string, len(iv.Questions))
		for _, q := range iv.Questions {
			doc.Questions[q.ID] = q.Text
		}
	}

	return printReport(cmd, d, doc)
}

func runReportDelete(cmd *cobra.Command, args []string) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.client.DeleteReport(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting report: %s", api.DetailOrError(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), d.tr.Tf("reports.deleted", map[string]any{"id": args[0]}))
	return nil
}
