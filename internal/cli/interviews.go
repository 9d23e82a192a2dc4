// interviews.go implements "interviewer interviews" and "interviewer generate".
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/report"
)

var interviewsCmd = &cobra.Command{
	Use:   "interviews",
	Short: "List interviews",
	Args:  cobra.NoArgs,
	RunE:  runInterviews,
}

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate a new interview",
	Long: `Ask the API to assemble an interview for a free-form prompt, e.g.
"senior Go backend developer". With --tag, only questions carrying that tag
are used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

var (
	pageFlag  int
	limitFlag int
	tagFlag   string
)

func init() {
	for _, c := range []*cobra.Command{interviewsCmd, reportsCmd} {
		c.Flags().IntVar(&pageFlag, "page", 1, "Page number, starting at 1")
		c.Flags().IntVar(&limitFlag, "limit", 20, "Entries per page")
	}
	generateCmd.Flags().StringVar(&tagFlag, "tag", "", "Restrict questions to this tag name")
}

func runInterviews(cmd *cobra.Command, args []string) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	interviews, err := d.client.ListInterviews(cmd.Context(), pageFlag, limitFlag)
	if err != nil {
		return fmt.Errorf("listing interviews: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(interviews) == 0 {
		fmt.Fprintln(out, d.tr.T("interviews.empty"))
		return nil
	}
	for _, iv := range interviews {
		fmt.Fprintf(out, "%-38s  %-8s  %3d  %s\n",
			iv.ID, report.LevelLabel(iv.Level, d.tr), len(iv.Questions), iv.Title)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return fmt.Errorf("prompt must not be empty")
	}

	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	iv, err := d.client.GenerateInterview(cmd.Context(), prompt, tagFlag)
	if err != nil {
		return fmt.Errorf("generating interview: %s", api.DetailOrError(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, d.tr.Tf("interviews.generated", map[string]any{"title": iv.Title, "id": iv.ID}))
	for i, q := range iv.Questions {
		fmt.Fprintf(out, "  %d. [%s] %s\n", i+1, report.LevelLabel(q.Level, d.tr), q.Text)
	}
	fmt.Fprintf(out, "\ninterviewer take %s\n", iv.ID)
	return nil
}
