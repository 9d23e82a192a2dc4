// take.go implements "interviewer take", interactively or from an answers file.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/interviewer-dev/interviewer/internal/attempt"
	"github.com/interviewer-dev/interviewer/internal/report"
	"github.com/interviewer-dev/interviewer/internal/session"
	"github.com/interviewer-dev/interviewer/internal/tui"
	"github.com/interviewer-dev/interviewer/internal/tui/app"
	"github.com/interviewer-dev/interviewer/internal/tui/commands"
)

var takeCmd = &cobra.Command{
	Use:   "take <interview-id>",
	Short: "Take an interview",
	Long: `Take an interview in the terminal UI. Answers are saved as you go and
restored the next time the same interview is taken, unless --fresh is given.

With --answers, the interview is submitted without a UI from a YAML file
mapping question ids to answers. Drafts saved by an earlier unfinished attempt
fill in questions the file leaves out:

  q1: A goroutine is a lightweight thread managed by the Go runtime.
  q2: |
    Multi-line answers use YAML block scalars.`,
	Args: cobra.ExactArgs(1),
	RunE: runTake,
}

var (
	answersFlag string
	freshFlag   bool
	saveDirFlag string
)

func init() {
	takeCmd.Flags().StringVar(&answersFlag, "answers", "", "Submit answers from a YAML file instead of opening the UI")
	takeCmd.Flags().BoolVar(&freshFlag, "fresh", false, "Start over instead of resuming saved drafts")
	takeCmd.Flags().StringVar(&saveDirFlag, "save", "", "With --answers, also write the report as Markdown into this directory")
}

func runTake(cmd *cobra.Command, args []string) error {
	if answersFlag == "" {
		return runTUI(cmd, args[0])
	}
	return takeFromFile(cmd, args[0], answersFlag)
}

// runTUI opens the interactive client, on the picker when interviewID is empty.
func runTUI(cmd *cobra.Command, interviewID string) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	// The UI draws on the process terminal; anything else gets plain instructions.
	if cmd.OutOrStdout() != os.Stdout || !tui.IsTTY() {
		tui.PrintFallback(cmd.OutOrStdout(), interviewID)
		return nil
	}

	a := app.New(app.Options{
		Client:       d.client,
		Tr:           d.tr,
		Store:        d.attemptStore(),
		Log:          d.log,
		ResumeDrafts: d.cfg.Session.ResumeDrafts && !freshFlag,
		InterviewID:  interviewID,
	})
	defer a.Close()

	err = tui.Run(cmd.Context(), a)
	if errors.Is(err, tui.ErrNotInteractive) {
		tui.PrintFallback(cmd.OutOrStdout(), interviewID)
		return nil
	}
	return err
}

// takeFromFile drives one session to completion from an answers file and
// prints the graded report.
func takeFromFile(cmd *cobra.Command, interviewID, path string) error {
	answers, err := readAnswers(path)
	if err != nil {
		return err
	}

	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()
	tr := d.tr
	ctx := cmd.Context()

	tracker, err := attempt.Begin(d.attemptStore(), interviewID, d.cfg.Session.ResumeDrafts && !freshFlag)
	if err != nil {
		d.warnf("%v", err)
		tracker, _ = attempt.Begin(nil, interviewID, false)
	}

	ctrl := session.New(d.client, interviewID, d.sessionOptions(tracker)...)
	defer ctrl.Close()

	if err := ctrl.Load(ctx); err != nil {
		var loadErr *session.LoadError
		if errors.As(err, &loadErr) {
			return errors.New(loadErr.Message(tr))
		}
		return err
	}
	if _, err := tracker.Restore(ctrl); err != nil {
		d.warnf("recording attempt: %v", err)
	}

	iv := ctrl.Interview()
	for _, q := range iv.Questions {
		if text, ok := answers[q.ID]; ok {
			if err := ctrl.RecordAnswer(q.ID, text); err != nil {
				return err
			}
		}
	}
	if err := tracker.Save(ctrl.Drafts()); err != nil {
		d.warnf("saving drafts: %v", err)
	}

	if missing := ctrl.Unanswered(); len(missing) > 0 {
		return fmt.Errorf("%s (%s)", tr.T("interviews.incomplete"), strings.Join(missing, ", "))
	}
	for cur, total := ctrl.Progress(); cur < total; cur++ {
		if err := ctrl.Next(); err != nil {
			return err
		}
	}

	res, err := ctrl.Submit(ctx)
	if err != nil {
		var submitErr *session.SubmitError
		if errors.As(err, &submitErr) {
			return errors.New(submitErr.Message(tr))
		}
		return err
	}
	if err := tracker.Err(); err != nil {
		d.warnf("recording completion: %v", err)
	}

	questions := make(map[string]string, len(iv.Questions))
	for _, q := range iv.Questions {
		questions[q.ID] = q.Text
	}
	doc, err := commands.BuildDocument(ctx, d.client, res.ReportID, questions, d.eventSource())
	if err != nil {
		// Graded already; show what the submit response carried.
		d.warnf("fetching report: %v", err)
		doc = report.Document{Report: res.Report, Questions: questions}
	}

	return printReport(cmd, d, doc)
}

// printReport prints doc and, with --save, writes it to disk.
func printReport(cmd *cobra.Command, d *deps, doc report.Document) error {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, report.FormatReport(doc, d.tr))
	if saveDirFlag == "" {
		return nil
	}
	path, err := report.WriteReport(saveDirFlag, doc, d.tr)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, d.tr.Tf("reports.saved", map[string]any{"path": path}))
	return nil
}

// readAnswers parses a YAML mapping of question id to answer.
func readAnswers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading answers: %w", err)
	}
	var answers map[string]string
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parsing answers: %w", err)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("parsing answers: %s has no answers", path)
	}
	return answers, nil
}
