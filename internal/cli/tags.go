// tags.go implements "interviewer tags" and "interviewer questions".
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/i18n"
	"github.com/interviewer-dev/interviewer/internal/report"
)

var tagsCmd = &cobra.Command{
	Use:   "tags [tag-id]",
	Short: "List tags, or the questions carrying one tag",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTags,
}

var questionsCmd = &cobra.Command{
	Use:   "questions [question-id]",
	Short: "List the question bank, or show one question",
	Long: `List the question bank, newest first. --tag keeps questions carrying the
named tag and --difficulty keeps one tier (junior, middle or senior).
With a question id, show that question alone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuestions,
}

var generateQuestionsCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate new questions into the question bank",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenerateQuestions,
}

var (
	questionTagFlag  string
	difficultyFlag   string
	questionPageFlag int
	questionLimit    int
)

func init() {
	questionsCmd.Flags().StringVar(&questionTagFlag, "tag", "", "Only questions carrying this tag name")
	questionsCmd.Flags().StringVar(&difficultyFlag, "difficulty", "", "Only questions of this difficulty (junior, middle, senior)")
	questionsCmd.Flags().IntVar(&questionPageFlag, "page", 1, "Page number, starting at 1")
	questionsCmd.Flags().IntVar(&questionLimit, "limit", 100, "Entries per page")
	questionsCmd.AddCommand(generateQuestionsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		tag, err := d.client.GetTag(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("getting tag: %s", api.DetailOrError(err))
		}
		questions, err := d.client.GetTagQuestions(cmd.Context(), tag.ID)
		if err != nil {
			return fmt.Errorf("listing tag questions: %s", api.DetailOrError(err))
		}
		fmt.Fprintf(out, "%s\n", tag.Name)
		if tag.Description != "" {
			fmt.Fprintf(out, "%s\n", tag.Description)
		}
		fmt.Fprintln(out)
		printQuestions(out, questions, d.tr)
		return nil
	}

	tags, err := d.client.ListTags(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing tags: %s", api.DetailOrError(err))
	}
	if len(tags) == 0 {
		fmt.Fprintln(out, d.tr.T("tags.empty"))
		return nil
	}
	for _, t := range tags {
		fmt.Fprintf(out, "%-38s  %s\n", t.ID, t.Name)
	}
	return nil
}

func runQuestions(cmd *cobra.Command, args []string) error {
	filter := api.QuestionFilter{
		Tag:   strings.TrimSpace(questionTagFlag),
		Page:  questionPageFlag,
		Limit: questionLimit,
	}
	if difficultyFlag != "" {
		level, err := api.ParseLevel(strings.ToLower(strings.TrimSpace(difficultyFlag)))
		if err != nil {
			return err
		}
		filter.Level = level
	}

	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	if len(args) == 1 {
		q, err := d.client.GetQuestion(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("getting question: %s", api.DetailOrError(err))
		}
		printQuestion(cmd.OutOrStdout(), *q, d.tr)
		return nil
	}

	questions, err := d.client.ListQuestions(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("listing questions: %s", api.DetailOrError(err))
	}
	printQuestions(cmd.OutOrStdout(), questions, d.tr)
	return nil
}

func runGenerateQuestions(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return fmt.Errorf("prompt must not be empty")
	}

	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	questions, err := d.client.GenerateQuestions(cmd.Context(), prompt)
	if err != nil {
		return fmt.Errorf("generating questions: %s", api.DetailOrError(err))
	}
	printQuestions(cmd.OutOrStdout(), questions, d.tr)
	return nil
}

// printQuestion shows one question in full.
func printQuestion(out io.Writer, q api.Question, tr *i18n.Translator) {
	fmt.Fprintf(out, "%s\n%s  %s\n", q.ID, report.LevelLabel(q.Level, tr), q.Text)
	for _, t := range q.Tags {
		fmt.Fprintf(out, "  #%s", t.Name)
	}
	if len(q.Tags) > 0 {
		fmt.Fprintln(out)
	}
}

func printQuestions(out io.Writer, questions []api.Question, tr *i18n.Translator) {
	if len(questions) == 0 {
		fmt.Fprintln(out, tr.T("questions.empty"))
		return
	}
	for _, q := range questions {
		names := make([]string, 0, len(q.Tags))
		for _, t := range q.Tags {
			names = append(names, t.Name)
		}
		fmt.Fprintf(out, "%-38s  %-8s  %s", q.ID, report.LevelLabel(q.Level, tr), q.Text)
		if len(names) > 0 {
			fmt.Fprintf(out, "  [%s]", strings.Join(names, ", "))
		}
		fmt.Fprintln(out)
	}
}
