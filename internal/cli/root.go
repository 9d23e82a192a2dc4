// Package cli defines Cobra command definitions for the interviewer CLI.
// This file contains the root command, global flags, and help output.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/interviewer-dev/interviewer/internal/tui"
)

var (
	stateDirFlag string
	apiURLFlag   string
	verbose      bool
	version      = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "interviewer",
	Short: "Practice technical interviews from the terminal",
	Long: `Interviewer takes AI-generated technical interviews against the
interviewer API. Answer each question, submit, and read the graded report.
Unfinished attempts are kept locally so they can be resumed.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, open the picker if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}
		return runTUI(cmd, "")
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Verbose returns true if --verbose flag is set.
func Verbose() bool {
	return verbose
}

func init() {
	rootCmd.PersistentFlags().StringVar(&stateDirFlag, "state-dir", "", "Directory holding config.yaml, state.db and log.jsonl (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Interviewer API base URL (overrides config and environment)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print diagnostics to stderr")

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(interviewsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(langCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(cleanCmd)
}
