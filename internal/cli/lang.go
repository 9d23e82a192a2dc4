// lang.go implements "interviewer lang" for showing and switching the UI language.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/interviewer-dev/interviewer/internal/i18n"
	"github.com/interviewer-dev/interviewer/internal/log"
)

var langCmd = &cobra.Command{
	Use:       "lang [en|ru]",
	Short:     "Show or set the interface language",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(i18n.English), string(i18n.Russian)},
	RunE:      runLang,
}

func runLang(cmd *cobra.Command, args []string) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		fmt.Fprintln(out, d.tr.Tf("language.current", map[string]any{"lang": d.tr.Language()}))
		return nil
	}

	lang, err := i18n.ParseLanguage(args[0])
	if err != nil {
		return err
	}
	prefs := d.prefStore()
	if prefs == nil {
		return errors.New("local state is unavailable; set INTERVIEWER_LANGUAGE or language in config.yaml instead")
	}
	if err := i18n.SaveLanguage(prefs, lang); err != nil {
		return err
	}
	d.record(log.LogEvent{
		Event: log.EventLanguageChanged,
		Data:  map[string]interface{}{"from": string(d.tr.Language()), "to": string(lang)},
	})

	tr := d.tr.WithLanguage(lang)
	fmt.Fprintln(out, tr.Tf("language.changed", map[string]any{"lang": lang}))
	return nil
}
