// deps.go builds the collaborators every command shares: config, API client,
// local store, event log and translator.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/attempt"
	"github.com/interviewer-dev/interviewer/internal/config"
	"github.com/interviewer-dev/interviewer/internal/i18n"
	"github.com/interviewer-dev/interviewer/internal/log"
	"github.com/interviewer-dev/interviewer/internal/session"
	"github.com/interviewer-dev/interviewer/internal/store"
	"github.com/interviewer-dev/interviewer/internal/tui/commands"
)

// deps holds what a command needs. store and log may be nil; commands keep
// working without local state.
type deps struct {
	stateDir string
	cfg      *config.Config
	client   *api.Client
	store    *store.Store
	log      *log.Logger
	tr       *i18n.Translator
	cmd      *cobra.Command
}

func openDeps(cmd *cobra.Command) (*deps, error) {
	dir := stateDirFlag
	if dir == "" {
		var err error
		if dir, err = config.DefaultStateDir(); err != nil {
			return nil, err
		}
	}

	if err := config.LoadDotEnv(".env", filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(dir)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg, os.LookupEnv)
	if apiURLFlag != "" {
		cfg.API.BaseURL = apiURLFlag
	}

	client, err := api.NewClient(cfg.API.BaseURL, api.WithUserAgent(cfg.API.UserAgent))
	if err != nil {
		return nil, err
	}

	d := &deps{stateDir: dir, cfg: cfg, client: client, cmd: cmd}

	// Local state is a convenience; a broken database must not block an interview.
	if err := os.MkdirAll(dir, 0755); err != nil {
		d.warnf("creating state directory: %v", err)
	} else if st, err := store.NewStore(filepath.Join(dir, "state.db")); err != nil {
		d.warnf("opening local state: %v", err)
	} else {
		d.store = st
	}

	if cfg.Log.Enabled {
		if lg, err := log.NewLogger(dir); err != nil {
			d.warnf("opening event log: %v", err)
		} else {
			d.log = lg
		}
	}

	d.tr = i18n.MustNew(d.language())
	return d, nil
}

// language resolves the UI language: INTERVIEWER_LANGUAGE, then the stored
// preference, then config.yaml.
func (d *deps) language() i18n.Language {
	fallback, err := i18n.ParseLanguage(d.cfg.Language)
	if err != nil {
		d.warnf("%v; using %s", err, i18n.DefaultLanguage)
		fallback = i18n.DefaultLanguage
	}
	if v, ok := os.LookupEnv(config.EnvLanguage); ok && strings.TrimSpace(v) != "" {
		return fallback
	}
	lang, err := i18n.LoadLanguage(d.prefStore(), fallback)
	if err != nil {
		d.warnf("%v", err)
	}
	return lang
}

// Close releases the local store.
func (d *deps) Close() {
	if d.store != nil {
		_ = d.store.Close()
	}
}

// The accessors below return untyped nil interfaces when the backing value
// is missing, so callers can compare against nil.

func (d *deps) attemptStore() attempt.Store {
	if d.store == nil {
		return nil
	}
	return d.store
}

func (d *deps) prefStore() i18n.PrefStore {
	if d.store == nil {
		return nil
	}
	return d.store
}

func (d *deps) eventSource() commands.EventSource {
	if d.log == nil {
		return nil
	}
	return d.log
}

// sessionOptions wires a controller to the event log and the attempt record.
func (d *deps) sessionOptions(tracker *attempt.Tracker) []session.Option {
	opts := []session.Option{
		session.WithAttemptID(tracker.ID()),
		session.WithHandoff(tracker.Handoff()),
	}
	if d.log != nil {
		opts = append(opts, session.WithEventSink(d.log))
	}
	return opts
}

// record appends an event to the log, if enabled.
func (d *deps) record(event log.LogEvent) {
	if d.log == nil {
		return
	}
	if err := d.log.Append(event); err != nil {
		d.warnf("writing event log: %v", err)
	}
}

// warnf prints a diagnostic to stderr when --verbose is set.
func (d *deps) warnf(format string, args ...any) {
	if !Verbose() {
		return
	}
	fmt.Fprintf(d.cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}
