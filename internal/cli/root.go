// Package cli implements studyctl, the command-line client. Every command
// goes through client.Client, so it works against the API when one is
// configured and against the on-device store otherwise.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrlokans/pharmastudy/internal/client"
	"github.com/mrlokans/pharmastudy/internal/config"
	"github.com/mrlokans/pharmastudy/internal/localstore"
	"github.com/mrlokans/pharmastudy/internal/logging"
)

// app holds what commands share once the root pre-run has loaded config.
type app struct {
	v       *viper.Viper
	cfg     config.ClientConfig
	log     *logging.Logger
	store   localstore.Store
	client  *client.Client
	jsonOut bool
}

// newRootCommand builds the studyctl command tree. The caller closes the
// returned app once the command has run, whether it failed or not.
func newRootCommand() (*cobra.Command, *app) {
	a := &app{v: config.NewClientViper()}

	root := &cobra.Command{
		Use:   "studyctl",
		Short: "Pharmacology study aid",
		Long: `studyctl manages chapters, topics, study items and flashcards, runs
quizzes and looks up compounds.

With PHARMASTUDY_API_URL (or --api-url) set, data lives on the server and
falls back to the on-device store whenever the server cannot be reached.
Without it, everything stays on this machine.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.String("api-url", "", "REST API base URL (empty for local-only mode)")
	flags.String("data-dir", config.DefaultClientDataDir, "directory for on-device data")
	flags.String("local-backend", string(config.LocalBackendFile), "on-device store: file or sqlite")
	flags.Duration("timeout", 0, "API request timeout")
	flags.String("log-mode", "", "log mode: development or production")
	flags.BoolVar(&a.jsonOut, "json", false, "print JSON instead of text")

	for key, flag := range map[string]string{
		"api_url":       "api-url",
		"data_dir":      "data-dir",
		"local_backend": "local-backend",
		"timeout":       "timeout",
		"log_mode":      "log-mode",
	} {
		// Unchanged flags fall through to the environment and defaults.
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		a.registerCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.statusCommand(),
		a.usersCommand(),
		a.resetCommand(),
		a.chaptersCommand(),
		a.topicsCommand(),
		a.itemsCommand(),
		a.uploadCommand(),
		a.flashcardsCommand(),
		a.searchCommand(),
		a.quizCommand(),
		a.lookupCommand(),
		a.syncCommand(),
		a.seedCommand(),
	)
	return root, a
}

// Execute runs studyctl and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, a := newRootCommand()
	defer a.close()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.cfg = config.LoadClientConfig(a.v)

	log, err := logging.New(a.cfg.LogMode)
	if err != nil {
		return err
	}
	a.log = log

	store, err := localstore.Open(a.cfg)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	a.store = store
	a.client = client.New(a.cfg, store, log)

	if a.cfg.APIURL == "" {
		a.log.Debug("No API URL configured, using local store", "data_dir", a.cfg.DataDir)
	}
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("Failed to close local store", "error", err)
		}
	}
	if a.log != nil {
		a.log.Sync()
	}
}

// emit prints v as indented JSON when --json is set, or runs text otherwise.
func (a *app) emit(w io.Writer, v any, text func(io.Writer)) error {
	if a.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
