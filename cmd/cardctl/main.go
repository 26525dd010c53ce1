package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/app/card/planner"
	"github.com/light-bringer/cardsync-service/internal/app/card/progress"
	"github.com/light-bringer/cardsync-service/internal/app/card/reconciler"
	"github.com/light-bringer/cardsync-service/internal/app/card/registry"
	"github.com/light-bringer/cardsync-service/internal/app/card/remote"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/commit_changes"
	"github.com/light-bringer/cardsync-service/internal/app/card/usecases/register_change"
	"github.com/light-bringer/cardsync-service/internal/pkg/clock"
	"github.com/light-bringer/cardsync-service/internal/pkg/logger"
)

// errBatchFailed makes the process exit non-zero after a run with errors.
var errBatchFailed = errors.New("commit finished with errors")

type rootOptions struct {
	storeURL    string
	timeout     time.Duration
	opDelay     time.Duration
	entityDelay time.Duration
	logMode     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "cardctl",
		Short:         "Commit card edits to a cardsync store",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.storeURL, "store-url", os.Getenv("CARDSYNC_STORE_REMOTE_URL"), "Base URL of the store API")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Timeout of each store call")
	flags.DurationVar(&opts.opDelay, "op-delay", commit_changes.DefaultBackpressure().OpDelay, "Pause after each field write")
	flags.DurationVar(&opts.entityDelay, "entity-delay", commit_changes.DefaultBackpressure().EntityDelay, "Pause after each card")
	flags.StringVar(&opts.logMode, "log-mode", "", "Enable logging to stderr (dev or prod)")

	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newCommitCmd(opts))
	rootCmd.AddCommand(newCardsCmd(opts))

	return rootCmd
}

func (o *rootOptions) logger() (*logger.Logger, error) {
	if o.logMode == "" {
		return logger.NewNop(), nil
	}
	return logger.New(o.logMode)
}

func (o *rootOptions) store() (*remote.Client, error) {
	if o.storeURL == "" {
		return nil, fmt.Errorf("--store-url is required")
	}
	return remote.NewClient(o.storeURL, o.timeout), nil
}

func readBatchFile(path string) (*Batch, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return loadBatch(r)
}

func newPlanCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the writes a batch file would issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := readBatchFile(file)
			if err != nil {
				return err
			}

			reg := registry.New()
			if err := registerBatch(cmd.Context(), register_change.NewInteractor(reg), batch); err != nil {
				return err
			}

			printPlan(cmd.OutOrStdout(), planner.Flatten(reg.Snapshot()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Batch file (- for stdin)")
	return cmd
}

func printPlan(w io.Writer, plan planner.Plan) {
	if plan.Total == 0 {
		fmt.Fprintln(w, "Nothing to commit")
		return
	}
	fmt.Fprintf(w, "%s\n", plan.Summary)
	for _, g := range plan.Groups {
		fmt.Fprintf(w, "\n%s (%s)\n", g.Label, g.EntityKey)
		for _, op := range g.Operations {
			fmt.Fprintf(w, "  %s\n", op.Preview())
		}
	}
}

func newCommitCmd(opts *rootOptions) *cobra.Command {
	var (
		file       string
		showErrors int
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Register a batch file and commit it field by field",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := opts.logger()
			if err != nil {
				return err
			}
			defer log.Sync()

			store, err := opts.store()
			if err != nil {
				return err
			}

			batch, err := readBatchFile(file)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			clk := clock.NewRealClock()
			reg := registry.New()
			if err := registerBatch(ctx, register_change.NewInteractor(reg), batch); err != nil {
				return err
			}

			tracker := progress.NewTracker(clk)
			bar := newProgressBar(cmd.ErrOrStderr())
			tracker.AddListener(bar.update)

			uc := commit_changes.NewInteractor(
				reg,
				store,
				tracker,
				reconciler.New(store, clk, log),
				clk,
				commit_changes.Backpressure{OpDelay: opts.opDelay, EntityDelay: opts.entityDelay, CallTimeout: opts.timeout},
				log,
			)

			state, err := uc.Execute(ctx, &commit_changes.Request{})
			if err != nil {
				return err
			}
			bar.finish()

			return report(cmd.OutOrStdout(), state, showErrors)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Batch file (- for stdin)")
	cmd.Flags().IntVar(&showErrors, "show-errors", domain.DefaultDisplayErrors, "How many errors to print")
	return cmd
}

// report prints the outcome of a run and returns errBatchFailed when any
// write failed.
func report(w io.Writer, state domain.ProgressState, showErrors int) error {
	if state.Total == 0 {
		fmt.Fprintln(w, "Nothing to commit")
		return nil
	}

	fmt.Fprintf(w, "%s: %d/%d operations, status %s\n", state.Summary, state.Current, state.Total, state.Status)

	shown, hidden := state.DisplayErrors(showErrors)
	for _, e := range shown {
		fmt.Fprintf(w, "  %s\n", e)
	}
	if hidden > 0 {
		fmt.Fprintf(w, "  ... and %d more\n", hidden)
	}
	if state.ReconcileError != "" {
		fmt.Fprintf(w, "warning: could not reload cards: %s\n", state.ReconcileError)
	}

	if state.Status == domain.StatusError {
		return errBatchFailed
	}
	return nil
}

// progressBar renders tracker events.
type progressBar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{w: w}
}

func (p *progressBar) update(e progress.Event) {
	switch e.Kind {
	case progress.EventStarted:
		if e.State.Total == 0 {
			return
		}
		p.bar = progressbar.NewOptions(
			e.State.Total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionFullWidth(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription(e.State.Summary),
		)
	case progress.EventOperation:
		if p.bar != nil {
			p.bar.Describe(e.State.CurrentEntityLabel + " - " + e.State.CurrentFieldLabel)
		}
	case progress.EventAdvanced:
		if p.bar != nil {
			_ = p.bar.Set(e.State.Current)
		}
	}
}

func (p *progressBar) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(p.w)
	}
}

func newCardsCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Print every card held by the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			res, err := store.LoadAll(ctx)
			if err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("store refused read: %s", res.Error)
			}
			return printCards(cmd.OutOrStdout(), res.Data, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format (yaml or json)")
	return cmd
}

func printCards(w io.Writer, cards *domain.CardSet, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cards)
	case "yaml":
		// go through JSON so keys keep their API spelling
		raw, err := json.Marshal(cards)
		if err != nil {
			return err
		}
		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
