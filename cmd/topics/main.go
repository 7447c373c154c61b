package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tekpartner/topic-importer/config"
	"github.com/tekpartner/topic-importer/internal/db"
	"github.com/tekpartner/topic-importer/internal/logging"
)

// storeOpener is db.Open outside of tests.
type storeOpener func(ctx context.Context, cfg *config.Config) (db.TopicStore, error)

// app carries state shared by the subcommands of one invocation.
type app struct {
	open    storeOpener
	cfg     *config.Config
	store   db.TopicStore
	timeout time.Duration
	echo    bool
}

func newRootCmd(open storeOpener) *cobra.Command {
	a := &app{open: open}

	root := &cobra.Command{
		Use:   "topics",
		Short: "Import a text manual into the topic store and manage stored topics",
		Long: `topics splits a plain text manual into topics and stores each one.

A line with five words or fewer starts a new topic; longer lines are
appended to the current topic's description. Configuration is read from
the environment (see config/envs/.env.<APP_ENV>).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return nil
			}
			return a.store.Close()
		},
	}
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 10*time.Minute, "Timeout for the whole command")

	importCmd := &cobra.Command{
		Use:   "import [manual-path]",
		Short: "Import topics from a text manual (defaults to MANUAL_PATH)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runImport,
	}
	importCmd.Flags().BoolVar(&a.echo, "echo", false, "Print every line as it is read")

	root.AddCommand(
		importCmd,
		&cobra.Command{
			Use:   "list",
			Short: "List all topics by creation time",
			Args:  cobra.NoArgs,
			RunE:  a.runList,
		},
		&cobra.Command{
			Use:     "new <topic> [description...]",
			Aliases: []string{"add"},
			Short:   "Add a topic with a description",
			Args:    cobra.MinimumNArgs(1),
			RunE:    a.runNew,
		},
		&cobra.Command{
			Use:   "done <topic-id>",
			Short: "Mark a topic as done",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runDone,
		},
		&cobra.Command{
			Use:   "delete <topic-id>",
			Short: "Delete a topic",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runDelete,
		},
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logging.InitLogger(level)
	a.cfg = cfg

	store, err := a.open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	a.store = store
	return nil
}

func (a *app) withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func (a *app) runNew(cmd *cobra.Command, args []string) error {
	ctx, cancel := a.withTimeout(cmd)
	defer cancel()

	id, err := a.store.Put(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "topic %s created\n", id)
	return nil
}

func (a *app) runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := a.withTimeout(cmd)
	defer cancel()

	lines, err := db.FormatTopics(a.store.List(ctx))
	for _, line := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "found %d topics\n", len(lines))
	return nil
}

func (a *app) runDone(cmd *cobra.Command, args []string) error {
	ctx, cancel := a.withTimeout(cmd)
	defer cancel()

	if err := a.store.MarkDone(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "topic %s marked done\n", args[0])
	return nil
}

func (a *app) runDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := a.withTimeout(cmd)
	defer cancel()

	if err := a.store.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "topic %s deleted\n", args[0])
	return nil
}

func main() {
	if err := newRootCmd(db.Open).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
