package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tekpartner/topic-importer/internal/importer"
)

func (a *app) runImport(cmd *cobra.Command, args []string) error {
	path := a.cfg.ManualPath
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no manual given: pass a path or set MANUAL_PATH")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open manual: %w", err)
	}
	defer f.Close()

	opts := []importer.Option{
		importer.WithHeaderPolicy(importer.MaxWordsPolicy(a.cfg.HeaderMaxWords)),
	}
	if a.echo {
		opts = append(opts, importer.WithEcho(cmd.OutOrStdout()))
	}

	ctx, cancel := a.withTimeout(cmd)
	defer cancel()

	slog.Info("[Importer] Importing manual",
		slog.String("path", path),
		slog.String("store", a.cfg.Store))

	res, err := importer.NewIngestor(a.store, opts...).Ingest(ctx, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d topics from %d lines\n", res.Topics, res.Lines)
	return nil
}
