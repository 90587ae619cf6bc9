package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dwellingcore/internal/config"
	"dwellingcore/internal/core"
	"dwellingcore/internal/infra/persistence/file"
	"dwellingcore/internal/schema"
)

func (c *cli) watchCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the completion report whenever the session file changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.v)
			if err != nil {
				return err
			}
			if core.StorageDriver(strings.ToLower(cfg.Storage.Driver)) != core.StorageFile {
				return fmt.Errorf("watch requires the file storage driver, got %s", cfg.Storage.Driver)
			}
			registry := schema.Default()
			if cfg.Schema.Path != "" {
				if registry, err = schema.LoadFile(cfg.Schema.Path); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := file.NewStore(cfg.Storage.FilePath)
			doc, err := store.Load(ctx)
			if err != nil {
				return err
			}
			if err := render(c.stdout, format, core.BuildReport(doc, registry)); err != nil {
				return err
			}
			w, err := store.NewWatcher()
			if err != nil {
				return err
			}
			defer w.Stop()
			if err := w.Start(); err != nil {
				return err
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case reload, ok := <-w.Changes:
					if !ok {
						return nil
					}
					switch {
					case reload.Err != nil:
						fmt.Fprintf(c.stderr, "reload %s: %v\n", store.Path(), reload.Err)
						continue
					case reload.Removed:
						fmt.Fprintf(c.stdout, "%s removed\n", store.Path())
					}
					if err := render(c.stdout, format, core.BuildReport(reload.Document, registry)); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text|json|yaml")
	return cmd
}
