package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/langdict/internal/bootstrap"
	"github.com/at-ishikawa/langdict/internal/datasync"
	"github.com/at-ishikawa/langdict/internal/dictionary"
)

func newDatasyncCommand() *cobra.Command {
	datasyncCommand := &cobra.Command{
		Use:   "datasync",
		Short: "Copy dictionaries between YAML files and the configured store",
	}
	datasyncCommand.AddCommand(
		newDatasyncCommandFor("import", "Import YAML dictionaries from DIR into the configured store", true),
		newDatasyncCommandFor("export", "Export the configured store as YAML dictionaries into DIR", false),
	)
	return datasyncCommand
}

func newDatasyncCommandFor(use, short string, fromYAML bool) *cobra.Command {
	var opts datasync.ImportOptions
	cmd := &cobra.Command{
		Use:   use + " DIR",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			yamlStore, err := dictionary.NewYAMLStore(args[0])
			if err != nil {
				return fmt.Errorf("dictionary.NewYAMLStore > %w", err)
			}

			app := bootstrap.New()
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				store, err := openStore(ctx, app, cfg)
				if err != nil {
					return err
				}

				source, target := dictionary.Store(store), dictionary.Store(yamlStore)
				if fromYAML {
					source, target = target, source
				}
				w := cmd.OutOrStdout()
				result, err := datasync.NewImporter(source, target, w).Import(ctx, opts)
				if err != nil {
					return err
				}
				return displayImportResult(w, result, opts)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report the changes without writing them")
	cmd.Flags().BoolVar(&opts.UpdateExisting, "update-existing", false, "overwrite entries that differ")
	return cmd
}

func displayImportResult(w io.Writer, result *datasync.ImportResult, opts datasync.ImportOptions) error {
	prefix := ""
	if opts.DryRun {
		prefix = "[dry run] "
	}
	_, err := fmt.Fprintf(w, "%sdictionaries: %d new; entries: %d new, %d updated, %d skipped, %d invalid\n",
		prefix, result.DictionariesNew, result.EntriesNew, result.EntriesUpdated, result.EntriesSkipped, result.EntriesInvalid)
	return err
}
