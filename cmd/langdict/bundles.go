package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/langdict/internal/bundle"
	"github.com/at-ishikawa/langdict/internal/dictionary"
)

func newBundlesCommand() *cobra.Command {
	bundlesCommand := &cobra.Command{
		Use:   "bundles",
		Short: "Reconcile resource bundles with the dictionaries",
	}
	bundlesCommand.AddCommand(
		newBundlesLoadCommand(),
		newBundlesImportCommand(),
	)
	return bundlesCommand
}

func newBundlesLoadCommand() *cobra.Command {
	var override bool
	cmd := &cobra.Command{
		Use:   "load [BASENAME...]",
		Short: "Load the configured bundles, or the given base names, for every language",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, func(ctx context.Context, svc *dictionary.Service) error {
				if len(args) == 0 {
					result, err := svc.LoadDefaultBundles(ctx, override)
					if err != nil {
						return err
					}
					return displayLoadResult(cmd.OutOrStdout(), result)
				}

				total := &dictionary.LoadResult{}
				for _, baseName := range args {
					result, err := svc.LoadBundle(ctx, baseName, override)
					if err != nil {
						return err
					}
					total.Persisted += result.Persisted
					total.Reconciled += result.Reconciled
					total.Missing = append(total.Missing, result.Missing...)
					total.Failures = append(total.Failures, result.Failures...)
				}
				return displayLoadResult(cmd.OutOrStdout(), total)
			})
		},
	}
	cmd.Flags().BoolVar(&override, "override", false, "replace edited values with the bundle values")
	return cmd
}

func newBundlesImportCommand() *cobra.Command {
	var override bool
	cmd := &cobra.Command{
		Use:   "import NAME LANG FILE",
		Short: "Reconcile one properties file with a dictionary",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, lang, file := args[0], args[1], args[2]
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("os.ReadFile(%s) > %w", file, err)
			}
			b, err := bundle.Parse(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			return runWithService(cmd, func(ctx context.Context, svc *dictionary.Service) error {
				persisted, err := svc.Reconcile(ctx, name, lang, b, dictionary.ModeOf(override))
				if err != nil {
					return err
				}
				_, err = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(),
					"Persisted %d entries into %s\n", persisted, name)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&override, "override", false, "replace edited values with the file values")
	return cmd
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Prewarm the cache and merge the configured bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, func(ctx context.Context, svc *dictionary.Service) error {
				result, err := svc.Start(ctx)
				if err != nil {
					return err
				}
				return displayLoadResult(cmd.OutOrStdout(), result)
			})
		},
	}
}

func displayLoadResult(w io.Writer, result *dictionary.LoadResult) error {
	if _, err := color.New(color.FgGreen).Fprintf(w, "Persisted %d entries from %d bundles\n",
		result.Persisted, result.Reconciled); err != nil {
		return err
	}

	if len(result.Missing) > 0 {
		if _, err := color.New(color.FgYellow).Fprintf(w, "Missing bundles (%d):\n", len(result.Missing)); err != nil {
			return err
		}
		for _, name := range result.Missing {
			if _, err := fmt.Fprintf(w, "  - %s\n", name); err != nil {
				return err
			}
		}
	}

	if len(result.Failures) > 0 {
		if _, err := color.New(color.FgRed).Fprintf(w, "Failed bundles (%d):\n", len(result.Failures)); err != nil {
			return err
		}
		for _, failure := range result.Failures {
			if _, err := fmt.Fprintf(w, "  - %v\n", failure); err != nil {
				return err
			}
		}
	}
	return nil
}
