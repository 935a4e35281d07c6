package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/langdict/internal/dictionary"
)

func newNamesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "List the dictionary names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, func(ctx context.Context, svc *dictionary.Service) error {
				names, err := svc.Names(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newShowCommand() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show the entries of a dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return runWithService(cmd, func(ctx context.Context, svc *dictionary.Service) error {
				snapshot, err := svc.CachedDictionary(ctx, name)
				if err != nil {
					return err
				}
				if snapshot == nil {
					return fmt.Errorf("dictionary %q: %w", name, dictionary.ErrNotFound)
				}
				return displaySnapshot(cmd.OutOrStdout(), snapshot, lang)
			})
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "show only the values of this language")
	return cmd
}

func displaySnapshot(w io.Writer, snapshot *dictionary.Snapshot, lang string) error {
	bold := color.New(color.Bold)
	for _, key := range snapshot.Keys() {
		if lang != "" {
			value, ok := snapshot.Value(lang, key)
			if !ok {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s=%s\n", key, value); err != nil {
				return err
			}
			continue
		}

		entry, _ := snapshot.Entry(key)
		if _, err := bold.Fprintln(w, key); err != nil {
			return err
		}
		for _, desc := range entry.Descs {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", desc.Lang, desc.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func newValueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "value NAME LANG KEY",
		Short: "Print one localized value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, lang, key := args[0], args[1], args[2]
			return runWithService(cmd, func(ctx context.Context, svc *dictionary.Service) error {
				value, ok := svc.Value(ctx, name, lang, key)
				if !ok {
					return missingValueError(ctx, svc, name, lang, key)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), value)
				return err
			})
		},
	}
}

// missingValueError tells apart an unknown dictionary, an unknown key and a
// key without a value for lang.
func missingValueError(ctx context.Context, svc *dictionary.Service, name, lang, key string) error {
	snapshot, err := svc.CachedDictionary(ctx, name)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("dictionary %s: %w", name, dictionary.ErrNotFound)
	}
	if !snapshot.Has(key) {
		return fmt.Errorf("entry %s in %s: %w", key, name, dictionary.ErrNotFound)
	}
	return fmt.Errorf("no %s value for %q in dictionary %q", lang, key, name)
}
