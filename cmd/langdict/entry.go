package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/langdict/internal/dictionary"
)

func newEntryCommand() *cobra.Command {
	entryCommand := &cobra.Command{
		Use:   "entry",
		Short: "Create, update or delete dictionary entries",
	}
	entryCommand.AddCommand(
		newEntryCreateCommand(),
		newEntryUpdateCommand(),
		newEntryDeleteCommand(),
	)
	return entryCommand
}

func newEntryCreateCommand() *cobra.Command {
	var descValues []string
	cmd := &cobra.Command{
		Use:   "create NAME KEY",
		Short: "Create a new entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			descs, err := parseDescs(descValues)
			if err != nil {
				return err
			}
			name := args[0]
			return runWithService(cmd, func(ctx context.Context, svc *dictionary.Service) error {
				entry, err := svc.CreateEntry(ctx, name, &dictionary.Entry{Key: args[1], Descs: descs})
				if err != nil {
					return err
				}
				return displayEntry(cmd.OutOrStdout(), "Created", name, entry)
			})
		},
	}
	cmd.Flags().StringArrayVar(&descValues, "desc", nil, "localized value as lang=value, repeatable")
	return cmd
}

func newEntryUpdateCommand() *cobra.Command {
	var descValues []string
	cmd := &cobra.Command{
		Use:   "update NAME KEY",
		Short: "Update the localized values of an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			descs, err := parseDescs(descValues)
			if err != nil {
				return err
			}
			name := args[0]
			return runWithService(cmd, func(ctx context.Context, svc *dictionary.Service) error {
				entry, err := svc.UpdateEntry(ctx, name, &dictionary.Entry{Key: args[1], Descs: descs})
				if err != nil {
					return err
				}
				return displayEntry(cmd.OutOrStdout(), "Updated", name, entry)
			})
		},
	}
	cmd.Flags().StringArrayVar(&descValues, "desc", nil, "localized value as lang=value, repeatable")
	return cmd
}

func newEntryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME KEY",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, key := args[0], args[1]
			return runWithService(cmd, func(ctx context.Context, svc *dictionary.Service) error {
				removed, err := svc.DeleteEntry(ctx, name, key)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if !removed {
					_, err = color.New(color.FgYellow).Fprintf(w, "Entry %s does not exist in %s\n", key, name)
					return err
				}
				_, err = color.New(color.FgGreen).Fprintf(w, "Deleted entry %s from %s\n", key, name)
				return err
			})
		},
	}
}

func displayEntry(w io.Writer, action, name string, entry *dictionary.Entry) error {
	if _, err := color.New(color.FgGreen).Fprintf(w, "%s entry %s in %s\n", action, entry.Key, name); err != nil {
		return err
	}
	for _, desc := range entry.Descs {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", desc.Lang, desc.Value); err != nil {
			return err
		}
	}
	return nil
}
