package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/langdict/internal/bundle"
	"github.com/at-ishikawa/langdict/internal/dictionary"
)

type Format string

func (f *Format) Set(val string) error {
	for _, format := range allFormats {
		if val == string(format) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s", val)
}

func (f Format) String() string {
	return string(f)
}

func (f *Format) Type() string {
	return "Format"
}

const (
	FormatProperties Format = "properties"
	FormatJSON       Format = "json"
	FormatYAML       Format = "yaml"
)

var (
	_          pflag.Value = (*Format)(nil)
	allFormats             = []Format{FormatProperties, FormatJSON, FormatYAML}
)

func newExportCommand() *cobra.Command {
	var lang string
	format := FormatProperties
	cmd := &cobra.Command{
		Use:   "export NAME...",
		Short: "Export the merged values of dictionaries for one language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithService(cmd, func(ctx context.Context, svc *dictionary.Service) error {
				rb, err := svc.ResourceBundle(ctx, args, lang)
				if err != nil {
					return err
				}
				return writeProperties(cmd.OutOrStdout(), format, rb.Properties())
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&lang, "lang", "en", "language to export")
	flags.Var(&format, "format", fmt.Sprintf("output format. Possible values are %v", allFormats))
	return cmd
}

func writeProperties(w io.Writer, format Format, props map[string]string) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(props); err != nil {
			return fmt.Errorf("json.Encode > %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(props); err != nil {
			return fmt.Errorf("yaml.Encode > %w", err)
		}
		return encoder.Close()
	default:
		return bundle.WriteProperties(w, props)
	}
}
