package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/adapter/output"
)

var listOpts struct {
	format   string
	template string
	sel      selection
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List live toasts",
	Long: `List the live toasts in live order, oldest first.

Filter expressions combine conditions with commas, e.g.
  toastctl list --filter "color=failure,title~disk"

The selection flags are shared with clear and action, so indices printed
here can be passed to them along with the same flags.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listOpts.format, "output", "o", "plain",
		"Output format (plain, line, json, yaml, ids)")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Go template for the line format")
	listOpts.sel.addFlags(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(listOpts.format)
	if err != nil {
		return err
	}

	entries, err := listOpts.sel.entries(cmd)
	if err != nil {
		return err
	}

	fo := output.DefaultFormatterOptions()
	fo.Template = listOpts.template
	return output.NewFormatter(format, fo).Format(cmd.OutOrStdout(), entries)
}
