package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/adapter/input"
	"github.com/jmylchreest/toastd/internal/api"
	"github.com/jmylchreest/toastd/internal/model"
)

var showOpts struct {
	content     string
	icon        string
	color       string
	actionKey   string
	actionLabel string
}

var showCmd = &cobra.Command{
	Use:   "show TITLE",
	Short: "Show a toast and print its id",
	Long: `Show a toast on the running daemon and print its id.

Colors are success, failure, warning, info or a literal #rrggbb.

With "-" as the title, toasts are read from stdin: a JSON array, one JSON
object per line, or one title per line. JSON lines and plain text are shown
as each line arrives, so a followed log can be piped in.

Examples:
  toastctl show "Build finished" --color success --icon circle-check
  toastctl show "Disk almost full" --content "/home is at 95%" --color warning
  journalctl -f -o cat | toastctl show -`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var failCmd = &cobra.Command{
	Use:   "fail REASON",
	Short: "Show the standard failure toast",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := client.Fail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd, failCmd)

	showCmd.Flags().StringVar(&showOpts.content, "content", "", "Body text")
	showCmd.Flags().StringVar(&showOpts.icon, "icon", "", "Icon name, e.g. circle-info")
	showCmd.Flags().StringVar(&showOpts.color, "color", "", "Color hint")
	showCmd.Flags().StringVar(&showOpts.actionKey, "action-key", "", "Attach an action with this key")
	showCmd.Flags().StringVar(&showOpts.actionLabel, "action-label", "", "Label of the action (default: the key)")
}

func runShow(cmd *cobra.Command, args []string) error {
	if args[0] == "-" {
		return showFromStdin(cmd)
	}

	req := api.ShowRequest{
		Title:   args[0],
		Content: showOpts.content,
		Icon:    model.Icon(showOpts.icon),
		Color:   model.Color(showOpts.color),
	}
	if showOpts.actionKey != "" {
		req.Action = &api.ActionRequest{Key: showOpts.actionKey, Label: showOpts.actionLabel}
	}

	id, err := client.Show(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func showFromStdin(cmd *cobra.Command) error {
	adapter := input.NewStdinAdapter(cmd.InOrStdin())
	return adapter.Stream(cmd.Context(), func(n model.Notification) error {
		id, err := client.Show(cmd.Context(), api.ShowRequest{
			Title:   n.Title,
			Content: n.Content,
			Icon:    n.Icon,
			Color:   n.Color,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	})
}
