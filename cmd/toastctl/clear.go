package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/core"
)

var clearOpts struct {
	all bool
	sel selection
}

var actionOpts struct {
	sel selection
}

var clearCmd = &cobra.Command{
	Use:   "clear [ID|INDEX|PREFIX]...",
	Short: "Clear toasts",
	Long: `Clear toasts by id, unique id prefix or 1-based index from "toastctl list".

References are resolved within the toasts chosen by the selection flags,
which match those of "toastctl list". Pass the same flags to clear by the
index list printed, e.g.
  toastctl list --newest-first
  toastctl clear --newest-first 1

Exits non-zero if any toast could not be cleared.`,
	RunE: runClear,
}

var actionCmd = &cobra.Command{
	Use:   "action ID|INDEX|PREFIX",
	Short: "Run the action of a toast and dismiss it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := actionOpts.sel.resolve(cmd, args[0])
		if err != nil {
			return err
		}
		return client.InvokeAction(cmd.Context(), id)
	},
}

func init() {
	rootCmd.AddCommand(clearCmd, actionCmd)

	clearCmd.Flags().BoolVarP(&clearOpts.all, "all", "a", false, "Clear every live toast")
	clearOpts.sel.addFlags(clearCmd)
	actionOpts.sel.addFlags(actionCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	if clearOpts.all {
		if len(args) > 0 {
			return errors.New("--all does not take arguments")
		}
		n, err := client.ClearAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %d\n", n)
		return nil
	}
	if len(args) == 0 {
		return errors.New("nothing to clear: pass ids or --all")
	}

	entries, err := clearOpts.sel.entries(cmd)
	if err != nil {
		return err
	}

	failed := 0
	for _, ref := range args {
		entry, err := core.Resolve(entries, ref)
		if err == nil {
			err = client.Clear(cmd.Context(), entry.Notification.ID)
		}
		if err != nil {
			logger.Warn("failed to clear", "ref", ref, "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", ref, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to clear %d of %d", failed, len(args))
	}
	return nil
}
