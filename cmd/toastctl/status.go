package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusOpts struct {
	json bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusOpts.json, "json", false, "Output JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := client.Status(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statusOpts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Fprintf(out, "live:    %d (%d active, %d leaving)\n", st.Live, st.Active, st.Leaving)
	fmt.Fprintf(out, "timers:  %d\n", st.Pending)
	fmt.Fprintf(out, "dwell:   %s\n", st.Dwell())
	fmt.Fprintf(out, "fade:    %s\n", st.Fade())
	return nil
}
