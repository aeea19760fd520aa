package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/api"
	"github.com/jmylchreest/toastd/internal/core"
	"github.com/jmylchreest/toastd/internal/model"
)

// selection holds the flags that choose and order the toasts a command
// works on. list, clear and action share them so that an index printed by
// "toastctl list" names the same toast when passed to clear or action with
// the same flags.
type selection struct {
	phase       string
	color       string
	search      string
	filter      string
	sortBy      string
	limit       int
	newestFirst bool
}

func (s *selection) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.phase, "phase", "", "Only toasts in this phase (active, leaving)")
	cmd.Flags().StringVar(&s.color, "color", "", "Only toasts with this color")
	cmd.Flags().StringVarP(&s.search, "search", "s", "", "Search in title and content")
	cmd.Flags().StringVar(&s.filter, "filter", "", "Filter expression")
	cmd.Flags().StringVar(&s.sortBy, "sort", "live", "Sort by field (live, created, title, color)")
	cmd.Flags().IntVarP(&s.limit, "limit", "n", 0, "Maximum number of toasts (0=unlimited)")
	cmd.Flags().BoolVar(&s.newestFirst, "newest-first", false, "Reverse the order")
}

func (s *selection) listOptions() api.ListOptions {
	opts := api.ListOptions{
		Phase:  s.phase,
		Color:  s.color,
		Search: s.search,
		Filter: s.filter,
		Sort:   s.sortBy,
		Limit:  s.limit,
	}
	if s.newestFirst {
		opts.Order = "desc"
	}
	return opts
}

// entries fetches the selected toasts in display order.
func (s *selection) entries(cmd *cobra.Command) ([]model.Entry, error) {
	return client.List(cmd.Context(), s.listOptions())
}

// resolve turns an index, id or id prefix into a full id within the selection.
func (s *selection) resolve(cmd *cobra.Command, ref string) (string, error) {
	entries, err := s.entries(cmd)
	if err != nil {
		return "", err
	}
	entry, err := core.Resolve(entries, ref)
	if err != nil {
		return "", err
	}
	return entry.Notification.ID, nil
}
