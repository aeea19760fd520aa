package core

import (
	"sort"
	"strings"

	"github.com/jmylchreest/toastd/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	// SortByLive keeps the manager's insertion order.
	SortByLive    SortField = "live"
	SortByCreated SortField = "created"
	SortByTitle   SortField = "title"
	SortByColor   SortField = "color"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField
	Order SortOrder
}

// DefaultSortOptions returns the renderer order: insertion order, newest last.
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByLive,
		Order: SortAsc,
	}
}

// Sort sorts entries in place. Ties keep their relative live order.
func Sort(entries []model.Entry, opts SortOptions) {
	if len(entries) == 0 {
		return
	}

	if opts.Field == SortByLive || opts.Field == "" {
		if opts.Order == SortDesc {
			for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
		return
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Notification, entries[j].Notification

		var cmp int
		switch opts.Field {
		case SortByTitle:
			cmp = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortByColor:
			cmp = strings.Compare(string(a.Color), string(b.Color))
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}

		if opts.Order == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "created", "time", "t":
		return SortByCreated
	case "title", "summary":
		return SortByTitle
	case "color", "colour", "c":
		return SortByColor
	default:
		return SortByLive
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending", "d":
		return SortDesc
	default:
		return SortAsc
	}
}
