package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jmylchreest/toastd/internal/model"
)

// FilterOptions specifies criteria for filtering entries.
type FilterOptions struct {
	Phase  *model.Phase // nil = any
	Color  model.Color  // exact match, "" = any
	Search string       // substring of title or content
	Limit  int          // maximum results (0 = unlimited)
}

// Filter returns the entries matching opts, preserving their order.
func Filter(entries []model.Entry, opts FilterOptions) []model.Entry {
	result := make([]model.Entry, 0, len(entries))

	for _, e := range entries {
		if opts.Phase != nil && e.Phase != *opts.Phase {
			continue
		}
		if opts.Color != "" && e.Notification.Color != opts.Color {
			continue
		}
		result = append(result, e)
	}

	result = Search(result, opts.Search)

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result
}

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual    FilterOp = "="  // Exact match
	FilterOpNotEqual FilterOp = "!=" // Not equal
	FilterOpContains FilterOp = "~"  // Contains substring
	FilterOpRegex    FilterOp = "~=" // Regex match
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // title, content, color, icon, phase, action
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	regex *regexp.Regexp
}

// FilterExpr is a set of conditions that must all match.
type FilterExpr struct {
	Conditions []FilterCondition
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2". Conditions are ANDed together.
//
// Examples:
//   - "color=failure" - failure toasts
//   - "phase=leaving" - toasts currently fading out
//   - "title~load,icon!=skull-crossbones"
//   - "content~=(?i)timeout"
func ParseFilter(expr string) (*FilterExpr, error) {
	filter := &FilterExpr{}
	if expr == "" {
		return filter, nil
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

func parseCondition(s string) (FilterCondition, error) {
	// Longest operators first so "!=" is not read as "=".
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}
			if err := cond.init(); err != nil {
				return FilterCondition{}, err
			}
			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

func (c *FilterCondition) init() error {
	switch c.Field {
	case "title", "summary":
		c.Field = "title"
	case "content", "body":
		c.Field = "content"
	case "color", "colour":
		c.Field = "color"
	case "icon":
	case "phase", "state":
		c.Field = "phase"
		if _, err := model.ParsePhase(c.Value); err != nil {
			return err
		}
	case "action":
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

// Match tests if an entry matches every condition.
func (f *FilterExpr) Match(e model.Entry) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(e) {
			return false
		}
	}
	return true
}

// Match tests if an entry matches this single condition.
func (c *FilterCondition) Match(e model.Entry) bool {
	n := e.Notification
	switch c.Field {
	case "title":
		return c.matchString(n.Title)
	case "content":
		return c.matchString(n.Content)
	case "color":
		return c.matchString(string(n.Color))
	case "icon":
		return c.matchString(string(n.Icon))
	case "phase":
		return c.matchString(e.Phase.String())
	case "action":
		label := ""
		if n.Action != nil {
			label = n.Action.Label
		}
		return c.matchString(label)
	default:
		return false
	}
}

func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return strings.EqualFold(fieldValue, c.Value)
	case FilterOpNotEqual:
		return !strings.EqualFold(fieldValue, c.Value)
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

// FilterWithExpr filters entries using a filter expression.
func FilterWithExpr(entries []model.Entry, expr *FilterExpr) []model.Entry {
	if expr == nil || len(expr.Conditions) == 0 {
		return entries
	}

	result := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if expr.Match(e) {
			result = append(result, e)
		}
	}
	return result
}
