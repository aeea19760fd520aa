// Package core provides filtering, sorting, and lookup logic over live entries.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/toastd/internal/model"
)

// MinPrefixLen is the shortest id prefix accepted by LookupByID.
const MinPrefixLen = 4

// Lookup errors.
var (
	ErrNotFound  = errors.New("notification not found")
	ErrAmbiguous = errors.New("id prefix matches more than one notification")
)

// LookupByID finds an entry by its full id, or by a unique id prefix of at
// least MinPrefixLen characters. Matching is case-insensitive.
func LookupByID(entries []model.Entry, id string) (*model.Entry, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return nil, ErrNotFound
	}

	for i := range entries {
		if strings.EqualFold(entries[i].Notification.ID, id) {
			return &entries[i], nil
		}
	}

	if len(id) < MinPrefixLen {
		return nil, ErrNotFound
	}

	var match *model.Entry
	for i := range entries {
		if strings.HasPrefix(strings.ToUpper(entries[i].Notification.ID), id) {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
			}
			match = &entries[i]
		}
	}
	if match == nil {
		return nil, ErrNotFound
	}
	return match, nil
}

// LookupByIndex finds an entry by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(entries []model.Entry, index int) *model.Entry {
	idx := index - 1
	if idx < 0 || idx >= len(entries) {
		return nil
	}
	return &entries[idx]
}

// Resolve finds an entry from a user-supplied reference: a 1-based index
// if ref is a small integer, otherwise an id or id prefix.
func Resolve(entries []model.Entry, ref string) (*model.Entry, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n > 0 && n <= len(entries) {
		return LookupByIndex(entries, n), nil
	}
	return LookupByID(entries, ref)
}

// Search finds entries matching a search term in title or content.
// Case-insensitive substring match.
func Search(entries []model.Entry, term string) []model.Entry {
	if term == "" {
		return entries
	}

	term = strings.ToLower(term)
	var result []model.Entry

	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Notification.Title), term) ||
			strings.Contains(strings.ToLower(e.Notification.Content), term) {
			result = append(result, e)
		}
	}

	return result
}
