package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
)

func sampleEntries() []model.Entry {
	return []model.Entry{
		{Notification: model.Notification{ID: "1", Title: "Failed to Load", Content: "There was an error: 503", Icon: model.IconSkullCrossbones, Color: model.ColorFailure}, Phase: model.PhaseLeaving},
		{Notification: model.Notification{ID: "2", Title: "Saved", Content: "Event updated", Color: model.ColorSuccess}},
		{Notification: model.Notification{ID: "3", Title: "Offline", Icon: model.IconNetworkWired, Color: model.ColorFailure, Action: &model.Action{Key: "retry", Label: "Retry"}}},
	}
}

func TestFilter(t *testing.T) {
	leaving := model.PhaseLeaving
	active := model.PhaseActive

	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{"no options", FilterOptions{}, []string{"1", "2", "3"}},
		{"phase leaving", FilterOptions{Phase: &leaving}, []string{"1"}},
		{"phase active", FilterOptions{Phase: &active}, []string{"2", "3"}},
		{"color", FilterOptions{Color: model.ColorFailure}, []string{"1", "3"}},
		{"search", FilterOptions{Search: "saved"}, []string{"2"}},
		{"limit", FilterOptions{Limit: 2}, []string{"1", "2"}},
		{"combined", FilterOptions{Color: model.ColorFailure, Phase: &active}, []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Filter(sampleEntries(), tt.opts)
			got := make([]string, len(result))
			for i, e := range result {
				got[i] = e.Notification.ID
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		expr    string
		want    []string
		wantErr bool
	}{
		{"", []string{"1", "2", "3"}, false},
		{"color=failure", []string{"1", "3"}, false},
		{"color!=failure", []string{"2"}, false},
		{"phase=leaving", []string{"1"}, false},
		{"title~load", []string{"1"}, false},
		{"content~=^Event", []string{"2"}, false},
		{"action=retry", []string{"3"}, false},
		{"color=failure,icon=network-wired", []string{"3"}, false},
		{"urgency=critical", nil, true},
		{"phase=gone", nil, true},
		{"content~=(", nil, true},
		{"nooperator", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := ParseFilter(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			result := FilterWithExpr(sampleEntries(), expr)
			got := make([]string, len(result))
			for i, e := range result {
				got[i] = e.Notification.ID
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterWithExpr_Nil(t *testing.T) {
	assert.Len(t, FilterWithExpr(sampleEntries(), nil), 3)
}
