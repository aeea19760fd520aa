package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/model"
)

func entry(id, title string) model.Entry {
	return model.Entry{Notification: model.Notification{ID: id, Title: title}}
}

func TestLookupByID(t *testing.T) {
	entries := []model.Entry{
		entry("01HZX4B0AAAA", "Saved"),
		entry("01HZX4B0BBBB", "Failed to Load"),
		entry("01J000000000", "Network"),
	}

	t.Run("exact", func(t *testing.T) {
		e, err := LookupByID(entries, "01HZX4B0BBBB")
		require.NoError(t, err)
		assert.Equal(t, "Failed to Load", e.Notification.Title)
	})

	t.Run("case insensitive", func(t *testing.T) {
		e, err := LookupByID(entries, "01hzx4b0aaaa")
		require.NoError(t, err)
		assert.Equal(t, "Saved", e.Notification.Title)
	})

	t.Run("unique prefix", func(t *testing.T) {
		e, err := LookupByID(entries, "01J0")
		require.NoError(t, err)
		assert.Equal(t, "Network", e.Notification.Title)
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		_, err := LookupByID(entries, "01HZX4")
		assert.ErrorIs(t, err, ErrAmbiguous)
	})

	t.Run("prefix too short", func(t *testing.T) {
		_, err := LookupByID(entries, "01J")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := LookupByID(entries, "ZZZZZZ")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := LookupByID(nil, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returns pointer into slice", func(t *testing.T) {
		e, err := LookupByID(entries, "01J000000000")
		require.NoError(t, err)
		assert.Same(t, &entries[2], e)
	})
}

func TestLookupByIndex(t *testing.T) {
	entries := []model.Entry{entry("1", "A"), entry("2", "B"), entry("3", "C")}

	tests := []struct {
		name  string
		index int
		want  string
	}{
		{"first", 1, "A"},
		{"last", 3, "C"},
		{"zero", 0, ""},
		{"negative", -1, ""},
		{"out of bounds", 4, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LookupByIndex(entries, tt.index)
			if tt.want == "" {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.want, result.Notification.Title)
		})
	}
}

func TestResolve(t *testing.T) {
	entries := []model.Entry{entry("01HZAAAA", "A"), entry("01HZBBBB", "B")}

	e, err := Resolve(entries, "2")
	require.NoError(t, err)
	assert.Equal(t, "B", e.Notification.Title)

	e, err = Resolve(entries, " 01HZAAAA ")
	require.NoError(t, err)
	assert.Equal(t, "A", e.Notification.Title)

	e, err = Resolve(entries, "01HZB")
	require.NoError(t, err)
	assert.Equal(t, "B", e.Notification.Title)

	_, err = Resolve(entries, "3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearch(t *testing.T) {
	entries := []model.Entry{
		{Notification: model.Notification{ID: "1", Title: "Failed to Load", Content: "There was an error: timeout"}},
		{Notification: model.Notification{ID: "2", Title: "Saved", Content: "Event updated"}},
		{Notification: model.Notification{ID: "3", Title: "Network restored"}},
	}

	assert.Len(t, Search(entries, ""), 3)
	assert.Len(t, Search(entries, "TIMEOUT"), 1)
	assert.Len(t, Search(entries, "e"), 3)
	assert.Empty(t, Search(entries, "nothing"))

	result := Search(entries, "network")
	require.Len(t, result, 1)
	assert.Equal(t, "3", result[0].Notification.ID)
}
