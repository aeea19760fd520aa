package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEmbeddedTheme(t *testing.T) {
	for _, name := range BundledThemes {
		t.Run(name, func(t *testing.T) {
			data, found := GetEmbeddedTheme(name)
			require.True(t, found)
			assert.Contains(t, string(data), "[colors]")
		})
	}

	_, found := GetEmbeddedTheme("nonexistent")
	assert.False(t, found)
}

func TestListEmbeddedThemes(t *testing.T) {
	assert.ElementsMatch(t, BundledThemes, ListEmbeddedThemes())
}

func TestIsEmbeddedTheme(t *testing.T) {
	assert.True(t, IsEmbeddedTheme("catppuccin"))
	assert.False(t, IsEmbeddedTheme("solarized"))
}

func TestBundledThemesResolve(t *testing.T) {
	for _, name := range ListEmbeddedThemes() {
		t.Run(name, func(t *testing.T) {
			th, err := resolve(name, "", nil)
			require.NoError(t, err)
			assert.Equal(t, name, th.Name)
			assert.True(t, th.IsBundled)
			assert.NotEmpty(t, th.Colors.Failure)
		})
	}
}
