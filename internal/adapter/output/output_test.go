package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toastd/internal/model"
)

var testNow = time.Date(2026, 4, 2, 20, 0, 0, 0, time.UTC)

func testEntries() []model.Entry {
	return []model.Entry{
		{
			Notification: model.Notification{
				ID:        "01HZAAAA",
				Title:     "Failed to Load",
				Content:   "There was an error: 503",
				Icon:      model.IconSkullCrossbones,
				Color:     model.ColorFailure,
				CreatedAt: testNow.Add(-3 * time.Second),
			},
			Phase: model.PhaseLeaving,
		},
		{
			Notification: model.Notification{
				ID:        "01HZBBBB",
				Title:     "Offline",
				Action:    &model.Action{Key: "retry", Label: "Retry"},
				CreatedAt: testNow,
			},
			Phase: model.PhaseActive,
		},
	}
}

func testOptions() FormatterOptions {
	opts := DefaultFormatterOptions()
	opts.Now = func() time.Time { return testNow }
	return opts
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(testOptions()).Format(&buf, testEntries()))

	want := "[1] ~ ☠ Failed to Load <failure> (3 seconds ago)\n" +
		"    There was an error: 503\n" +
		"[2] Offline (now)\n" +
		"    [Retry]\n"
	assert.Equal(t, want, buf.String())
}

func TestPlainFormatter_Minimal(t *testing.T) {
	var buf bytes.Buffer
	f := NewPlainFormatter(FormatterOptions{})
	require.NoError(t, f.Format(&buf, testEntries()[1:]))
	assert.Equal(t, "Offline\n    [Retry]\n", buf.String())
}

func TestPlainFormatter_ZeroOptionsKeepsContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(FormatterOptions{}).Format(&buf, testEntries()[:1]))
	assert.Equal(t, "☠ Failed to Load <failure>\n    There was an error: 503\n", buf.String())
}

func TestLineFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewLineFormatter(testOptions()).Format(&buf, testEntries()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1 | leaving | Failed to Load - There was an error: 503 | 3 seconds ago", lines[0])
	assert.Equal(t, "2 | active | Offline | now", lines[1])
}

func TestLineFormatter_Template(t *testing.T) {
	opts := testOptions()
	opts.Template = "{{.Index}}:{{upper .Phase}}:{{truncate .Notification.Title 6}}"

	var buf bytes.Buffer
	require.NoError(t, NewLineFormatter(opts).Format(&buf, testEntries()))
	assert.Equal(t, "1:LEAVING:Fai...\n2:ACTIVE:Off...\n", buf.String())
}

func TestLineFormatter_InvalidTemplateFallsBack(t *testing.T) {
	opts := testOptions()
	opts.Template = "{{.Broken"

	var buf bytes.Buffer
	require.NoError(t, NewLineFormatter(opts).Format(&buf, testEntries()[1:]))
	assert.Equal(t, "1 | active | Offline | now\n", buf.String())
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(testOptions()).Format(&buf, testEntries()))

	var decoded []model.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "01HZAAAA", decoded[0].Notification.ID)
	assert.Equal(t, model.PhaseLeaving, decoded[0].Phase)
	assert.Equal(t, model.ColorFailure, decoded[0].Notification.Color)
	require.NotNil(t, decoded[1].Notification.Action)
	assert.Equal(t, "retry", decoded[1].Notification.Action.Key)

	assert.Contains(t, buf.String(), `"phase": "leaving"`)
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(testOptions()).Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter().Format(&buf, testEntries()))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "leaving", decoded[0]["phase"])

	n, ok := decoded[0]["notification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Failed to Load", n["title"])
	assert.Equal(t, "skull-crossbones", n["icon"])
}

func TestIDsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, testEntries()))
	assert.Equal(t, "01HZAAAA\n01HZBBBB\n", buf.String())
}

func TestNewFormatter(t *testing.T) {
	opts := testOptions()
	assert.IsType(t, &PlainFormatter{}, NewFormatter(FormatPlain, opts))
	assert.IsType(t, &LineFormatter{}, NewFormatter(FormatLine, opts))
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON, opts))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML, opts))
	assert.IsType(t, &IDsFormatter{}, NewFormatter(FormatIDs, opts))
	assert.IsType(t, &PlainFormatter{}, NewFormatter("unknown", opts))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
