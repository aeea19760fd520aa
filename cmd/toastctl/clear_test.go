package main

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastd/internal/api"
	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/schedule"
	"github.com/jmylchreest/toastd/internal/toast"
)

func newTestDaemon(t *testing.T) (*toast.Manager, string) {
	t.Helper()
	mgr := toast.New(schedule.NewManual(time.Now()), toast.DefaultTimings(), nil)
	t.Cleanup(func() { _ = mgr.Close() })

	srv := httptest.NewServer(api.NewServer(mgr, nil, nil).Router())
	t.Cleanup(srv.Close)
	return mgr, srv.URL
}

func execute(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()
	clearOpts.all = false
	clearOpts.sel = selection{sortBy: "live"}
	actionOpts.sel = selection{sortBy: "live"}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--addr", addr}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func titles(mgr *toast.Manager) []string {
	var out []string
	for _, e := range mgr.Entries() {
		out = append(out, e.Notification.Title)
	}
	return out
}

func TestClear_IndexFollowsSelection(t *testing.T) {
	mgr, addr := newTestDaemon(t)
	mgr.Show("oldest")
	mgr.Show("middle", toast.WithColor(model.ColorFailure))
	mgr.Show("newest")

	_, err := execute(t, addr, "clear", "--newest-first", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"oldest", "middle"}, titles(mgr))

	_, err = execute(t, addr, "clear", "--color", "failure", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"oldest"}, titles(mgr))
}

func TestClear_DefaultsToLiveOrder(t *testing.T) {
	mgr, addr := newTestDaemon(t)
	mgr.Show("oldest")
	mgr.Show("newest")

	_, err := execute(t, addr, "clear", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"newest"}, titles(mgr))

	_, err = execute(t, addr, "clear", "5")
	require.Error(t, err)
	assert.Equal(t, []string{"newest"}, titles(mgr))
}

func TestClear_All(t *testing.T) {
	mgr, addr := newTestDaemon(t)
	mgr.Show("a")
	mgr.Show("b")

	out, err := execute(t, addr, "clear", "--all")
	require.NoError(t, err)
	assert.Equal(t, "cleared 2\n", out)
	assert.Zero(t, mgr.Len())
}
