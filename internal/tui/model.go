// Package tui provides the BubbleTea-based terminal renderer for toastd.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/theme"
	"github.com/jmylchreest/toastd/internal/toast"
)

// Source is the read side of the lifecycle manager.
type Source interface {
	Entries() []model.Entry
	Subscribe() <-chan toast.Event
	Unsubscribe(ch <-chan toast.Event)
}

// Model is the main TUI model.
type Model struct {
	source   Source
	notifier toast.Notifier
	events   <-chan toast.Event

	display config.DisplayConfig
	theme   *theme.Theme
	keys    KeyMap
	help    help.Model

	entries  []model.Entry
	selected string // id of the selected entry, "" follows the newest
	showHelp bool
	width    int
	height   int

	statusMsg string
	statusErr bool

	now  func() time.Time
	copy func(string) error
}

// Options configures a Model.
type Options struct {
	Source   Source
	Notifier toast.Notifier
	Config   *config.Config // nil means config.Default()
	Theme    *theme.Theme   // nil means theme.Default()
	Now      func() time.Time
}

// New creates a TUI model. It subscribes to the source immediately.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	th := opts.Theme
	if th == nil {
		th = theme.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := Model{
		source:   opts.Source,
		notifier: opts.Notifier,
		display:  cfg.Display,
		theme:    th,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		now:      now,
		copy:     copyText,
	}
	if opts.Source != nil {
		m.events = opts.Source.Subscribe()
		m.entries = opts.Source.Entries()
	}
	return m
}

// NewProgram creates the full-screen program for m.
func NewProgram(ctx context.Context, m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
}

// ConfigChanged returns a message that applies new display settings.
func ConfigChanged(cfg *config.Config) tea.Msg { return configMsg{cfg: cfg} }

// ThemeChanged returns a message that switches the palette.
func ThemeChanged(t *theme.Theme) tea.Msg { return themeMsg{theme: t} }

type (
	eventMsg       struct{ event toast.Event }
	sourceClosed   struct{}
	tickMsg        time.Time
	configMsg      struct{ cfg *config.Config }
	themeMsg       struct{ theme *theme.Theme }
	clearStatusMsg struct{}
)

type statusMsg struct {
	text  string
	isErr bool
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent, tick())
}

// waitForEvent blocks until the manager publishes a change.
func (m Model) waitForEvent() tea.Msg {
	if m.events == nil {
		return nil
	}
	ev, ok := <-m.events
	if !ok {
		return sourceClosed{}
	}
	return eventMsg{event: ev}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		m.refresh()
		return m, m.waitForEvent

	case sourceClosed:
		m.events = nil
		return m, tea.Quit

	case tickMsg:
		m.refresh()
		return m, tick()

	case configMsg:
		if msg.cfg != nil {
			m.display = msg.cfg.Display
		}
		return m, nil

	case themeMsg:
		if msg.theme != nil {
			m.theme = msg.theme
		}
		return m, nil

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// refresh re-reads the live entries and keeps the selection if it survived.
func (m *Model) refresh() {
	if m.source == nil {
		return
	}
	m.entries = m.source.Entries()
	if m.selected != "" && m.indexOf(m.selected) < 0 {
		m.selected = ""
	}
}

func (m Model) indexOf(id string) int {
	for i, e := range m.entries {
		if e.Notification.ID == id {
			return i
		}
	}
	return -1
}

// selectedIndex returns the index of the selected entry, the newest when
// nothing is selected, or -1 when there are no entries.
func (m Model) selectedIndex() int {
	if m.selected != "" {
		if i := m.indexOf(m.selected); i >= 0 {
			return i
		}
	}
	return len(m.entries) - 1
}

func (m Model) selectedEntry() (model.Entry, bool) {
	i := m.selectedIndex()
	if i < 0 {
		return model.Entry{}, false
	}
	return m.entries[i], true
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.source != nil && m.events != nil {
			m.source.Unsubscribe(m.events)
			m.events = nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if i := m.selectedIndex(); i > 0 {
			m.selected = m.entries[i-1].Notification.ID
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		i := m.selectedIndex()
		switch {
		case i < 0:
		case i+1 < len(m.entries)-1:
			m.selected = m.entries[i+1].Notification.ID
		default:
			m.selected = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		e, ok := m.selectedEntry()
		if !ok || m.notifier == nil {
			return m, nil
		}
		if !m.notifier.Clear(e.Notification.ID) {
			return m, status("Notification already gone", true)
		}
		m.refresh()
		return m, status("Notification dismissed", false)

	case key.Matches(msg, m.keys.ClearAll):
		if m.notifier == nil {
			return m, nil
		}
		n := m.notifier.ClearAll()
		m.selected = ""
		m.refresh()
		return m, status(fmt.Sprintf("Cleared %d notifications", n), false)

	case key.Matches(msg, m.keys.Action):
		e, ok := m.selectedEntry()
		if !ok || m.notifier == nil {
			return m, nil
		}
		return m, m.invokeAction(e.Notification)

	case key.Matches(msg, m.keys.Copy):
		e, ok := m.selectedEntry()
		if !ok {
			return m, nil
		}
		text := e.Notification.Content
		if text == "" {
			text = e.Notification.Title
		}
		return m, m.copyToClipboard(text)
	}

	return m, nil
}

func (m Model) invokeAction(n model.Notification) tea.Cmd {
	notifier := m.notifier
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := toast.InvokeAction(ctx, notifier, n); err != nil {
			return statusMsg{text: "Action failed: " + err.Error(), isErr: true}
		}
		label := n.Action.Label
		if label == "" {
			label = n.Action.Key
		}
		return statusMsg{text: "Ran " + label}
	}
}

// copyToClipboard copies text to the system clipboard.
func (m Model) copyToClipboard(text string) tea.Cmd {
	copyFn := m.copy
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			return statusMsg{text: "Copy failed: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "Copied to clipboard"}
	}
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}
