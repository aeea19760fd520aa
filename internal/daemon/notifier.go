package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/schedule"
	"github.com/jmylchreest/toastd/internal/toast"
)

// DefaultMinInterval is the minimum time between two internal notifications
// with the same key.
const DefaultMinInterval = 5 * time.Second

// NotificationLevel indicates the severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages.
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for recoverable problems.
	NotificationLevelWarning
	// NotificationLevelError is for failures.
	NotificationLevelError
)

func (l NotificationLevel) style() (model.Color, model.Icon) {
	switch l {
	case NotificationLevelWarning:
		return model.ColorWarning, model.IconTriangleExclamation
	case NotificationLevelError:
		return model.ColorFailure, model.IconSkullCrossbones
	default:
		return model.ColorInfo, model.IconCircleInfo
	}
}

// InternalNotifier shows toasts about toastd's own events. Each key is
// rate limited so a flapping config file cannot flood the screen.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	clock  schedule.Scheduler
	target toast.Notifier

	lastNotify  map[string]time.Time
	minInterval time.Duration
	enabled     bool
}

// NewInternalNotifier creates a notifier that shows toasts on target.
// A nil clock means the wall clock.
func NewInternalNotifier(target toast.Notifier, clock schedule.Scheduler, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = schedule.Real()
	}
	return &InternalNotifier{
		logger:      logger,
		clock:       clock,
		target:      target,
		lastNotify:  make(map[string]time.Time),
		minInterval: DefaultMinInterval,
		enabled:     true,
	}
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows a toast unless one with the same key was shown within the
// minimum interval. It returns the toast id, or "" when nothing was shown.
func (n *InternalNotifier) Notify(key, title, content string, level NotificationLevel) string {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return ""
	}
	now := n.clock.Now()
	if last, ok := n.lastNotify[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "title", title)
		return ""
	}
	n.lastNotify[key] = now
	n.mu.Unlock()

	color, icon := level.style()
	id, ok := toast.TryShow(n.target, title,
		toast.WithContent(content),
		toast.WithColor(color),
		toast.WithIcon(icon),
	)
	if !ok {
		n.logger.Debug("internal notification skipped: no target", "title", title)
		return ""
	}
	n.logger.Debug("internal notification shown", "key", key, "id", id)
	return id
}

// NotifyConfigReloaded reports a successful configuration reload.
func (n *InternalNotifier) NotifyConfigReloaded() string {
	return n.Notify("config-reload", "Configuration Reloaded",
		"toastd configuration has been successfully reloaded.", NotificationLevelInfo)
}

// NotifyConfigError reports a configuration file that failed to load.
func (n *InternalNotifier) NotifyConfigError(err error) string {
	return n.Notify("config-error", "Configuration Error",
		"Failed to reload configuration: "+err.Error(), NotificationLevelWarning)
}

// NotifyThemeReloaded reports a theme reloaded from disk.
func (n *InternalNotifier) NotifyThemeReloaded(name string) string {
	return n.Notify("theme-reload", "Theme Reloaded",
		"Theme '"+name+"' has been reloaded.", NotificationLevelInfo)
}

// NotifyThemeError reports a theme that failed to load.
func (n *InternalNotifier) NotifyThemeError(err error) string {
	return n.Notify("theme-error", "Theme Error",
		"Failed to load theme: "+err.Error(), NotificationLevelWarning)
}

// NotifyAudioError reports a failure to start audio playback.
func (n *InternalNotifier) NotifyAudioError(err error) string {
	return n.Notify("audio-error", "Audio Error",
		"Failed to start notification sounds: "+err.Error(), NotificationLevelWarning)
}

// NotifyStartup announces that the daemon is running.
func (n *InternalNotifier) NotifyStartup(version string) string {
	return n.Notify("startup", "toastd Started",
		"Notification daemon "+version+" is now running.", NotificationLevelInfo)
}
