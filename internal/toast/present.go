package toast

import (
	"iter"

	"github.com/jmylchreest/toastd/internal/model"
)

// Present pairs each live notification with its phase, in the order of
// live. Notifications without a phase entry are active. The sequence is
// lazy and does not modify its inputs.
func Present(live []model.Notification, phases map[string]model.Phase) iter.Seq[model.Entry] {
	return func(yield func(model.Entry) bool) {
		for _, n := range live {
			phase, ok := phases[n.ID]
			if !ok {
				phase = model.PhaseActive
			}
			if !yield(model.Entry{Notification: n, Phase: phase}) {
				return
			}
		}
	}
}
