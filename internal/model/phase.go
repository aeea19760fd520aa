package model

import (
	"fmt"
	"strings"
)

// Phase is the presentation phase of a live notification.
type Phase int

const (
	// PhaseActive is the default phase of a live notification.
	PhaseActive Phase = iota
	// PhaseLeaving marks a notification whose dwell elapsed and which is fading out.
	PhaseLeaving
)

var phaseNames = map[Phase]string{
	PhaseActive:  "active",
	PhaseLeaving: "leaving",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase converts a phase name to a Phase.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "":
		return PhaseActive, nil
	case "leaving":
		return PhaseLeaving, nil
	default:
		return PhaseActive, fmt.Errorf("unknown phase %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Entry pairs a live notification with its current phase.
type Entry struct {
	Notification Notification `json:"notification" yaml:"notification"`
	Phase        Phase        `json:"phase" yaml:"phase"`
}
