package domain

import "time"

// EventType identifies a session lifecycle event emitted to the
// notification sink.
type EventType string

const (
	// EventPhaseAdvanced fires after a session moves to a later phase.
	EventPhaseAdvanced EventType = "phase_advanced"
	// EventResolutionComputed fires when the weighted settings draw completes.
	EventResolutionComputed EventType = "resolution_computed"
	// EventAllocationFailed fires when pool allocation cannot satisfy every
	// participant; the session stays in its current phase.
	EventAllocationFailed EventType = "allocation_failed"
)

// Event is an outbound, fire-and-forget notification. Delivery failure never
// rolls back the state change that produced it.
type Event struct {
	Type       EventType                 `json:"type"`
	SessionID  string                    `json:"session_id"`
	FromPhase  Phase                     `json:"from_phase,omitempty"`
	ToPhase    Phase                     `json:"to_phase,omitempty"`
	Settings   map[string]CategoryResult `json:"settings,omitempty"`
	Reason     string                    `json:"reason,omitempty"`
	OccurredAt time.Time                 `json:"occurred_at"`
}

// NewPhaseAdvanced builds a phase transition event.
func NewPhaseAdvanced(sessionID string, from, to Phase) Event {
	return Event{
		Type:       EventPhaseAdvanced,
		SessionID:  sessionID,
		FromPhase:  from,
		ToPhase:    to,
		OccurredAt: time.Now().UTC(),
	}
}

// NewResolutionComputed builds an event carrying the resolved settings.
func NewResolutionComputed(sessionID string, settings map[string]CategoryResult) Event {
	return Event{
		Type:       EventResolutionComputed,
		SessionID:  sessionID,
		Settings:   settings,
		OccurredAt: time.Now().UTC(),
	}
}

// NewAllocationFailed builds an event describing why pools could not be dealt.
func NewAllocationFailed(sessionID string, reason string) Event {
	return Event{
		Type:       EventAllocationFailed,
		SessionID:  sessionID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
