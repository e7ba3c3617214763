package domain

import (
	"time"
)

// Phase represents the lifecycle stage of a draft session. Phases only ever
// advance; a session never returns to an earlier phase.
type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseVoting    Phase = "voting"
	PhaseBanning   Phase = "banning"
	PhaseSelecting Phase = "selecting"
	PhaseCompleted Phase = "completed"
)

// phaseOrder defines the strict total order of phases.
var phaseOrder = map[Phase]int{
	PhaseLobby:     0,
	PhaseVoting:    1,
	PhaseBanning:   2,
	PhaseSelecting: 3,
	PhaseCompleted: 4,
}

// Order returns the position of the phase in the lifecycle, or -1 for an
// unknown phase.
func (p Phase) Order() int {
	order, ok := phaseOrder[p]
	if !ok {
		return -1
	}
	return order
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	_, ok := phaseOrder[p]
	return ok
}

// After reports whether p comes strictly after other in the lifecycle.
func (p Phase) After(other Phase) bool {
	return p.Order() > other.Order()
}

// ParticipantID identifies a participant. The value is an opaque token from
// the identity layer; the engine never inspects its structure.
type ParticipantID string

// Ballot is one participant's full ruleset vote: category name -> chosen option.
type Ballot map[string]string

// CategoryResult holds the resolved outcome for one ruleset category.
type CategoryResult struct {
	Selected string         `json:"selected"`
	Tally    map[string]int `json:"tally"`
}

// Session is the aggregate root for one draft workflow. All mutation goes
// through the draft service; the struct itself carries no locking.
type Session struct {
	ID           string                       `json:"id"`
	CreatorID    ParticipantID                `json:"creator"`
	Participants []ParticipantID              `json:"participants"`
	Phase        Phase                        `json:"phase"`
	MaxBans      int                          `json:"max_bans"`
	PoolSize     int                          `json:"pool_size"`
	Votes        map[ParticipantID]Ballot     `json:"votes"`
	Resolved     map[string]CategoryResult    `json:"resolved_settings,omitempty"`
	Bans         map[ParticipantID][]string   `json:"bans"`
	Pools        map[ParticipantID][]string   `json:"pools"`
	Selections   map[ParticipantID]string     `json:"selections"`
	CreatedAt    time.Time                    `json:"created_at"`
}

// NewSession creates a session in the lobby phase. The creator is joined
// automatically as the first participant.
func NewSession(id string, creatorID ParticipantID, maxBans, poolSize int) *Session {
	return &Session{
		ID:           id,
		CreatorID:    creatorID,
		Participants: []ParticipantID{creatorID},
		Phase:        PhaseLobby,
		MaxBans:      maxBans,
		PoolSize:     poolSize,
		Votes:        make(map[ParticipantID]Ballot),
		Bans:         make(map[ParticipantID][]string),
		Pools:        make(map[ParticipantID][]string),
		Selections:   make(map[ParticipantID]string),
		CreatedAt:    time.Now().UTC(),
	}
}

// IsCreator reports whether id created the session.
func (s *Session) IsCreator(id ParticipantID) bool {
	return id == s.CreatorID
}

// HasParticipant reports whether id has joined the session.
func (s *Session) HasParticipant(id ParticipantID) bool {
	for _, p := range s.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// AddParticipant appends id to the roster. Returns false if already joined.
func (s *Session) AddParticipant(id ParticipantID) bool {
	if s.HasParticipant(id) {
		return false
	}
	s.Participants = append(s.Participants, id)
	return true
}

// AllVoted reports whether every participant has a ballot covering all
// required categories.
func (s *Session) AllVoted(requiredCategories int) bool {
	for _, p := range s.Participants {
		ballot, ok := s.Votes[p]
		if !ok || len(ballot) < requiredCategories {
			return false
		}
	}
	return true
}

// AllBanned reports whether every participant has a ban entry. An empty entry
// counts: presence signals the participant is done, not how much they banned.
func (s *Session) AllBanned() bool {
	for _, p := range s.Participants {
		if _, ok := s.Bans[p]; !ok {
			return false
		}
	}
	return true
}

// AllSelected reports whether every participant has locked in a selection.
func (s *Session) AllSelected() bool {
	for _, p := range s.Participants {
		if _, ok := s.Selections[p]; !ok {
			return false
		}
	}
	return true
}

// BannedItems returns the union of all submitted bans, deduplicated, in
// first-seen order across participants' roster order.
func (s *Session) BannedItems() []string {
	seen := make(map[string]bool)
	var banned []string
	for _, p := range s.Participants {
		for _, item := range s.Bans[p] {
			if !seen[item] {
				seen[item] = true
				banned = append(banned, item)
			}
		}
	}
	return banned
}

// PoolFor returns the pool assigned to a participant, or nil if pools have
// not been allocated yet.
func (s *Session) PoolFor(id ParticipantID) []string {
	return s.Pools[id]
}

// InPool reports whether item belongs to the participant's assigned pool.
func (s *Session) InPool(id ParticipantID, item string) bool {
	for _, it := range s.Pools[id] {
		if it == item {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. The store hands out copies so callers can
// mutate freely and commit via Put, keeping each operation atomic.
func (s *Session) Clone() *Session {
	out := *s
	out.Participants = append([]ParticipantID(nil), s.Participants...)
	out.Votes = make(map[ParticipantID]Ballot, len(s.Votes))
	for p, ballot := range s.Votes {
		b := make(Ballot, len(ballot))
		for cat, opt := range ballot {
			b[cat] = opt
		}
		out.Votes[p] = b
	}
	if s.Resolved != nil {
		out.Resolved = make(map[string]CategoryResult, len(s.Resolved))
		for cat, res := range s.Resolved {
			tally := make(map[string]int, len(res.Tally))
			for opt, n := range res.Tally {
				tally[opt] = n
			}
			out.Resolved[cat] = CategoryResult{Selected: res.Selected, Tally: tally}
		}
	}
	out.Bans = make(map[ParticipantID][]string, len(s.Bans))
	for p, items := range s.Bans {
		out.Bans[p] = append([]string(nil), items...)
	}
	out.Pools = make(map[ParticipantID][]string, len(s.Pools))
	for p, items := range s.Pools {
		out.Pools[p] = append([]string(nil), items...)
	}
	out.Selections = make(map[ParticipantID]string, len(s.Selections))
	for p, item := range s.Selections {
		out.Selections[p] = item
	}
	return &out
}
