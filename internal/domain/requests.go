package domain

// CreateSessionRequest configures a new session. Zero values fall back to the
// server defaults from config.
type CreateSessionRequest struct {
	MaxBans  *int `json:"max_bans,omitempty"`
	PoolSize *int `json:"pool_size,omitempty"`
}

// SubmitVotesRequest carries one participant's complete ruleset ballot.
// Partial ballots are rejected; the engine never persists a fragment.
type SubmitVotesRequest struct {
	Votes map[string]string `json:"votes"`
}

// SubmitBansRequest carries a participant's ban list. An empty list is a
// valid submission and marks the participant done with the ban phase.
type SubmitBansRequest struct {
	Bans []string `json:"bans"`
}

// SubmitSelectionRequest locks in a participant's final pick.
type SubmitSelectionRequest struct {
	Leader string `json:"leader"`
}

// AdvanceRequest asks the creator to force the session into a later phase.
type AdvanceRequest struct {
	Target Phase `json:"target"`
}

// JoinResponse reports the result of a join attempt. AlreadyJoined is a
// notice, not an error: the roster is unchanged.
type JoinResponse struct {
	Session       *Session `json:"session"`
	AlreadyJoined bool     `json:"already_joined"`
}

// ParticipantProgress is one roster entry in a progress report.
type ParticipantProgress struct {
	ID       ParticipantID `json:"id"`
	Voted    bool          `json:"voted"`
	Banned   bool          `json:"banned"`
	Selected bool          `json:"selected"`
}

// ProgressReport summarizes how far a session has advanced and who is
// holding up the current phase.
type ProgressReport struct {
	SessionID    string                `json:"session_id"`
	Phase        Phase                 `json:"phase"`
	Participants []ParticipantProgress `json:"participants"`
}

// BanCount aggregates how many participants banned one leader.
type BanCount struct {
	Leader string `json:"leader"`
	Count  int    `json:"count"`
}

// ResultsReport is the combined outcome of a session: the drawn settings,
// everyone's final pick, and the aggregated bans.
type ResultsReport struct {
	SessionID  string                    `json:"session_id"`
	Phase      Phase                     `json:"phase"`
	Settings   map[string]CategoryResult `json:"settings,omitempty"`
	Selections map[ParticipantID]string  `json:"selections,omitempty"`
	Bans       []BanCount                `json:"bans,omitempty"`
}
