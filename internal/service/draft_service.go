package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"civdraft/internal/catalog"
	"civdraft/internal/domain"
	"civdraft/internal/engine"
	"civdraft/internal/notify"
	"civdraft/internal/repository"
	"civdraft/pkg/errors"

	"go.uber.org/zap"
)

// DraftService owns the session lifecycle: phase transitions, per-participant
// submission tracking, completion detection, and the handoff to the resolution
// and pool-allocation machinery.
//
// Every mutating operation follows the same discipline: take the per-session
// lock, load a fresh copy from the store, validate, mutate the copy, persist
// it with a single Put, then emit notifications. A failed Put discards the
// copy, so callers observe either both the in-memory and durable state
// advancing, or neither.
type DraftService struct {
	store      repository.SessionStore
	engine     *engine.Engine
	notifier   notify.Notifier
	categories []catalog.Category
	logger     *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDraftService creates the session state machine around its collaborators.
func NewDraftService(store repository.SessionStore, eng *engine.Engine, notifier notify.Notifier, logger *zap.Logger) *DraftService {
	return &DraftService{
		store:      store,
		engine:     eng,
		notifier:   notifier,
		categories: catalog.Categories(),
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockSession serializes operations on one session id. Distinct sessions
// proceed in parallel.
func (s *DraftService) lockSession(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// CreateSession creates a session in the lobby phase. The creator joins
// automatically as the first participant.
func (s *DraftService) CreateSession(ctx context.Context, creatorID domain.ParticipantID, maxBans, poolSize int) (*domain.Session, error) {
	if maxBans < 0 {
		return nil, errors.NewValidationError("max_bans must be non-negative", map[string]interface{}{"max_bans": maxBans})
	}
	if poolSize < 1 {
		return nil, errors.NewValidationError("pool_size must be at least 1", map[string]interface{}{"pool_size": poolSize})
	}

	id, err := s.newSessionID(ctx)
	if err != nil {
		return nil, err
	}

	session := domain.NewSession(id, creatorID, maxBans, poolSize)
	if err := s.store.Put(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.Int("max_bans", maxBans),
		zap.Int("pool_size", poolSize))
	return session, nil
}

// Join adds a participant to a lobby-phase session. Joining twice is a
// harmless notice, not an error.
func (s *DraftService) Join(ctx context.Context, sessionID string, participantID domain.ParticipantID) (*domain.JoinResponse, error) {
	defer s.lockSession(sessionID)()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Phase != domain.PhaseLobby {
		return nil, errors.NewStateError("the session has already started; joining is closed")
	}
	if !session.AddParticipant(participantID) {
		return &domain.JoinResponse{Session: session, AlreadyJoined: true}, nil
	}

	if err := s.store.Put(ctx, session); err != nil {
		return nil, err
	}
	return &domain.JoinResponse{Session: session}, nil
}

// StartVoting moves the session from lobby to voting. Creator only.
func (s *DraftService) StartVoting(ctx context.Context, sessionID string, requesterID domain.ParticipantID) (*domain.Session, error) {
	defer s.lockSession(sessionID)()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.IsCreator(requesterID) {
		return nil, errors.NewStateError("only the session creator can start voting")
	}
	if session.Phase != domain.PhaseLobby {
		return nil, errors.NewStateError("voting has already started")
	}
	if len(session.Participants) == 0 {
		return nil, errors.NewStateError("cannot start voting with no participants")
	}

	session.Phase = domain.PhaseVoting
	if err := s.store.Put(ctx, session); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, domain.NewPhaseAdvanced(session.ID, domain.PhaseLobby, domain.PhaseVoting))
	return session, nil
}

// SubmitVote records a participant's complete ballot. Resubmitting while the
// voting phase is still open overwrites the previous ballot. When the last
// ballot lands, the settings are resolved and the session advances to
// banning in the same operation.
func (s *DraftService) SubmitVote(ctx context.Context, sessionID string, participantID domain.ParticipantID, ballot domain.Ballot) (*domain.Session, error) {
	defer s.lockSession(sessionID)()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Phase != domain.PhaseVoting {
		return nil, errors.NewStateError("votes can only be submitted during the voting phase")
	}
	if !session.HasParticipant(participantID) {
		return nil, errors.NewNotFoundError("participant has not joined this session")
	}
	if err := s.validateBallot(ballot); err != nil {
		return nil, err
	}

	stored := make(domain.Ballot, len(ballot))
	for cat, opt := range ballot {
		stored[cat] = opt
	}
	session.Votes[participantID] = stored

	var events []domain.Event
	if session.AllVoted(len(s.categories)) {
		if session.Resolved == nil {
			session.Resolved = s.engine.Resolve(session.Votes, s.categories)
			events = append(events, domain.NewResolutionComputed(session.ID, session.Resolved))
		}
		session.Phase = domain.PhaseBanning
		events = append(events, domain.NewPhaseAdvanced(session.ID, domain.PhaseVoting, domain.PhaseBanning))
	}

	if err := s.store.Put(ctx, session); err != nil {
		return nil, err
	}
	s.emit(ctx, events)
	return session, nil
}

// SubmitBans records a participant's ban list; an empty list is a valid way
// of passing. When the last entry lands, pools are dealt and the session
// advances to selecting. If the catalog cannot fill every pool, the bans are
// kept but the session stays in the banning phase.
func (s *DraftService) SubmitBans(ctx context.Context, sessionID string, participantID domain.ParticipantID, items []string) (*domain.Session, error) {
	defer s.lockSession(sessionID)()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Phase != domain.PhaseBanning {
		return nil, errors.NewStateError("bans can only be submitted during the banning phase")
	}
	if !session.HasParticipant(participantID) {
		return nil, errors.NewNotFoundError("participant has not joined this session")
	}

	deduped := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if _, ok := catalog.Lookup(item); !ok {
			return nil, errors.NewValidationError("unknown leader: "+item, nil)
		}
		if !seen[item] {
			seen[item] = true
			deduped = append(deduped, item)
		}
	}
	if len(deduped) > session.MaxBans {
		return nil, errors.NewCapacityError("too many bans", map[string]interface{}{
			"max_bans":  session.MaxBans,
			"submitted": len(deduped),
		})
	}

	session.Bans[participantID] = deduped

	if !session.AllBanned() {
		if err := s.store.Put(ctx, session); err != nil {
			return nil, err
		}
		return session, nil
	}

	events, allocErr := s.dealPools(session)
	if err := s.store.Put(ctx, session); err != nil {
		return nil, err
	}
	s.emit(ctx, events)
	if allocErr != nil {
		return session, allocErr
	}
	return session, nil
}

// SubmitSelection locks in a participant's final pick. Unlike votes and
// bans, a selection cannot be overwritten: the presentation layer disables
// its controls once the pick is confirmed.
func (s *DraftService) SubmitSelection(ctx context.Context, sessionID string, participantID domain.ParticipantID, item string) (*domain.Session, error) {
	defer s.lockSession(sessionID)()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Phase != domain.PhaseSelecting {
		return nil, errors.NewStateError("selections can only be submitted during the selection phase")
	}
	if !session.HasParticipant(participantID) {
		return nil, errors.NewNotFoundError("participant has not joined this session")
	}
	if _, ok := session.Selections[participantID]; ok {
		return nil, errors.NewStateError("selection is already locked in")
	}
	if !session.InPool(participantID, item) {
		return nil, errors.NewValidationError("leader is not in your assigned pool", map[string]interface{}{
			"leader": item,
			"pool":   session.PoolFor(participantID),
		})
	}

	session.Selections[participantID] = item

	var events []domain.Event
	if session.AllSelected() {
		session.Phase = domain.PhaseCompleted
		events = append(events, domain.NewPhaseAdvanced(session.ID, domain.PhaseSelecting, domain.PhaseCompleted))
	}

	if err := s.store.Put(ctx, session); err != nil {
		return nil, err
	}
	s.emit(ctx, events)
	return session, nil
}

// ForceAdvance pushes the session to a later phase without waiting for
// stragglers. Creator only. Voting can be cut short but never skipped or
// re-entered: the session must already be past the lobby, and the target
// must be banning, selecting, or completed.
//
// Cutting voting short resolves settings from whatever ballots exist,
// falling back to each category's default when nobody voted on it. Cutting
// banning short records an empty ban entry for every absentee before the
// pools are dealt.
func (s *DraftService) ForceAdvance(ctx context.Context, sessionID string, requesterID domain.ParticipantID, target domain.Phase) (*domain.Session, error) {
	defer s.lockSession(sessionID)()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.IsCreator(requesterID) {
		return nil, errors.NewStateError("only the session creator can force the session forward")
	}
	switch target {
	case domain.PhaseBanning, domain.PhaseSelecting, domain.PhaseCompleted:
	default:
		return nil, errors.NewValidationError("invalid target phase: "+string(target), nil)
	}
	if session.Phase == domain.PhaseLobby {
		return nil, errors.NewStateError("voting has not started; start the session before advancing it")
	}
	if !target.After(session.Phase) {
		return nil, errors.NewStateError(fmt.Sprintf("session is already in the %s phase or beyond", session.Phase))
	}

	var events []domain.Event
	for session.Phase != target {
		switch session.Phase {
		case domain.PhaseVoting:
			if session.Resolved == nil {
				session.Resolved = s.engine.ResolveForced(session.Votes, s.categories)
				events = append(events, domain.NewResolutionComputed(session.ID, session.Resolved))
			}
			session.Phase = domain.PhaseBanning
			events = append(events, domain.NewPhaseAdvanced(session.ID, domain.PhaseVoting, domain.PhaseBanning))

		case domain.PhaseBanning:
			for _, p := range session.Participants {
				if _, ok := session.Bans[p]; !ok {
					session.Bans[p] = []string{}
				}
			}
			dealEvents, allocErr := s.dealPools(session)
			events = append(events, dealEvents...)
			if allocErr != nil {
				// Persist the synthesized ban entries; the session stays in
				// the banning phase until an administrator intervenes.
				if err := s.store.Put(ctx, session); err != nil {
					return nil, err
				}
				s.emit(ctx, events)
				return session, allocErr
			}

		case domain.PhaseSelecting:
			session.Phase = domain.PhaseCompleted
			events = append(events, domain.NewPhaseAdvanced(session.ID, domain.PhaseSelecting, domain.PhaseCompleted))
		}
	}

	if err := s.store.Put(ctx, session); err != nil {
		return nil, err
	}
	s.emit(ctx, events)
	return session, nil
}

// DeleteSession removes a session outright. Creator only; works in any phase.
func (s *DraftService) DeleteSession(ctx context.Context, sessionID string, requesterID domain.ParticipantID) error {
	defer s.lockSession(sessionID)()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.IsCreator(requesterID) {
		return errors.NewStateError("only the session creator can delete the session")
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.locks, sessionID)
	s.mu.Unlock()

	s.logger.Info("session deleted", zap.String("session_id", sessionID))
	return nil
}

// GetSession returns a copy of the session.
func (s *DraftService) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// ListSessions returns every stored session.
func (s *DraftService) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	return s.store.ListAll(ctx)
}

// Progress reports who has voted, banned, and selected so far.
func (s *DraftService) Progress(ctx context.Context, sessionID string) (*domain.ProgressReport, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	report := &domain.ProgressReport{
		SessionID:    session.ID,
		Phase:        session.Phase,
		Participants: make([]domain.ParticipantProgress, 0, len(session.Participants)),
	}
	for _, p := range session.Participants {
		_, banned := session.Bans[p]
		_, selected := session.Selections[p]
		report.Participants = append(report.Participants, domain.ParticipantProgress{
			ID:       p,
			Voted:    len(session.Votes[p]) >= len(s.categories),
			Banned:   banned,
			Selected: selected,
		})
	}
	return report, nil
}

// Results returns whatever outcome the session has produced so far: resolved
// settings with full tallies, final selections, and aggregated ban counts
// ordered most-banned first.
func (s *DraftService) Results(ctx context.Context, sessionID string) (*domain.ResultsReport, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, items := range session.Bans {
		for _, item := range items {
			counts[item]++
		}
	}
	bans := make([]domain.BanCount, 0, len(counts))
	for leader, count := range counts {
		bans = append(bans, domain.BanCount{Leader: leader, Count: count})
	}
	sort.Slice(bans, func(i, j int) bool {
		if bans[i].Count != bans[j].Count {
			return bans[i].Count > bans[j].Count
		}
		return bans[i].Leader < bans[j].Leader
	})

	return &domain.ResultsReport{
		SessionID:  session.ID,
		Phase:      session.Phase,
		Settings:   session.Resolved,
		Selections: session.Selections,
		Bans:       bans,
	}, nil
}

// dealPools allocates a pool per participant from the unbanned catalog and
// advances the session to the selection phase. On an insufficient catalog it
// leaves the phase untouched and returns both the failure event and a
// capacity error.
func (s *DraftService) dealPools(session *domain.Session) ([]domain.Event, error) {
	available := catalog.AvailableExcluding(session.BannedItems())
	needed := len(session.Participants) * session.PoolSize

	pools, err := s.engine.AllocatePools(available, len(session.Participants), session.PoolSize)
	if err != nil {
		reason := fmt.Sprintf("need %d leaders for %d pools of %d, only %d available",
			needed, len(session.Participants), session.PoolSize, len(available))
		return []domain.Event{domain.NewAllocationFailed(session.ID, reason)},
			errors.NewCapacityError("not enough leaders left to deal every pool", map[string]interface{}{
				"available": len(available),
				"needed":    needed,
			})
	}

	for i, p := range session.Participants {
		session.Pools[p] = pools[i]
	}
	session.Phase = domain.PhaseSelecting
	return []domain.Event{domain.NewPhaseAdvanced(session.ID, domain.PhaseBanning, domain.PhaseSelecting)}, nil
}

// validateBallot checks that the ballot covers every category with a known
// option and nothing else. A partial ballot is rejected outright; nothing is
// persisted from it.
func (s *DraftService) validateBallot(ballot domain.Ballot) error {
	for _, cat := range s.categories {
		opt, ok := ballot[cat.Name]
		if !ok {
			return errors.NewValidationError("ballot is missing category: "+cat.Name, nil)
		}
		if !cat.HasOption(opt) {
			return errors.NewValidationError(fmt.Sprintf("unknown option %q for category %s", opt, cat.Name), nil)
		}
	}
	if len(ballot) > len(s.categories) {
		for name := range ballot {
			if _, ok := catalog.CategoryByName(name); !ok {
				return errors.NewValidationError("unknown category: "+name, nil)
			}
		}
	}
	return nil
}

// emit delivers events after a successful persist.
func (s *DraftService) emit(ctx context.Context, events []domain.Event) {
	for _, ev := range events {
		s.notifier.Notify(ctx, ev)
	}
}

// newSessionID generates a short unique session id, retrying on the
// unlikely collision with an existing session.
func (s *DraftService) newSessionID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		bytes := make([]byte, 4)
		if _, err := rand.Read(bytes); err != nil {
			return "", errors.NewInternalError("failed to generate session id", err)
		}
		id := hex.EncodeToString(bytes)

		_, err := s.store.Get(ctx, id)
		if errors.IsType(err, errors.ErrorTypeNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.NewInternalError("failed to generate a unique session id", nil)
}
