package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"civdraft/internal/catalog"
	"civdraft/internal/domain"
	"civdraft/internal/engine"
	"civdraft/internal/middleware"
	"civdraft/internal/notify"
	"civdraft/internal/repository"
	"civdraft/internal/service"
	"civdraft/pkg/errors"
	"civdraft/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *service.DraftService) {
	t.Helper()

	log := &logger.Logger{Logger: zap.NewNop()}
	store := repository.NewMemoryStore()
	eng := engine.New(rand.New(rand.NewPCG(1, 1)))
	drafts := service.NewDraftService(store, eng, notify.NewLogNotifier(zap.NewNop()), zap.NewNop())

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		NewCatalogHandler().RegisterRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(testSecret, log))
			NewSessionHandler(drafts, 2, 3, log).RegisterRoutes(r)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, drafts
}

func tokenFor(t *testing.T, participant string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": participant})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// doJSON issues an authenticated request and decodes the response into out.
func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body, out interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func decodeError(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (*http.Response, errors.ErrorResponse) {
	t.Helper()
	var envelope errors.ErrorResponse
	resp := doJSON(t, srv, method, path, token, body, &envelope)
	return resp, envelope
}

func TestCreateSessionRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/v1/sessions", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateSessionRejectsBadToken(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateSessionDefaults(t *testing.T) {
	srv, _ := newTestServer(t)

	var session domain.Session
	resp := doJSON(t, srv, http.MethodPost, "/api/v1/sessions", tokenFor(t, "alice"), nil, &session)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, session.ID, 8)
	assert.Equal(t, domain.PhaseLobby, session.Phase)
	assert.Equal(t, 2, session.MaxBans)
	assert.Equal(t, 3, session.PoolSize)
	assert.Equal(t, domain.ParticipantID("alice"), session.CreatorID)
}

func TestCreateSessionOverrides(t *testing.T) {
	srv, _ := newTestServer(t)

	maxBans, poolSize := 1, 5
	var session domain.Session
	resp := doJSON(t, srv, http.MethodPost, "/api/v1/sessions", tokenFor(t, "alice"),
		domain.CreateSessionRequest{MaxBans: &maxBans, PoolSize: &poolSize}, &session)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, session.MaxBans)
	assert.Equal(t, 5, session.PoolSize)
}

func TestCreateSessionInvalidParams(t *testing.T) {
	srv, _ := newTestServer(t)

	bad := -1
	resp, envelope := decodeError(t, srv, http.MethodPost, "/api/v1/sessions", tokenFor(t, "alice"),
		domain.CreateSessionRequest{MaxBans: &bad})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errors.ErrorTypeValidation, envelope.Error.Type)
}

func TestGetSessionNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, envelope := decodeError(t, srv, http.MethodGet, "/api/v1/sessions/deadbeef", tokenFor(t, "alice"), nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errors.ErrorTypeNotFound, envelope.Error.Type)
}

func TestJoinAndStart(t *testing.T) {
	srv, _ := newTestServer(t)

	var session domain.Session
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions", tokenFor(t, "alice"), nil, &session)

	var join domain.JoinResponse
	resp := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/join", tokenFor(t, "bob"), nil, &join)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, join.AlreadyJoined)
	assert.Len(t, join.Session.Participants, 2)

	// Non-creator cannot start.
	resp, envelope := decodeError(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/start", tokenFor(t, "bob"), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, errors.ErrorTypeState, envelope.Error.Type)

	var started domain.Session
	resp = doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/start", tokenFor(t, "alice"), nil, &started)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.PhaseVoting, started.Phase)
}

func TestSubmitVotesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var session domain.Session
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions", tokenFor(t, "alice"), nil, &session)
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/start", tokenFor(t, "alice"), nil, nil)

	votes := make(map[string]string)
	for _, cat := range catalog.Categories() {
		votes[cat.Name] = cat.Options[0]
	}

	// The creator is the only participant, so the ballot completes the phase.
	var after domain.Session
	resp := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/votes", tokenFor(t, "alice"),
		domain.SubmitVotesRequest{Votes: votes}, &after)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.PhaseBanning, after.Phase)
	assert.Len(t, after.Resolved, len(catalog.Categories()))
}

func TestSubmitVotesPartialRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	var session domain.Session
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions", tokenFor(t, "alice"), nil, &session)
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/start", tokenFor(t, "alice"), nil, nil)

	resp, envelope := decodeError(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/votes", tokenFor(t, "alice"),
		domain.SubmitVotesRequest{Votes: map[string]string{"Map": "Pangaea"}})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errors.ErrorTypeValidation, envelope.Error.Type)
}

func TestFullFlowOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	var session domain.Session
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions", tokenFor(t, "alice"), nil, &session)
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/join", tokenFor(t, "bob"), nil, nil)
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/start", tokenFor(t, "alice"), nil, nil)

	votes := make(map[string]string)
	for _, cat := range catalog.Categories() {
		votes[cat.Name] = cat.Options[0]
	}
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/votes", tokenFor(t, "alice"),
		domain.SubmitVotesRequest{Votes: votes}, nil)
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/votes", tokenFor(t, "bob"),
		domain.SubmitVotesRequest{Votes: votes}, nil)

	doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/bans", tokenFor(t, "alice"),
		domain.SubmitBansRequest{Bans: []string{"Gandhi"}}, nil)
	var dealt domain.Session
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/bans", tokenFor(t, "bob"),
		domain.SubmitBansRequest{Bans: []string{}}, &dealt)
	require.Equal(t, domain.PhaseSelecting, dealt.Phase)

	var progress domain.ProgressReport
	doJSON(t, srv, http.MethodGet, "/api/v1/sessions/"+session.ID+"/progress", tokenFor(t, "alice"), nil, &progress)
	require.Len(t, progress.Participants, 2)
	for _, p := range progress.Participants {
		assert.True(t, p.Voted)
		assert.True(t, p.Banned)
		assert.False(t, p.Selected)
	}

	doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/selection", tokenFor(t, "alice"),
		domain.SubmitSelectionRequest{Leader: dealt.Pools["alice"][0]}, nil)
	var done domain.Session
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/selection", tokenFor(t, "bob"),
		domain.SubmitSelectionRequest{Leader: dealt.Pools["bob"][0]}, &done)
	assert.Equal(t, domain.PhaseCompleted, done.Phase)

	var results domain.ResultsReport
	doJSON(t, srv, http.MethodGet, "/api/v1/sessions/"+session.ID+"/results", tokenFor(t, "alice"), nil, &results)
	assert.Equal(t, domain.PhaseCompleted, results.Phase)
	assert.Len(t, results.Selections, 2)
	require.Len(t, results.Bans, 1)
	assert.Equal(t, "Gandhi", results.Bans[0].Leader)
}

func TestForceAdvanceEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var session domain.Session
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions", tokenFor(t, "alice"), nil, &session)
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/start", tokenFor(t, "alice"), nil, nil)

	var advanced domain.Session
	resp := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+session.ID+"/advance", tokenFor(t, "alice"),
		domain.AdvanceRequest{Target: domain.PhaseBanning}, &advanced)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.PhaseBanning, advanced.Phase)
	assert.Len(t, advanced.Resolved, len(catalog.Categories()))
}

func TestDeleteSessionEndpoint(t *testing.T) {
	srv, drafts := newTestServer(t)

	var session domain.Session
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions", tokenFor(t, "alice"), nil, &session)

	resp, _ := decodeError(t, srv, http.MethodDelete, "/api/v1/sessions/"+session.ID, tokenFor(t, "bob"), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodDelete, "/api/v1/sessions/"+session.ID, tokenFor(t, "alice"), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err := drafts.GetSession(context.Background(), session.ID)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestListSessions(t *testing.T) {
	srv, _ := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/v1/sessions", tokenFor(t, "alice"), nil, nil)
	doJSON(t, srv, http.MethodPost, "/api/v1/sessions", tokenFor(t, "bob"), nil, nil)

	var listing struct {
		Sessions []domain.Session `json:"sessions"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/api/v1/sessions", tokenFor(t, "alice"), nil, &listing)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listing.Sessions, 2)
}

func TestCatalogEndpointsArePublic(t *testing.T) {
	srv, _ := newTestServer(t)

	var leaders struct {
		Leaders []catalog.Leader `json:"leaders"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/api/v1/catalog/leaders", "", nil, &leaders)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
	assert.Len(t, leaders.Leaders, catalog.Size())

	var categories struct {
		Categories []catalog.Category `json:"categories"`
	}
	resp = doJSON(t, srv, http.MethodGet, "/api/v1/catalog/categories", "", nil, &categories)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, categories.Categories)
}
