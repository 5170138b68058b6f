package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/committy/internal/api/request"
	"github.com/mcoot/committy/internal/api/response"
	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/services/session"
)

// SessionHandler handles sessions, matchups and verdicts
type SessionHandler struct {
	sessions      *session.Controller
	publicBaseURL string
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Controller, publicBaseURL string) *SessionHandler {
	return &SessionHandler{
		sessions:      sessions,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	token, err := h.sessions.NewSession(r.Context(), req.HandSize)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.Session{
		Token:    string(token),
		HandSize: req.HandSize,
		URL:      fmt.Sprintf("%s/api/v1/sessions/%d/%s", h.publicBaseURL, req.HandSize, url.PathEscape(string(token))),
	})
}

// Draw handles GET /api/v1/sessions/{hand_size}/{token}
func (h *SessionHandler) Draw(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	handSize, err := strconv.Atoi(vars["hand_size"])
	if err != nil {
		WriteError(w, NewInvalidRequestError("Invalid hand_size: "+vars["hand_size"]))
		return
	}

	dealt, err := h.sessions.DrawSession(r.Context(), handSize, model.SeedToken(vars["token"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.DealFromModel(dealt))
}

// Matchup handles GET /api/v1/matchups/{c1}/{c2}
func (h *SessionHandler) Matchup(w http.ResponseWriter, r *http.Request) {
	c1, c2, ok := pairFromPath(w, r)
	if !ok {
		return
	}

	matchup, err := h.sessions.Matchup(r.Context(), c1, c2)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.MatchupFromModel(matchup))
}

// Verdict handles POST /api/v1/verdicts
func (h *SessionHandler) Verdict(w http.ResponseWriter, r *http.Request) {
	var req request.VerdictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	verdict, err := h.sessions.ResolveVerdict(r.Context(), model.CardID(req.C1), model.CardID(req.C2), model.CardID(req.Winner))
	if err != nil {
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if verdict.Kind == model.VerdictNewPrecedent {
		status = http.StatusCreated
	}
	response.JSON(w, status, response.VerdictFromModel(verdict))
}

// Precedent handles GET /api/v1/precedents/{c1}/{c2}
func (h *SessionHandler) Precedent(w http.ResponseWriter, r *http.Request) {
	c1, c2, ok := pairFromPath(w, r)
	if !ok {
		return
	}
	if c1 == c2 {
		WriteError(w, model.ErrSelfMatch)
		return
	}

	outcome, found, err := h.sessions.Precedent(r.Context(), c1, c2)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !found {
		WriteError(w, model.ErrOutcomeNotFound)
		return
	}
	response.JSON(w, http.StatusOK, response.OutcomeFromModel(outcome))
}

func pairFromPath(w http.ResponseWriter, r *http.Request) (model.CardID, model.CardID, bool) {
	c1, err := pathCardID(r, "c1")
	if err != nil {
		WriteError(w, err)
		return 0, 0, false
	}
	c2, err := pathCardID(r, "c2")
	if err != nil {
		WriteError(w, err)
		return 0, 0, false
	}
	return c1, c2, true
}
