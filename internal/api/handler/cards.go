package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mcoot/committy/internal/api/request"
	"github.com/mcoot/committy/internal/api/response"
	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/services/catalog"
	"github.com/mcoot/committy/internal/services/session"
)

// defaultRandomCards is how many cards the submission form compares against
const defaultRandomCards = 2

// CardHandler handles catalog endpoints
type CardHandler struct {
	catalog       *catalog.Service
	sessions      *session.Controller
	publicBaseURL string
}

// NewCardHandler creates a new card handler
func NewCardHandler(catalog *catalog.Service, sessions *session.Controller, publicBaseURL string) *CardHandler {
	return &CardHandler{
		catalog:       catalog,
		sessions:      sessions,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// List handles GET /api/v1/cards
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.catalog.All(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardList{Cards: response.CardsFromModel(cards)})
}

// IDs handles GET /api/v1/cards/ids
func (h *CardHandler) IDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.catalog.ListIDs(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardIDsFromModel(ids))
}

// Links handles GET /api/v1/cards/links
func (h *CardHandler) Links(w http.ResponseWriter, r *http.Request) {
	cards, err := h.catalog.All(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	links := make([]response.CardLink, len(cards))
	for i, c := range cards {
		links[i] = response.CardLink{
			ID:   int64(c.ID),
			Name: c.Name,
			URL:  fmt.Sprintf("%s/api/v1/cards/%d", h.publicBaseURL, c.ID),
		}
	}
	response.JSON(w, http.StatusOK, response.CardLinks{Links: links})
}

// Count handles GET /api/v1/cards/count
func (h *CardHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalog.Count(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Count{Count: n})
}

// Random handles GET /api/v1/cards/random?n=2&except=1,2
func (h *CardHandler) Random(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	n := defaultRandomCards
	if raw := query.Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, NewInvalidRequestError("Invalid n: "+raw))
			return
		}
		n = parsed
	}

	var except []model.CardID
	for _, value := range query["except"] {
		for _, raw := range strings.Split(value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				WriteError(w, NewInvalidRequestError("Invalid except: "+raw))
				return
			}
			except = append(except, model.CardID(id))
		}
	}

	cards, err := h.catalog.RandomCards(r.Context(), n, except...)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardList{Cards: response.CardsFromModel(cards)})
}

// Get handles GET /api/v1/cards/{id}
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathCardID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	card, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardFromModel(card))
}

// Submit handles POST /api/v1/cards
func (h *CardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if (req.Beats == nil) != (req.LosesTo == nil) {
		WriteError(w, NewInvalidRequestError("beats and loses_to must be given together"))
		return
	}

	draft := model.CardDraft{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Stats:       req.Stats,
	}

	var (
		card *model.Card
		err  error
	)
	if req.Beats != nil {
		card, err = h.sessions.SubmitCard(r.Context(), draft, model.CardID(*req.Beats), model.CardID(*req.LosesTo))
	} else {
		card, err = h.catalog.Admit(r.Context(), draft)
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CardFromModel(card))
}
