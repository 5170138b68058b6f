package handler

import (
	"net/http"

	"github.com/mcoot/committy/internal/api/response"
	"github.com/mcoot/committy/internal/model"
	"github.com/mcoot/committy/internal/services/catalog"
	"github.com/mcoot/committy/internal/services/report"
)

// ReportHandler handles filing and reviewing card reports
type ReportHandler struct {
	reports *report.Service
	catalog *catalog.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *report.Service, catalog *catalog.Service) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		catalog: catalog,
	}
}

// Create handles POST /api/v1/cards/{id}/reports
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathCardID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	filed, err := h.reports.Report(r.Context(), cardID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.ReportFromModel(filed, nil))
}

// List handles GET /api/v1/admin/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	ids := make([]model.CardID, len(reports))
	for i, rep := range reports {
		ids[i] = rep.CardID
	}
	cards, err := h.catalog.FetchByIDs(r.Context(), ids)
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.Report, len(reports))
	for i, rep := range reports {
		out[i] = response.ReportFromModel(rep, cards[rep.CardID])
	}
	response.JSON(w, http.StatusOK, response.ReportList{Reports: out})
}

// Get handles GET /api/v1/admin/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	rep, err := h.reports.Get(r.Context(), model.ReportID(id))
	if err != nil {
		WriteError(w, err)
		return
	}
	card, err := h.catalog.Get(r.Context(), rep.CardID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ReportFromModel(rep, card))
}

// Delete handles DELETE /api/v1/admin/reports/{id}
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.reports.Dismiss(r.Context(), model.ReportID(id)); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// ClearForCard handles DELETE /api/v1/admin/cards/{id}/reports
func (h *ReportHandler) ClearForCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathCardID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	n, err := h.reports.DismissForCard(r.Context(), cardID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Cleared{Cleared: n})
}
