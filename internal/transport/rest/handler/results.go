package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"surveyeditor/internal/service"
)

// ResultsHandler serves aggregated responses to the survey owner
type ResultsHandler struct {
	resultsSvc *service.ResultsService
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(resultsSvc *service.ResultsService) *ResultsHandler {
	return &ResultsHandler{resultsSvc: resultsSvc}
}

// Get handles GET /v1/surveys/{surveyId}/results
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	results, err := h.resultsSvc.Results(r.Context(), user, mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// ExportCSV handles GET /v1/surveys/{surveyId}/results.csv
func (h *ResultsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	surveyID := mux.Vars(r)["surveyId"]
	var buf bytes.Buffer
	if err := h.resultsSvc.ExportCSV(r.Context(), user, surveyID, &buf); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="survey_%s_responses.csv"`, surveyID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
