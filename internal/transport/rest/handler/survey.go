package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"surveyeditor/internal/model"
	"surveyeditor/internal/service"
	"surveyeditor/internal/survey"
)

// SurveyHandler handles survey endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc}
}

// UpdateSurveyRequest is the request body for saving a survey
type UpdateSurveyRequest struct {
	Title     string          `json:"title"`
	Questions json.RawMessage `json:"questions"`
}

// Create handles POST /v1/surveys
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := h.surveySvc.CreateNew(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"surveyId": id})
}

// List handles GET /v1/surveys
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	surveys, err := h.surveySvc.ListOwned(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	operations, err := h.surveySvc.RecentOperations(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"surveys":    surveys,
		"operations": operations,
	})
}

// Get handles GET /v1/surveys/{surveyId}
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	sv, err := h.surveySvc.GetOwned(r.Context(), user, mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewSurveyView(sv))
}

// Update handles PUT /v1/surveys/{surveyId}
func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdateSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := survey.Parse(req.Questions)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sv, err := h.surveySvc.Save(r.Context(), user, mux.Vars(r)["surveyId"], req.Title, doc)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewSurveyView(sv))
}

// Toggle handles POST /v1/surveys/{surveyId}/toggle
func (h *SurveyHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	active, err := h.surveySvc.ToggleStatus(r.Context(), user, mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"isActive": active})
}

// Delete handles DELETE /v1/surveys/{surveyId}
func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.surveySvc.Delete(r.Context(), user, mux.Vars(r)["surveyId"]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
