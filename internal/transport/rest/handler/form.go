package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"surveyeditor/internal/model"
	"surveyeditor/internal/service"
	"surveyeditor/internal/transport/rest/middleware"
)

// FormHandler serves active surveys to respondents
type FormHandler struct {
	surveySvc   *service.SurveyService
	responseSvc *service.ResponseService
}

// NewFormHandler creates a new form handler
func NewFormHandler(surveySvc *service.SurveyService, responseSvc *service.ResponseService) *FormHandler {
	return &FormHandler{
		surveySvc:   surveySvc,
		responseSvc: responseSvc,
	}
}

// List handles GET /v1/forms
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.surveySvc.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"surveys": surveys})
}

// Get handles GET /v1/forms/{surveyId}
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	sv, err := h.surveySvc.GetForm(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewSurveyView(sv))
}

// Submit handles POST /v1/forms/{surveyId}/responses
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var respondent *model.User
	if user, ok := middleware.GetUser(r.Context()); ok {
		respondent = &user
	}

	resp, err := h.responseSvc.Submit(r.Context(), mux.Vars(r)["surveyId"], respondent, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"responseId": resp.ID})
}
