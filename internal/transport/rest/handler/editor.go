package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"surveyeditor/internal/model"
	"surveyeditor/internal/service"
	"surveyeditor/internal/survey"
)

// EditorHandler exposes the editing session of a survey
type EditorHandler struct {
	editorSvc *service.EditorService
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editorSvc *service.EditorService) *EditorHandler {
	return &EditorHandler{editorSvc: editorSvc}
}

// PreviewRequest carries hypothetical answers keyed by question index
type PreviewRequest struct {
	Answers survey.Answers `json:"answers"`
}

// CommitRequest is the request body for committing a draft
type CommitRequest struct {
	Title string `json:"title"`
}

// Open handles POST /v1/surveys/{surveyId}/draft
func (h *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	doc, err := h.editorSvc.Open(r.Context(), user, mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": doc})
}

// Get handles GET /v1/surveys/{surveyId}/draft
func (h *EditorHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	doc, err := h.editorSvc.Draft(r.Context(), user, mux.Vars(r)["surveyId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": doc})
}

// Apply handles POST /v1/surveys/{surveyId}/draft/mutations
func (h *EditorHandler) Apply(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var m service.Mutation
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.editorSvc.Apply(r.Context(), user, mux.Vars(r)["surveyId"], m)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": doc})
}

// Triggers handles GET /v1/surveys/{surveyId}/draft/triggers/{index}
func (h *EditorHandler) Triggers(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question index")
		return
	}

	triggers, err := h.editorSvc.Triggers(r.Context(), user, vars["surveyId"], index)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"triggers": triggers})
}

// Preview handles POST /v1/surveys/{surveyId}/draft/preview
func (h *EditorHandler) Preview(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	visible, err := h.editorSvc.Preview(r.Context(), user, mux.Vars(r)["surveyId"], req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"visible": visible})
}

// Commit handles POST /v1/surveys/{surveyId}/draft/commit
func (h *EditorHandler) Commit(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CommitRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	sv, err := h.editorSvc.Commit(r.Context(), user, mux.Vars(r)["surveyId"], req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NewSurveyView(sv))
}

// Discard handles DELETE /v1/surveys/{surveyId}/draft
func (h *EditorHandler) Discard(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.editorSvc.Discard(r.Context(), user, mux.Vars(r)["surveyId"]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
