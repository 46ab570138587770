package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"surveyeditor/internal/model"
	"surveyeditor/internal/service"
	"surveyeditor/internal/survey"
	"surveyeditor/internal/transport/rest/middleware"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service and document errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *survey.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": err.Error(),
			"field": verr.Field,
		})
	case errors.Is(err, survey.ErrIndex), errors.Is(err, survey.ErrFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSurveyNotFound), errors.Is(err, service.ErrSurveyInactive):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("Request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// requireUser returns the authenticated user or answers 401
func requireUser(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return user, ok
}
