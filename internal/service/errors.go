package service

import "errors"

var (
	ErrSurveyNotFound = errors.New("survey not found")
	ErrSurveyInactive = errors.New("survey is not accepting responses")
	ErrForbidden      = errors.New("survey belongs to another user")
)
