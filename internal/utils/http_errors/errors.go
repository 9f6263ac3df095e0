package utils

import (
	"encoding/json"
	"errors"
	"jsonstore/internal/models"
	"log/slog"
	"net/http"
)

type Result struct {
	Messages []models.ValidationMessage `json:"messages"`
}

type ErrorResponse struct {
	Error  string  `json:"error"`
	Status string  `json:"status"`
	Result *Result `json:"result,omitempty"`
}

type errorKind struct {
	code   int
	status string
	errs   []error
}

var kinds = []errorKind{
	{http.StatusUnprocessableEntity, "VALIDATION_FAILED", []error{models.ErrValidationFailed}},
	{http.StatusBadRequest, "INVALID_TOKEN", []error{models.ErrInvalidToken}},
	{http.StatusNotFound, "NOT_FOUND", []error{models.ErrItemNotFound, models.ErrDataNotFound, models.ErrUserNotFound}},
	{http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", []error{models.ErrBodyTooLarge}},
	{http.StatusBadRequest, "BAD_REQUEST", []error{
		models.ErrInvalidParams,
		models.ErrInvalidBody,
		models.ErrInvalidQuery,
		models.ErrInvalidPointer,
		models.ErrNotCollection,
		models.ErrWrongTokenKind,
	}},
	{http.StatusConflict, "CONFLICT", []error{
		models.ErrXIDExists,
		models.ErrUserExists,
		models.ErrEmailInUse,
		models.ErrRegistrationDisabled,
		models.ErrTokenUsed,
	}},
	{http.StatusForbidden, "FORBIDDEN", []error{models.ErrForbidden}},
	{http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", []error{models.ErrMethodNotAllowed}},
}

// WriteError maps err onto the error taxonomy and writes the matching JSON
// body. Anything unrecognised becomes a 500 without its message.
func WriteError(w http.ResponseWriter, err error) {
	kind, target := classify(err)
	if kind == nil {
		write(w, http.StatusInternalServerError, ErrorResponse{
			Error:  models.ErrInternal.Error(),
			Status: StatusName(http.StatusInternalServerError),
		})
		return
	}

	resp := ErrorResponse{Error: target.Error(), Status: kind.status}
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		resp.Result = &Result{Messages: vErr.Messages}
	}
	write(w, kind.code, resp)
}

// Code returns the HTTP status WriteError would use for err.
func Code(err error) int {
	kind, _ := classify(err)
	if kind == nil {
		return http.StatusInternalServerError
	}
	return kind.code
}

func classify(err error) (*errorKind, error) {
	for i := range kinds {
		for _, target := range kinds[i].errs {
			if errors.Is(err, target) {
				return &kinds[i], target
			}
		}
	}
	return nil, nil
}

// Log records a failed request at Warn for client errors and Error for
// internal ones.
func Log(log *slog.Logger, msg string, err error) {
	if Code(err) >= http.StatusInternalServerError {
		log.Error(msg, slog.String("error", err.Error()))
		return
	}
	log.Warn(msg, slog.String("error", err.Error()))
}

func WriteJSONError(w http.ResponseWriter, code int, msg string) {
	write(w, code, ErrorResponse{Error: msg, Status: StatusName(code)})
}

// StatusName returns the status name used in error bodies for an HTTP code.
func StatusName(code int) string {
	switch code {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusUnprocessableEntity:
		return "VALIDATION_FAILED"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "REQUEST_TOO_LARGE"
	case http.StatusInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	}
	if code >= 400 && code < 500 {
		return "BAD_REQUEST"
	}
	return "INTERNAL_SERVER_ERROR"
}

func write(w http.ResponseWriter, code int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
