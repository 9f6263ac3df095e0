package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"jsonstore/internal/models"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

// ReadBody reads the whole request body. Read failures are reported as an
// invalid body, and an oversized body as models.ErrBodyTooLarge as well.
func ReadBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: %w: limit %d bytes", models.ErrInvalidBody, models.ErrBodyTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidBody, err)
	}

	return body, nil
}
