package emailverify

import (
	"context"
	"jsonstore/internal/models"
	errutils "jsonstore/internal/utils/http_errors"
	respond "jsonstore/internal/utils/http_response"
	"log/slog"
	"net/http"
)

// PublicKey responds with the PEM encoded verification key as a JSON string.
func PublicKey(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, pk PublicKeyProvider) {
	op := pkg + "PublicKey"

	log = log.With(slog.String("op", op))

	key, err := pk.PublicKey()
	if err != nil {
		errutils.Log(log, "failed to get public key", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusOK, key); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func Verify(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, tv TokenVerifier) {
	op := pkg + "Verify"

	log = log.With(slog.String("op", op))

	token := r.URL.Query().Get("token")
	if token == "" {
		log.Warn("token is missing")
		errutils.WriteError(w, models.ErrInvalidToken)
		return
	}

	res, err := tv.Verify(token)
	if err != nil {
		errutils.Log(log, "failed to verify token", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusOK, res); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
