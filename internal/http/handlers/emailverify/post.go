package emailverify

import (
	"context"
	"encoding/json"
	"fmt"
	"jsonstore/internal/dto"
	"jsonstore/internal/models"
	errutils "jsonstore/internal/utils/http_errors"
	respond "jsonstore/internal/utils/http_response"
	"log/slog"
	"net/http"
)

// SendEmail is the public endpoint. It never reveals whether the address is
// already registered.
func SendEmail(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, es EmailSender) {
	op := pkg + "SendEmail"

	log = log.With(slog.String("op", op))

	var req dto.EmailRequest
	if !decode(log, w, r, &req) {
		return
	}

	if err := es.SendEmail(ctx, req.EmailAddress); err != nil {
		errutils.Log(log, "failed to send email", err)
		errutils.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func SendUserEmail(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, es EmailSender) {
	op := pkg + "SendUserEmail"

	log = log.With(slog.String("op", op))

	var req dto.EmailRequest
	if !decode(log, w, r, &req) {
		return
	}

	if err := es.SendUserEmail(ctx, req.EmailAddress, req.Username); err != nil {
		errutils.Log(log, "failed to send email", err)
		errutils.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func CreateToken(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, tc TokenCreator) {
	op := pkg + "CreateToken"

	log = log.With(slog.String("op", op))

	var req dto.EmailRequest
	if !decode(log, w, r, &req) {
		return
	}

	token, err := tc.CreateToken(ctx, req.EmailAddress, req.Username)
	if err != nil {
		errutils.Log(log, "failed to create token", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusOK, token); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// Register creates the account. Only username, name and password are taken
// from the submitted user.
func Register(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, reg Registrar) {
	op := pkg + "Register"

	log = log.With(slog.String("op", op))

	var req dto.RegisterRequest
	if !decode(log, w, r, &req) {
		return
	}

	user := models.User{
		Username: req.User.Username,
		Name:     req.User.Name,
	}

	created, err := reg.Register(ctx, req.Token, user, req.User.Password)
	if err != nil {
		errutils.Log(log, "failed to register user", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusCreated, dto.NewUserResponse(created)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func UpdateEmail(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, eu EmailUpdater) {
	op := pkg + "UpdateEmail"

	log = log.With(slog.String("op", op))

	var req dto.TokenRequest
	if !decode(log, w, r, &req) {
		return
	}

	user, err := eu.UpdateEmail(ctx, req.Token)
	if err != nil {
		errutils.Log(log, "failed to update email", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusOK, dto.NewUserResponse(user)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

func decode(log *slog.Logger, w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := respond.ReadBody(r)
	if err != nil {
		errutils.Log(log, "failed to read body", err)
		errutils.WriteError(w, err)
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		log.Warn("unmarshal body", slog.String("error", err.Error()))
		errutils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidBody, err))
		return false
	}

	return true
}
