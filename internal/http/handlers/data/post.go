package data

import (
	"context"
	"fmt"
	"jsonstore/internal/jsondoc"
	"jsonstore/internal/models"
	errutils "jsonstore/internal/utils/http_errors"
	respond "jsonstore/internal/utils/http_response"
	"log/slog"
	"net/http"
)

// Set writes the raw JSON body at pointer and responds with the stored value.
func Set(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, xid string, pointer string, ds DataSetter) {
	op := pkg + "Set"

	log = log.With(slog.String("op", op), slog.String("xid", xid), slog.String("pointer", pointer))

	body, err := respond.ReadBody(r)
	if err != nil {
		errutils.Log(log, "failed to read body", err)
		errutils.WriteError(w, err)
		return
	}

	value, err := jsondoc.Parse(body)
	if err != nil {
		log.Warn("body is not json", slog.String("error", err.Error()))
		errutils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidBody, err))
		return
	}

	written, err := ds.SetData(ctx, xid, pointer, value)
	if err != nil {
		errutils.Log(log, "failed to set data", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusOK, written); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
