package data

import (
	"context"
	errutils "jsonstore/internal/utils/http_errors"
	respond "jsonstore/internal/utils/http_response"
	"log/slog"
	"net/http"
)

func Get(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, xid string, pointer string, dp DataProvider) {
	op := pkg + "Get"

	log = log.With(slog.String("op", op), slog.String("xid", xid), slog.String("pointer", pointer))

	value, err := dp.Data(ctx, xid, pointer)
	if err != nil {
		errutils.Log(log, "failed to get data", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusOK, value); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
