package data

import (
	"context"
	errutils "jsonstore/internal/utils/http_errors"
	respond "jsonstore/internal/utils/http_response"
	"log/slog"
	"net/http"
)

// Delete responds with the removed value, or 204 when nothing was stored.
func Delete(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, xid string, pointer string, dd DataDeleter) {
	op := pkg + "Delete"

	log = log.With(slog.String("op", op), slog.String("xid", xid), slog.String("pointer", pointer))

	removed, err := dd.DeleteData(ctx, xid, pointer)
	if err != nil {
		errutils.Log(log, "failed to delete data", err)
		errutils.WriteError(w, err)
		return
	}

	if removed == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := respond.WriteJSON(w, http.StatusOK, removed); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
