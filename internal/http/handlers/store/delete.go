package store

import (
	"context"
	"jsonstore/internal/dto"
	errutils "jsonstore/internal/utils/http_errors"
	respond "jsonstore/internal/utils/http_response"
	parseutil "jsonstore/internal/utils/parseFlag"
	"log/slog"
	"net/http"
)

// Delete removes the item and responds with its last state.
func Delete(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, xid string, id ItemDeleter) {
	op := pkg + "Delete"

	log = log.With(slog.String("op", op), slog.String("xid", xid))

	withData := parseutil.ParseFlag(r.URL.Query().Get("withData"))

	deleted, err := id.DeleteItem(ctx, xid)
	if err != nil {
		errutils.Log(log, "failed to delete item", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusOK, dto.NewJSONStoreItemResponse(deleted, withData)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
