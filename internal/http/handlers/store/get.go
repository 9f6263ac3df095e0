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

func Get(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, xid string, ip ItemProvider) {
	op := pkg + "Get"

	log = log.With(slog.String("op", op), slog.String("xid", xid))

	withData := parseutil.ParseFlag(r.URL.Query().Get("withData"))

	item, err := ip.ItemByXID(ctx, xid)
	if err != nil {
		errutils.Log(log, "failed to get item", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusOK, dto.NewJSONStoreItemResponse(item, withData)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
