package query

import (
	"context"
	errutils "jsonstore/internal/utils/http_errors"
	respond "jsonstore/internal/utils/http_response"
	"log/slog"
	"net/http"
)

// Get runs the request's raw query string as an RQL expression against the
// collection at pointer. The query is passed on still percent-encoded.
func Get(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, xid string, pointer string, q Querier) {
	op := pkg + "Get"

	rawQuery := r.URL.RawQuery

	log = log.With(
		slog.String("op", op),
		slog.String("xid", xid),
		slog.String("pointer", pointer),
		slog.String("query", rawQuery),
	)

	res, err := q.Query(ctx, xid, pointer, rawQuery)
	if err != nil {
		errutils.Log(log, "failed to query data", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusOK, res); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
