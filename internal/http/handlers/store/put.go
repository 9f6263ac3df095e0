package store

import (
	"context"
	"fmt"
	"jsonstore/internal/dto"
	"jsonstore/internal/models"
	errutils "jsonstore/internal/utils/http_errors"
	respond "jsonstore/internal/utils/http_response"
	parseutil "jsonstore/internal/utils/parseFlag"
	"log/slog"
	"net/http"
)

// Update replaces the item's metadata. The payload is only replaced when the
// body carries a jsonData member.
func Update(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, xid string, iu ItemUpdater) {
	op := pkg + "Update"

	log = log.With(slog.String("op", op), slog.String("xid", xid))

	withData := parseutil.ParseFlag(r.URL.Query().Get("withData"))

	body, err := respond.ReadBody(r)
	if err != nil {
		errutils.Log(log, "failed to read body", err)
		errutils.WriteError(w, err)
		return
	}

	item, hasData, err := dto.JSONStoreItemFromBody(body)
	if err != nil {
		log.Warn("failed to decode item", slog.String("error", err.Error()))
		errutils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidBody, err))
		return
	}

	updated, err := iu.UpdateItem(ctx, xid, item, hasData)
	if err != nil {
		errutils.Log(log, "failed to update item", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusOK, dto.NewJSONStoreItemResponse(updated, withData)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
