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

func Create(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, ic ItemCreator) {
	op := pkg + "Create"

	log = log.With(slog.String("op", op))

	withData := parseutil.ParseFlag(r.URL.Query().Get("withData"))

	body, err := respond.ReadBody(r)
	if err != nil {
		errutils.Log(log, "failed to read body", err)
		errutils.WriteError(w, err)
		return
	}

	item, _, err := dto.JSONStoreItemFromBody(body)
	if err != nil {
		log.Warn("failed to decode item", slog.String("error", err.Error()))
		errutils.WriteError(w, fmt.Errorf("%w: %v", models.ErrInvalidBody, err))
		return
	}

	created, err := ic.CreateItem(ctx, item)
	if err != nil {
		errutils.Log(log, "failed to create item", err)
		errutils.WriteError(w, err)
		return
	}

	if err := respond.WriteJSON(w, http.StatusCreated, dto.NewJSONStoreItemResponse(created, withData)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
