package store

import (
	"context"
	"encoding/json"
	"errors"
	"jsonstore/internal/jsondoc"
	"jsonstore/internal/models"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockItemService struct{ mock.Mock }

func (m *mockItemService) ItemByXID(ctx context.Context, xid string) (*models.JSONStoreItem, error) {
	args := m.Called(ctx, xid)
	return args.Get(0).(*models.JSONStoreItem), args.Error(1)
}

func (m *mockItemService) CreateItem(ctx context.Context, item *models.JSONStoreItem) (*models.JSONStoreItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(*models.JSONStoreItem), args.Error(1)
}

func (m *mockItemService) UpdateItem(ctx context.Context, xid string, item *models.JSONStoreItem, replaceData bool) (*models.JSONStoreItem, error) {
	args := m.Called(ctx, xid, item, replaceData)
	return args.Get(0).(*models.JSONStoreItem), args.Error(1)
}

func (m *mockItemService) DeleteItem(ctx context.Context, xid string) (*models.JSONStoreItem, error) {
	args := m.Called(ctx, xid)
	return args.Get(0).(*models.JSONStoreItem), args.Error(1)
}

func testItem() *models.JSONStoreItem {
	return &models.JSONStoreItem{
		ID:             1,
		XID:            "item-1",
		Name:           "test json store",
		ReadPermission: []string{},
		EditPermission: []string{"admin"},
		JSONData:       jsondoc.MustParse(`{"foo":["bar","baz"]}`),
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestGet_WithData(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/json/store/item-1?withData=true", nil)
	ctx := req.Context()

	svc := new(mockItemService)
	svc.On("ItemByXID", ctx, "item-1").Return(testItem(), nil)

	Get(ctx, slog.Default(), w, req, "item-1", svc)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"id":1,"xid":"item-1","name":"test json store","readPermission":[],"editPermission":["admin"],"jsonData":{"foo":["bar","baz"]}}`,
		w.Body.String())
	svc.AssertExpectations(t)
}

func TestGet_WithoutData(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/json/store/item-1", nil)
	ctx := req.Context()

	svc := new(mockItemService)
	svc.On("ItemByXID", ctx, "item-1").Return(testItem(), nil)

	Get(ctx, slog.Default(), w, req, "item-1", svc)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w), "jsonData")
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/json/store/missing", nil)
	ctx := req.Context()

	svc := new(mockItemService)
	svc.On("ItemByXID", ctx, "missing").Return((*models.JSONStoreItem)(nil), models.ErrItemNotFound)

	Get(ctx, slog.Default(), w, req, "missing", svc)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["status"])
}

func TestCreate_Success(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	body := `{"xid":"item-1","name":"test json store","readPermission":"","editPermission":"admin","jsonData":{"foo":["bar","baz"]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/json/store?withData=true", strings.NewReader(body))
	ctx := req.Context()

	svc := new(mockItemService)
	svc.On("CreateItem", ctx, mock.MatchedBy(func(item *models.JSONStoreItem) bool {
		return item.XID == "item-1" &&
			len(item.ReadPermission) == 0 &&
			assert.ObjectsAreEqual([]string{"admin"}, item.EditPermission) &&
			item.JSONData != nil && item.JSONData.String() == `{"foo":["bar","baz"]}`
	})).Return(testItem(), nil)

	Create(ctx, slog.Default(), w, req, svc)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(1), resp["id"])
	assert.Contains(t, resp, "jsonData")
	svc.AssertExpectations(t)
}

func TestCreate_InvalidBody(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/json/store", strings.NewReader(`{"xid":`))

	Create(req.Context(), slog.Default(), w, req, new(mockItemService))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decode(t, w)["status"])
}

func TestCreate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		code   int
		status string
	}{
		{"duplicate xid", models.ErrXIDExists, http.StatusConflict, "CONFLICT"},
		{"validation", &models.ValidationError{Messages: []models.ValidationMessage{{Property: "name", Message: "required"}}}, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/json/store", strings.NewReader(`{"xid":"x"}`))
			ctx := req.Context()

			svc := new(mockItemService)
			svc.On("CreateItem", ctx, mock.Anything).Return((*models.JSONStoreItem)(nil), tt.err)

			Create(ctx, slog.Default(), w, req, svc)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.status, decode(t, w)["status"])
		})
	}
}

func TestUpdate_ReplaceDataOnlyWhenPresent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		replaceData bool
	}{
		{"without data", `{"xid":"item-1","name":"renamed"}`, false},
		{"with data", `{"xid":"item-1","name":"renamed","jsonData":{"test":1}}`, true},
		{"with null data", `{"xid":"item-1","name":"renamed","jsonData":null}`, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/api/json/store/item-1", strings.NewReader(tt.body))
			ctx := req.Context()

			svc := new(mockItemService)
			svc.On("UpdateItem", ctx, "item-1", mock.AnythingOfType("*models.JSONStoreItem"), tt.replaceData).
				Return(testItem(), nil)

			Update(ctx, slog.Default(), w, req, "item-1", svc)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.NotContains(t, decode(t, w), "jsonData")
			svc.AssertExpectations(t)
		})
	}
}

func TestUpdate_NotFound(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/json/store/missing", strings.NewReader(`{"name":"n"}`))
	ctx := req.Context()

	svc := new(mockItemService)
	svc.On("UpdateItem", ctx, "missing", mock.Anything, false).Return((*models.JSONStoreItem)(nil), models.ErrItemNotFound)

	Update(ctx, slog.Default(), w, req, "missing", svc)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelete_ReturnsSnapshot(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/json/store/item-1?withData=true", nil)
	ctx := req.Context()

	svc := new(mockItemService)
	svc.On("DeleteItem", ctx, "item-1").Return(testItem(), nil)

	Delete(ctx, slog.Default(), w, req, "item-1", svc)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "item-1", resp["xid"])
	assert.Equal(t, map[string]any{"foo": []any{"bar", "baz"}}, resp["jsonData"])
}

func TestDelete_NotFound(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/json/store/missing", nil)
	ctx := req.Context()

	svc := new(mockItemService)
	svc.On("DeleteItem", ctx, "missing").Return((*models.JSONStoreItem)(nil), models.ErrItemNotFound)

	Delete(ctx, slog.Default(), w, req, "missing", svc)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
