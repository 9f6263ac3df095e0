package dto

import (
	"encoding/json"
	"jsonstore/internal/jsondoc"
	"jsonstore/internal/models"
	"strings"
)

// Permission is a role list. Clients may send it as an array or as a single
// comma separated string.
type Permission []string

func (p *Permission) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*p = list
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	out := make([]string, 0)
	for _, role := range strings.Split(s, ",") {
		if role = strings.TrimSpace(role); role != "" {
			out = append(out, role)
		}
	}
	*p = out
	return nil
}

type JSONStoreItemRequest struct {
	XID            string     `json:"xid"`
	Name           string     `json:"name"`
	ReadPermission Permission `json:"readPermission"`
	EditPermission Permission `json:"editPermission"`
}

// JSONStoreItemFromBody decodes an item request. The payload is reported
// separately so that an absent jsonData can be told apart from an explicit
// null.
func JSONStoreItemFromBody(body []byte) (*models.JSONStoreItem, bool, error) {
	var req JSONStoreItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, false, err
	}

	doc, err := jsondoc.Parse(body)
	if err != nil {
		return nil, false, err
	}

	item := &models.JSONStoreItem{
		XID:            req.XID,
		Name:           req.Name,
		ReadPermission: permissions(req.ReadPermission),
		EditPermission: permissions(req.EditPermission),
	}

	data, hasData := doc.Get("jsonData")
	if hasData {
		item.JSONData = data
	}

	return item, hasData, nil
}

func permissions(p Permission) []string {
	if p == nil {
		return []string{}
	}
	return []string(p)
}

type JSONStoreItemResponse struct {
	ID             int64          `json:"id"`
	XID            string         `json:"xid"`
	Name           string         `json:"name"`
	ReadPermission []string       `json:"readPermission"`
	EditPermission []string       `json:"editPermission"`
	JSONData       *jsondoc.Value `json:"jsonData,omitempty"`
}

func NewJSONStoreItemResponse(item *models.JSONStoreItem, withData bool) JSONStoreItemResponse {
	resp := JSONStoreItemResponse{
		ID:             item.ID,
		XID:            item.XID,
		Name:           item.Name,
		ReadPermission: permissions(item.ReadPermission),
		EditPermission: permissions(item.EditPermission),
	}
	if withData {
		resp.JSONData = item.JSONData
	}
	return resp
}
