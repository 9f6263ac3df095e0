package models

import "jsonstore/internal/jsondoc"

// JSONStoreItem is a named JSON document addressed by its xid. A nil
// JSONData means the item carries no payload at all, which is different from
// a payload that is JSON null.
type JSONStoreItem struct {
	ID             int64          `json:"id"`
	XID            string         `json:"xid" validate:"required,max=100"`
	Name           string         `json:"name" validate:"required,max=255"`
	ReadPermission []string       `json:"readPermission" validate:"dive,required,max=255"`
	EditPermission []string       `json:"editPermission" validate:"dive,required,max=255"`
	JSONData       *jsondoc.Value `json:"jsonData,omitempty"`
	Version        int64          `json:"-"`
}

func (i *JSONStoreItem) Clone() *JSONStoreItem {
	out := *i
	out.ReadPermission = append([]string(nil), i.ReadPermission...)
	out.EditPermission = append([]string(nil), i.EditPermission...)
	if i.JSONData != nil {
		out.JSONData = i.JSONData.Clone()
	}
	return &out
}
