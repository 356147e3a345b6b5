package entity

import (
	"bytes"
	"encoding/json"
)

// RefID is a foreign key the backend sends either as a plain id string or as
// a populated object carrying `_id`.
type RefID string

func (r *RefID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RefID(s)
		return nil
	}

	var obj struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.MongoID != "" {
		*r = RefID(obj.MongoID)
	} else {
		*r = RefID(obj.ID)
	}
	return nil
}

func (r RefID) String() string {
	return string(r)
}

// NamedRef is the populated form of a reference as embedded in list payloads.
type NamedRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Meta is the pagination block of the backend envelope.
type Meta struct {
	Total         int `json:"total,omitempty"`
	TotalFiltered int `json:"totalFiltered,omitempty"`
	Page          int `json:"page,omitempty"`
	Limit         int `json:"limit,omitempty"`
}
