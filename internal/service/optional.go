package service

import (
	"bytes"
	"encoding/json"
)

// OptionalString tells an omitted JSON field apart from an explicit null
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

// UnmarshalJSON is only called when the field is present in the document
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}
