// ABOUTME: Identity decoding shared by backend entities
// ABOUTME: Accepts "_id" or "id" members holding either strings or numbers

package models

import (
	"encoding/json"
	"fmt"
)

// flexID decodes a JSON string or number into its string form.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// pickID prefers the backend's "_id" over a plain "id".
func pickID(mongoID, plainID flexID) string {
	if mongoID != "" {
		return string(mongoID)
	}
	return string(plainID)
}
