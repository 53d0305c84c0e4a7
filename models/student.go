// ABOUTME: Student account models
// ABOUTME: Mirrors the backend student document and its create/update payload

package models

import "encoding/json"

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

type Student struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Bio       string `json:"bio,omitempty"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (s *Student) UnmarshalJSON(data []byte) error {
	type Alias Student
	aux := struct {
		*Alias
		MongoID flexID `json:"_id"`
		ID      flexID `json:"id"`
	}{Alias: (*Alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.ID = pickID(aux.MongoID, aux.ID)
	return nil
}

func (s Student) Status() string {
	if s.IsActive {
		return StatusActive
	}
	return StatusInactive
}

// StudentInput is the body of POST and PATCH /students. Password is omitted
// when empty so an edit keeps the existing one.
type StudentInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Bio      string `json:"bio,omitempty"`
	IsActive bool   `json:"isActive"`
}
