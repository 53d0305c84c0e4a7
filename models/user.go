// ABOUTME: User identity and role models
// ABOUTME: The profile cached in the signed "user" cookie and returned by /auth/me

package models

import "encoding/json"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// LandingPath is where a freshly authenticated user is sent.
func (r Role) LandingPath() string {
	if r == RoleAdmin {
		return "/admin/dashboard"
	}
	return "/dashboard"
}

// User is the client's read-only view of the authenticated account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	type Alias User
	aux := struct {
		*Alias
		MongoID flexID `json:"_id"`
		ID      flexID `json:"id"`
	}{Alias: (*Alias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.ID = pickID(aux.MongoID, aux.ID)
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
