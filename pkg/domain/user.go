// Package domain defines the user record managed by userdesk and the document
// layout it is persisted in.
package domain

import "time"

// Role enumerates the access levels a user record may carry.
type Role string

// Supported roles. Values outside this set are rejected before persistence.
const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
)

// Roles lists the valid roles in presentation order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleViewer}
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Address is the postal address nested in a user record.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

// Company is the employer nested in a user record.
type Company struct {
	Name string `json:"name"`
}

// User is the sole persisted entity.
type User struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Website        *string  `json:"website,omitempty"`
	IsActive       bool     `json:"isActive"`
	Skills         []string `json:"skills"`
	AvailableSlots []string `json:"availableSlots"`
	Address        Address  `json:"address"`
	Company        Company  `json:"company"`
	Role           Role     `json:"role"`
	CreatedAt      string   `json:"createdAt,omitempty"`
	UpdatedAt      string   `json:"updatedAt,omitempty"`
}

// Normalize replaces nil sequences with empty ones so records always encode
// skills and availableSlots as arrays.
func (u *User) Normalize() {
	if u.Skills == nil {
		u.Skills = []string{}
	}
	if u.AvailableSlots == nil {
		u.AvailableSlots = []string{}
	}
}

// WebsiteOrEmpty returns the website or "" when absent.
func (u User) WebsiteOrEmpty() string {
	if u.Website == nil {
		return ""
	}
	return *u.Website
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	out := u
	if u.Website != nil {
		w := *u.Website
		out.Website = &w
	}
	if u.Skills != nil {
		out.Skills = append([]string(nil), u.Skills...)
	}
	if u.AvailableSlots != nil {
		out.AvailableSlots = append([]string(nil), u.AvailableSlots...)
	}
	return out
}

// TimestampLayout is the ISO-8601 layout used for createdAt and updatedAt:
// UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t using TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
