package appuser

import "time"

// Role of a staff account. Stored only; this service enforces no
// authorization beyond keeping the string.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a staff account. Credential is an opaque string compared verbatim
// and never serialized in responses.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Credential  string    `json:"-"`
	DisplayName string    `json:"displayName"`
	Role        Role      `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Patch carries a partial update: nil fields keep their prior value. The
// typed struct replaces per-endpoint "if defined, append to update" SQL.
type Patch struct {
	Username    *string `json:"username,omitempty"`
	Credential  *string `json:"credential,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	Role        *Role   `json:"role,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Username == nil && p.Credential == nil && p.DisplayName == nil &&
		p.Role == nil && p.Active == nil
}

// Apply merges the patch into a user record.
func (p Patch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Credential != nil {
		u.Credential = *p.Credential
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
}
