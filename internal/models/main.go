// Package models defines the core data structures for accounts and their validation.
package models

import "time"

// AccountType defines the set of valid account kinds.
type AccountType string

const (
	// LDAP represents an account authenticated externally; it carries no password.
	LDAP AccountType = "LDAP"
	// Local represents an account with a locally stored password.
	Local AccountType = "LOCAL"
)

func (t AccountType) String() string { return string(t) }

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case LDAP, Local:
		return true
	}
	return false
}

// Field length limits, counted in characters.
const (
	LabelMaxLength    = 50
	LoginMaxLength    = 100
	PasswordMaxLength = 100
)

// Field names used as keys in AccountErrors.
const (
	FieldLabel    = "label"
	FieldLogin    = "login"
	FieldPassword = "password"
)

// AccountLabel is a single sub-label parsed from Account.Label.
type AccountLabel struct {
	Text string `json:"text" cbor:"text"`
}

// Account is a stored credential record.
type Account struct {
	// ID is the unique identifier, assigned at creation and never changed.
	ID string `json:"id" cbor:"id"`
	// Label is the free-text display name; may hold several labels separated by ';'.
	Label string `json:"label" cbor:"label"`
	// Labels is derived from Label and must not be edited directly.
	Labels []AccountLabel `json:"labels" cbor:"labels"`
	// Type is LDAP or LOCAL.
	Type AccountType `json:"type" cbor:"type"`
	// Login is the account login name.
	Login string `json:"login" cbor:"login"`
	// Password is nil for LDAP accounts.
	Password *string `json:"password" cbor:"password"`
	// CreatedAt is set once at creation.
	CreatedAt time.Time `json:"createdAt" cbor:"createdAt"`
	// UpdatedAt is set on every mutation.
	UpdatedAt time.Time `json:"updatedAt" cbor:"updatedAt"`
}

// Clone returns a deep copy of a so callers cannot alias store internals.
func (a Account) Clone() Account {
	out := a
	if a.Labels != nil {
		out.Labels = append([]AccountLabel(nil), a.Labels...)
	}
	if a.Password != nil {
		p := *a.Password
		out.Password = &p
	}
	return out
}

// AccountUpdate carries a partial update. Nil fields are left untouched.
type AccountUpdate struct {
	Label    *string      `json:"label,omitempty"`
	Type     *AccountType `json:"type,omitempty"`
	Login    *string      `json:"login,omitempty"`
	Password *string      `json:"password,omitempty"`
}

// AccountErrors maps a field name to a human-readable message.
// A missing key means the field is valid.
type AccountErrors map[string]string

// ValidationResult is the outcome of validating an account candidate.
type ValidationResult struct {
	IsValid bool          `json:"isValid"`
	Errors  AccountErrors `json:"errors"`
}

// AccountTypeOption describes one entry of the account type selector.
type AccountTypeOption struct {
	Label       string      `json:"label"`
	Value       AccountType `json:"value"`
	Description string      `json:"description"`
}

// AccountTypeOptions returns the static catalog of selectable account types.
func AccountTypeOptions() []AccountTypeOption {
	return []AccountTypeOption{
		{Label: "LDAP", Value: LDAP, Description: "Password is not required"},
		{Label: "Local", Value: Local, Description: "Password is required"},
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// TypePtr returns a pointer to t.
func TypePtr(t AccountType) *AccountType { return &t }
