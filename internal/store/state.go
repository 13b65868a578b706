package store

import "github.com/atinyakov/AccountKeeper/internal/models"

// State is an immutable snapshot of the store.
type State struct {
	// Accounts in insertion order.
	Accounts []models.Account
	// IsLoading is true only while LoadFromStorage runs.
	IsLoading bool
	// LastError is the message of the last failed operation, "" when none.
	LastError string
}

// Count returns the number of accounts.
func (s State) Count() int { return len(s.Accounts) }

// HasAccounts reports whether there is at least one account.
func (s State) HasAccounts() bool { return len(s.Accounts) > 0 }

// LocalAccounts returns the LOCAL accounts in insertion order.
func (s State) LocalAccounts() []models.Account { return s.byType(models.Local) }

// LDAPAccounts returns the LDAP accounts in insertion order.
func (s State) LDAPAccounts() []models.Account { return s.byType(models.LDAP) }

func (s State) byType(t models.AccountType) []models.Account {
	out := []models.Account{}
	for _, a := range s.Accounts {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

func (s State) clone() State {
	out := s
	out.Accounts = cloneAccounts(s.Accounts)
	return out
}

func cloneAccounts(in []models.Account) []models.Account {
	out := make([]models.Account, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
