// Package store owns the in-memory account list, its derived views and the
// persistence boundary.
//
// Every operation runs to completion synchronously: it mutates a fresh copy
// of the account list, writes the whole list to the storage slot and then
// notifies subscribers with the new snapshot. Operations never return Go
// errors; failures surface as a boolean, a ValidationResult or LastError.
package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/AccountKeeper/internal/client/storage"
	"github.com/atinyakov/AccountKeeper/internal/codec"
	"github.com/atinyakov/AccountKeeper/internal/models"
	"github.com/atinyakov/AccountKeeper/internal/validation"
)

// Messages stored in State.LastError.
const (
	MsgNotFound   = "account not found"
	MsgLoadFailed = "failed to load data"
	MsgSaveFailed = "failed to save data"
)

// Store is the account state container.
type Store struct {
	mu    sync.Mutex
	state State

	slot  storage.Slot
	key   string
	codec codec.Codec
	log   *zap.Logger
	now   func() time.Time
	newID func(time.Time) string

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// New constructs an empty store bound to slot. It does not read the slot.
func New(slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		state: State{Accounts: []models.Account{}},
		slot:  slot,
		key:   DefaultKey,
		codec: codec.JSON{},
		log:   zap.NewNop(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: NewID,
		subs:  make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open constructs a store and hydrates it from slot.
func Open(slot storage.Slot, opts ...Option) *Store {
	s := New(slot, opts...)
	s.LoadFromStorage()
	return s
}

// Subscribe registers fn to receive every new snapshot. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st.clone())
	}
}

// commit runs fn under the store lock and then notifies subscribers.
func (s *Store) commit(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.state
	s.mu.Unlock()
	s.notify(snap)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Accounts returns a copy of the account list.
func (s *Store) Accounts() []models.Account { return s.Snapshot().Accounts }

// IsLoading reports whether a load is in progress.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsLoading
}

// LastError returns the last failure message, "" when none.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LastError
}

// Count returns the number of accounts.
func (s *Store) Count() int { return s.Snapshot().Count() }

// HasAccounts reports whether the list is non-empty.
func (s *Store) HasAccounts() bool { return s.Snapshot().HasAccounts() }

// LocalAccounts returns the LOCAL subset.
func (s *Store) LocalAccounts() []models.Account { return s.Snapshot().LocalAccounts() }

// LDAPAccounts returns the LDAP subset.
func (s *Store) LDAPAccounts() []models.Account { return s.Snapshot().LDAPAccounts() }

// AccountTypeOptions returns the static type selector catalog.
func (s *Store) AccountTypeOptions() []models.AccountTypeOption {
	return models.AccountTypeOptions()
}

// AddAccount appends an empty LOCAL account and returns its id.
// The new account is deliberately incomplete; the caller is expected to
// fill it in through ValidateAndSaveAccount.
func (s *Store) AddAccount() string {
	var id string
	s.commit(func() {
		now := s.now()
		acc := models.Account{
			ID:        s.newID(now),
			Label:     "",
			Labels:    validation.ParseLabels(""),
			Type:      models.Local,
			Login:     "",
			Password:  models.StringPtr(""),
			CreatedAt: now,
			UpdatedAt: now,
		}
		id = acc.ID
		s.state.Accounts = append(slices.Clone(s.state.Accounts), acc)
		s.log.Debug("account added", zap.String("id", id))
		s.persistLocked()
	})
	return id
}

// UpdateAccount merges u over the account with the given id.
// Changing the type to LDAP, or supplying a password for an LDAP account,
// leaves the password nil.
func (s *Store) UpdateAccount(id string, u models.AccountUpdate) bool {
	var ok bool
	s.commit(func() {
		ok = s.updateLocked(id, u)
	})
	return ok
}

func (s *Store) updateLocked(id string, u models.AccountUpdate) bool {
	idx := s.indexLocked(id)
	if idx < 0 {
		s.state.LastError = MsgNotFound
		s.log.Debug("update of unknown account", zap.String("id", id))
		return false
	}

	prev := s.state.Accounts[idx]
	next := prev.Clone()
	if u.Label != nil {
		next.Label = *u.Label
		next.Labels = validation.ParseLabels(*u.Label)
	}
	if u.Type != nil {
		next.Type = *u.Type
	}
	if u.Login != nil {
		next.Login = *u.Login
	}
	if u.Password != nil {
		next.Password = models.StringPtr(*u.Password)
	}
	if next.Type == models.LDAP && (prev.Type != models.LDAP || u.Password != nil) {
		next.Password = nil
	}
	next.UpdatedAt = s.now()

	accounts := slices.Clone(s.state.Accounts)
	accounts[idx] = next
	s.state.Accounts = accounts
	s.persistLocked()
	return true
}

// RemoveAccount deletes the account with the given id and reports whether
// anything was removed.
func (s *Store) RemoveAccount(id string) bool {
	var removed bool
	s.commit(func() {
		idx := s.indexLocked(id)
		if idx < 0 {
			s.state.LastError = MsgNotFound
			return
		}
		s.state.Accounts = slices.Delete(slices.Clone(s.state.Accounts), idx, idx+1)
		removed = true
		s.log.Debug("account removed", zap.String("id", id))
		s.persistLocked()
	})
	return removed
}

// GetAccountByID returns a copy of the account and whether it exists.
func (s *Store) GetAccountByID(id string) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return models.Account{}, false
	}
	return s.state.Accounts[idx].Clone(), true
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.state.Accounts, func(a models.Account) bool { return a.ID == id })
}

// Err returns LastError as an error: models.ErrNotFound for a missing
// account, an error wrapping models.ErrStorage otherwise, nil when none.
func (s *Store) Err() error {
	msg := s.LastError()
	switch msg {
	case "":
		return nil
	case MsgNotFound:
		return models.ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, models.ErrStorage)
}

// ValidateAccount applies the field rules to a candidate account.
func (s *Store) ValidateAccount(u models.AccountUpdate) models.ValidationResult {
	return validation.ValidateUpdate(u)
}

// ValidateAndSaveAccount validates u and, only when valid, applies it with
// UpdateAccount. If the update fails the result is marked invalid even
// though it carries no field errors.
func (s *Store) ValidateAndSaveAccount(id string, u models.AccountUpdate) models.ValidationResult {
	res := s.ValidateAccount(u)
	if res.IsValid && !s.UpdateAccount(id, u) {
		res.IsValid = false
	}
	return res
}

// ClearError resets LastError.
func (s *Store) ClearError() {
	s.commit(func() {
		s.state.LastError = ""
	})
}

// ClearAllAccounts empties the list and persists it.
func (s *Store) ClearAllAccounts() {
	s.commit(func() {
		s.state.Accounts = []models.Account{}
		s.persistLocked()
	})
}

// LoadFromStorage replaces the list with the slot contents.
// An absent key or an empty value leaves the list untouched. Any read or decode failure
// discards the whole list.
func (s *Store) LoadFromStorage() {
	s.commit(func() {
		s.state.IsLoading = true
	})

	s.commit(func() {
		defer func() { s.state.IsLoading = false }()

		accounts, found, err := s.readLocked()
		if err != nil {
			s.log.Error("failed to load accounts", zap.String("key", s.key), zap.Error(err))
			s.state.LastError = MsgLoadFailed
			s.state.Accounts = []models.Account{}
			return
		}
		if !found {
			return
		}
		s.state.Accounts = accounts
		s.state.LastError = ""
		s.log.Info("accounts loaded", zap.Int("count", len(accounts)), zap.String("slot", s.slot.Path()))
	})
}

func (s *Store) readLocked() ([]models.Account, bool, error) {
	data, err := s.slot.Get(s.key)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", models.ErrStorage, err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	accounts, err := s.codec.Unmarshal(data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", models.ErrStorage, err)
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	for i := range accounts {
		accounts[i].Labels = validation.ParseLabels(accounts[i].Label)
	}
	return accounts, true, nil
}

// Persist writes the current list to the slot and returns the write error.
func (s *Store) Persist() error {
	var err error
	s.commit(func() {
		err = s.persistLocked()
	})
	return err
}

// persistLocked overwrites the slot and clears LastError. A failure sets
// LastError but keeps the in-memory state.
func (s *Store) persistLocked() error {
	data, err := s.codec.Marshal(s.state.Accounts)
	if err == nil {
		err = s.slot.Set(s.key, data)
	}
	if err != nil {
		s.log.Error("failed to save accounts", zap.String("key", s.key), zap.Error(err))
		s.state.LastError = MsgSaveFailed
		return fmt.Errorf("%w: %w", models.ErrStorage, err)
	}
	s.state.LastError = ""
	return nil
}
