// Package http provides the loopback JSON API over the account store.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/AccountKeeper/internal/models"
	"github.com/atinyakov/AccountKeeper/internal/store"
	"github.com/atinyakov/AccountKeeper/internal/validation"
)

// AccountStore defines the store operations required by AccountHandler.
// *store.Store satisfies it.
type AccountStore interface {
	Snapshot() store.State
	Err() error
	AccountTypeOptions() []models.AccountTypeOption
	AddAccount() string
	GetAccountByID(id string) (models.Account, bool)
	ValidateAccount(u models.AccountUpdate) models.ValidationResult
	ValidateAndSaveAccount(id string, u models.AccountUpdate) models.ValidationResult
	RemoveAccount(id string) bool
	ClearAllAccounts()
	ClearError()
	LoadFromStorage()
}

// AccountHandler handles HTTP requests for account management.
type AccountHandler struct {
	Store AccountStore
}

type stateResponse struct {
	Count     int    `json:"count"`
	Local     int    `json:"local"`
	LDAP      int    `json:"ldap"`
	IsLoading bool   `json:"isLoading"`
	LastError string `json:"lastError"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Error   string               `json:"error"`
	IsValid bool                 `json:"isValid"`
	Errors  models.AccountErrors `json:"errors"`
}

var errUnknownType = errors.New("unknown account type")

// List handles GET /api/accounts.
// The optional query parameter type=LDAP|LOCAL filters the result.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	st := h.Store.Snapshot()
	switch t := models.AccountType(r.URL.Query().Get("type")); t {
	case "":
		writeJSON(w, http.StatusOK, st.Accounts)
	case models.LDAP:
		writeJSON(w, http.StatusOK, st.LDAPAccounts())
	case models.Local:
		writeJSON(w, http.StatusOK, st.LocalAccounts())
	default:
		writeError(w, http.StatusBadRequest, errUnknownType.Error())
	}
}

// Create handles POST /api/accounts.
// An empty body appends a blank LOCAL account. A body is validated as a
// complete account first and nothing is created when it is invalid.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, empty, err := decodeUpdate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !empty {
		candidate := mergeUpdate(models.Account{Type: models.Local, Password: models.StringPtr("")}, u)
		if err := validation.Err(h.Store.ValidateAccount(candidate)); err != nil {
			writeStoreError(w, err)
			return
		}
		u = candidate
	}

	id := h.Store.AddAccount()
	if !empty {
		h.Store.ValidateAndSaveAccount(id, u)
	}
	if err := h.Store.Err(); err != nil {
		writeStoreError(w, err)
		return
	}

	acc, _ := h.Store.GetAccountByID(id)
	w.Header().Set("Location", "/api/accounts/"+id)
	writeJSON(w, http.StatusCreated, acc)
}

// Get handles GET /api/accounts/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.Store.GetAccountByID(chi.URLParam(r, "id"))
	if !ok {
		writeStoreError(w, models.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// Update handles PATCH /api/accounts/{id}.
// Fields absent from the body keep their stored values, so the merged
// account is what gets validated.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, _, err := decodeUpdate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cur, ok := h.Store.GetAccountByID(id)
	if !ok {
		writeStoreError(w, models.ErrNotFound)
		return
	}

	res := h.Store.ValidateAndSaveAccount(id, mergeUpdate(cur, u))
	if len(res.Errors) > 0 {
		writeStoreError(w, validation.Err(res))
		return
	}
	if err := h.Store.Err(); err != nil {
		writeStoreError(w, err)
		return
	}

	acc, _ := h.Store.GetAccountByID(id)
	writeJSON(w, http.StatusOK, acc)
}

// Delete handles DELETE /api/accounts/{id}.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.Store.RemoveAccount(chi.URLParam(r, "id"))
	if err := h.Store.Err(); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/accounts.
func (h *AccountHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.Store.ClearAllAccounts()
	if err := h.Store.Err(); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Types handles GET /api/account-types.
func (h *AccountHandler) Types(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.AccountTypeOptions())
}

// State handles GET /api/state.
func (h *AccountHandler) State(w http.ResponseWriter, r *http.Request) {
	st := h.Store.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{
		Count:     st.Count(),
		Local:     len(st.LocalAccounts()),
		LDAP:      len(st.LDAPAccounts()),
		IsLoading: st.IsLoading,
		LastError: st.LastError,
	})
}

// ClearError handles DELETE /api/state/error.
func (h *AccountHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	h.Store.ClearError()
	w.WriteHeader(http.StatusNoContent)
}

// Reload handles POST /api/reload.
func (h *AccountHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.Store.LoadFromStorage()
	if err := h.Store.Err(); errors.Is(err, models.ErrStorage) {
		writeStoreError(w, err)
		return
	}
	h.State(w, r)
}

// decodeUpdate reads an AccountUpdate from the body. empty reports a
// body with no content.
func decodeUpdate(r *http.Request) (u models.AccountUpdate, empty bool, err error) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&u); err != nil {
		if errors.Is(err, io.EOF) {
			return u, true, nil
		}
		return u, false, errors.New("invalid body")
	}
	if u.Type != nil && !u.Type.IsValid() {
		return u, false, errUnknownType
	}
	return u, false, nil
}

// mergeUpdate fills the nil fields of u from base.
func mergeUpdate(base models.Account, u models.AccountUpdate) models.AccountUpdate {
	if u.Label == nil {
		u.Label = models.StringPtr(base.Label)
	}
	if u.Type == nil {
		u.Type = models.TypePtr(base.Type)
	}
	if u.Login == nil {
		u.Login = models.StringPtr(base.Login)
	}
	if u.Password == nil && base.Password != nil {
		u.Password = models.StringPtr(*base.Password)
	}
	return u
}

// writeStoreError maps the error taxonomy to a status code: validation
// failures to 422, a missing account to 404 and storage failures to 500.
func writeStoreError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
			Error:  verr.Error(),
			Errors: verr.Fields(),
		})
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
