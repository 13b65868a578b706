package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/AccountKeeper/internal/models"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name    string
		login   string
		wantErr string
	}{
		{name: "empty", login: "", wantErr: msgLoginRequired},
		{name: "whitespace only", login: "   \t", wantErr: msgLoginRequired},
		{name: "simple", login: "alice"},
		{name: "exactly 100", login: strings.Repeat("a", 100)},
		{name: "101", login: strings.Repeat("a", 101), wantErr: msgLoginTooLong},
		{name: "100 multibyte", login: strings.Repeat("ж", 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, ValidateLogin(tt.login))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password *string
		typ      models.AccountType
		wantErr  string
	}{
		{name: "local nil", password: nil, typ: models.Local, wantErr: msgPasswordRequired},
		{name: "local empty", password: models.StringPtr(""), typ: models.Local, wantErr: msgPasswordRequired},
		{name: "local blank", password: models.StringPtr("  "), typ: models.Local, wantErr: msgPasswordRequired},
		{name: "local ok", password: models.StringPtr("secret"), typ: models.Local},
		{name: "local 100", password: models.StringPtr(strings.Repeat("p", 100)), typ: models.Local},
		{name: "local 101", password: models.StringPtr(strings.Repeat("p", 101)), typ: models.Local, wantErr: msgPasswordTooLong},
		{name: "ldap nil", password: nil, typ: models.LDAP},
		{name: "ldap empty", password: models.StringPtr(""), typ: models.LDAP},
		{name: "ldap too long", password: models.StringPtr(strings.Repeat("p", 500)), typ: models.LDAP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, ValidatePassword(tt.password, tt.typ))
		})
	}
}

func TestValidateLabel(t *testing.T) {
	assert.Empty(t, ValidateLabel(""))
	assert.Empty(t, ValidateLabel("work; home"))
	assert.Empty(t, ValidateLabel(strings.Repeat("x", 50)))
	assert.Equal(t, msgLabelTooLong, ValidateLabel(strings.Repeat("x", 51)))
}

func TestLabelsFormat(t *testing.T) {
	assert.True(t, LabelsFormat(""))
	assert.True(t, LabelsFormat("a;b;c"))
	assert.True(t, LabelsFormat(strings.Repeat("x", 50)+";  y"))
	assert.False(t, LabelsFormat("a;"+strings.Repeat("x", 51)))
}

func TestParseLabels(t *testing.T) {
	got := ParseLabels("a; b ;;c")
	assert.Equal(t, []models.AccountLabel{{Text: "a"}, {Text: "b"}, {Text: "c"}}, got)

	assert.Empty(t, ParseLabels(""))
	assert.Empty(t, ParseLabels(" ; ;"))
	assert.NotNil(t, ParseLabels(""))
}

func TestValidateAllFields_ValidLocal(t *testing.T) {
	res := ValidateAllFields("team", "alice", models.StringPtr("secret"), models.Local)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
}

func TestValidateAllFields_CollectsAllErrors(t *testing.T) {
	res := ValidateAllFields(strings.Repeat("x", 51), "", nil, models.Local)
	require.False(t, res.IsValid)
	assert.Equal(t, models.AccountErrors{
		models.FieldLabel:    msgLabelTooLong,
		models.FieldLogin:    msgLoginRequired,
		models.FieldPassword: msgPasswordRequired,
	}, res.Errors)
}

func TestValidateAllFields_LDAPIgnoresPassword(t *testing.T) {
	for _, p := range []*string{nil, models.StringPtr(""), models.StringPtr(strings.Repeat("p", 200))} {
		res := ValidateAllFields("", "bob", p, models.LDAP)
		assert.True(t, res.IsValid)
		assert.NotContains(t, res.Errors, models.FieldPassword)
	}
}

func TestValidateUpdate(t *testing.T) {
	res := ValidateUpdate(models.AccountUpdate{})
	require.False(t, res.IsValid)
	assert.Contains(t, res.Errors, models.FieldLogin)
	assert.NotContains(t, res.Errors, models.FieldPassword)

	res = ValidateUpdate(models.AccountUpdate{
		Login: models.StringPtr(""),
		Type:  models.TypePtr(models.Local),
	})
	require.False(t, res.IsValid)
	assert.Equal(t, msgLoginRequired, res.Errors[models.FieldLogin])
	assert.Equal(t, msgPasswordRequired, res.Errors[models.FieldPassword])
}

func TestErr(t *testing.T) {
	assert.NoError(t, Err(models.ValidationResult{IsValid: true, Errors: models.AccountErrors{}}))

	err := Err(ValidateAllFields("", "", nil, models.Local))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 2)
	assert.Equal(t, models.FieldLogin, verr.Errors[0].Field)
	assert.Equal(t, models.FieldPassword, verr.Errors[1].Field)
}
