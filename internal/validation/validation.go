// Package validation holds the field rules for account input.
// All functions are pure; an empty message means the value is valid.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/atinyakov/AccountKeeper/internal/models"
)

// LabelSeparator splits Account.Label into sub-labels.
const LabelSeparator = ";"

var (
	msgLoginRequired    = "login is required"
	msgLoginTooLong     = fmt.Sprintf("login must not exceed %d characters", models.LoginMaxLength)
	msgPasswordRequired = "password is required for a local account"
	msgPasswordTooLong  = fmt.Sprintf("password must not exceed %d characters", models.PasswordMaxLength)
	msgLabelTooLong     = fmt.Sprintf("label must not exceed %d characters", models.LabelMaxLength)
	msgLabelPartTooLong = fmt.Sprintf("one or more labels exceed %d characters", models.LabelMaxLength)
)

// MaxLength reports whether value has at most limit characters.
func MaxLength(value string, limit int) bool {
	return utf8.RuneCountInString(value) <= limit
}

// Required reports whether value has any non-whitespace character.
func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// LabelsFormat reports whether every ';'-separated segment of labels fits the label limit.
func LabelsFormat(labels string) bool {
	if !Required(labels) {
		return true
	}
	for _, part := range strings.Split(labels, LabelSeparator) {
		if !MaxLength(strings.TrimSpace(part), models.LabelMaxLength) {
			return false
		}
	}
	return true
}

// ParseLabels splits label on ';', trims every segment and drops empty ones.
func ParseLabels(label string) []models.AccountLabel {
	out := []models.AccountLabel{}
	for _, part := range strings.Split(label, LabelSeparator) {
		text := strings.TrimSpace(part)
		if text == "" {
			continue
		}
		out = append(out, models.AccountLabel{Text: text})
	}
	return out
}

// ValidateLogin checks that login is present and short enough.
func ValidateLogin(login string) string {
	if !Required(login) {
		return msgLoginRequired
	}
	if !MaxLength(login, models.LoginMaxLength) {
		return msgLoginTooLong
	}
	return ""
}

// ValidatePassword only constrains LOCAL accounts.
func ValidatePassword(password *string, accountType models.AccountType) string {
	if accountType != models.Local {
		return ""
	}
	if password == nil || !Required(*password) {
		return msgPasswordRequired
	}
	if !MaxLength(*password, models.PasswordMaxLength) {
		return msgPasswordTooLong
	}
	return ""
}

// ValidateLabel checks the whole label and each of its segments.
func ValidateLabel(label string) string {
	if !MaxLength(label, models.LabelMaxLength) {
		return msgLabelTooLong
	}
	if !LabelsFormat(label) {
		return msgLabelPartTooLong
	}
	return ""
}

// ValidateAllFields runs every field check and collects all failures.
func ValidateAllFields(label, login string, password *string, accountType models.AccountType) models.ValidationResult {
	errs := models.AccountErrors{}
	if msg := ValidateLabel(label); msg != "" {
		errs[models.FieldLabel] = msg
	}
	if msg := ValidateLogin(login); msg != "" {
		errs[models.FieldLogin] = msg
	}
	if msg := ValidatePassword(password, accountType); msg != "" {
		errs[models.FieldPassword] = msg
	}
	return models.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateUpdate applies the field rules to a candidate account.
// A missing label is not checked; a missing login is reported as required;
// a missing type skips the password rule.
func ValidateUpdate(u models.AccountUpdate) models.ValidationResult {
	var label, login string
	var accountType models.AccountType
	if u.Label != nil {
		label = *u.Label
	}
	if u.Login != nil {
		login = *u.Login
	}
	if u.Type != nil {
		accountType = *u.Type
	}
	return ValidateAllFields(label, login, u.Password, accountType)
}

// Err converts a failed result into a *models.ValidationError; nil when valid.
func Err(r models.ValidationResult) error {
	if r.IsValid {
		return nil
	}
	return models.NewValidationError(r.Errors)
}
