package shell

import (
	"strings"

	"github.com/atinyakov/AccountKeeper/internal/models"
)

// clearValue entered at a label prompt empties the label.
const clearValue = "-"

// askRaw prints question and returns the line as typed, without the line
// terminator; ok is false at end of input.
func (sh *Shell) askRaw(question string) (string, bool) {
	sh.printf("%s", question)
	if !sh.in.Scan() {
		return "", false
	}
	return strings.TrimSuffix(sh.in.Text(), "\r"), true
}

// ask is askRaw with surrounding whitespace trimmed.
func (sh *Shell) ask(question string) (string, bool) {
	answer, ok := sh.askRaw(question)
	return strings.TrimSpace(answer), ok
}

// askDefault keeps def when the answer is empty.
func (sh *Shell) askDefault(question, def string) (string, bool) {
	if def != "" {
		question += " [" + def + "]"
	}
	answer, ok := sh.ask(question + ": ")
	if ok && answer == "" {
		answer = def
	}
	return answer, ok
}

// promptAccount collects a full account candidate starting from cur.
// The type is asked only for new accounts; the password only for LOCAL ones.
func (sh *Shell) promptAccount(cur models.Account, withType bool) (models.AccountUpdate, bool) {
	var u models.AccountUpdate

	accountType := cur.Type
	if withType {
		answer, ok := sh.askDefault("Type (LDAP/LOCAL)", string(cur.Type))
		if !ok {
			return u, false
		}
		accountType = models.AccountType(strings.ToUpper(answer))
		if !accountType.IsValid() {
			sh.println("Unknown type; use LDAP or LOCAL")
			return u, false
		}
	}
	u.Type = &accountType

	question := "Labels (separated by ';')"
	if cur.Label != "" {
		question += ", '" + clearValue + "' to clear"
	}
	label, ok := sh.askDefault(question, cur.Label)
	if !ok {
		return u, false
	}
	if label == clearValue {
		label = ""
	}
	u.Label = &label

	login, ok := sh.askDefault("Login", cur.Login)
	if !ok {
		return u, false
	}
	u.Login = &login

	if accountType == models.Local {
		question := "Password: "
		if cur.Password != nil && *cur.Password != "" {
			question = "Password (leave empty to keep): "
		}
		password, ok := sh.askRaw(question)
		if !ok {
			return u, false
		}
		if password == "" && cur.Password != nil {
			password = *cur.Password
		}
		u.Password = &password
	}
	return u, true
}
