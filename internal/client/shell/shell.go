// Package shell implements the interactive account manager console.
package shell

import (
	"bufio"
	"encoding/json"
	"fmt"
	"errors"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/atinyakov/AccountKeeper/internal/models"
	"github.com/atinyakov/AccountKeeper/internal/store"
	"github.com/atinyakov/AccountKeeper/internal/validation"
)

const prompt = "accounts> "

const helpText = `Available commands:
  help                      show this help
  add                       create an account and fill it in
  list [LDAP|LOCAL]         list accounts
  get <id>                  show one account
  edit <id>                 edit label ('-' clears it), login and password
  type <id> <LDAP|LOCAL>    change the account type
  delete <id>               delete an account
  clear                     delete all accounts
  reload                    reload accounts from storage
  types                     show account types
  stats                     show counters and the last error
  exit                      leave the shell`

// AccountStore defines the store operations used by the shell.
// *store.Store satisfies it.
type AccountStore interface {
	Snapshot() store.State
	LastError() string
	AccountTypeOptions() []models.AccountTypeOption
	AddAccount() string
	GetAccountByID(id string) (models.Account, bool)
	UpdateAccount(id string, u models.AccountUpdate) bool
	ValidateAndSaveAccount(id string, u models.AccountUpdate) models.ValidationResult
	RemoveAccount(id string) bool
	ClearAllAccounts()
	ClearError()
	LoadFromStorage()
}

// Shell reads commands line by line and applies them to the store.
type Shell struct {
	store AccountStore
	in    *bufio.Scanner
	out   io.Writer
}

// New returns a shell reading from in and writing to out.
func New(s AccountStore, in io.Reader, out io.Writer) *Shell {
	return &Shell{store: s, in: bufio.NewScanner(in), out: out}
}

// Run executes commands until "exit" or end of input.
func (sh *Shell) Run() error {
	for {
		sh.printf("%s", prompt)
		if !sh.in.Scan() {
			sh.println()
			return sh.in.Err()
		}
		args := strings.Fields(sh.in.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			sh.println("Bye")
			return nil
		}
		sh.exec(args)
	}
}

func (sh *Shell) exec(args []string) {
	switch args[0] {
	case "help":
		sh.println(helpText)
	case "add":
		sh.add()
	case "list":
		sh.list(args[1:])
	case "get":
		if id, ok := sh.idArg(args, "get <id>"); ok {
			sh.get(id)
		}
	case "edit":
		if id, ok := sh.idArg(args, "edit <id>"); ok {
			sh.edit(id)
		}
	case "type":
		if len(args) < 3 {
			sh.println("Usage: type <id> <LDAP|LOCAL>")
			return
		}
		sh.setType(args[1], models.AccountType(strings.ToUpper(args[2])))
	case "delete":
		if id, ok := sh.idArg(args, "delete <id>"); ok {
			sh.delete(id)
		}
	case "clear":
		sh.clear()
	case "reload":
		sh.store.LoadFromStorage()
		if !sh.reportError() {
			sh.printf("Loaded %d account(s)\n", sh.store.Snapshot().Count())
		}
	case "types":
		for _, opt := range sh.store.AccountTypeOptions() {
			sh.printf("%-6s %-5s %s\n", opt.Label, opt.Value, opt.Description)
		}
	case "stats":
		sh.stats()
	default:
		sh.println("Unknown command. Type 'help' for a list of commands.")
	}
}

func (sh *Shell) idArg(args []string, usage string) (string, bool) {
	if len(args) < 2 {
		sh.println("Usage: " + usage)
		return "", false
	}
	return args[1], true
}

func (sh *Shell) add() {
	id := sh.store.AddAccount()
	if sh.reportError() {
		return
	}
	acc, _ := sh.store.GetAccountByID(id)
	u, ok := sh.promptAccount(acc, true)
	if !ok {
		sh.printf("Draft %s kept; use 'edit %s' to fill it in\n", id, id)
		return
	}
	if sh.save(id, u) {
		sh.printf("Account %s added\n", id)
		return
	}
	sh.printf("Draft %s kept; use 'edit %s' to fix it\n", id, id)
}

func (sh *Shell) edit(id string) {
	acc, ok := sh.store.GetAccountByID(id)
	if !ok {
		sh.println("Account not found")
		return
	}
	u, ok := sh.promptAccount(acc, false)
	if !ok {
		return
	}
	if sh.save(id, u) {
		sh.println("Account updated")
	}
}

// save validates and stores u, printing field errors on failure.
func (sh *Shell) save(id string, u models.AccountUpdate) bool {
	res := sh.store.ValidateAndSaveAccount(id, u)
	var verr *models.ValidationError
	if len(res.Errors) > 0 && errors.As(validation.Err(res), &verr) {
		for _, fe := range verr.Errors {
			sh.printf("  %s: %s\n", fe.Field, fe.Message)
		}
		return false
	}
	return !sh.reportError()
}

func (sh *Shell) setType(id string, t models.AccountType) {
	if !t.IsValid() {
		sh.println("Unknown type; use LDAP or LOCAL")
		return
	}
	if !sh.store.UpdateAccount(id, models.AccountUpdate{Type: &t}) {
		sh.store.ClearError()
		sh.println("Account not found")
		return
	}
	if !sh.reportError() {
		sh.printf("Account %s is now %s\n", id, t)
	}
}

func (sh *Shell) delete(id string) {
	if !sh.store.RemoveAccount(id) {
		sh.store.ClearError()
		sh.println("Account not found")
		return
	}
	if !sh.reportError() {
		sh.println("Account deleted")
	}
}

func (sh *Shell) clear() {
	answer, ok := sh.ask("Delete all accounts? Type 'yes' to confirm: ")
	if !ok || answer != "yes" {
		sh.println("Cancelled")
		return
	}
	sh.store.ClearAllAccounts()
	if !sh.reportError() {
		sh.println("All accounts deleted")
	}
}

func (sh *Shell) list(args []string) {
	st := sh.store.Snapshot()
	accounts := st.Accounts
	if len(args) > 0 {
		switch models.AccountType(strings.ToUpper(args[0])) {
		case models.LDAP:
			accounts = st.LDAPAccounts()
		case models.Local:
			accounts = st.LocalAccounts()
		default:
			sh.println("Usage: list [LDAP|LOCAL]")
			return
		}
	}
	if len(accounts) == 0 {
		sh.println("No accounts")
		return
	}

	tw := tabwriter.NewWriter(sh.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tLOGIN\tLABELS")
	for _, a := range accounts {
		labels := make([]string, len(a.Labels))
		for i, l := range a.Labels {
			labels[i] = l.Text
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Type, a.Login, strings.Join(labels, ", "))
	}
	_ = tw.Flush()
}

func (sh *Shell) get(id string) {
	acc, ok := sh.store.GetAccountByID(id)
	if !ok {
		sh.println("Account not found")
		return
	}
	if acc.Password != nil {
		acc.Password = models.StringPtr(strings.Repeat("*", 8))
	}
	b, _ := json.MarshalIndent(acc, "", "  ")
	sh.println(string(b))
}

func (sh *Shell) stats() {
	st := sh.store.Snapshot()
	sh.printf("Total: %d  LOCAL: %d  LDAP: %d\n", st.Count(), len(st.LocalAccounts()), len(st.LDAPAccounts()))
	if st.LastError != "" {
		sh.printf("Last error: %s\n", st.LastError)
	}
}

// reportError prints and clears LastError; it reports whether there was one.
func (sh *Shell) reportError() bool {
	msg := sh.store.LastError()
	if msg == "" {
		return false
	}
	sh.printf("Error: %s\n", msg)
	sh.store.ClearError()
	return true
}

func (sh *Shell) printf(format string, a ...any) { fmt.Fprintf(sh.out, format, a...) }

func (sh *Shell) println(a ...any) { fmt.Fprintln(sh.out, a...) }
