// internal/directory/directory.go
//
// Directory is the in-memory registry of users and accounts. It replaces the
// process-wide lists the system grew out of: a Directory is built once at
// startup and passed explicitly to whoever needs lookups, so there is no
// hidden global state.
package directory

import (
	"time"

	"github.com/shopspring/decimal"

	"bancore/internal/domain"
	"bancore/internal/identity"
	"bancore/internal/util"
)

// DefaultBranchCode is stamped on every account.
const DefaultBranchCode = "0001"

// Directory holds all known users and accounts and assigns account numbers
// monotonically starting at 1. It is not safe for concurrent use; the service
// layer serializes access.
type Directory struct {
	branchCode  string
	users       []*domain.User
	accounts    []*domain.Account
	nextAccount int64
}

// New returns an empty Directory using branchCode for new accounts.
func New(branchCode string) *Directory {
	if branchCode == "" {
		branchCode = DefaultBranchCode
	}
	return &Directory{branchCode: branchCode, nextAccount: 1}
}

// RegisterUser validates the identifier and birth date, rejects duplicate
// identifiers and adds the user to the registry.
func (d *Directory) RegisterUser(name, cpf, birthDate, address string, now time.Time) (*domain.User, error) {
	if !identity.ValidateCPF(cpf) {
		return nil, util.ErrInvalidIdentifier
	}
	if !identity.ValidateBirthDate(birthDate) {
		return nil, util.ErrInvalidDate
	}
	if d.UserByCPF(cpf) != nil {
		return nil, util.ErrDuplicateIdentifier
	}
	user := domain.NewUser(name, cpf, birthDate, address, now)
	d.users = append(d.users, user)
	return user, nil
}

// OpenAccount creates a new account for the user identified by cpf.
func (d *Directory) OpenAccount(cpf string, now time.Time) (*domain.Account, error) {
	user := d.UserByCPF(cpf)
	if user == nil {
		return nil, util.ErrUserNotFound
	}
	acct := domain.NewAccount(d.branchCode, d.nextAccount, user, now)
	d.accounts = append(d.accounts, acct)
	d.nextAccount++
	return acct, nil
}

// UserByCPF returns the user registered under cpf, or nil.
func (d *Directory) UserByCPF(cpf string) *domain.User {
	for _, u := range d.users {
		if u.CPF == cpf {
			return u
		}
	}
	return nil
}

// Account returns the account with the given number, or ErrAccountNotFound.
func (d *Directory) Account(number int64) (*domain.Account, error) {
	for _, a := range d.accounts {
		if a.Number == number {
			return a, nil
		}
	}
	return nil, util.ErrAccountNotFound
}

// Users returns the registered users in registration order.
func (d *Directory) Users() []*domain.User { return d.users }

// Accounts returns the open accounts in creation order.
func (d *Directory) Accounts() []*domain.Account { return d.accounts }

// NextAccountNumber returns the number the next opened account will get.
func (d *Directory) NextAccountNumber() int64 { return d.nextAccount }

// AccountSummary is a flattened view of an account for listings.
type AccountSummary struct {
	Number     int64           `json:"numero_conta"`
	BranchCode string          `json:"agencia"`
	Holder     string          `json:"titular"`
	CPF        string          `json:"cpf"`
	Balance    decimal.Decimal `json:"saldo"`
	CreatedAt  time.Time       `json:"data_criacao"`
}

// Summaries returns one AccountSummary per account, in creation order.
func (d *Directory) Summaries() []AccountSummary {
	out := make([]AccountSummary, 0, len(d.accounts))
	for _, a := range d.accounts {
		out = append(out, AccountSummary{
			Number:     a.Number,
			BranchCode: a.BranchCode,
			Holder:     a.Owner.Name,
			CPF:        a.Owner.CPF,
			Balance:    a.Balance,
			CreatedAt:  a.CreatedAt,
		})
	}
	return out
}

// Restore replaces the Directory contents with previously loaded state. The
// next account number is clamped so it never collides with a restored
// account.
func (d *Directory) Restore(users []*domain.User, accounts []*domain.Account, nextAccount int64) {
	d.users = users
	d.accounts = accounts
	if nextAccount < 1 {
		nextAccount = 1
	}
	for _, a := range accounts {
		if a.Number >= nextAccount {
			nextAccount = a.Number + 1
		}
	}
	d.nextAccount = nextAccount
}
