// internal/service/bank_service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bancore/internal/audit"
	"bancore/internal/directory"
	"bancore/internal/domain"
	"bancore/internal/ledger"
	"bancore/internal/storage"
	"bancore/internal/util"
)

// BankService defines the interface for the banking business logic exposed to
// callers (HTTP handlers, CLIs). Amounts arrive as already-parsed decimals;
// all interactive concerns stay with the caller.
type BankService interface {
	CreateUser(ctx context.Context, name, cpf, birthDate, address string) (*domain.User, error)
	OpenAccount(ctx context.Context, cpf string) (*domain.Account, error)
	Deposit(ctx context.Context, accountNumber int64, amount decimal.Decimal) (*domain.Account, error)
	// Withdraw also reports whether the daily counter was reset by date
	// rollover before the limit checks ran.
	Withdraw(ctx context.Context, accountNumber int64, amount decimal.Decimal) (*domain.Account, bool, error)
	Transfer(ctx context.Context, fromNumber, toNumber int64, amount decimal.Decimal) (*domain.Account, *domain.Account, error)
	Statement(ctx context.Context, accountNumber int64, kindFilter string) (*domain.Account, []ledger.Transaction, error)
	Account(ctx context.Context, accountNumber int64) (*domain.Account, error)
	ListAccounts(ctx context.Context) []directory.AccountSummary
}

// bankService implements BankService. A single mutex serializes every
// operation, which trivially gives transfers a consistent lock order across
// the two accounts involved.
type bankService struct {
	mu      sync.Mutex
	dir     *directory.Directory
	store   storage.Store
	auditor *audit.Recorder
	limits  domain.Limits
	clock   func() time.Time
}

// NewBankService creates a BankService over the given directory and snapshot
// store. clock may be nil, in which case time.Now is used.
func NewBankService(
	dir *directory.Directory,
	store storage.Store,
	auditor *audit.Recorder,
	limits domain.Limits,
	clock func() time.Time,
) BankService {
	if clock == nil {
		clock = time.Now
	}
	return &bankService{
		dir:     dir,
		store:   store,
		auditor: auditor,
		limits:  limits,
		clock:   clock,
	}
}

// flush pushes the current directory state to the snapshot store. Called once
// per committed mutation, after every in-memory invariant already holds.
func (s *bankService) flush(ctx context.Context) error {
	if err := s.store.Save(ctx, storage.Take(s.dir)); err != nil {
		return fmt.Errorf("%w: %v", util.ErrPersistence, err)
	}
	return nil
}

// CreateUser registers a new user after validating identifier and birth date.
func (s *bankService) CreateUser(ctx context.Context, name, cpf, birthDate, address string) (*domain.User, error) {
	var user *domain.User
	err := s.auditor.Do(ctx, "criar_usuario", map[string]string{"cpf": cpf}, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		u, err := s.dir.RegisterUser(name, cpf, birthDate, address, s.clock())
		if err != nil {
			return err
		}
		user = u
		return s.flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// OpenAccount opens a zero-balance account for the user registered under cpf.
func (s *bankService) OpenAccount(ctx context.Context, cpf string) (*domain.Account, error) {
	var acct *domain.Account
	err := s.auditor.Do(ctx, "criar_conta", map[string]string{"cpf": cpf}, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		a, err := s.dir.OpenAccount(cpf, s.clock())
		if err != nil {
			return err
		}
		acct = a
		return s.flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// Deposit credits amount to the account.
func (s *bankService) Deposit(ctx context.Context, accountNumber int64, amount decimal.Decimal) (*domain.Account, error) {
	fields := map[string]string{"conta": fmt.Sprint(accountNumber), "valor": amount.String()}
	var acct *domain.Account
	err := s.auditor.Do(ctx, "deposito", fields, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		a, err := s.dir.Account(accountNumber)
		if err != nil {
			return err
		}
		if err := a.Deposit(amount, s.clock()); err != nil {
			return err
		}
		acct = a
		return s.flush(ctx)
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// Withdraw debits amount from the account, enforcing the withdrawal limits.
func (s *bankService) Withdraw(ctx context.Context, accountNumber int64, amount decimal.Decimal) (*domain.Account, bool, error) {
	fields := map[string]string{"conta": fmt.Sprint(accountNumber), "valor": amount.String()}
	var (
		acct  *domain.Account
		reset bool
	)
	err := s.auditor.Do(ctx, "saque", fields, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		a, err := s.dir.Account(accountNumber)
		if err != nil {
			return err
		}
		r, err := a.Withdraw(amount, s.clock(), s.limits)
		reset = r
		if err != nil {
			return err
		}
		acct = a
		return s.flush(ctx)
	})
	if err != nil {
		return nil, reset, err
	}
	return acct, reset, nil
}

// Transfer moves amount between two accounts atomically.
func (s *bankService) Transfer(ctx context.Context, fromNumber, toNumber int64, amount decimal.Decimal) (*domain.Account, *domain.Account, error) {
	fields := map[string]string{
		"origem":  fmt.Sprint(fromNumber),
		"destino": fmt.Sprint(toNumber),
		"valor":   amount.String(),
	}
	var src, dst *domain.Account
	err := s.auditor.Do(ctx, "transferencia", fields, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if amount.LessThanOrEqual(decimal.Zero) {
			return util.ErrInvalidAmount
		}
		if fromNumber == toNumber {
			return util.ErrSameAccount
		}
		from, err := s.dir.Account(fromNumber)
		if err != nil {
			return err
		}
		to, err := s.dir.Account(toNumber)
		if err != nil {
			return err
		}
		if err := domain.Transfer(from, to, amount, s.clock()); err != nil {
			return err
		}
		src, dst = from, to
		return s.flush(ctx)
	})
	if err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

// Statement decodes the account's ledger, optionally filtered by kind prefix.
func (s *bankService) Statement(ctx context.Context, accountNumber int64, kindFilter string) (*domain.Account, []ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.dir.Account(accountNumber)
	if err != nil {
		return nil, nil, err
	}
	return a, a.Statement(kindFilter), nil
}

// Account returns the account with the given number.
func (s *bankService) Account(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Account(accountNumber)
}

// ListAccounts returns a summary of every open account.
func (s *bankService) ListAccounts(ctx context.Context) []directory.AccountSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Summaries()
}
