// internal/domain/account.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bancore/internal/ledger"
	"bancore/internal/util"
)

// Limits holds the withdrawal rules an account is subject to. Transfers are
// not limited; only withdrawals are capped.
type Limits struct {
	// WithdrawalCeiling is the maximum amount of a single withdrawal.
	WithdrawalCeiling decimal.Decimal
	// DailyWithdrawals is the number of withdrawals allowed per calendar day.
	DailyWithdrawals int
}

// Account holds a balance, the withdrawal-limit state and the append-only
// text ledger. The balance never goes below zero after a committed operation,
// and ledger lines are never rewritten or reordered.
type Account struct {
	BranchCode string          `json:"agencia"`
	Number     int64           `json:"numero_conta"`
	Owner      *User           `json:"usuario"`
	Balance    decimal.Decimal `json:"saldo"`
	Ledger     string          `json:"extrato"`
	// WithdrawalsToday is only meaningful relative to LastReset: when
	// LastReset is not today's date the counter is logically zero.
	WithdrawalsToday int       `json:"saques_realizados"`
	LastReset        time.Time `json:"ultimo_reset_saques"`
	CreatedAt        time.Time `json:"data_criacao"`
}

// NewAccount creates an empty account for owner.
func NewAccount(branchCode string, number int64, owner *User, now time.Time) *Account {
	return &Account{
		BranchCode: branchCode,
		Number:     number,
		Owner:      owner,
		Balance:    decimal.Zero,
		CreatedAt:  now,
	}
}

// resetIfStale zeroes the daily withdrawal counter on date rollover. It runs
// before every limit evaluation and reports whether a reset happened, so
// callers may surface it to the user.
func (a *Account) resetIfStale(now time.Time) bool {
	if sameDay(a.LastReset, now) {
		return false
	}
	a.WithdrawalsToday = 0
	a.LastReset = now
	return true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Deposit credits amount and appends a deposit line to the ledger.
func (a *Account) Deposit(amount decimal.Decimal, now time.Time) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return util.ErrInvalidAmount
	}
	a.Balance = a.Balance.Add(amount)
	a.Ledger += ledger.Encode(now, ledger.KindDeposit, amount, "")
	return nil
}

// Withdraw debits amount if it passes the balance check, the per-withdrawal
// ceiling and the daily counter, evaluated in that fixed order: only the
// first failing check is reported. The returned bool tells whether the daily
// counter was reset by date rollover before the checks ran.
func (a *Account) Withdraw(amount decimal.Decimal, now time.Time, limits Limits) (bool, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return false, util.ErrInvalidAmount
	}
	reset := a.resetIfStale(now)
	switch {
	case amount.GreaterThan(a.Balance):
		return reset, util.ErrInsufficientFunds
	case amount.GreaterThan(limits.WithdrawalCeiling):
		return reset, util.ErrWithdrawalLimit
	case a.WithdrawalsToday >= limits.DailyWithdrawals:
		return reset, util.ErrDailyLimitReached
	}
	a.Balance = a.Balance.Sub(amount)
	a.Ledger += ledger.Encode(now, ledger.KindWithdrawal, amount, "")
	a.WithdrawalsToday++
	return reset, nil
}

// Transfer moves amount from src to dst as one logical operation: both
// balances move and both ledgers gain their paired line, or nothing changes.
// Transfers are not subject to the withdrawal ceiling or the daily counter.
func Transfer(src, dst *Account, amount decimal.Decimal, now time.Time) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return util.ErrInvalidAmount
	}
	if src.Number == dst.Number {
		return util.ErrSameAccount
	}
	if amount.GreaterThan(src.Balance) {
		return util.ErrInsufficientFunds
	}
	src.Balance = src.Balance.Sub(amount)
	src.Ledger += ledger.Encode(now, ledger.KindTransferSent, amount,
		fmt.Sprintf("para Agência %s Conta %d", dst.BranchCode, dst.Number))
	dst.Balance = dst.Balance.Add(amount)
	dst.Ledger += ledger.Encode(now, ledger.KindTransferReceived, amount,
		fmt.Sprintf("de Agência %s Conta %d", src.BranchCode, src.Number))
	return nil
}

// Statement returns the decoded transactions of this account's ledger,
// optionally filtered by kind prefix (accent- and case-insensitive).
func (a *Account) Statement(kindFilter string) []ledger.Transaction {
	var txs []ledger.Transaction
	for tx := range ledger.Transactions(a.Ledger, kindFilter) {
		txs = append(txs, tx)
	}
	return txs
}
