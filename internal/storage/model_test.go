// internal/storage/model_test.go
package storage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bancore/internal/directory"
)

func TestTakeAndRestore(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	dir := directory.New("0001")
	_, err := dir.RegisterUser("Ana", "11144477735", "15-03-1990", "Rua A, 1", now)
	require.NoError(t, err)
	acct, err := dir.OpenAccount("11144477735", now)
	require.NoError(t, err)
	require.NoError(t, acct.Deposit(decimal.RequireFromString("100.50"), now))
	acct.WithdrawalsToday = 1
	acct.LastReset = now

	snap := Take(dir)
	require.Len(t, snap.Usuarios, 1)
	require.Len(t, snap.Contas, 1)
	assert.Equal(t, "2024-05-10", snap.Contas[0].UltimoResetSaques)
	assert.Equal(t, int64(2), snap.ProximoNumeroConta)

	restored := directory.New("0001")
	snap.Restore(restored)

	user := restored.UserByCPF("11144477735")
	require.NotNil(t, user)
	got, err := restored.Account(1)
	require.NoError(t, err)
	assert.Same(t, user, got.Owner, "restored accounts share the registered User instance")
	assert.True(t, acct.Balance.Equal(got.Balance))
	assert.Equal(t, acct.Ledger, got.Ledger)
	assert.Equal(t, 1, got.WithdrawalsToday)
	assert.Equal(t, "2024-05-10", got.LastReset.Format("2006-01-02"))
	assert.Equal(t, int64(2), restored.NextAccountNumber())
}

func TestRestoreEmptySnapshot(t *testing.T) {
	dir := directory.New("0001")
	Empty().Restore(dir)

	assert.Empty(t, dir.Users())
	assert.Empty(t, dir.Accounts())
	assert.Equal(t, int64(1), dir.NextAccountNumber())
}

func TestRestoreAccountWithUnlistedOwner(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Contas: []AccountRecord{{
			Agencia:     "0001",
			NumeroConta: 1,
			Usuario: UserRecord{
				Nome: "Fantasma", CPF: "52998224725",
				DataNascimento: "01-01-1980", DataCriacao: now,
			},
			Saldo:       decimal.Zero,
			DataCriacao: now,
		}},
		ProximoNumeroConta: 2,
	}

	dir := directory.New("0001")
	snap.Restore(dir)

	acct, err := dir.Account(1)
	require.NoError(t, err)
	require.NotNil(t, acct.Owner)
	assert.Equal(t, "Fantasma", acct.Owner.Name)
}
