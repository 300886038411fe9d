// internal/storage/jsonstore_test.go
package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSnapshot() Snapshot {
	created := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	user := UserRecord{
		Nome:           "Ana",
		CPF:            "11144477735",
		DataNascimento: "15-03-1990",
		Endereco:       "Rua A, 1",
		DataCriacao:    created,
	}
	return Snapshot{
		Usuarios: []UserRecord{user},
		Contas: []AccountRecord{{
			Agencia:           "0001",
			NumeroConta:       1,
			Usuario:           user,
			Saldo:             decimal.RequireFromString("1234.56"),
			Extrato:           "[10/05/2024 12:00:00] Depósito: R$ 1234.56\n",
			SaquesRealizados:  2,
			DataCriacao:       created,
			UltimoResetSaques: "2024-05-10",
		}},
		ProximoNumeroConta: 2,
	}
}

func TestJSONStoreLoadMissingFile(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "nope.json"), testLogger())

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Usuarios)
	assert.Empty(t, snap.Contas)
	assert.Equal(t, int64(1), snap.ProximoNumeroConta)
}

func TestJSONStoreLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dados.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	store := NewJSONStore(path, testLogger())

	snap, err := store.Load(context.Background())
	require.NoError(t, err, "a malformed file is a recoverable condition")
	assert.Equal(t, int64(1), snap.ProximoNumeroConta)
}

func TestJSONStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dados.json")
	store := NewJSONStore(path, testLogger())
	ctx := context.Background()

	want := sampleSnapshot()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Usuarios, 1)
	require.Len(t, got.Contas, 1)
	assert.Equal(t, want.Usuarios[0], got.Usuarios[0])
	assert.Equal(t, want.Contas[0].Extrato, got.Contas[0].Extrato)
	assert.True(t, want.Contas[0].Saldo.Equal(got.Contas[0].Saldo))
	assert.Equal(t, want.Contas[0].UltimoResetSaques, got.Contas[0].UltimoResetSaques)
	assert.Equal(t, int64(2), got.ProximoNumeroConta)
}

func TestJSONStoreSaveIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dados.json")
	store := NewJSONStore(path, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSnapshot()))
	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	// No temp file may be left behind after a successful save.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
