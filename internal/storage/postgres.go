// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bancore/pkg/db"
)

// PostgresStore persists the snapshot in PostgreSQL. It keeps the same
// snapshot semantics as the JSON file: every Save replaces the stored state
// wholesale inside one database transaction.
type PostgresStore struct {
	db *sqlx.DB
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS usuarios (
    cpf             TEXT PRIMARY KEY,
    nome            TEXT NOT NULL,
    data_nascimento TEXT NOT NULL,
    endereco        TEXT NOT NULL,
    data_criacao    TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS contas (
    numero_conta        BIGINT PRIMARY KEY,
    agencia             TEXT NOT NULL,
    cpf_usuario         TEXT NOT NULL REFERENCES usuarios (cpf),
    saldo               NUMERIC(20, 2) NOT NULL,
    extrato             TEXT NOT NULL,
    saques_realizados   INT NOT NULL,
    data_criacao        TIMESTAMPTZ NOT NULL,
    ultimo_reset_saques TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS banco_meta (
    id                   INT PRIMARY KEY,
    proximo_numero_conta BIGINT NOT NULL
);`

// NewPostgresStore creates a PostgresStore and ensures its schema exists.
func NewPostgresStore(ctx context.Context, conn *sqlx.DB) (*PostgresStore, error) {
	if _, err := conn.ExecContext(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return &PostgresStore{db: conn}, nil
}

type contaRow struct {
	Agencia           string          `db:"agencia"`
	NumeroConta       int64           `db:"numero_conta"`
	CPFUsuario        string          `db:"cpf_usuario"`
	Saldo             decimal.Decimal `db:"saldo"`
	Extrato           string          `db:"extrato"`
	SaquesRealizados  int             `db:"saques_realizados"`
	DataCriacao       time.Time       `db:"data_criacao"`
	UltimoResetSaques string          `db:"ultimo_reset_saques"`
}

// Load reads the stored snapshot. Empty tables load as an empty snapshot with
// the next account number at 1.
func (s *PostgresStore) Load(ctx context.Context) (Snapshot, error) {
	snap := Empty()

	var users []UserRecord
	if err := s.db.SelectContext(ctx, &users,
		`SELECT nome, cpf, data_nascimento, endereco, data_criacao FROM usuarios ORDER BY data_criacao, cpf`); err != nil {
		return snap, fmt.Errorf("load usuarios: %w", err)
	}
	snap.Usuarios = users

	byCPF := make(map[string]UserRecord, len(users))
	for _, u := range users {
		byCPF[u.CPF] = u
	}

	var rows []contaRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT agencia, numero_conta, cpf_usuario, saldo, extrato, saques_realizados, data_criacao, ultimo_reset_saques
		 FROM contas ORDER BY numero_conta`); err != nil {
		return snap, fmt.Errorf("load contas: %w", err)
	}
	for _, r := range rows {
		snap.Contas = append(snap.Contas, AccountRecord{
			Agencia:           r.Agencia,
			NumeroConta:       r.NumeroConta,
			Usuario:           byCPF[r.CPFUsuario],
			Saldo:             r.Saldo,
			Extrato:           r.Extrato,
			SaquesRealizados:  r.SaquesRealizados,
			DataCriacao:       r.DataCriacao,
			UltimoResetSaques: r.UltimoResetSaques,
		})
	}

	var next int64
	err := s.db.GetContext(ctx, &next,
		`SELECT proximo_numero_conta FROM banco_meta WHERE id = 1`)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh database, keep the default of 1.
	case err != nil:
		return snap, fmt.Errorf("load proximo_numero_conta: %w", err)
	case next >= 1:
		snap.ProximoNumeroConta = next
	}
	return snap, nil
}

// Save replaces the stored snapshot inside one transaction.
func (s *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := db.BeginTx(ctx, s.db)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer db.RollbackTx(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM contas`); err != nil {
		return fmt.Errorf("clear contas: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM usuarios`); err != nil {
		return fmt.Errorf("clear usuarios: %w", err)
	}

	for _, u := range snap.Usuarios {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO usuarios (cpf, nome, data_nascimento, endereco, data_criacao)
			 VALUES ($1, $2, $3, $4, $5)`,
			u.CPF, u.Nome, u.DataNascimento, u.Endereco, u.DataCriacao); err != nil {
			return fmt.Errorf("insert usuario %s: %w", u.CPF, err)
		}
	}
	for _, c := range snap.Contas {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contas (numero_conta, agencia, cpf_usuario, saldo, extrato, saques_realizados, data_criacao, ultimo_reset_saques)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.NumeroConta, c.Agencia, c.Usuario.CPF, c.Saldo, c.Extrato,
			c.SaquesRealizados, c.DataCriacao, c.UltimoResetSaques); err != nil {
			return fmt.Errorf("insert conta %d: %w", c.NumeroConta, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO banco_meta (id, proximo_numero_conta) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET proximo_numero_conta = EXCLUDED.proximo_numero_conta`,
		snap.ProximoNumeroConta); err != nil {
		return fmt.Errorf("save proximo_numero_conta: %w", err)
	}

	if err := db.CommitTx(tx); err != nil {
		return fmt.Errorf("commit snapshot save: %w", err)
	}
	return nil
}
