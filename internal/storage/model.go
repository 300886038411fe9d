// internal/storage/model.go
//
// Serialization model for the persisted snapshot. This layer only moves data;
// business rules live in domain and directory. Field names are part of the
// stored format and must not change.
package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"bancore/internal/directory"
	"bancore/internal/domain"
)

// resetDateLayout is how ultimo_reset_saques is stored (date only).
const resetDateLayout = "2006-01-02"

// UserRecord is the stored form of a User.
type UserRecord struct {
	Nome           string    `db:"nome" json:"nome"`
	CPF            string    `db:"cpf" json:"cpf"`
	DataNascimento string    `db:"data_nascimento" json:"data_nascimento"`
	Endereco       string    `db:"endereco" json:"endereco"`
	DataCriacao    time.Time `db:"data_criacao" json:"data_criacao"`
}

// AccountRecord is the stored form of an Account. The owner is embedded
// inline; Snapshot.Restore re-links it to the shared User instance by CPF.
type AccountRecord struct {
	Agencia          string          `db:"agencia" json:"agencia"`
	NumeroConta      int64           `db:"numero_conta" json:"numero_conta"`
	Usuario          UserRecord      `json:"usuario"`
	Saldo            decimal.Decimal `db:"saldo" json:"saldo"`
	Extrato          string          `db:"extrato" json:"extrato"`
	SaquesRealizados int             `db:"saques_realizados" json:"saques_realizados"`
	DataCriacao      time.Time       `db:"data_criacao" json:"data_criacao"`
	// UltimoResetSaques is a calendar date (yyyy-mm-dd), empty when the
	// account never had its daily counter reset.
	UltimoResetSaques string `db:"ultimo_reset_saques" json:"ultimo_reset_saques,omitempty"`
}

// Snapshot is the complete persisted state of the bank.
type Snapshot struct {
	Usuarios           []UserRecord    `json:"usuarios"`
	Contas             []AccountRecord `json:"contas"`
	ProximoNumeroConta int64           `json:"proximo_numero_conta"`
}

// Empty returns the snapshot a fresh installation starts from.
func Empty() Snapshot {
	return Snapshot{ProximoNumeroConta: 1}
}

func userRecord(u *domain.User) UserRecord {
	return UserRecord{
		Nome:           u.Name,
		CPF:            u.CPF,
		DataNascimento: u.BirthDate,
		Endereco:       u.Address,
		DataCriacao:    u.CreatedAt,
	}
}

func (r UserRecord) user() *domain.User {
	return &domain.User{
		Name:      r.Nome,
		CPF:       r.CPF,
		BirthDate: r.DataNascimento,
		Address:   r.Endereco,
		CreatedAt: r.DataCriacao,
	}
}

// Take captures the current Directory state as a Snapshot.
func Take(d *directory.Directory) Snapshot {
	snap := Snapshot{ProximoNumeroConta: d.NextAccountNumber()}
	for _, u := range d.Users() {
		snap.Usuarios = append(snap.Usuarios, userRecord(u))
	}
	for _, a := range d.Accounts() {
		rec := AccountRecord{
			Agencia:          a.BranchCode,
			NumeroConta:      a.Number,
			Usuario:          userRecord(a.Owner),
			Saldo:            a.Balance,
			Extrato:          a.Ledger,
			SaquesRealizados: a.WithdrawalsToday,
			DataCriacao:      a.CreatedAt,
		}
		if !a.LastReset.IsZero() {
			rec.UltimoResetSaques = a.LastReset.Format(resetDateLayout)
		}
		snap.Contas = append(snap.Contas, rec)
	}
	return snap
}

// Restore replaces the Directory contents with the snapshot's. Account owners
// are re-linked to the user registered under the same CPF so every account
// shares the single User instance.
func (s Snapshot) Restore(d *directory.Directory) {
	users := make([]*domain.User, 0, len(s.Usuarios))
	byCPF := make(map[string]*domain.User, len(s.Usuarios))
	for _, r := range s.Usuarios {
		u := r.user()
		users = append(users, u)
		byCPF[u.CPF] = u
	}
	accounts := make([]*domain.Account, 0, len(s.Contas))
	for _, r := range s.Contas {
		owner := byCPF[r.Usuario.CPF]
		if owner == nil {
			// Legacy snapshots may embed a user that was never listed in
			// usuarios; keep the account usable anyway.
			owner = r.Usuario.user()
		}
		a := &domain.Account{
			BranchCode:       r.Agencia,
			Number:           r.NumeroConta,
			Owner:            owner,
			Balance:          r.Saldo,
			Ledger:           r.Extrato,
			WithdrawalsToday: r.SaquesRealizados,
			CreatedAt:        r.DataCriacao,
		}
		if r.UltimoResetSaques != "" {
			if t, err := time.Parse(resetDateLayout, r.UltimoResetSaques); err == nil {
				a.LastReset = t
			}
		}
		accounts = append(accounts, a)
	}
	d.Restore(users, accounts, s.ProximoNumeroConta)
}
