// internal/domain/user.go
package domain

import "time"

// User is an account holder. Users are immutable once created; accounts hold
// a reference to them but do not own their lifetime.
type User struct {
	Name      string    `json:"nome"`
	CPF       string    `json:"cpf"`             // 11-digit national identifier, unique
	BirthDate string    `json:"data_nascimento"` // dd-mm-yyyy
	Address   string    `json:"endereco"`
	CreatedAt time.Time `json:"data_criacao"`
}

// NewUser creates a new User instance.
func NewUser(name, cpf, birthDate, address string, now time.Time) *User {
	return &User{
		Name:      name,
		CPF:       cpf,
		BirthDate: birthDate,
		Address:   address,
		CreatedAt: now,
	}
}
