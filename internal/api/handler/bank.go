// internal/api/handler/bank.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"bancore/internal/service"
	"bancore/internal/util"
)

// DefaultTimeout bounds request handling at the router level.
const DefaultTimeout = 60 * time.Second

// BankHandler handles HTTP requests for the banking operations.
type BankHandler struct {
	service service.BankService
	logger  *slog.Logger
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(svc service.BankService, logger *slog.Logger) *BankHandler {
	return &BankHandler{
		service: svc,
		logger:  logger,
	}
}

func (h *BankHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func (h *BankHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, util.ErrInvalidAmount),
		errors.Is(err, util.ErrSameAccount),
		errors.Is(err, util.ErrInvalidIdentifier),
		errors.Is(err, util.ErrInvalidDate):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, util.ErrAccountNotFound), errors.Is(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired
		message = err.Error()
	case errors.Is(err, util.ErrWithdrawalLimit), errors.Is(err, util.ErrDailyLimitReached):
		statusCode = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, util.ErrDuplicateIdentifier):
		statusCode = http.StatusConflict
		message = err.Error()
	case errors.Is(err, util.ErrPersistence):
		statusCode = http.StatusBadGateway
		message = "Failed to persist state"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

func (h *BankHandler) accountNumber(r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "accountNumber"), 10, 64)
	return n, err == nil && n > 0
}

// CreateUserRequest represents the request body for user registration.
type CreateUserRequest struct {
	Name      string `json:"nome"`
	CPF       string `json:"cpf"`
	BirthDate string `json:"data_nascimento"`
	Address   string `json:"endereco"`
}

// CreateUser handles user registration.
// POST /users
func (h *BankHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		h.respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "nome is required"})
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Name, req.CPF, req.BirthDate, req.Address)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created",
		"nome":    user.Name,
		"cpf":     user.CPF,
	})
}

// OpenAccountRequest represents the request body for opening an account.
type OpenAccountRequest struct {
	CPF string `json:"cpf"`
}

// OpenAccount handles account creation for a registered user.
// POST /accounts
func (h *BankHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req OpenAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	acct, err := h.service.OpenAccount(r.Context(), req.CPF)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Account opened",
		"agencia":      acct.BranchCode,
		"numero_conta": acct.Number,
	})
}

// ListAccounts handles the account listing request.
// GET /accounts
func (h *BankHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"contas": h.service.ListAccounts(r.Context()),
	})
}

// AmountRequest represents the request body for deposit and withdrawal.
type AmountRequest struct {
	Amount decimal.Decimal `json:"valor"`
}

// Deposit handles the deposit money request.
// POST /accounts/{accountNumber}/deposit
func (h *BankHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	number, ok := h.accountNumber(r)
	if !ok {
		h.respondWithError(w, util.ErrAccountNotFound)
		return
	}
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}

	acct, err := h.service.Deposit(r.Context(), number, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Deposit successful",
		"numero_conta": acct.Number,
		"saldo":        acct.Balance.StringFixed(2),
	})
}

// Withdraw handles the withdraw money request.
// POST /accounts/{accountNumber}/withdraw
func (h *BankHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	number, ok := h.accountNumber(r)
	if !ok {
		h.respondWithError(w, util.ErrAccountNotFound)
		return
	}
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}

	acct, counterReset, err := h.service.Withdraw(r.Context(), number, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":             "Withdrawal successful",
		"numero_conta":        acct.Number,
		"saldo":               acct.Balance.StringFixed(2),
		"saques_hoje":         acct.WithdrawalsToday,
		"contador_reiniciado": counterReset,
	})
}

// TransferRequest represents the request body for transfers.
type TransferRequest struct {
	FromNumber int64           `json:"conta_origem"`
	ToNumber   int64           `json:"conta_destino"`
	Amount     decimal.Decimal `json:"valor"`
}

// Transfer handles the transfer between two accounts.
// POST /transfers
func (h *BankHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}

	src, dst, err := h.service.Transfer(r.Context(), req.FromNumber, req.ToNumber, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Transfer successful",
		"saldo_origem":  src.Balance.StringFixed(2),
		"saldo_destino": dst.Balance.StringFixed(2),
	})
}

// GetBalance handles the balance request.
// GET /accounts/{accountNumber}/balance
func (h *BankHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	number, ok := h.accountNumber(r)
	if !ok {
		h.respondWithError(w, util.ErrAccountNotFound)
		return
	}

	acct, err := h.service.Account(r.Context(), number)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"numero_conta": acct.Number,
		"agencia":      acct.BranchCode,
		"saldo":        acct.Balance.StringFixed(2),
	})
}

// TransactionResponse is the JSON form of a decoded ledger line.
// Monetary values render with two decimal places, matching the ledger format.
type TransactionResponse struct {
	Timestamp   string  `json:"timestamp,omitempty"`
	Kind        string  `json:"tipo"`
	Amount      *string `json:"valor"`
	Description string  `json:"descricao"`
}

// GetStatement handles the statement request, optionally filtered by kind.
// GET /accounts/{accountNumber}/statement?tipo=...
func (h *BankHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	number, ok := h.accountNumber(r)
	if !ok {
		h.respondWithError(w, util.ErrAccountNotFound)
		return
	}

	acct, txs, err := h.service.Statement(r.Context(), number, r.URL.Query().Get("tipo"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		item := TransactionResponse{
			Timestamp:   tx.Timestamp,
			Kind:        string(tx.Kind),
			Description: tx.Description,
		}
		if tx.Amount != nil {
			v := tx.Amount.StringFixed(2)
			item.Amount = &v
		}
		out = append(out, item)
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"numero_conta": acct.Number,
		"saldo":        acct.Balance.StringFixed(2),
		"transacoes":   out,
	})
}
