// internal/api/api_integration_test.go
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "bancore/internal"
)

const (
	anaCPF   = "11144477735"
	brunoCPF = "52998224725"
)

// testApp is the global application instance for testing.
var testApp *app.Application

// testServer is the httptest server.
var testServer *httptest.Server

// TestMain boots one application over a throwaway JSON snapshot file and runs
// every test against it through the HTTP layer.
func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "bancore-api-test")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	os.Setenv("STORAGE_BACKEND", "json")
	os.Setenv("DATA_FILE", filepath.Join(tmpDir, "dados_bancarios.json"))

	testApp = app.NewApplication()
	if err := testApp.Initialize(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize test application: %v\n", err)
		os.Exit(1)
	}

	testServer = httptest.NewServer(testApp.HTTPHandler)
	defer testServer.Close()

	code := m.Run()

	if err := testApp.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown test application: %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

func doJSON(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, testServer.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

// TestBankFlow exercises the whole API surface in order against one shared
// application instance.
func TestBankFlow(t *testing.T) {
	// Register two users.
	resp, body := doJSON(t, http.MethodPost, "/users", map[string]string{
		"nome":            "Ana",
		"cpf":             anaCPF,
		"data_nascimento": "15-03-1990",
		"endereco":        "Rua A, 1 - Centro - Cidade/UF",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)

	resp, _ = doJSON(t, http.MethodPost, "/users", map[string]string{
		"nome":            "Bruno",
		"cpf":             brunoCPF,
		"data_nascimento": "01-01-1980",
		"endereco":        "Rua B, 2 - Centro - Cidade/UF",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Duplicate identifier is a conflict.
	resp, _ = doJSON(t, http.MethodPost, "/users", map[string]string{
		"nome":            "Ana de Novo",
		"cpf":             anaCPF,
		"data_nascimento": "15-03-1990",
		"endereco":        "Rua C, 3",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Invalid identifier is a bad request.
	resp, _ = doJSON(t, http.MethodPost, "/users", map[string]string{
		"nome":            "Carla",
		"cpf":             "12345678901",
		"data_nascimento": "15-03-1990",
		"endereco":        "Rua D, 4",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Open one account per user.
	resp, body = doJSON(t, http.MethodPost, "/accounts", map[string]string{"cpf": anaCPF})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), body["numero_conta"])

	resp, body = doJSON(t, http.MethodPost, "/accounts", map[string]string{"cpf": brunoCPF})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(2), body["numero_conta"])

	// Deposit into Ana's account. Balances always carry two decimal places.
	resp, body = doJSON(t, http.MethodPost, "/accounts/1/deposit", map[string]any{"valor": "1000.00"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	assert.Equal(t, "1000.00", body["saldo"])

	// Withdraw within the limits.
	resp, body = doJSON(t, http.MethodPost, "/accounts/1/withdraw", map[string]any{"valor": "500.00"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	assert.Equal(t, float64(1), body["saques_hoje"])
	assert.Equal(t, "500.00", body["saldo"])

	// A withdrawal above the remaining balance fails the balance check first.
	resp, body = doJSON(t, http.MethodPost, "/accounts/1/withdraw", map[string]any{"valor": "500.01"})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode, "body: %v", body)

	// A withdrawal above the ceiling (with enough balance) is rejected.
	resp, _ = doJSON(t, http.MethodPost, "/accounts/1/deposit", map[string]any{"valor": "1000.00"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, "/accounts/1/withdraw", map[string]any{"valor": "600.00"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Transfer from Ana to Bruno.
	resp, body = doJSON(t, http.MethodPost, "/transfers", map[string]any{
		"conta_origem":  1,
		"conta_destino": 2,
		"valor":         "250.00",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	assert.Equal(t, "1250.00", body["saldo_origem"])
	assert.Equal(t, "250.00", body["saldo_destino"])

	// Transfers to missing accounts are 404 and leave balances alone.
	resp, _ = doJSON(t, http.MethodPost, "/transfers", map[string]any{
		"conta_origem":  1,
		"conta_destino": 99,
		"valor":         "10.00",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, "/accounts/2/balance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "250.00", body["saldo"])

	// Statement with a kind filter, accent-insensitive.
	resp, body = doJSON(t, http.MethodGet, "/accounts/1/statement?tipo=deposito", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	txs, ok := body["transacoes"].([]any)
	require.True(t, ok)
	require.Len(t, txs, 2)
	for _, raw := range txs {
		tx := raw.(map[string]any)
		assert.Equal(t, "Depósito", tx["tipo"])
		assert.Equal(t, "1000.00", tx["valor"])
	}

	// Full statement covers deposits, the withdrawal and the transfer.
	resp, body = doJSON(t, http.MethodGet, "/accounts/1/statement", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	txs, ok = body["transacoes"].([]any)
	require.True(t, ok)
	require.Len(t, txs, 4)

	// Account listing includes both holders.
	resp, body = doJSON(t, http.MethodGet, "/accounts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	contas, ok := body["contas"].([]any)
	require.True(t, ok)
	require.Len(t, contas, 2)

	// The committed state reached the snapshot file.
	_, err := os.Stat(os.Getenv("DATA_FILE"))
	assert.NoError(t, err)
}

func TestUnknownAccountRoutes(t *testing.T) {
	resp, _ := doJSON(t, http.MethodPost, "/accounts/999/deposit", map[string]any{"valor": "10.00"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, "/accounts/999/balance", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, "/accounts/abc/balance", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	resp, err := http.Get(testServer.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
