// internal/audit/audit_test.go
package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "111.***.***-**", Mask("11144477735"))
	assert.Equal(t, "111.***.***-**", Mask("111.444.777-35"))
	assert.Equal(t, "saldo ****", Mask("saldo 123456"))
	assert.Equal(t, "conta 42", Mask("conta 42"), "short numbers stay visible")
}

func TestDoLogsMaskedFieldsAndOutcome(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := rec.Do(context.Background(), "saque", map[string]string{"cpf": "11144477735"}, func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"op":"saque"`)
	assert.Contains(t, out, `"status":"OK"`)
	assert.Contains(t, out, "111.***.***-**")
	assert.NotContains(t, out, "11144477735", "raw identifiers must never be logged")
}

func TestDoPassesErrorThrough(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(slog.New(slog.NewJSONHandler(&buf, nil)))
	sentinel := errors.New("saldo insuficiente")

	err := rec.Do(context.Background(), "saque", nil, func(ctx context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, buf.String(), `"status":"ERRO"`)
}
