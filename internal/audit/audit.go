// internal/audit/audit.go
//
// Explicit instrumentation for mutating operations. Instead of wrapping
// business functions implicitly, callers compose: they hand Do a closure and
// get back its result, while the recorder logs start, outcome, duration and
// masked arguments under a fresh operation id. Sensitive values (national
// identifiers, large amounts) never reach the log unmasked.
package audit

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Recorder writes structured audit entries for bank operations.
type Recorder struct {
	logger *slog.Logger
}

// NewRecorder creates a Recorder logging through logger.
func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

var (
	cpfRe    = regexp.MustCompile(`\b(\d{3})\.?(\d{3})\.?(\d{3})-?(\d{2})\b`)
	bigNumRe = regexp.MustCompile(`\b\d{4,}\b`)
)

// Mask hides sensitive substrings: national identifiers keep only their first
// group, and any number of four or more digits is blanked out.
func Mask(v string) string {
	v = cpfRe.ReplaceAllString(v, "$1.***.***-**")
	return bigNumRe.ReplaceAllString(v, "****")
}

// Do runs fn under audit. Every call gets a uuid operation id; the entry
// carries the operation name, masked fields, the outcome and the duration.
// The error from fn is returned untouched.
func (r *Recorder) Do(ctx context.Context, op string, fields map[string]string, fn func(ctx context.Context) error) error {
	opID := uuid.NewString()
	attrs := []any{"op", op, "op_id", opID}
	for k, v := range fields {
		attrs = append(attrs, k, Mask(v))
	}
	start := time.Now()
	err := fn(ctx)
	attrs = append(attrs, "duration", time.Since(start).String())
	if err != nil {
		attrs = append(attrs, "status", "ERRO", "error", err.Error())
		r.logger.WarnContext(ctx, "operation rejected", attrs...)
		return err
	}
	attrs = append(attrs, "status", "OK")
	r.logger.InfoContext(ctx, "operation committed", attrs...)
	return nil
}
