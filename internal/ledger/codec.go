// internal/ledger/codec.go
//
// The ledger attached to an account is plain text, one transaction per line:
//
//	[dd/mm/yyyy HH:MM:SS] <Kind>: R$ <amount> [<free text>]
//
// Encode produces that canonical form; DecodeLine is total over arbitrary
// text, so historical or hand-edited lines always remain readable - anything
// that does not match degrades to a generic transaction with the whole line
// as its description.
package ledger

import (
	"iter"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TimestampLayout is the timestamp format used in ledger lines.
const TimestampLayout = "02/01/2006 15:04:05"

// Kind labels a ledger line. Labels are part of the wire format and are
// written in Portuguese, as the statements are user-facing text.
type Kind string

const (
	KindDeposit          Kind = "Depósito"
	KindWithdrawal       Kind = "Saque"
	KindTransferSent     Kind = "Transferência enviada"
	KindTransferReceived Kind = "Transferência recebida"

	// KindGeneric is assigned to lines that do not match the canonical
	// pattern.
	KindGeneric Kind = "Transação"
)

// Transaction is a decoded ledger line. It is transient: accounts store only
// the encoded text, never this struct.
type Transaction struct {
	// Timestamp is the raw text between the square brackets, empty when the
	// line did not match the canonical pattern.
	Timestamp string
	Kind      Kind
	// Amount is nil when no parseable currency value was found in the line.
	Amount      *decimal.Decimal
	Description string
}

var (
	lineRe   = regexp.MustCompile(`^\[([^\]]+)\]\s*([^:]+):\s*(.+)$`)
	amountRe = regexp.MustCompile(`R\$\s*([\d.,]+)`)
)

// Encode renders one canonical, newline-terminated ledger line. The amount is
// always written with exactly two decimal digits. extra, when non-empty, is
// appended verbatim after the amount.
func Encode(ts time.Time, kind Kind, amount decimal.Decimal, extra string) string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(ts.Format(TimestampLayout))
	b.WriteString("] ")
	b.WriteString(string(kind))
	b.WriteString(": R$ ")
	b.WriteString(amount.StringFixed(2))
	if extra != "" {
		b.WriteByte(' ')
		b.WriteString(extra)
	}
	b.WriteByte('\n')
	return b.String()
}

// DecodeLine decodes a single ledger line. It never fails: lines that do not
// match the canonical pattern come back with KindGeneric, no timestamp and the
// full line as description.
func DecodeLine(line string) Transaction {
	line = strings.TrimRight(line, "\r\n")
	tx := Transaction{Kind: KindGeneric}
	rest := line
	if m := lineRe.FindStringSubmatch(line); m != nil {
		tx.Timestamp = m[1]
		tx.Kind = Kind(strings.TrimSpace(m[2]))
		rest = m[3]
	}
	if loc := amountRe.FindStringSubmatchIndex(rest); loc != nil {
		raw := rest[loc[2]:loc[3]]
		if amt, err := decimal.NewFromString(normalizeAmount(raw)); err == nil {
			tx.Amount = &amt
			// Drop the matched currency token from the description so the
			// value is not repeated.
			rest = rest[:loc[0]] + rest[loc[1]:]
		}
	}
	tx.Description = strings.TrimSpace(rest)
	return tx
}

// normalizeAmount converts a locale-ambiguous digit group to a canonical
// decimal string. With both separators present, dots are thousands grouping
// and the comma is the decimal point; a lone comma is the decimal point; a
// lone dot is kept as-is.
func normalizeAmount(raw string) string {
	switch {
	case strings.Contains(raw, ".") && strings.Contains(raw, ","):
		raw = strings.ReplaceAll(raw, ".", "")
		return strings.ReplaceAll(raw, ",", ".")
	case strings.Contains(raw, ","):
		return strings.ReplaceAll(raw, ",", ".")
	default:
		return raw
	}
}

// Transactions returns a lazy sequence over the decoded lines of ledgerText,
// in ledger order, skipping blank lines. When kindFilter is non-empty only
// transactions whose normalized kind starts with the normalized filter are
// yielded, so "dep", "deposito" and "DEPÓSITO" all select deposits. The
// sequence can be ranged over any number of times.
func Transactions(ledgerText, kindFilter string) iter.Seq[Transaction] {
	filter := Normalize(kindFilter)
	return func(yield func(Transaction) bool) {
		for line := range strings.Lines(strings.TrimSpace(ledgerText)) {
			line = strings.TrimRight(line, "\n")
			if strings.TrimSpace(line) == "" {
				continue
			}
			tx := DecodeLine(line)
			if filter != "" && !strings.HasPrefix(Normalize(string(tx.Kind)), filter) {
				continue
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// asciiFold decomposes accented characters and drops everything that is not
// plain ASCII, matching the loose comparisons users expect in statements.
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// Normalize lowercases s and strips diacritics for accent-insensitive
// comparisons ("Depósito" -> "deposito").
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
