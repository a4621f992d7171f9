// Package transaction turns a TransactionRecord into its canonical fingerprint.
//
// The canonical form is the UTF-8 JSON object
//
//	{"recipient":<string>,"amount":<number>,"blockchainParam":<string>}
//
// with the keys in that order and no whitespace. Strings are JSON escaped without HTML
// escaping. The amount uses the shortest decimal that round-trips a float64 (10, 10.5,
// 1e+21); NaN and infinities encode as null and negative zero as 0.
//
// Strings that are not valid UTF-8 keep a one-to-one encoding: each invalid byte b is
// written as the escaped lone surrogate \udcXX (XX = b). Valid UTF-8 can never produce a
// surrogate, so distinct records always yield distinct fingerprints.
//
// The fingerprint is the canonical encoding itself, not a digest of it.
package transaction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

// BuildFingerprint returns the canonical encoding of record. Equal records always yield
// equal fingerprints; no field is validated.
func BuildFingerprint(record types.TransactionRecord) types.Fingerprint {
	var buf bytes.Buffer
	buf.WriteString(`{"recipient":`)
	writeString(&buf, record.Recipient)
	buf.WriteString(`,"amount":`)
	writeNumber(&buf, record.Amount)
	buf.WriteString(`,"blockchainParam":`)
	writeString(&buf, record.SchemeParam)
	buf.WriteByte('}')
	return types.Fingerprint(buf.Bytes())
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for len(s) > 0 {
		if r, size := utf8.DecodeRuneInString(s); r == utf8.RuneError && size == 1 {
			fmt.Fprintf(buf, `\udc%02x`, s[0])
			s = s[1:]
			continue
		}
		end := validPrefix(s)
		writeEscaped(buf, s[:end])
		s = s[end:]
	}
	buf.WriteByte('"')
}

// validPrefix returns the length of the leading run of well-formed UTF-8 in s.
func validPrefix(s string) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if r == utf8.RuneError && size == 1 {
			break
		}
		n += size
	}
	return n
}

// writeEscaped writes valid UTF-8 as JSON string content, without the quotes.
func writeEscaped(buf *bytes.Buffer, s string) {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	// encoding a string cannot fail
	_ = enc.Encode(s)
	quoted := bytes.TrimSuffix(out.Bytes(), []byte{'\n'})
	buf.Write(quoted[1 : len(quoted)-1])
}

func writeNumber(buf *bytes.Buffer, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		buf.WriteString("null")
		return
	}
	if f == 0 {
		buf.WriteByte('0')
		return
	}
	b, _ := json.Marshal(f)
	buf.Write(b)
}
