// Package rut validates and formats Chilean national identifiers (RUT).
//
// A RUT consists of a decimal number plus a check character computed with a
// base-11 weighted checksum. The canonical form used as a natural key across
// the record store is "NNNNNNNN-V" (no thousands separators, uppercase check
// character). Format produces the dotted display form.
package rut

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned when the input cannot be reduced to a
// number plus check character.
var ErrInvalidFormat = errors.New("rut: invalid format")

// Normalize strips dots, hyphens and whitespace, uppercases the check
// character and returns the canonical "NNNNNNNN-V" form.
//
// Normalize does not verify the check digit; use Validate for that.
func Normalize(raw string) (string, error) {
	clean := strings.ToUpper(strip(raw))
	if len(clean) < 2 {
		return "", ErrInvalidFormat
	}

	body, check := clean[:len(clean)-1], clean[len(clean)-1]

	if !isCheckChar(check) {
		return "", ErrInvalidFormat
	}
	for _, r := range body {
		if r < '0' || r > '9' {
			return "", ErrInvalidFormat
		}
	}

	return body + "-" + string(check), nil
}

// CheckDigit computes the check character for a RUT number using the
// base-11 weighted checksum: digits are weighted 2..7 from least
// significant, cycling back to 2 after 7. Remainder 0 maps to 'K' and
// remainder 1 maps to '0'; anything else maps to the digit 11-remainder.
func CheckDigit(number int) byte {
	sum := 0
	mult := 2
	for n := number; n > 0; n /= 10 {
		sum += (n % 10) * mult
		mult++
		if mult > 7 {
			mult = 2
		}
	}

	switch rem := sum % 11; rem {
	case 0:
		return 'K'
	case 1:
		return '0'
	default:
		return byte('0' + 11 - rem)
	}
}

// Validate reports whether canonical (or any separator-laden variant of it)
// carries a check character matching its number.
func Validate(canonical string) bool {
	clean := strings.ToUpper(strip(canonical))
	if len(clean) < 2 {
		return false
	}

	check := clean[len(clean)-1]
	if !isCheckChar(check) {
		return false
	}

	number, err := strconv.Atoi(clean[:len(clean)-1])
	if err != nil || number <= 0 {
		return false
	}

	return CheckDigit(number) == check
}

// Format renders a canonical RUT in display form with thousands
// separators, e.g. "12345678-5" -> "12.345.678-5". Input that cannot be
// normalized is returned unchanged.
func Format(canonical string) string {
	norm, err := Normalize(canonical)
	if err != nil {
		return canonical
	}

	body := norm[:len(norm)-2]
	check := norm[len(norm)-1]

	var b strings.Builder
	for i, r := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte('-')
	b.WriteByte(check)
	return b.String()
}

// strip removes the separator characters commonly found in transcribed RUTs.
func strip(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '.', '-', ' ', '\t':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isCheckChar(c byte) bool {
	return c == 'K' || (c >= '0' && c <= '9')
}
