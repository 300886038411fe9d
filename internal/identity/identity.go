// internal/identity/identity.go
package identity

import "time"

// BirthDateLayout is the only accepted layout for birth dates (dd-mm-yyyy).
const BirthDateLayout = "02-01-2006"

// ValidateCPF checks a Brazilian CPF using the mod-11 check-digit algorithm.
// The input must be exactly 11 decimal digits; sequences where every digit is
// the same are rejected even though their check digits are consistent.
func ValidateCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	digits := make([]int, 11)
	allEqual := true
	for i, r := range cpf {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
		if digits[i] != digits[0] {
			allEqual = false
		}
	}
	if allEqual {
		return false
	}
	return digits[9] == checkDigit(digits[:9], 10) && digits[10] == checkDigit(digits[:10], 11)
}

// checkDigit computes one verification digit over the given prefix, with
// weights descending from firstWeight. Raw results above 9 clamp to 0.
func checkDigit(digits []int, firstWeight int) int {
	sum := 0
	for i, d := range digits {
		sum += d * (firstWeight - i)
	}
	d := 11 - sum%11
	if d > 9 {
		return 0
	}
	return d
}

// ValidateBirthDate reports whether s is a real calendar date written exactly
// as dd-mm-yyyy. Any other separator or field order is rejected.
func ValidateBirthDate(s string) bool {
	_, err := time.Parse(BirthDateLayout, s)
	return err == nil
}
