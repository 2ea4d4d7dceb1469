package attendees

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

const (
	// CodeLength is the number of digits in an access code.
	CodeLength = 6

	codeMin = 100000
	codeMax = 999999
)

// GenerateCode returns a random 6-digit access code, uniform over [100000, 999999].
// Codes are not deduplicated against the ledger; two attendees can hold the same value.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}
