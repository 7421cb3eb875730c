package security

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// temporaryPasswordAlphabet leaves out 0/O and 1/l/I, which are easy to
// confuse when an administrator reads the password to a farmer.
const (
	temporaryPasswordLetters  = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	temporaryPasswordDigits   = "23456789"
	temporaryPasswordAlphabet = temporaryPasswordLetters + temporaryPasswordDigits
)

const MinTemporaryPasswordLength = 8

// TemporaryPassword returns a random password that passes the account
// password policy: at least MinTemporaryPasswordLength characters with both
// letters and digits.
func TemporaryPassword(length int) (string, error) {
	length = max(length, MinTemporaryPasswordLength)
	for {
		candidate, err := pick(length, temporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		if strings.ContainsAny(candidate, temporaryPasswordLetters) && strings.ContainsAny(candidate, temporaryPasswordDigits) {
			return candidate, nil
		}
	}
}

func pick(length int, alphabet string) (string, error) {
	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}
	return string(value), nil
}
