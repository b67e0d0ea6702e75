package random

import (
	"crypto/rand"
	"math/big"

	"github.com/myrjola/formtree/internal/errors"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const (
	requestIDLength    = 12
	databaseNameLength = 20
)

var alphabetSize = big.NewInt(int64(len(alphabet)))

// Letters returns n ASCII letters read from crypto/rand.
func Letters(n uint) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", errors.Wrap(err, "read random index")
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}

// RequestID correlates the log lines of one HTTP request.
func RequestID() (string, error) {
	return Letters(requestIDLength)
}

// DatabaseName names a throwaway shared-cache in-memory database so that parallel tests and schema
// migrations never see each other's tables.
func DatabaseName() (string, error) {
	letters, err := Letters(databaseNameLength)
	if err != nil {
		return "", err
	}
	return "formtree-" + letters, nil
}
