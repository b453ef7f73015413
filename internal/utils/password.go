package utils

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// dummyHashes holds one throwaway hash per cost.  Comparing against it on
// the unknown-username path makes a failed login cost the same bcrypt work
// either way.
var (
	dummyMu     sync.Mutex
	dummyHashes = map[int][]byte{}
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// BurnPasswordCheck performs a comparison at the given cost whose result is
// discarded.  Call it on the unknown-username path.
func BurnPasswordCheck(plain string, cost int) {
	dummyMu.Lock()
	h, ok := dummyHashes[cost]
	if !ok {
		var err error
		h, err = bcrypt.GenerateFromPassword([]byte("carbon-tracker-dummy"), cost)
		if err != nil {
			dummyMu.Unlock()
			return
		}
		dummyHashes[cost] = h
	}
	dummyMu.Unlock()
	_ = bcrypt.CompareHashAndPassword(h, []byte(plain))
}
