package app

import (
	"crypto/rand"
	"encoding/hex"
)

// newGameID returns a short 8-character id; collisions are handled by the
// bounded retry loop in CreateGame.
func newGameID() string {
	return randomHex(4)
}

func newPlayerID() string {
	return randomHex(16)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("app: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
