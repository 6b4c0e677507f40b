package internal

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

var ErrNotFound = errors.New("not found")

func Env(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("missing env: %s", key)
	}
	return v
}

// RandomHex returns 2*n hex characters read from crypto/rand.
func RandomHex(n int) string {
	if n <= 0 {
		n = 16
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

func DefaultPasswordHasher(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func DefaultPasswordVerifier(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
