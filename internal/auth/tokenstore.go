package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore keeps the session token in a file only the user can read.
type TokenStore struct {
	TokenFile string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{TokenFile: path}
}

func (ts *TokenStore) SaveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(ts.TokenFile), 0700); err != nil {
		return err
	}
	return os.WriteFile(ts.TokenFile, []byte(token), 0600) // Restricted permissions
}

// GetToken returns the saved token, or "" when there is none.
func (ts *TokenStore) GetToken() (string, error) {
	data, err := os.ReadFile(ts.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (ts *TokenStore) ClearToken() error {
	err := os.Remove(ts.TokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, nothing to clear
	}
	return err
}
