package service

import (
	"encoding/json"
	"fmt"

	"github.com/postpilot/autopost/pkg/utils"
)

// Credentials is the plaintext shape sealed into a social account's
// credentials column. It never crosses the repository boundary unencrypted
// and is never logged.
type Credentials struct {
	BusinessAccountID string `json:"business_account_id"`
	Username          string `json:"username"`
	PageID            string `json:"page_id"`
	AccessToken       string `json:"access_token"`
}

// CredentialStore seals and opens credential blobs with AES-GCM. It is the
// only component holding the encryption key.
type CredentialStore struct {
	key []byte
}

func NewCredentialStore(key string) *CredentialStore {
	return &CredentialStore{key: []byte(key)}
}

func (s *CredentialStore) Seal(creds *Credentials) (string, error) {
	plaintext, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("error marshalling credentials: %w", err)
	}

	ciphertext, err := utils.Encrypt(plaintext, s.key)
	if err != nil {
		return "", fmt.Errorf("error encrypting credentials: %w", err)
	}
	return ciphertext, nil
}

func (s *CredentialStore) Open(ciphertext string) (*Credentials, error) {
	plaintext, err := utils.Decrypt(ciphertext, s.key)
	if err != nil {
		return nil, fmt.Errorf("error decrypting credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(plaintext), &creds); err != nil {
		return nil, fmt.Errorf("error unmarshalling credentials: %w", err)
	}
	return &creds, nil
}
