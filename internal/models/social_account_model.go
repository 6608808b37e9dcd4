package models

import "time"

// SocialAccount's Credentials column holds AES-GCM ciphertext of a JSON
// credential blob. Plaintext credentials never leave the credential store.
type SocialAccount struct {
	ID              int64     `db:"id" json:"id"`
	ProjectID       int64     `db:"project_id" json:"project_id"`
	Provider        string    `db:"provider" json:"provider"`
	AccountUsername string    `db:"account_username" json:"account_username"`
	Credentials     string    `db:"credentials" json:"-"`
	TokenExpiresAt  time.Time `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
