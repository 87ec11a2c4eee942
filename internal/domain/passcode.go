package domain

import "time"

// OneTimePasscode is a single-use email login code. PK: user_id — one row
// per user, so a new request supersedes any outstanding code by overwrite.
// The code itself is stored bcrypt-hashed, never plaintext.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type OneTimePasscode struct {
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	PasscodeID string    `json:"passcode_id" dynamodbav:"passcode_id"`
	CodeHash   string    `json:"-" dynamodbav:"code_hash"`
	ExpiresAt  int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	Consumed   bool      `json:"consumed" dynamodbav:"consumed"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}
