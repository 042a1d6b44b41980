package store

import (
	"database/sql"
	"errors"
	"time"
)

// CredentialKey is the well-known key holding the operator's bearer token.
const CredentialKey = "token"

// Get returns the value stored under key; ok is false when the key is absent.
func (db *DB) Get(key string) (value string, ok bool, err error) {
	err = db.QueryRow(`SELECT value FROM local_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put upserts key.
func (db *DB) Put(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO local_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	return err
}

// Delete removes key. Deleting an absent key is not an error.
func (db *DB) Delete(key string) error {
	_, err := db.Exec(`DELETE FROM local_state WHERE key = ?`, key)
	return err
}

// Credentials persists the bearer token under CredentialKey. It satisfies
// session.Persister.
type Credentials struct {
	db *DB
}

// NewCredentials binds credential persistence to db.
func NewCredentials(db *DB) *Credentials {
	return &Credentials{db: db}
}

// LoadCredential returns the persisted token, or "" when none is stored.
func (c *Credentials) LoadCredential() (string, error) {
	token, _, err := c.db.Get(CredentialKey)
	return token, err
}

// SaveCredential persists token.
func (c *Credentials) SaveCredential(token string) error {
	return c.db.Put(CredentialKey, token)
}

// ClearCredential removes the persisted token.
func (c *Credentials) ClearCredential() error {
	return c.db.Delete(CredentialKey)
}
