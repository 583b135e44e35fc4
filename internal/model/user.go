// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// The username is the external identifier users sign in with; it carries a
// UNIQUE constraint in the store. We still generate our own internal string
// ID (xid) so primary keys stay stable even if usernames ever become mutable.
//
// PasswordHash holds the bcrypt digest of the password. The plaintext is
// never stored, and the hash is never serialized to JSON (`json:"-"`).
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// Questions is populated on signup (the full set being created) and left
	// empty on plain lookups; use the repository's question queries instead.
	Questions []SecurityQuestion `json:"-" db:"-"`
}

// SecurityQuestion is a user-chosen question/answer pair used as a secondary
// identity check during account recovery.
//
// Only the question text is ever shown back to a client. AnswerHash is the
// bcrypt digest of the answer and is excluded from JSON; the plaintext answer
// exists only transiently during signup.
//
// Questions are created in the same transaction as their owning user and are
// immutable afterwards. The user_id foreign key cascades on delete.
type SecurityQuestion struct {
	ID         string    `json:"id"       db:"id"`
	UserID     string    `json:"-"        db:"user_id"`
	Question   string    `json:"question" db:"question"`
	AnswerHash string    `json:"-"        db:"answer_hash"`
	CreatedAt  time.Time `json:"-"        db:"created_at"`
}

// PublicUser is the minimal projection returned by signin responses:
// identifier and username, nothing credential-related.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Public returns the client-safe projection of a user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}
