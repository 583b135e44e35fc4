package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/credcloud/credcloud-server/internal/apperror"
	"github.com/credcloud/credcloud-server/internal/model"
	"github.com/credcloud/credcloud-server/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateWithQuestions inserts the user and all of user.Questions in one
// transaction. On success the user's ID, timestamps, and every question's
// ID/UserID are populated in place.
//
// A UNIQUE violation on username (two signups racing past the pre-check)
// rolls the whole transaction back and is reported as apperror.ErrConflict,
// so the caller responds exactly as if the pre-check had caught it.
func (db *DB) CreateWithQuestions(ctx context.Context, user *model.User) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	// Rollback is a no-op after a successful Commit.
	defer tx.Rollback()

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Username Already Taken!, Try another one")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	// Insert questions in payload order; IDs are xid so creation order is
	// recoverable from the ID itself.
	for i := range user.Questions {
		q := &user.Questions[i]
		q.ID = xid.New().String()
		q.UserID = user.ID
		q.CreatedAt = now

		_, err = tx.ExecContext(ctx,
			`INSERT INTO security_questions (id, user_id, question, answer_hash, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			q.ID,
			q.UserID,
			q.Question,
			q.AnswerHash,
			q.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting security question for user %q: %w", user.Username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing signup for %q: %w", user.Username, err)
	}

	return nil
}

// GetByUsername retrieves a user (including the password hash, for signin
// verification). Returns apperror.ErrNotFound for unknown usernames.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at, updated_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User Not Found")
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}

	return &u, nil
}

// UsernameExists reports whether a username is already taken.
func (db *DB) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`,
		username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking username %q: %w", username, err)
	}
	return exists == 1, nil
}

// QuestionsByUsername returns the user's security questions with only id and
// question text populated. The answer_hash column is deliberately absent
// from the SELECT — answers never leave the store through this path.
func (db *DB) QuestionsByUsername(ctx context.Context, username string) ([]model.SecurityQuestion, error) {
	// Resolve the user first so an unknown username is a 404, not an
	// empty list.
	var userID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = ?`, username,
	).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("User not found")
		}
		return nil, fmt.Errorf("sqlite: looking up user %q: %w", username, err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, question FROM security_questions WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing questions for %q: %w", username, err)
	}
	defer rows.Close()

	questions := []model.SecurityQuestion{}
	for rows.Next() {
		var q model.SecurityQuestion
		if err := rows.Scan(&q.ID, &q.Question); err != nil {
			return nil, fmt.Errorf("sqlite: scanning question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating question rows: %w", err)
	}

	return questions, nil
}

// isUniqueViolation detects a UNIQUE constraint failure from the sqlite
// driver. modernc.org/sqlite reports these as plain errors whose text names
// the violated constraint.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
