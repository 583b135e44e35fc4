// Package repository declares the data-access interfaces the service layer
// depends on. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/credcloud/credcloud-server/internal/model"
)

// UserRepository persists users and their security questions.
type UserRepository interface {
	// CreateWithQuestions inserts the user and every question in
	// user.Questions as a single transaction: either the user and all its
	// questions exist afterwards, or nothing does. The store's UNIQUE
	// constraint on username is the final arbiter against concurrent
	// signups; a violation surfaces as apperror.ErrConflict.
	CreateWithQuestions(ctx context.Context, user *model.User) error

	// GetByUsername returns the user including the password hash.
	// Returns apperror.ErrNotFound if no such username exists.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// UsernameExists reports whether a user with the username exists,
	// without loading credential material.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// QuestionsByUsername returns the user's security questions with only
	// id and question text populated — answer hashes are never selected.
	// Returns apperror.ErrNotFound if the username is unknown; a known user
	// with no questions yields an empty slice.
	QuestionsByUsername(ctx context.Context, username string) ([]model.SecurityQuestion, error)
}
