// Package service contains the business logic layer of the application.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// Handlers only know HTTP; this layer only knows accounts, credentials, and
// recovery questions; the repository only knows SQL.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/credcloud/credcloud-server/internal/apperror"
	"github.com/credcloud/credcloud-server/internal/auth"
	"github.com/credcloud/credcloud-server/internal/model"
	"github.com/credcloud/credcloud-server/internal/repository"
	"github.com/credcloud/credcloud-server/internal/validation"
)

// maxRecoveryQuestions is how many questions a recovery challenge shows.
// Users with fewer stored questions get all of them.
const maxRecoveryQuestions = 2

// AuthService handles the authentication business logic.
//
// Dependencies (injected via NewAuthService):
//   - users     repository.UserRepository → read/write user records
//   - tokens    *auth.TokenService        → mint/validate session JWTs
//   - passwords *auth.PasswordService     → bcrypt hashing for passwords and answers
//   - logger    *slog.Logger              → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is returned by SigninPassword. It bundles the user record and
// the issued JWT so the handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup registers a new account from an already-validated payload.
//
// Flow:
//  1. Friendly pre-check on username existence (the store's UNIQUE
//     constraint remains the real guarantee under concurrency).
//  2. bcrypt-hash the password and every answer independently; question
//     text stays plaintext and the payload's question order is preserved.
//  3. Persist user + questions in a single transaction.
//
// No plaintext secret survives this function: only digests reach the store.
func (s *AuthService) Signup(ctx context.Context, in *validation.SignupInput) (*model.User, error) {
	exists, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking username %q: %w", in.Username, err)
	}
	if exists {
		return nil, apperror.Conflict("Username Already Taken!, Try another one")
	}

	passwordHash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: passwordHash,
		Questions:    make([]model.SecurityQuestion, 0, len(in.AuthQuestions)),
	}
	for _, q := range in.AuthQuestions {
		answerHash, err := s.passwords.Hash(q.Answer)
		if err != nil {
			return nil, fmt.Errorf("service/auth: hashing answer: %w", err)
		}
		user.Questions = append(user.Questions, model.SecurityQuestion{
			Question:   q.Question,
			AnswerHash: answerHash,
		})
	}

	if err := s.users.CreateWithQuestions(ctx, user); err != nil {
		// Conflict here means a concurrent signup won the race after our
		// pre-check; it reads the same as the friendly duplicate response.
		return nil, apperror.Wrap(err, "service/auth: creating user %q", in.Username)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
		slog.Int("questions", len(user.Questions)),
	)

	return user, nil
}

// SigninPassword verifies a username/password pair and mints a session token.
//
// An unknown username and a wrong password are reported as distinct error
// kinds (ErrNotFound vs ErrUnauthorized), matching the public API's
// distinct responses.
func (s *AuthService) SigninPassword(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Wrap(err, "service/auth: looking up %q", username)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("Incorrect Password!")
	}

	token, err := s.tokens.Generate(auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %q: %w", username, err)
	}

	s.logger.Info("user signed in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// SecurityQuestions returns a random subset of at most two of the user's
// recovery questions, id and question text only.
//
// The shuffle is math/rand — challenge selection needs unpredictability for
// UX, not cryptographic strength; the answers themselves stay hashed.
func (s *AuthService) SecurityQuestions(ctx context.Context, username string) ([]model.SecurityQuestion, error) {
	questions, err := s.users.QuestionsByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Wrap(err, "service/auth: fetching questions for %q", username)
	}

	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	if len(questions) > maxRecoveryQuestions {
		questions = questions[:maxRecoveryQuestions]
	}

	return questions, nil
}
