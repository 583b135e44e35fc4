package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/credcloud/credcloud-server/internal/apperror"
	"github.com/credcloud/credcloud-server/internal/auth"
	"github.com/credcloud/credcloud-server/internal/model"
	"github.com/credcloud/credcloud-server/internal/service"
	"github.com/credcloud/credcloud-server/internal/validation"
)

// AuthHandler exposes the authentication endpoints:
//
//	POST /signup                    → HandleSignup
//	POST /signin-password           → HandleSigninPassword
//	POST /logout                    → HandleLogout
//	GET  /auth-questions/{username} → HandleAuthQuestions (behind RequireAuth)
//
// Validation runs before anything else in every handler: a payload that
// fails its schema never reaches the service, the store, or a hash function.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger

	// devMode relaxes cookie attributes for local HTTP development.
	devMode bool
}

// NewAuthHandler creates an AuthHandler. devMode comes from the deployment
// environment config and controls the session cookie's Secure/SameSite.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, devMode bool) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  logger,
		devMode: devMode,
	}
}

// signupResponse is the 201 body for a successful registration.
type signupResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// signinResponse is the 200 body for a successful signin. User carries the
// minimal projection only — never password or answer material.
type signinResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

// questionsResponse is the 200 body for the recovery-challenge endpoint.
type questionsResponse struct {
	Questions []model.SecurityQuestion `json:"questions"`
}

// HandleSignup registers a new account with its security questions.
//
// HTTP: POST /api/v1/auth/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in validation.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid signup JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid JSON body"})
		return
	}

	if fields := validation.Signup(&in); fields != nil {
		writeError(w, apperror.SchemaFailed(fields))
		return
	}

	user, err := h.service.Signup(r.Context(), &in)
	if err != nil {
		if !errors.Is(err, apperror.ErrConflict) {
			h.logger.Error("signup failed",
				slog.String("username", in.Username),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{
		Message: fmt.Sprintf("%s signed up successfully!", user.Username),
		Success: true,
	})
}

// HandleSigninPassword verifies credentials and issues the session cookie.
//
// HTTP: POST /api/v1/auth/signin-password
//
// An unknown username responds 400 and a wrong password 401 — two distinct
// responses, preserved from the original API even though the distinction
// reveals whether a username exists.
func (h *AuthHandler) HandleSigninPassword(w http.ResponseWriter, r *http.Request) {
	var in validation.SigninInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid signin JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid JSON body"})
		return
	}

	if fields := validation.Signin(&in); fields != nil {
		writeError(w, apperror.SchemaFailed(fields))
		return
	}

	result, err := h.service.SigninPassword(r.Context(), in.Username, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			// 400 here, not 404: the username is request data, not a route.
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "User Not Found"})
		case errors.Is(err, apperror.ErrUnauthorized):
			writeError(w, err)
		default:
			h.logger.Error("signin failed",
				slog.String("username", in.Username),
				slog.String("error", err.Error()),
			)
			writeError(w, err)
		}
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, int(auth.TokenTTL.Seconds())))

	writeJSON(w, http.StatusOK, signinResponse{
		Success: true,
		Message: "User Logged In Successfully!",
		User:    result.User.Public(),
	})
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /api/v1/auth/logout
//
// Stateless tokens can't be revoked server-side; the token stays technically
// valid until its expiry, but without the cookie the browser can't send it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))

	writeJSON(w, http.StatusOK, messageResponse{Message: "User Logged Out Successfully!"})
}

// HandleAuthQuestions returns a random pair of the user's recovery questions.
//
// HTTP: GET /api/v1/auth/auth-questions/{username}
// Auth: required — RequireAuth rejects unauthenticated requests with 401
// before this handler runs.
func (h *AuthHandler) HandleAuthQuestions(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	questions, err := h.service.SecurityQuestions(r.Context(), username)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			h.logger.Error("fetching auth questions failed",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, questionsResponse{Questions: questions})
}

// sessionCookie builds the "token" cookie. In development the cookie works
// over plain HTTP (Secure off, SameSite=Lax); in production it is
// HTTPS-only and cross-site (Secure on, SameSite=None) so a separately
// hosted frontend can send it.
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	}
	if h.devMode {
		c.Secure = false
		c.SameSite = http.SameSiteLaxMode
	} else {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
