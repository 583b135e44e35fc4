package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/credcloud/credcloud-server/internal/auth"
	"github.com/credcloud/credcloud-server/internal/handler"
	sqliteRepo "github.com/credcloud/credcloud-server/internal/repository/sqlite"
	"github.com/credcloud/credcloud-server/internal/service"
)

// newTestHandler wires an AuthHandler over a real service and an in-memory
// database. Handlers are thin; testing them against the real stack catches
// the response-shape and cookie contracts end to end.
func newTestHandler(t *testing.T) *handler.AuthHandler {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := service.NewAuthService(db, tokens, passwords, logger)

	// devMode on: tests exercise the Lax/insecure cookie branch explicitly.
	return handler.NewAuthHandler(svc, logger, true)
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func signupAlice(t *testing.T, h *handler.AuthHandler) {
	t.Helper()
	rr := postJSON(t, h.HandleSignup, "/api/v1/auth/signup",
		`{"username":"alice123","password":"secret1","authQuestions":[{"question":"What is your pet's name?","answer":"Rex"}]}`)
	require.Equal(t, http.StatusCreated, rr.Code, "setup signup failed: %s", rr.Body.String())
}

// tokenCookie returns the "token" cookie from a response, or nil.
func tokenCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

func TestHandleSignup(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		h := newTestHandler(t)

		rr := postJSON(t, h.HandleSignup, "/api/v1/auth/signup",
			`{"username":"alice123","password":"secret1","authQuestions":[{"question":"What is your pet's name?","answer":"Rex"}]}`)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var res struct {
			Message string `json:"message"`
			Success bool   `json:"success"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.True(t, res.Success)
		assert.Contains(t, res.Message, "alice123")
	})

	t.Run("validation failure returns field errors and no user", func(t *testing.T) {
		h := newTestHandler(t)

		rr := postJSON(t, h.HandleSignup, "/api/v1/auth/signup",
			`{"username":"al","password":"123","authQuestions":[]}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var res struct {
			Message string              `json:"message"`
			Errors  map[string][]string `json:"errors"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "Validation error", res.Message)
		assert.Contains(t, res.Errors, "username")
		assert.Contains(t, res.Errors, "password")
		assert.Contains(t, res.Errors, "authQuestions")

		// Nothing was persisted: signing in with those credentials finds no user.
		rr = postJSON(t, h.HandleSigninPassword, "/api/v1/auth/signin-password",
			`{"username":"al","password":"123"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "User Not Found")
	})

	t.Run("duplicate username", func(t *testing.T) {
		h := newTestHandler(t)
		signupAlice(t, h)

		rr := postJSON(t, h.HandleSignup, "/api/v1/auth/signup",
			`{"username":"alice123","password":"another6","authQuestions":[{"question":"What city were you born in?","answer":"Dhaka"}]}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Username Already Taken!, Try another one")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		h := newTestHandler(t)

		rr := postJSON(t, h.HandleSignup, "/api/v1/auth/signup", `{"username":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleSigninPassword(t *testing.T) {
	t.Run("correct credentials set the session cookie", func(t *testing.T) {
		h := newTestHandler(t)
		signupAlice(t, h)

		rr := postJSON(t, h.HandleSigninPassword, "/api/v1/auth/signin-password",
			`{"username":"alice123","password":"secret1"}`)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			User    struct {
				ID       string `json:"id"`
				Username string `json:"username"`
			} `json:"user"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.True(t, res.Success)
		assert.Equal(t, "alice123", res.User.Username)
		assert.NotEmpty(t, res.User.ID)

		cookie := tokenCookie(rr)
		require.NotNil(t, cookie, "signin must set the token cookie")
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.Equal(t, int(auth.TokenTTL.Seconds()), cookie.MaxAge)
		// devMode: cookie must work over plain HTTP
		assert.False(t, cookie.Secure)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	})

	t.Run("response never contains hashes", func(t *testing.T) {
		h := newTestHandler(t)
		signupAlice(t, h)

		rr := postJSON(t, h.HandleSigninPassword, "/api/v1/auth/signin-password",
			`{"username":"alice123","password":"secret1"}`)

		assert.NotContains(t, rr.Body.String(), "$2") // bcrypt digests start with $2
		assert.NotContains(t, rr.Body.String(), "password")
	})

	t.Run("wrong password", func(t *testing.T) {
		h := newTestHandler(t)
		signupAlice(t, h)

		rr := postJSON(t, h.HandleSigninPassword, "/api/v1/auth/signin-password",
			`{"username":"alice123","password":"wrongpass"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Incorrect Password!")
		assert.Nil(t, tokenCookie(rr), "no cookie on failed signin")
	})

	t.Run("unknown username", func(t *testing.T) {
		h := newTestHandler(t)

		rr := postJSON(t, h.HandleSigninPassword, "/api/v1/auth/signin-password",
			`{"username":"ghost","password":"whatever"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "User Not Found")
		assert.Nil(t, tokenCookie(rr))
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		h := newTestHandler(t)

		rr := postJSON(t, h.HandleSigninPassword, "/api/v1/auth/signin-password", `{}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Validation error")
	})
}

func TestHandleLogout(t *testing.T) {
	h := newTestHandler(t)

	rr := postJSON(t, h.HandleLogout, "/api/v1/auth/logout", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "User Logged Out Successfully!")

	cookie := tokenCookie(rr)
	require.NotNil(t, cookie, "logout must rewrite the token cookie")
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge, "cookie must be expired")
	assert.True(t, cookie.HttpOnly)
}

func TestHandleAuthQuestions(t *testing.T) {
	// chi stores path params in a route context; build one the way the
	// router would for GET /auth-questions/{username}.
	questionsRequest := func(username string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/auth-questions/"+username, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("username", username)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("returns two of three questions, no answers", func(t *testing.T) {
		h := newTestHandler(t)

		rr := postJSON(t, h.HandleSignup, "/api/v1/auth/signup",
			`{"username":"alice123","password":"secret1","authQuestions":[
				{"question":"What is your pet's name?","answer":"Rex"},
				{"question":"What city were you born in?","answer":"Dhaka"},
				{"question":"What was your first car?","answer":"Civic"}]}`)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = httptest.NewRecorder()
		h.HandleAuthQuestions(rr, questionsRequest("alice123"))

		assert.Equal(t, http.StatusOK, rr.Code)

		var res struct {
			Questions []map[string]any `json:"questions"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		require.Len(t, res.Questions, 2)

		for _, q := range res.Questions {
			assert.Contains(t, q, "id")
			assert.Contains(t, q, "question")
			// The answer must be absent from the payload entirely, not just empty.
			assert.NotContains(t, q, "answer")
			assert.NotContains(t, q, "answerHash")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		h := newTestHandler(t)

		rr := httptest.NewRecorder()
		h.HandleAuthQuestions(rr, questionsRequest("ghost"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "User not found")
	})
}
