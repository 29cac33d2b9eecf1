package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/dailyyield/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// AuthHandler serves signup and login.
type AuthHandler struct {
	userService *services.UserService
	logger      logrus.FieldLogger
}

func NewAuthHandler(userService *services.UserService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{userService: userService, logger: logger}
}

// AuthRouter registers the unauthenticated account routes. limit may be nil.
func AuthRouter(
	r chi.Router,
	userService *services.UserService,
	limit func(http.Handler) http.Handler,
	logger logrus.FieldLogger,
) {
	handler := NewAuthHandler(userService, logger)

	r.Group(func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}
		r.Post("/signup", handler.Signup)
		r.Post("/login", handler.Login)
	})
}

// Signup creates an account and returns a token for it.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeRequest(r, &req, "All fields are required"); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	result, err := h.userService.Signup(r.Context(), req.input())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeRequest(r, &req, "Mobile number or email and password are required"); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	result, err := h.userService.Login(r.Context(), services.LoginInput{
		MobileNumber: req.MobileNumber,
		Email:        req.Email,
		Password:     req.Password,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token's user id in the request context.
func RequireAuth(tokens *services.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, apperr.Unauthorized().Message())
				return
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, apperr.Unauthorized().Message())
				return
			}

			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(userService *services.UserService, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := userIDFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, apperr.Unauthorized().Message())
				return
			}

			if _, err := userService.Authorize(r.Context(), userID); err != nil {
				writeAppError(w, r, logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
