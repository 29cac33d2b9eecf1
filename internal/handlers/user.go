package handlers

import (
	"net/http"

	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/dailyyield/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	userService *services.UserService
	logger      logrus.FieldLogger
}

func NewUserHandler(userService *services.UserService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

func UserRouter(
	r chi.Router,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
	logger logrus.FieldLogger,
) {
	handler := NewUserHandler(userService, logger)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/get-user", handler.GetUser)
		r.Put("/update-user", handler.UpdateUser)
		r.Get("/referrals", handler.ListReferrals)
	})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, apperr.Unauthorized())
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser changes the caller's username.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, apperr.Unauthorized())
		return
	}

	var req UpdateUserRequest
	if err := decodeRequest(r, &req, "Invalid username"); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.UpdateUsername(r.Context(), userID, req.Username)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ListReferrals(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, apperr.Unauthorized())
		return
	}

	referrals, err := h.userService.ListReferrals(r.Context(), userID)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, referrals)
}
