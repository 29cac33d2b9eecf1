package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dailyyield/apiserver/internal/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

func withUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, contextSubjectKey, userID)
}

func userIDFromContext(ctx context.Context) (int, error) {
	subject, ok := ctx.Value(contextSubjectKey).(int)
	if !ok {
		return 0, errors.New("missing subject")
	}
	if subject < 1 {
		return 0, errors.New("invalid subject")
	}
	return subject, nil
}

// decodeRequest reads a JSON body into dst and runs its validate tags.
// Any failure is reported to the client as message.
func decodeRequest(r *http.Request, dst any, message string) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation(message)
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.Validation(message)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// writeAppError translates err to its status. Internal causes are logged and
// never reach the client.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, err error) {
	appErr := apperr.From(err)
	if appErr.Kind() == apperr.KindInternal {
		logger.WithError(appErr.Unwrap()).
			WithField("path", r.URL.Path).
			Error(appErr.Message())
	}
	writeError(w, appErr.HTTPStatus(), appErr.Message())
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
