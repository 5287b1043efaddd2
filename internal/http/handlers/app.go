package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rainbowrise/internal/assistant"
	"rainbowrise/internal/domain"
	"rainbowrise/internal/infra/geoip"
	"rainbowrise/internal/ledger"
	"rainbowrise/internal/middleware"
)

const maxBodyBytes = 1 << 20

// Assistant answers visitor questions.
type Assistant interface {
	Ask(ctx context.Context, query string) assistant.Reply
}

// ImageGenerator turns a prompt into an image URL.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HealthCheck is one dependency probed by the health endpoint.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type App struct {
	Store     domain.Store
	Ledger    *ledger.Service
	Assistant Assistant
	Images    ImageGenerator
	Geo       geoip.Locator
	Checks    []HealthCheck
	Logger    zerolog.Logger
	Now       func() time.Time
	// TrustProxy lets forwarding headers name the client address.
	TrustProxy bool
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Code: code, Message: message})
}

// fail maps a domain error onto its HTTP status. Unclassified errors are
// logged and reported as a generic 500.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *domain.ValidationError
		nerr *domain.NotFoundError
		derr *domain.DuplicateError
	)
	switch {
	case errors.As(err, &verr):
		a.json(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: verr.Error(), Fields: verr.Fields})
	case errors.As(err, &derr):
		a.error(w, http.StatusBadRequest, "duplicate", derr.Error())
	case errors.As(err, &nerr):
		a.error(w, http.StatusNotFound, "not_found", nerr.Resource+" not found")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", "concurrent update, please retry")
	default:
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "Internal Server Error")
	}
}

// decode reads a JSON body into v. With strict set, unknown fields are
// rejected.
func decode(w http.ResponseWriter, r *http.Request, v any, strict bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		msg := "invalid JSON body"
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			msg = strings.TrimPrefix(err.Error(), "json: ")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.NewValidationError(typeErr.Field, typeErr.Field+" has an invalid type")
		}
		return domain.NewValidationError("body", msg)
	}
	return nil
}

func pathID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(field, field+" must be a positive integer")
	}
	return id, nil
}
