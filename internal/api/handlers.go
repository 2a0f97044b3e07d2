package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/user-management-api/internal/cache"
	"github.com/user-management-api/internal/middleware"
	"github.com/user-management-api/internal/service"
	"github.com/user-management-api/internal/weather"
)

// Pinger reports whether a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains all API handlers
type Handler struct {
	users    *service.UserService
	weather  *weather.Service
	db       Pinger
	cache    cache.Cache
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(
	users *service.UserService,
	weatherSvc *weather.Service,
	db Pinger,
	c cache.Cache,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		users:    users,
		weather:  weatherSvc,
		db:       db,
		cache:    c,
		validate: newValidator(),
		logger:   logger,
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, messageResponse{Message: message})
}

// respondInternal logs err with the request id and hides it from the client.
func (h *Handler) respondInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.Any("error", err),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// Health godoc
// @Summary Health check
// @Description Reports database and cache reachability. The cache is optional, so only a database failure degrades the status.
// @Tags System
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "up", Cache: "up"}

	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
		h.logger.WarnContext(ctx, "database ping failed", slog.Any("error", err))
	}

	if err := h.cache.Ping(ctx); err != nil {
		if errors.Is(err, cache.ErrDisabled) {
			resp.Cache = "disabled"
		} else {
			resp.Cache = "down"
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
