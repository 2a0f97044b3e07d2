package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/user-management-api/internal/model"
	"github.com/user-management-api/internal/service"
)

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *Handler) respondUserError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrUsernameTaken):
		respondError(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusBadRequest, "Email already exists")
	default:
		h.respondInternal(w, r, "user store failure", err)
	}
}

// ListUsers godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {array} model.User
// @Failure 401 {object} messageResponse
// @Security BearerAuth
// @Router /users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GetUser godoc
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// CreateUser godoc
// @Summary Create a user
// @Description Admin only. Username and email must be unique.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body model.CreateUserRequest true "New user"
// @Success 201 {object} model.User
// @Header 201 {string} Location "/api/users/{id}"
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Security BearerAuth
// @Router /users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Create(r.Context(), &req)
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/users/"+strconv.FormatInt(user.ID, 10))
	respondJSON(w, http.StatusCreated, user)
}

// UpdateUser godoc
// @Summary Update a user
// @Description Admin only. Replaces email, names and role; the password changes only when given.
// @Tags Users
// @Accept json
// @Param id path int true "User ID"
// @Param request body model.UpdateUserRequest true "Changes"
// @Success 204
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req model.UpdateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.users.Update(r.Context(), id, &req); err != nil {
		h.respondUserError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags Users
// @Param id path int true "User ID"
// @Success 204
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		h.respondUserError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
