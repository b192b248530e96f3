package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pdfsum/internal/model"
	"github.com/iliyamo/pdfsum/internal/repository"
)

// UserHandler serves the /users CRUD endpoints.
type UserHandler struct {
	Users        *repository.UserRepo
	BcryptCost   int
	PageLimitMax int
	Log          *slog.Logger
}

// Create handles POST /users.
func (h *UserHandler) Create(c echo.Context) error {
	var req UserCreate
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "name, email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return errorJSON(c, http.StatusBadRequest, repository.ErrEmailExists.Error())
		}
		h.Log.Error("create user failed", "err", err)
		return errorJSON(c, http.StatusInternalServerError, "create user failed")
	}
	return c.JSON(http.StatusOK, newUserResponse(u))
}

// List handles GET /users?skip=&limit=.
func (h *UserHandler) List(c echo.Context) error {
	skip, limit, err := parsePage(c, h.PageLimitMax)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx, skip, limit)
	if err != nil {
		h.Log.Error("list users failed", "err", err)
		return errorJSON(c, http.StatusInternalServerError, "list users failed")
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return h.userError(c, "get user failed", err)
	}
	return c.JSON(http.StatusOK, newUserResponse(u))
}

// Update handles PUT /users/:id. Only the fields present in the body change.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}
	var req UserUpdate
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	// present-but-empty is rejected the same way create rejects it
	for _, f := range []*string{req.Name, req.Email} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if (req.Name != nil && *req.Name == "") || (req.Email != nil && *req.Email == "") ||
		(req.Password != nil && *req.Password == "") {
		return errorJSON(c, http.StatusBadRequest, "fields must not be empty")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Update(ctx, id, model.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, h.BcryptCost)
	if err != nil {
		return h.userError(c, "update user failed", err)
	}
	return c.JSON(http.StatusOK, newUserResponse(u))
}

// Delete handles DELETE /users/:id and answers with the removed user.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Delete(ctx, id)
	if err != nil {
		return h.userError(c, "delete user failed", err)
	}
	return c.JSON(http.StatusOK, newUserResponse(u))
}

// userError maps repository errors shared by the single-user endpoints.
func (h *UserHandler) userError(c echo.Context, msg string, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return errorJSON(c, http.StatusNotFound, repository.ErrUserNotFound.Error())
	case errors.Is(err, repository.ErrEmailExists):
		return errorJSON(c, http.StatusBadRequest, repository.ErrEmailExists.Error())
	}
	h.Log.Error(msg, "err", err)
	return errorJSON(c, http.StatusInternalServerError, msg)
}
