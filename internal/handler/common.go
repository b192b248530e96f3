package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds a single handler's database work.
const dbTimeout = 5 * time.Second

const (
	defaultSkip  = 0
	defaultLimit = 10
)

var errBadPaging = errors.New("skip and limit must be non-negative integers")

// errorJSON writes the uniform error body {"error": msg}.
func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// parseID reads a non-negative numeric path parameter. Ids that match no
// row, 0 included, are left to the lookup to answer with 404.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parsePage reads ?skip= and ?limit=. A limit above maxLimit is clamped to
// it; maxLimit 0 means unbounded.
func parsePage(c echo.Context, maxLimit int) (skip, limit int, err error) {
	skip, limit = defaultSkip, defaultLimit
	if raw := c.QueryParam("skip"); raw != "" {
		if skip, err = strconv.Atoi(raw); err != nil || skip < 0 {
			return 0, 0, errBadPaging
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			return 0, 0, errBadPaging
		}
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit, nil
}

// isTooLarge reports whether err comes from a body size limit.
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.Is(err, echo.ErrStatusRequestEntityTooLarge) || errors.As(err, &mbe)
}
