// Package api renders the wire-level response envelopes shared by every
// public HTTP surface (spec.md §6.1).
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "dating-core/pkg/errors"
)

// errorBody is the JSON shape of the standard error envelope.
type errorBody struct {
	Error struct {
		Code    apperrors.Code         `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}

// Ok writes a 200 (or the given status) with body as the JSON payload,
// unwrapped — spec responses are specified per-endpoint, not enveloped.
func Ok(c echo.Context, status int, body interface{}) error {
	return c.JSON(status, body)
}

// Error renders any error as the standard envelope, mapping unknown errors
// to 500 internal_error. request_id is echoed as a response header so it
// correlates with the gateway's X-Request-Id.
func Error(c echo.Context, err error) error {
	var httpErr *apperrors.HttpError
	if !errors.As(err, &httpErr) {
		httpErr = apperrors.Wrap(apperrors.ErrInternal, err)
	}

	status := httpErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := errorBody{}
	body.Error.Code = httpErr.Code
	body.Error.Message = httpErr.Message
	body.Error.Details = httpErr.Details

	return c.JSON(status, body)
}

// CursorPage is the shape returned by every cursor-paginated listing
// endpoint (candidates, matches, conversations, messages).
type CursorPage[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
}
