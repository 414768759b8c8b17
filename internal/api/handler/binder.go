package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arielspace/listing-board/internal/core/domain"
)

const maxBodyBytes = 1 << 20

// strictBinder decodes JSON request bodies and rejects unknown fields,
// trailing data and non-JSON content types.
type strictBinder struct{}

// NewBinder returns the binder assigned to echo.Echo.Binder.
func NewBinder() echo.Binder {
	return strictBinder{}
}

func (strictBinder) Bind(i any, c echo.Context) error {
	req := c.Request()
	if req.Body == nil || req.Body == http.NoBody || req.ContentLength == 0 {
		return domain.NewValidationError("request body is required")
	}

	mediaType, _, err := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	if err != nil || mediaType != echo.MIMEApplicationJSON {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "content type must be application/json")
	}

	dec := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(i); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return domain.NewValidationError("request body must contain a single JSON object")
	}
	return nil
}

func decodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return domain.NewValidationError("request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.NewValidationError("invalid JSON payload")
	case errors.As(err, &typeErr):
		return domain.NewValidationError(fmt.Sprintf("%s has the wrong type", typeErr.Field))
	default:
		// DisallowUnknownFields reports `json: unknown field "x"`.
		return domain.NewValidationError(err.Error())
	}
}
