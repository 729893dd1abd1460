// Package handler contains the HTTP handlers of the inn API.  Handlers bind
// and validate the request, call booking.Service and translate its error
// categories into status codes.  Every error body is {"error": "<message>"}.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/inn-reservation/internal/booking"
	"github.com/iliyamo/inn-reservation/internal/model"
)

// Validator adapts go-playground/validator to echo.Validator.  Field names
// in messages are the JSON (or query) names the client sent.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns the validator installed on the echo instance.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return &Validator{v: v}
}

// Validate runs the struct's validate tags and returns a 400 HTTPError
// naming the first offending field.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, describe(ve[0]))
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_without":
		return fmt.Sprintf("%s or %s is required", fe.Field(), toSnake(fe.Param()))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters long", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// toSnake turns a Go field name such as RoomID into room_id for messages.
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// bindValid binds the request into dst and validates it.  The error, if
// any, is a 400 HTTPError.
func bindValid(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(dst)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context, what string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return id, nil
}

// queryLimit reads ?limit=, falling back to def when absent or malformed.
func queryLimit(c echo.Context, def int) int {
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 {
		return n
	}
	return def
}

// parseDay turns a request date into a calendar day in the inn's zone.  A
// malformed date is a 400 HTTPError.
func parseDay(s, field string, svc *booking.Service) (model.Date, error) {
	d, err := model.ParseDate(s, svc.Location())
	if err != nil {
		return model.Date{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s: %v", field, err))
	}
	return d, nil
}

// fail converts a booking error into an HTTPError whose status matches its
// category.  Store failures keep the cause as Internal so ErrorHandler logs
// it.
func fail(err error) error {
	status := http.StatusInternalServerError
	switch booking.KindOf(err) {
	case booking.ErrInvalidArgument:
		status = http.StatusBadRequest
	case booking.ErrNotFound:
		status = http.StatusNotFound
	case booking.ErrConflict:
		status = http.StatusConflict
	case booking.ErrUnavailable:
		if errors.Is(err, booking.ErrLockTimeout) {
			status = http.StatusServiceUnavailable
		}
	default:
		return err
	}
	return echo.NewHTTPError(status, err.Error()).SetInternal(err)
}

// ErrorHandler renders every error that reaches echo as {"error": msg}.
// Unknown errors are logged and hidden behind a generic message.
func ErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	entry := log.WithField("component", "http")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil && code >= http.StatusInternalServerError {
				entry.WithError(he.Internal).Error("request failed")
			}
		} else {
			entry.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"error": msg})
		}
		if err != nil {
			entry.WithError(err).Warn("writing error response failed")
		}
	}
}
