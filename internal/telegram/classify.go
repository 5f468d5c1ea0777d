package telegram

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/go-telegram/bot"
)

// TransportCooldown is how long the transport must pause before accepting
// further updates after a network-level failure, to avoid hot-looping against
// a down network.
const TransportCooldown = 2 * time.Second

// APIError is a structured failure reported by the Telegram Bot API.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api: [%d] %s", e.Code, e.Message)
}

// TransportError is a network-level failure, distinct from an API rejection.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "telegram transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Classify maps a failure to its operator-facing log message and reports
// whether the transport must cool down before resuming. It never fails; any
// error yields a classification.
func Classify(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("Platform API Error:\n[%d]\n%s", apiErr.Code, apiErr.Message), false
	}

	var trErr *TransportError
	if errors.As(err, &trErr) {
		return fmt.Sprintf("%T: %v", err, err), true
	}

	return fmt.Sprintf("%T: %v", err, err), false
}

// mapError lifts go-telegram/bot library and network failures into the local
// taxonomy so Classify can tell API rejections from transport outages.
// Errors already in the taxonomy, and anything unrecognized, pass through.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	var trErr *TransportError
	if errors.As(err, &apiErr) || errors.As(err, &trErr) {
		return err
	}

	switch {
	case errors.Is(err, bot.ErrorTooManyRequests):
		return &APIError{Code: 429, Message: "Too Many Requests"}
	case errors.Is(err, bot.ErrorBadRequest):
		return &APIError{Code: 400, Message: "Bad Request"}
	case errors.Is(err, bot.ErrorUnauthorized):
		return &APIError{Code: 401, Message: "Unauthorized"}
	case errors.Is(err, bot.ErrorForbidden):
		return &APIError{Code: 403, Message: "Forbidden"}
	case errors.Is(err, bot.ErrorNotFound):
		return &APIError{Code: 404, Message: "Not Found"}
	case errors.Is(err, bot.ErrorConflict):
		return &APIError{Code: 409, Message: "Conflict"}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Err: err}
	}

	return err
}
