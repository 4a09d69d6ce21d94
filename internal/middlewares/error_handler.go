package middlewares

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/evetools/tokend/internal/handlers"
	"github.com/evetools/tokend/internal/store"
	"github.com/evetools/tokend/internal/tokens"
)

// Body tags are part of the public contract; callers match on them literally.
const (
	bodyMissingAll    = "MissingParameter:all"
	bodyMissingCode   = "MissingParameter:code"
	bodyIncorrectCode = "IncorrectParameter:code"
	bodyServerError   = "ServerError"
)

// ErrorHandler maps flow errors onto the wire contract. Anything not
// recognized as a caller mistake collapses to an opaque 500; the cause stays
// in the logs.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, handlers.ErrMissingParams):
		return reject(ctx, bodyMissingAll, err)
	case errors.Is(err, tokens.ErrMissingCode):
		return reject(ctx, bodyMissingCode, err)
	case errors.Is(err, tokens.ErrInvalidReference),
		errors.Is(err, tokens.ErrUnauthorized),
		errors.Is(err, store.ErrNotFound):
		// unknown character and wrong secret are deliberately indistinguishable
		return reject(ctx, bodyIncorrectCode, err)
	}
	slog.Error("request failed", "path", ctx.Path(), "error", err)
	return ctx.Status(fiber.StatusInternalServerError).SendString(bodyServerError)
}

func reject(ctx *fiber.Ctx, body string, err error) error {
	slog.Info("rejected request", "path", ctx.Path(), "body", body, "error", err)
	return ctx.Status(fiber.StatusBadRequest).SendString(body)
}
