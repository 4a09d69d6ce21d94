package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/evetools/tokend/internal/tokens"
)

type TokenHandler struct {
	tokens *tokens.Service
}

func NewTokenHandler(tokenService *tokens.Service) *TokenHandler {
	return &TokenHandler{tokens: tokenService}
}

// GetToken handles the SSO redirect callback. The code query parameter holds
// the authorization code; the response body is the JSON-encoded opaque
// reference for the stored grant.
func (h *TokenHandler) GetToken(ctx *fiber.Ctx) error {
	code, err := requireCode(ctx)
	if err != nil {
		return err
	}
	ref, err := h.tokens.Issue(ctx.Context(), code)
	if err != nil {
		return err
	}
	return ctx.JSON(ref)
}

// GetAuthenticate resolves an opaque reference ("<characterId>:<secret>",
// passed as the code query parameter) into a currently valid access token.
func (h *TokenHandler) GetAuthenticate(ctx *fiber.Ctx) error {
	ref, err := requireCode(ctx)
	if err != nil {
		return err
	}
	accessToken, err := h.tokens.Resolve(ctx.Context(), ref)
	if err != nil {
		return err
	}
	return ctx.JSON(accessToken)
}

func requireCode(ctx *fiber.Ctx) (string, error) {
	if len(ctx.Request().URI().QueryString()) == 0 {
		return "", ErrMissingParams
	}
	code := ctx.Query("code")
	if code == "" {
		return "", tokens.ErrMissingCode
	}
	return code, nil
}
