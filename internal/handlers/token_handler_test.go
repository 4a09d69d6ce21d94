package handlers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/evetools/tokend/internal/handlers"
	"github.com/evetools/tokend/internal/middlewares"
	"github.com/evetools/tokend/internal/sso"
	"github.com/evetools/tokend/internal/store"
	"github.com/evetools/tokend/internal/tokens"
	"github.com/evetools/tokend/model"
)

type stubProvider struct {
	token       sso.Token
	character   sso.Character
	exchangeErr error
}

func (p *stubProvider) ExchangeCode(ctx context.Context, code string) (*sso.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	tok := p.token
	return &tok, nil
}

func (p *stubProvider) Refresh(ctx context.Context, refreshToken string) (*sso.Token, error) {
	tok := p.token
	return &tok, nil
}

func (p *stubProvider) Verify(ctx context.Context, accessToken string) (*sso.Character, error) {
	char := p.character
	return &char, nil
}

func newTestApp(t *testing.T, provider sso.Provider, records ...*model.CharacterToken) *fiber.App {
	t.Helper()
	tokenStore := tokens.NewKVTokenStore(store.NewMemoryStore[model.CharacterToken]())
	for _, record := range records {
		if err := tokenStore.Put(context.Background(), record); err != nil {
			t.Fatal(err)
		}
	}
	handler := handlers.NewTokenHandler(tokens.NewService(provider, tokenStore))

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Use(cors.New(cors.Config{AllowOrigins: "*"}))
	app.Get("/token", handler.GetToken)
	app.Get("/auth", handler.GetAuthenticate)
	return app
}

func doRequest(t *testing.T, app *fiber.App, target string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestGetTokenMissingParams(t *testing.T) {
	app := newTestApp(t, &stubProvider{})

	status, body := doRequest(t, app, "/token")
	if status != http.StatusBadRequest || body != "MissingParameter:all" {
		t.Errorf("got %d %q", status, body)
	}

	status, body = doRequest(t, app, "/token?state=xyz")
	if status != http.StatusBadRequest || body != "MissingParameter:code" {
		t.Errorf("got %d %q", status, body)
	}
}

func TestGetTokenIssues(t *testing.T) {
	provider := &stubProvider{
		token: sso.Token{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			Expiry:       time.Now().Add(20 * time.Minute),
		},
		character: sso.Character{CharacterID: 93813},
	}
	app := newTestApp(t, provider)

	status, body := doRequest(t, app, "/token?code=authcode")
	if status != http.StatusOK {
		t.Fatalf("got %d %q", status, body)
	}
	// the reference is returned as a JSON-encoded string
	if !strings.HasPrefix(body, `"93813:`) || !strings.HasSuffix(body, `"`) {
		t.Errorf("unexpected body %q", body)
	}
}

func TestGetTokenProviderFailure(t *testing.T) {
	provider := &stubProvider{
		exchangeErr: &sso.ProviderError{Op: "exchange", Err: errors.New("boom")},
	}
	app := newTestApp(t, provider)

	status, body := doRequest(t, app, "/token?code=authcode")
	if status != http.StatusInternalServerError || body != "ServerError" {
		t.Errorf("got %d %q", status, body)
	}
}

func TestGetAuthenticateBadReferences(t *testing.T) {
	record := &model.CharacterToken{
		CharacterID: 42, Secret: "xyz", AccessToken: "access-1",
		RefreshToken: "refresh-1", Expiry: time.Now().Add(time.Hour).UnixMilli(),
	}
	app := newTestApp(t, &stubProvider{}, record)

	for _, ref := range []string{"nocolon", "a:b:c", "abc:def", "42:abc", "41:xyz"} {
		status, body := doRequest(t, app, "/auth?code="+ref)
		if status != http.StatusBadRequest || body != "IncorrectParameter:code" {
			t.Errorf("code=%q: got %d %q", ref, status, body)
		}
	}
}

func TestGetAuthenticateReturnsToken(t *testing.T) {
	record := &model.CharacterToken{
		CharacterID: 42, Secret: "xyz", AccessToken: "access-1",
		RefreshToken: "refresh-1", Expiry: time.Now().Add(time.Hour).UnixMilli(),
	}
	app := newTestApp(t, &stubProvider{}, record)

	req := httptest.NewRequest(http.MethodGet, "/auth?code=42:xyz", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != `"access-1"` {
		t.Errorf("got %d %q", resp.StatusCode, body)
	}
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", origin)
	}
}
