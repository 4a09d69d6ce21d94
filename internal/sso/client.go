package sso

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Token is the credential pair minted by a code exchange or a refresh grant.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Character is the owner of an access token as asserted by the SSO verify
// endpoint.
type Character struct {
	CharacterID   int64  `json:"CharacterID"`
	CharacterName string `json:"CharacterName"`
	Scopes        string `json:"Scopes"`
	TokenType     string `json:"TokenType"`
}

// Provider performs the outbound SSO calls. Implementations make exactly one
// attempt per call; there is no retry or backoff at this layer.
type Provider interface {
	ExchangeCode(ctx context.Context, code string) (*Token, error)
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
	Verify(ctx context.Context, accessToken string) (*Character, error)
}

type Client struct {
	config     oauth2.Config
	verifyURL  string
	httpClient *http.Client
}

func NewClient(clientID, clientSecret, tokenURL, verifyURL string) *Client {
	return &Client{
		config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		verifyURL:  verifyURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// withHTTPClient routes the oauth2 transport through the client's own
// http.Client so timeouts apply to token endpoint calls as well.
func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	tok, err := c.config.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		return nil, &ProviderError{Op: "exchange", Err: err}
	}
	return checkToken("exchange", tok)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	src := c.config.TokenSource(c.withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, &ProviderError{Op: "refresh", Err: err}
	}
	return checkToken("refresh", tok)
}

func (c *Client) Verify(ctx context.Context, accessToken string) (*Character, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.verifyURL, nil)
	if err != nil {
		return nil, &ProviderError{Op: "verify", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: "verify", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Op: "verify", Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	var character Character
	if err := json.NewDecoder(resp.Body).Decode(&character); err != nil {
		return nil, &ProviderError{Op: "verify", Err: err}
	}
	if character.CharacterID == 0 {
		return nil, &ProviderError{Op: "verify", Err: ErrUnknownOwner}
	}
	return &character, nil
}

// checkToken rejects token responses that lack either credential. The SSO
// hands out both on every grant; a partial response means the code or refresh
// token was not accepted.
func checkToken(op string, tok *oauth2.Token) (*Token, error) {
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return nil, &ProviderError{Op: op, Err: ErrIncompleteToken}
	}
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}
