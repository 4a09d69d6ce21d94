package tokens

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/evetools/tokend/internal/sso"
	"github.com/evetools/tokend/internal/store"
	"github.com/evetools/tokend/model"
)

// Service is the token lifecycle manager. It owns issuance (authorization
// code in, opaque reference out) and resolution (reference in, currently
// valid access token out), coordinating the SSO provider and the token store.
type Service struct {
	provider sso.Provider
	store    TokenStore
	now      func() time.Time
}

func NewService(provider sso.Provider, tokenStore TokenStore) *Service {
	return &Service{
		provider: provider,
		store:    tokenStore,
		now:      time.Now,
	}
}

// Issue exchanges an authorization code for SSO credentials, records them
// under the owning character, and returns the reference handed back to the
// caller.
func (s *Service) Issue(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", ErrMissingCode
	}
	tok, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", err
	}
	character, err := s.provider.Verify(ctx, tok.AccessToken)
	if err != nil {
		return "", err
	}
	record := &model.CharacterToken{
		CharacterID:  character.CharacterID,
		Secret:       uuid.NewString(),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry.UnixMilli(),
	}
	if err := s.store.Put(ctx, record); err != nil {
		return "", err
	}
	slog.Debug("issued token", "characterId", record.CharacterID, "expiry", record.Expiry)
	return FormatReference(record.CharacterID, record.Secret), nil
}

// Resolve turns a reference back into a currently valid access token,
// refreshing the stored grant first when it has expired.
func (s *Service) Resolve(ctx context.Context, ref string) (string, error) {
	characterID, secret, err := ParseReference(ref)
	if err != nil {
		return "", err
	}
	record, err := s.store.Get(ctx, characterID)
	if err != nil {
		return "", err
	}
	if subtle.ConstantTimeCompare([]byte(record.Secret), []byte(secret)) != 1 {
		return "", ErrUnauthorized
	}
	if !record.Expired(s.now()) {
		return record.AccessToken, nil
	}
	return s.refresh(ctx, record)
}

// refresh mints a new grant and swaps it in keyed on the record's previous
// expiry. Losing the swap means another resolver refreshed first; its record
// is authoritative, and writing ours over it would invalidate the refresh
// token it just stored with the provider.
func (s *Service) refresh(ctx context.Context, record *model.CharacterToken) (string, error) {
	fresh, err := s.provider.Refresh(ctx, record.RefreshToken)
	if err != nil {
		return "", err
	}
	next := &model.CharacterToken{
		CharacterID:  record.CharacterID,
		Secret:       record.Secret, // rotating it would break the caller's reference
		AccessToken:  fresh.AccessToken,
		RefreshToken: fresh.RefreshToken,
		Expiry:       fresh.Expiry.UnixMilli(),
	}
	err = s.store.Swap(ctx, next, record.Expiry)
	if errors.Is(err, store.ErrConflict) {
		current, err := s.store.Get(ctx, record.CharacterID)
		if err != nil {
			return "", err
		}
		if current.Expired(s.now()) {
			return "", store.ErrConflict
		}
		slog.Debug("lost refresh race, using winner's token", "characterId", record.CharacterID)
		return current.AccessToken, nil
	}
	if err != nil {
		return "", err
	}
	slog.Debug("refreshed token", "characterId", next.CharacterID, "expiry", next.Expiry)
	return next.AccessToken, nil
}
