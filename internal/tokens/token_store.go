package tokens

import (
	"context"
	"strconv"

	"github.com/evetools/tokend/internal/store"
	"github.com/evetools/tokend/model"
)

// TokenStore persists one CharacterToken per character, keyed by character id.
type TokenStore interface {
	Get(ctx context.Context, characterID int64) (*model.CharacterToken, error)
	// Put is an unconditional last-write-wins upsert.
	Put(ctx context.Context, token *model.CharacterToken) error
	// Swap replaces the stored record only while its expiry still equals
	// prevExpiry. A concurrent replacement surfaces as store.ErrConflict;
	// a vanished record as store.ErrNotFound.
	Swap(ctx context.Context, token *model.CharacterToken, prevExpiry int64) error
}

type kvTokenStore struct {
	kv store.Store[model.CharacterToken]
}

// NewKVTokenStore narrows a generic KV store to the character token key space.
func NewKVTokenStore(kv store.Store[model.CharacterToken]) TokenStore {
	return &kvTokenStore{kv: kv}
}

func tokenKey(characterID int64) string {
	return strconv.FormatInt(characterID, 10)
}

func (s *kvTokenStore) Get(ctx context.Context, characterID int64) (*model.CharacterToken, error) {
	return s.kv.Get(ctx, tokenKey(characterID))
}

func (s *kvTokenStore) Put(ctx context.Context, token *model.CharacterToken) error {
	return s.kv.Save(ctx, tokenKey(token.CharacterID), *token)
}

func (s *kvTokenStore) Swap(ctx context.Context, token *model.CharacterToken, prevExpiry int64) error {
	return s.kv.Update(ctx, tokenKey(token.CharacterID), func(cur *model.CharacterToken) (model.CharacterToken, error) {
		if cur == nil {
			return model.CharacterToken{}, store.ErrNotFound
		}
		if cur.Expiry != prevExpiry {
			return model.CharacterToken{}, store.ErrConflict
		}
		return *token, nil
	})
}
