package tokens

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evetools/tokend/internal/store"
	"github.com/evetools/tokend/model"
)

// MySQLTokenStore keeps token records in a relational table instead of a KV
// hash. Swap relies on the expiry column as an optimistic version check.
type MySQLTokenStore struct {
	db *gorm.DB
}

func NewMySQLTokenStore(db *gorm.DB) (*MySQLTokenStore, error) {
	if err := db.AutoMigrate(&model.CharacterToken{}); err != nil {
		return nil, err
	}
	return &MySQLTokenStore{db: db}, nil
}

func (s *MySQLTokenStore) Get(ctx context.Context, characterID int64) (*model.CharacterToken, error) {
	var token model.CharacterToken
	err := s.db.WithContext(ctx).First(&token, "character_id = ?", characterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *MySQLTokenStore) Put(ctx context.Context, token *model.CharacterToken) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(token).Error
}

func (s *MySQLTokenStore) Swap(ctx context.Context, token *model.CharacterToken, prevExpiry int64) error {
	res := s.db.WithContext(ctx).Model(&model.CharacterToken{}).
		Where("character_id = ? AND expiry = ?", token.CharacterID, prevExpiry).
		Updates(map[string]any{
			"access_token":  token.AccessToken,
			"refresh_token": token.RefreshToken,
			"expiry":        token.Expiry,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrConflict
	}
	return nil
}
