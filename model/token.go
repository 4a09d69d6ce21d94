package model

import "time"

// CharacterToken is the persisted SSO grant for one character. At most one
// record exists per character; a re-issuance overwrites the previous grant.
type CharacterToken struct {
	CharacterID  int64  `gorm:"primaryKey;autoIncrement:false" redis:"character_id" json:"characterId"`
	Secret       string `gorm:"size:64;not null" redis:"key" json:"key"`
	AccessToken  string `gorm:"size:2048;not null" redis:"access_token" json:"accessToken"`
	RefreshToken string `gorm:"size:2048;not null" redis:"refresh_token" json:"refreshToken"`
	Expiry       int64  `gorm:"not null" redis:"expiry" json:"expiry"` // epoch millis
}

func (CharacterToken) TableName() string {
	return "character_tokens"
}

// Expired reports whether the stored access token must not be used at t.
func (t *CharacterToken) Expired(at time.Time) bool {
	return t.Expiry <= at.UnixMilli()
}
