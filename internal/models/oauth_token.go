package models

import (
	"time"
)

// OAuthToken records an issued access token. Logging out deletes the row,
// which revokes the token even though its JWT signature is still valid.
type OAuthToken struct {
	ID           uint    `gorm:"primaryKey"`
	ClientID     string  `gorm:"not null"`
	UserID       *string `gorm:"index"`
	AccessToken  string  `gorm:"size:1024;uniqueIndex;not null"`
	RefreshToken *string
	Scopes       string
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
