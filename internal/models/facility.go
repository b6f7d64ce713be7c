package models

import (
	"time"

	"github.com/google/uuid"
)

// Facility is a residential facility eligible to vote via a one-time token.
type Facility struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Email     string    `gorm:"type:text;uniqueIndex;not null" json:"email"`
	Location  string    `gorm:"type:text;not null" json:"location"`
	TokenSent bool      `gorm:"not null;default:false" json:"token_sent"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Token *VotingToken `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
