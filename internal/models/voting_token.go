package models

import (
	"time"

	"github.com/google/uuid"
)

// VotingToken is the one-time credential owned by a facility. Used flips
// false to true exactly once, inside the vote submission transaction.
type VotingToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FacilityID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"facility_id"`
	Token      string     `gorm:"type:text;uniqueIndex;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	Used       bool       `gorm:"not null;default:false" json:"used"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	IPAddress  string     `gorm:"type:text;not null;default:''" json:"-"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Facility Facility `gorm:"constraint:OnDelete:CASCADE;foreignKey:FacilityID;references:ID" json:"-"`
}
