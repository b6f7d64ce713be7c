package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsletterSubscription is the email-variant credential: a confirmed
// subscription whose HasVoted flag has not yet been consumed.
type NewsletterSubscription struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string     `gorm:"type:text;uniqueIndex;not null" json:"email"`
	GroupName    string     `gorm:"type:text;not null;default:''" json:"group_name,omitempty"`
	FacilityName string     `gorm:"type:text;not null;default:''" json:"facility_name,omitempty"`
	Region       string     `gorm:"type:text;not null;default:''" json:"region,omitempty"`
	Confirmed    bool       `gorm:"not null;default:false" json:"confirmed"`
	ConfirmToken string     `gorm:"type:text;uniqueIndex;not null" json:"-"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	HasVoted     bool       `gorm:"not null;default:false" json:"has_voted"`
	VotedAt      *time.Time `json:"voted_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"subscribed_at"`
}

// DisplayGroupName returns the name shown back to a voting group.
func (s NewsletterSubscription) DisplayGroupName() string {
	if s.GroupName != "" {
		return s.GroupName
	}
	if s.FacilityName != "" {
		return s.FacilityName
	}
	return "Wohngruppe"
}
