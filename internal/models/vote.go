package models

import "time"

// Vote is one ballot line. SessionID groups all lines cast in a single
// submission. A vote row must never carry anything that maps back to the
// credential or voter email.
type Vote struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CandidateID int64     `gorm:"not null;index" json:"candidate_id"`
	SessionID   string    `gorm:"type:text;not null;index" json:"session_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Candidate Candidate `gorm:"constraint:OnDelete:CASCADE;foreignKey:CandidateID;references:ID" json:"-"`
}
