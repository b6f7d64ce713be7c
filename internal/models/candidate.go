package models

import "time"

// Candidate is a person standing for election. Candidates are referenced by
// integer ids on the public ballot interface, so the primary key stays a
// bigint rather than a uuid.
type Candidate struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string    `gorm:"type:text;not null" json:"name"`
	Age              *int      `gorm:"type:int" json:"age,omitempty"`
	FacilityName     string    `gorm:"type:text;not null" json:"facility_name"`
	FacilityLocation string    `gorm:"type:text;not null" json:"facility_location"`
	Biography        string    `gorm:"type:text;not null;default:''" json:"biography,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Votes []Vote `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// MaxBiographyLength caps the free-text biography field.
const MaxBiographyLength = 2000
