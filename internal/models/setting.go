package models

import "time"

// Setting keys understood by the application.
const (
	SettingElectionClosed = "election_closed"
)

// Setting is a key-value configuration row read through on every request.
type Setting struct {
	Key       string    `gorm:"column:setting_key;type:text;primaryKey" json:"key"`
	Value     string    `gorm:"column:setting_value;type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
