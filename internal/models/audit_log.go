package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLogEntry captures notable voting and administrative events.
// Append-only: the application never updates or deletes rows.
type AuditLogEntry struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Action     string         `gorm:"type:text;not null" json:"action"`
	TargetType string         `gorm:"type:text;not null" json:"target_type"`
	TargetID   *string        `gorm:"type:text" json:"target_id,omitempty"`
	Metadata   datatypes.JSON `gorm:"type:jsonb;default:'{}'::jsonb" json:"metadata"`
	IPAddress  string         `gorm:"type:text;not null;default:''" json:"ip_address,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}
